package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	cancelBookingHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/get_booking"
	getBookingPolicyHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/get_booking_policy"
	getCompanionBookingsHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/get_companion_bookings"
	getUserBookingsHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/get_user_bookings"
	submitReviewHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/submit_review"
	transitionBookingHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/transition_booking"
	updateBookingPolicyHandler "github.com/m04kA/SMC-CompanionBooking/internal/api/handlers/update_booking_policy"
	"github.com/m04kA/SMC-CompanionBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CompanionBooking/internal/config"
	availabilityRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/booking"
	configRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/config"
	eventsRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/events"
	reviewRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/review"
	profileServiceClient "github.com/m04kA/SMC-CompanionBooking/internal/integrations/profileservice"
	availabilityService "github.com/m04kA/SMC-CompanionBooking/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-CompanionBooking/internal/service/bookings"
	policyService "github.com/m04kA/SMC-CompanionBooking/internal/service/policy"
	cancelBookingUC "github.com/m04kA/SMC-CompanionBooking/internal/usecase/cancel_booking"
	createBookingUC "github.com/m04kA/SMC-CompanionBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-CompanionBooking/internal/usecase/get_available_slots"
	submitReviewUC "github.com/m04kA/SMC-CompanionBooking/internal/usecase/submit_review"
	transitionBookingUC "github.com/m04kA/SMC-CompanionBooking/internal/usecase/transition_booking"
	"github.com/m04kA/SMC-CompanionBooking/internal/worker/outbox"
	"github.com/m04kA/SMC-CompanionBooking/internal/worker/sweeper"
	"github.com/m04kA/SMC-CompanionBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CompanionBooking/pkg/logger"
	"github.com/m04kA/SMC-CompanionBooking/pkg/metrics"
	"github.com/m04kA/SMC-CompanionBooking/pkg/mq"
	"github.com/m04kA/SMC-CompanionBooking/pkg/txmanager"
)

func main() {
	// .env опционален, переменные окружения имеют приоритет
	_ = godotenv.Load()

	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-CompanionBooking...")

	// Метрики: при выключенных метриках пишем в реестр, который никто не читает
	metricsCollector := metrics.NewNop()
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, metricsCollector)
	}

	txMgr := txmanager.NewTransactionManager(
		wrappedDB,
		txmanager.WithMaxRetries(cfg.Booking.TxMaxRetries),
		txmanager.WithBackoff(time.Duration(cfg.Booking.TxBackoffMs)*time.Millisecond),
		txmanager.WithRetryObserver(func(isolation string, attempt int, err error) {
			metricsCollector.IncTxRetry(isolation)
			log.Warn("Transaction retry: isolation=%s, attempt=%d, error=%v", isolation, attempt, err)
		}),
	)

	// Интеграционные клиенты
	profileClient := profileServiceClient.NewClient(
		cfg.ProfileService.URL,
		time.Duration(cfg.ProfileService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ProfileService=%s timeout=%ds)",
		cfg.ProfileService.URL, cfg.ProfileService.Timeout)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	eventRepository := eventsRepo.NewRepository(wrappedDB)
	reviewRepository := reviewRepo.NewRepository(wrappedDB)
	configRepository := configRepo.NewRepository(wrappedDB)
	availabilityRepository := availabilityRepo.NewRepository(wrappedDB)

	// Политика бронирования: таблица platform_config поверх значений по умолчанию,
	// при включённом redis - с кэшем
	var (
		policyProvider    policyService.Provider = policyService.NewPersistedProvider(configRepository, log)
		policyInvalidator policyService.Invalidator
	)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		defer redisClient.Close()

		cached := policyService.NewCachedProvider(
			policyProvider,
			redisClient,
			time.Duration(cfg.Redis.PolicyTTL)*time.Second,
			log,
		)
		policyProvider = cached
		policyInvalidator = cached
		log.Info("Policy cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.PolicyTTL)
	}

	// Сервисы
	availabilitySvc := availabilityService.NewService(availabilityRepository, log)
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	policySvc := policyService.NewService(
		policyProvider,
		configRepository,
		policyInvalidator,
		&policyService.RealTimeProvider{},
		log,
	)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		eventRepository,
		profileClient,
		availabilitySvc,
		policyProvider,
		txMgr,
		metricsCollector,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		eventRepository,
		policyProvider,
		txMgr,
		metricsCollector,
		log,
	)
	transitionBookingUseCase := transitionBookingUC.NewUseCase(
		bookingRepository,
		eventRepository,
		policyProvider,
		txMgr,
		metricsCollector,
		log,
	)
	submitReviewUseCase := submitReviewUC.NewUseCase(
		bookingRepository,
		reviewRepository,
		policyProvider,
		txMgr,
		metricsCollector,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		availabilitySvc,
		profileClient,
		policyProvider,
		log,
	)

	// Фоновые воркеры
	bookingSweeper := sweeper.New(
		bookingRepository,
		eventRepository,
		policyProvider,
		txMgr,
		metricsCollector,
		log,
		time.Duration(cfg.Booking.SweepInterval)*time.Second,
		cfg.Booking.SweepBatchSize,
	)

	var eventRelay *outbox.Relay
	if cfg.RabbitMQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()

		eventRelay = outbox.New(
			eventRepository,
			publisher,
			txMgr,
			metricsCollector,
			log,
			time.Duration(cfg.Booking.OutboxInterval)*time.Second,
			cfg.Booking.OutboxBatchSize,
		)
		log.Info("Outbox relay enabled (exchange=%s)", cfg.RabbitMQ.Exchange)
	}

	// Handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	transitionBooking := transitionBookingHandler.NewHandler(transitionBookingUseCase, log)
	submitReview := submitReviewHandler.NewHandler(submitReviewUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getCompanionBookings := getCompanionBookingsHandler.NewHandler(bookingSvc, log)
	getBookingPolicy := getBookingPolicyHandler.NewHandler(policySvc, log)
	updateBookingPolicy := updateBookingPolicyHandler.NewHandler(policySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные окна компаньона на дату
	api.HandleFunc("/companions/{companionId}/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Действующая политика бронирования
	api.HandleFunc("/config/booking-policy", getBookingPolicy.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/transitions", transitionBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/reviews", submitReview.Handle).Methods(http.MethodPost)

	// История бронирований заказчика
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// Расписание бронирований компаньона
	protected.HandleFunc("/companions/{companionId}/bookings", getCompanionBookings.Handle).Methods(http.MethodGet)

	// --- Администрирование ---
	protected.HandleFunc("/config/booking-policy", updateBookingPolicy.Handle).Methods(http.MethodPut)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return bookingSweeper.Run(gctx)
	})

	if eventRelay != nil {
		g.Go(func() error {
			return eventRelay.Run(gctx)
		})
	}

	// Ожидаем сигнал завершения или падение одного из компонентов
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Service stopped with error: %v", err)
	}

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	log.Info("Server stopped gracefully")
}
