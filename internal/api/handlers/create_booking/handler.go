package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CompanionBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CompanionBooking/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-CompanionBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается RFC3339"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgCompanionNotFound  = "компаньон не найден"
	msgProfileUnavailable = "сервис профилей временно недоступен"
	msgInvalidInterval    = "некорректный интервал бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	hirerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("POST /bookings - Validation failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом времени)
	useCaseReq, err := req.ToUseCaseRequest(hirerID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Бизнес-ошибки уходят клиенту с кодом и метаданными
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /bookings - Rejected: hirer_id=%d, companion_id=%d, error=%v",
				hirerID, req.CompanionID, err)
			return
		}

		switch {
		case errors.Is(err, createBooking.ErrCompanionNotFound):
			h.logger.Warn("POST /bookings - Companion not found: companion_id=%d", req.CompanionID)
			handlers.RespondNotFound(w, msgCompanionNotFound)

		case errors.Is(err, createBooking.ErrProfileUnavailable):
			h.logger.Warn("POST /bookings - Profile service unavailable: %v", err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgProfileUnavailable)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid interval: hirer_id=%d, error=%v", hirerID, err)
			handlers.RespondBadRequest(w, msgInvalidInterval)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: hirer_id=%d, companion_id=%d, error=%v",
				hirerID, req.CompanionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, hirer_id=%d, companion_id=%d",
		result.ID, hirerID, req.CompanionID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
