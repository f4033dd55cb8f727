package submit_review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/booking"
	reviewRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/review"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/review"
)

const operation = "review"

// UseCase use case для отзыва по завершённому бронированию
type UseCase struct {
	bookingRepo  BookingRepository
	reviewRepo   ReviewRepository
	policy       PolicyProvider
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	reviewRepo ReviewRepository,
	policy PolicyProvider,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		reviewRepo:   reviewRepo,
		policy:       policy,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// Execute сохраняет отзыв, если окно отзыва ещё открыто
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.IncBookingOperation(operation, domain.ResultLabel(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SubmitReview: booking=%d by user=%d, rating=%d", req.BookingID, req.ReviewerID, req.Rating)

	// 1. Валидация входных данных
	comment, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("SubmitReview: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	policy, err := uc.policy.Policy(ctx)
	if err != nil {
		uc.logger.Error("SubmitReview: failed to load policy: %v", err)
		return nil, fmt.Errorf("%w: failed to load policy: %w", ErrInternal, err)
	}

	var created *domain.Review

	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("SubmitReview: booking id=%d not found", req.BookingID)
				return domain.NewBookingNotFound(req.BookingID)
			}
			uc.logger.Error("SubmitReview: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: get booking: %w", ErrInternal, err)
		}

		// 2. Отзыв оставляет только заказчик
		if b.HirerID != req.ReviewerID {
			uc.logger.Warn("SubmitReview: user=%d is not the hirer of booking id=%d", req.ReviewerID, req.BookingID)
			return ErrAccessDenied
		}

		// 3. Отзыв возможен только по завершённому бронированию
		if b.Status != domain.StatusCompleted || b.CompletedAt == nil {
			uc.logger.Warn("SubmitReview: booking id=%d is %s", req.BookingID, b.Status)
			return domain.NewBookingConflict("only completed bookings can be reviewed", map[string]any{
				"bookingId":     b.ID,
				"currentState":  string(b.Status),
				"expectedState": []string{string(domain.StatusCompleted)},
			})
		}

		// 4. Окно отзыва
		if err := review.CheckWindow(*b.CompletedAt, now, policy.ReviewWindowDays); err != nil {
			uc.logger.Warn("SubmitReview: booking id=%d completed at %s, window %d days passed",
				b.ID, b.CompletedAt.Format(time.RFC3339), policy.ReviewWindowDays)
			return err
		}

		r, err := uc.reviewRepo.Create(txCtx, &domain.Review{
			BookingID:  b.ID,
			ReviewerID: req.ReviewerID,
			RevieweeID: b.CompanionID,
			Rating:     req.Rating,
			Comment:    comment,
			CreatedAt:  now,
		})
		if err != nil {
			if errors.Is(err, reviewRepo.ErrAlreadyReviewed) {
				uc.logger.Warn("SubmitReview: booking id=%d already reviewed", b.ID)
				return domain.NewBookingConflict("booking already reviewed", map[string]any{"bookingId": b.ID})
			}
			uc.logger.Error("SubmitReview: failed to create review: %v", err)
			return fmt.Errorf("%w: create review: %w", ErrInternal, err)
		}

		created = r
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("SubmitReview: review id=%d saved for booking id=%d", created.ID, created.BookingID)

	return &Response{
		ID:         created.ID,
		BookingID:  created.BookingID,
		ReviewerID: created.ReviewerID,
		RevieweeID: created.RevieweeID,
		Rating:     created.Rating,
		Comment:    created.Comment,
		CreatedAt:  created.CreatedAt,
	}, nil
}

// validateRequest проверяет рейтинг и нормализует комментарий
func validateRequest(req *Request) (*string, error) {
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, domain.MinRating, domain.MaxRating)
	}
	if req.Comment == nil {
		return nil, nil
	}
	comment := strings.TrimSpace(*req.Comment)
	if comment == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(comment) > domain.MaxReviewCommentLength {
		return nil, fmt.Errorf("%w: comment must not exceed %d characters", ErrInvalidInput, domain.MaxReviewCommentLength)
	}
	return &comment, nil
}
