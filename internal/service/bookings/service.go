package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CompanionBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/bookings/models"
)

// Service сервис для чтения бронирований
// Все изменения статусов идут через usecase-ы, здесь только чтение
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Видеть бронирование могут его наниматель, компаньон и администратор
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, actor.ID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, domain.NewBookingNotFound(id)
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	if !canView(booking, actor) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actor.ID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetHirerBookings получает историю бронирований нанимателя
// Опционально фильтрует по статусу
func (s *Service) GetHirerBookings(ctx context.Context, req *models.GetHirerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetHirerBookings: fetching bookings for hirer=%d, status=%v", req.HirerID, req.Status)

	var status *domain.BookingStatus
	if req.Status != nil {
		st, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetHirerBookings: invalid status=%s for hirer=%d", *req.Status, req.HirerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &st
	}

	bookings, err := s.bookingRepo.GetByHirerID(ctx, req.HirerID, status)
	if err != nil {
		s.logger.Error("GetHirerBookings: repository error for hirer=%d: %v", req.HirerID, err)
		return nil, fmt.Errorf("%w: GetHirerBookings - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetHirerBookings: successfully fetched %d bookings for hirer=%d", len(bookings), req.HirerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetCompanionBookings получает бронирования компаньона с фильтрацией
// по периоду, статусу и включению неактивных бронирований.
// Доступно самому компаньону и администратору.
func (s *Service) GetCompanionBookings(ctx context.Context, req *models.GetCompanionBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCompanionBookings: fetching bookings for companion=%d by user=%d, from=%v, to=%v, status=%v, includeInactive=%t",
		req.CompanionID, req.Actor.ID, req.From, req.To, req.Status, req.IncludeInactive)

	if req.Actor.Role != domain.RoleAdmin && req.Actor.ID != req.CompanionID {
		s.logger.Warn("GetCompanionBookings: user=%d is not companion=%d", req.Actor.ID, req.CompanionID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetCompanionBookings: invalid filter for companion=%d: %v", req.CompanionID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetByCompanionWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetCompanionBookings: repository error for companion=%d: %v", req.CompanionID, err)
		return nil, fmt.Errorf("%w: GetCompanionBookings - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetCompanionBookings: successfully fetched %d bookings for companion=%d", len(bookings), req.CompanionID)
	return models.FromDomainBookingList(bookings), nil
}

// canView проверяет, что пользователь участник бронирования или администратор
func canView(b *domain.Booking, actor domain.Actor) bool {
	if actor.Role == domain.RoleAdmin {
		return true
	}
	_, ok := b.RoleOf(actor.ID)
	return ok
}
