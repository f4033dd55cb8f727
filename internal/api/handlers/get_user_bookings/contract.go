package get_user_bookings

import (
	"context"

	"github.com/m04kA/SMC-CompanionBooking/internal/service/bookings/models"
)

type BookingService interface {
	GetHirerBookings(ctx context.Context, req *models.GetHirerBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
