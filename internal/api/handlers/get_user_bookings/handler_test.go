package get_user_bookings

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CompanionBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/bookings"
	"github.com/m04kA/SMC-CompanionBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-CompanionBooking/pkg/logger"
)

type fakeService struct {
	got *models.GetHirerBookingsRequest
	err error
}

func (f *fakeService) GetHirerBookings(ctx context.Context, req *models.GetHirerBookingsRequest) (*models.BookingListResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 1, HirerID: req.HirerID}}}, nil
}

func serve(svc *fakeService, target, userID, role string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/users/{userId}/bookings", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(middleware.HeaderUserID, userID)
	if role != "" {
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	t.Run("own history with status filter", func(t *testing.T) {
		svc := &fakeService{}
		rec := serve(svc, "/users/4/bookings?status=pending", "4", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, svc.got.Status)
		assert.Equal(t, "pending", *svc.got.Status)
		assert.Equal(t, int64(4), svc.got.HirerID)
	})

	t.Run("someone else's history", func(t *testing.T) {
		svc := &fakeService{}
		rec := serve(svc, "/users/4/bookings", "5", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Nil(t, svc.got)
	})

	t.Run("admin sees any history", func(t *testing.T) {
		svc := &fakeService{}
		rec := serve(svc, "/users/4/bookings", "1", "admin")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, svc.got.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc := &fakeService{err: fmt.Errorf("%w: invalid status", bookings.ErrInvalidInput)}
		rec := serve(svc, "/users/4/bookings?status=flying", "4", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("internal error", func(t *testing.T) {
		svc := &fakeService{err: bookings.ErrInternal}
		rec := serve(svc, "/users/4/bookings", "4", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
