package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CompanionBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CompanionBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-CompanionBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-CompanionBooking/pkg/logger"
	"github.com/m04kA/SMC-CompanionBooking/pkg/txmanager"
)

type fakeUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (f *fakeUseCase) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.got = req
	return f.resp, f.err
}

const validBody = `{"companionId":7,"startTime":"2026-05-04T19:00:00+07:00","endTime":"2026-05-04T21:00:00+07:00"}`

func serve(t *testing.T, uc *fakeUseCase, body string, userID string) *httptest.ResponseRecorder {
	t.Helper()
	h := middleware.Auth(http.HandlerFunc(NewHandler(uc, logger.NewNop()).Handle))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	start := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	uc := &fakeUseCase{resp: &createBooking.Response{
		ID: 10, HirerID: 1, CompanionID: 7,
		StartTime: start, EndTime: start.Add(2 * time.Hour),
		Status:         "PENDING",
		PriceBreakdown: createBooking.PriceBreakdown{BasePrice: 800_000, PlatformFee: 80_000, Total: 880_000},
	}}

	rec := serve(t, uc, validBody, "1")
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, int64(1), uc.got.HirerID)
	assert.True(t, start.Equal(uc.got.StartTime))

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.BookingID)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, int64(880_000), resp.PriceBreakdown.Total)
}

func TestHandle_Errors(t *testing.T) {
	start := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "double booking", body: validBody, err: domain.NewDoubleBooking(7, start, start.Add(time.Hour), 3), wantStatus: http.StatusConflict, wantCode: "DOUBLE_BOOKING"},
		{name: "frequency limit", body: validBody, err: domain.NewFrequencyLimit(domain.LimitDaily, 5, 5), wantStatus: http.StatusTooManyRequests, wantCode: "BOOKING_FREQUENCY_LIMIT"},
		{name: "not available", body: validBody, err: domain.NewCompanionNotAvailable(7, start, start.Add(time.Hour)), wantStatus: http.StatusConflict, wantCode: "COMPANION_NOT_AVAILABLE"},
		{name: "retries exhausted", body: validBody, err: fmt.Errorf("%w: 4 attempts", txmanager.ErrRetriesExhausted), wantStatus: http.StatusServiceUnavailable, wantCode: handlers.CodeTransientFailure},
		{name: "companion missing", body: validBody, err: createBooking.ErrCompanionNotFound, wantStatus: http.StatusNotFound},
		{name: "invalid interval", body: validBody, err: fmt.Errorf("%w: too short", createBooking.ErrInvalidInput), wantStatus: http.StatusBadRequest},
		{name: "internal", body: validBody, err: fmt.Errorf("%w: boom", createBooking.ErrInternal), wantStatus: http.StatusInternalServerError},
		{name: "bad json", body: `{"companionId":`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"companionId":7,"startTime":"a","endTime":"b","price":1}`, wantStatus: http.StatusBadRequest},
		{name: "missing companion", body: `{"startTime":"2026-05-04T19:00:00Z","endTime":"2026-05-04T21:00:00Z"}`, wantStatus: http.StatusBadRequest},
		{name: "bad time", body: `{"companionId":7,"startTime":"19:00","endTime":"21:00"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &fakeUseCase{err: tt.err}, tt.body, "1")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.Equal(t, tt.wantCode, body.Error)
		})
	}
}

func TestHandle_DoubleBookingMeta(t *testing.T) {
	start := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	rec := serve(t, &fakeUseCase{err: domain.NewDoubleBooking(7, start, start.Add(time.Hour), 3)}, validBody, "1")

	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body.Meta["conflictingBookingId"])
	assert.Equal(t, "2026-05-04T12:00:00Z", body.Meta["startTime"])
}

func TestHandle_Unauthorized(t *testing.T) {
	rec := serve(t, &fakeUseCase{}, validBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
