package profileservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CompanionBooking/pkg/logger"
)

func TestGetCompanion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/companions/7":
			_, _ = w.Write([]byte(`{"id":7,"user_id":70,"hourly_rate":450000,"currency":"VND","timezone":"Asia/Ho_Chi_Minh","is_active":true}`))
		case "/internal/companions/8":
			_, _ = w.Write([]byte(`{"id":8,"is_active":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())

	companion, err := client.GetCompanion(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(450000), companion.HourlyRate)
	assert.Equal(t, "Asia/Ho_Chi_Minh", companion.Timezone)

	_, err = client.GetCompanion(context.Background(), 8)
	assert.ErrorIs(t, err, ErrCompanionNotFound)

	_, err = client.GetCompanion(context.Background(), 9)
	assert.ErrorIs(t, err, ErrCompanionNotFound)
}

func TestGetCompanion_CircuitOpensAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())

	for i := 0; i < 3; i++ {
		_, err := client.GetCompanion(context.Background(), 1)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	}

	_, err := client.GetCompanion(context.Background(), 1)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
