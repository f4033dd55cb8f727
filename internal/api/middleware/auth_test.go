package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

func TestAuth(t *testing.T) {
	var (
		gotActor domain.Actor
		called   bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotActor, _ = GetActor(r.Context())
	})

	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
		wantActor  domain.Actor
	}{
		{name: "hirer", userID: "12", wantStatus: http.StatusOK, wantActor: domain.Actor{ID: 12}},
		{name: "admin", userID: "900", role: "Admin", wantStatus: http.StatusOK, wantActor: domain.Actor{ID: 900, Role: domain.RoleAdmin}},
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "garbage", userID: "abc", wantStatus: http.StatusUnauthorized},
		{name: "negative", userID: "-1", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called, gotActor = false, domain.Actor{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(HeaderUserRole, tt.role)
			}
			rec := httptest.NewRecorder()

			Auth(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
			assert.Equal(t, tt.wantActor, gotActor)
		})
	}
}
