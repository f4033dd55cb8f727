package get_companion_bookings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CompanionBooking/internal/domain"
)

func TestToServiceRequest(t *testing.T) {
	actor := domain.Actor{ID: 7, Role: domain.RoleCompanion}

	t.Run("defaults", func(t *testing.T) {
		req, err := ToServiceRequest(7, actor, "", "", "", "")
		require.NoError(t, err)
		assert.Equal(t, int64(7), req.CompanionID)
		assert.Equal(t, actor, req.Actor)
		assert.Nil(t, req.From)
		assert.Nil(t, req.To)
		assert.Nil(t, req.Status)
		assert.False(t, req.IncludeInactive)
	})

	t.Run("all params", func(t *testing.T) {
		req, err := ToServiceRequest(7, actor, "2026-03-01T00:00:00Z", "2026-03-02T00:00:00Z", "confirmed", "true")
		require.NoError(t, err)
		require.NotNil(t, req.From)
		require.NotNil(t, req.To)
		assert.True(t, req.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
		assert.True(t, req.To.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
		require.NotNil(t, req.Status)
		assert.Equal(t, "confirmed", *req.Status)
		assert.True(t, req.IncludeInactive)
	})

	for name, args := range map[string][2]string{
		"bad from":            {"from", "2026-03-01"},
		"bad to":              {"to", "tomorrow"},
		"bad includeInactive": {"includeInactive", "maybe"},
	} {
		t.Run(name, func(t *testing.T) {
			var from, to, inc string
			switch args[0] {
			case "from":
				from = args[1]
			case "to":
				to = args[1]
			default:
				inc = args[1]
			}
			_, err := ToServiceRequest(7, actor, from, to, "", inc)
			assert.Error(t, err)
		})
	}
}
