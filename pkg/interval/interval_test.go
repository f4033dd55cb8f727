package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		aStart, aEnd time.Time
		bStart, bEnd time.Time
		want         bool
	}{
		{"identical", at(19, 0), at(21, 0), at(19, 0), at(21, 0), true},
		{"partial left", at(18, 0), at(19, 30), at(19, 0), at(21, 0), true},
		{"contained", at(19, 30), at(20, 0), at(19, 0), at(21, 0), true},
		{"touching end", at(17, 0), at(19, 0), at(19, 0), at(21, 0), false},
		{"touching start", at(21, 0), at(22, 0), at(19, 0), at(21, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(19, 0), at(21, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd), "overlap must be symmetric")
		})
	}
}

func TestDurationHours(t *testing.T) {
	assert.InDelta(t, 2.0, DurationHours(at(19, 0), at(21, 0)), 1e-9)
	assert.InDelta(t, 0.5, DurationHours(at(19, 0), at(19, 30)), 1e-9)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(at(18, 0), at(22, 0), at(19, 0), at(21, 0)))
	assert.True(t, Contains(at(18, 0), at(22, 0), at(18, 0), at(22, 0)))
	assert.False(t, Contains(at(18, 0), at(22, 0), at(17, 59), at(21, 0)))
}

func TestSplitByDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	start := time.Date(2026, 3, 2, 22, 0, 0, 0, loc)
	end := time.Date(2026, 3, 3, 2, 0, 0, 0, loc)

	parts := SplitByDay(start.UTC(), end.UTC(), loc)
	require.Len(t, parts, 2)
	assert.True(t, parts[0].Start.Equal(start))
	assert.True(t, parts[0].End.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, loc)))
	assert.True(t, parts[1].End.Equal(end))
	assert.Equal(t, time.Tuesday, parts[1].Start.Weekday())

	assert.Len(t, SplitByDay(at(19, 0), at(21, 0), time.UTC), 1)
	assert.Nil(t, SplitByDay(at(21, 0), at(19, 0), time.UTC))
}
