// Package interval contains pure helpers for half-open time intervals [start, end).
package interval

import "time"

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DurationHours returns end-start in hours. Callers guarantee end > start.
func DurationHours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// Contains reports whether [inner) lies fully inside [outer).
func Contains(outerStart, outerEnd, innerStart, innerEnd time.Time) bool {
	return !innerStart.Before(outerStart) && !innerEnd.After(outerEnd)
}

// Range is a half-open interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// SplitByDay cuts [start, end) at every local midnight of loc.
// Each returned piece lies within a single calendar day in loc.
func SplitByDay(start, end time.Time, loc *time.Location) []Range {
	if !start.Before(end) {
		return nil
	}
	start = start.In(loc)
	end = end.In(loc)

	var out []Range
	cur := start
	for cur.Before(end) {
		y, m, d := cur.Date()
		nextMidnight := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
		pieceEnd := end
		if nextMidnight.Before(end) {
			pieceEnd = nextMidnight
		}
		out = append(out, Range{Start: cur, End: pieceEnd})
		cur = pieceEnd
	}
	return out
}
