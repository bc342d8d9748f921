package rentalsvc

import "time"

// DateLayout is the wire format for all calendar dates.
const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DayCount is the single day-count function shared by pricing, occupancy and
// display. Ranges are inclusive calendar days at day granularity; a
// zero-length range (start == end) counts as one day.
func DayCount(start, end time.Time) int {
	days := int(end.Sub(start) / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

// Overlaps reports whether inclusive day ranges [aStart,aEnd] and
// [bStart,bEnd] share at least one day: aStart <= bEnd && bStart <= aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
