package astro

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"
)

// ErrInvalidTimeFormat is returned when a local civil time is not YYYY-MM-DDTHH:mm.
var ErrInvalidTimeFormat = errors.New("invalid local time format")

// LocalTimeLayout is the accepted layout for local civil times.
const LocalTimeLayout = "2006-01-02T15:04"

var localTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}$`)

// OffsetHoursFromLongitude approximates a UTC offset as one hour per 15° of
// longitude. Real timezone boundaries and DST are not consulted.
func OffsetHoursFromLongitude(lonDeg float64) int {
	return int(math.Round(lonDeg / 15))
}

// ToUTC interprets local as a wall-clock time at UTC+OffsetHoursFromLongitude
// and returns the corresponding UTC instant.
func ToUTC(local string, refLonDeg float64) (time.Time, error) {
	if !localTimePattern.MatchString(local) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, local)
	}

	offset := OffsetHoursFromLongitude(refLonDeg)
	zone := time.FixedZone(fmt.Sprintf("UTC%+d", offset), offset*3600)

	t, err := time.ParseInLocation(LocalTimeLayout, local, zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimeFormat, local, err)
	}
	return t.UTC(), nil
}
