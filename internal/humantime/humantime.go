package humantime

import (
	"fmt"
	"time"
)

// Duration renders d in the largest unit that keeps the number readable.
func Duration(d time.Duration) string {
	switch {
	case d < time.Minute*2:
		return plural(d.Seconds(), "second")
	case d < time.Hour*2:
		return plural(d.Minutes(), "minute")
	case d < time.Hour*48:
		return plural(d.Hours(), "hour")
	}
	return plural(d.Hours()/24, "day")
}

// Since returns a human-friendly string for the time elapsed since t.
func Since(t time.Time) string {
	return Duration(time.Since(t))
}

func plural(n float64, unit string) string {
	rounded := int64(n + 0.5)
	if rounded == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", rounded, unit)
}
