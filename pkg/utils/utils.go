package utils

import (
	"fmt"
	"time"
)

// FormatRoundedUnit renders a second count in its largest whole unit: "45s", "3m", "2h".
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// FormatSince is FormatRoundedUnit applied to the time elapsed between since and now.
func FormatSince(since, now time.Time) string {
	return FormatRoundedUnit(int64(now.Sub(since) / time.Second))
}
