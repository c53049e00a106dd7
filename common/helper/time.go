package helper

import (
	"fmt"
	"time"
)

// GetTimeString returns a sortable timestamp with a nanosecond tail, used in run identifiers.
func GetTimeString() string {
	now := time.Now()
	return fmt.Sprintf("%s%d", now.Format("20060102150405"), now.UnixNano()%1e9)
}

// CalcElapsedTime return the elapsed time in milliseconds (ms)
func CalcElapsedTime(start time.Time) int64 {
	elapsed := time.Since(start)
	ms := elapsed.Milliseconds()
	if ms == 0 && elapsed > 0 {
		return 1
	}
	return ms
}

// FormatElapsed renders a duration with millisecond precision.
func FormatElapsed(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
