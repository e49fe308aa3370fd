package race

import (
	"fmt"
	"time"
)

// FormatClock renders a duration as the MM:SS.ss race clock
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(10 * time.Millisecond)
	minutes := int(d / time.Minute)
	seconds := (d % time.Minute).Seconds()
	return fmt.Sprintf("%02d:%05.2f", minutes, seconds)
}
