package env

import (
	"fmt"
	"time"

	"runapp/internal/logger"
)

const timestampLayout = "02-01-2006 15:04:05"

// FormatDuration renders d as "Xm Ys Zms", leaving out the minutes when there are none.
func FormatDuration(d time.Duration) string {
	minutes := int64(d / time.Minute)
	seconds := int64(d%time.Minute) / int64(time.Second)
	millis := int64(d%time.Second) / int64(time.Millisecond)
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds %dms", minutes, seconds, millis)
	}
	return fmt.Sprintf("%ds %dms", seconds, millis)
}

// Summary prints when the run ended and how long it took.
func Summary(start, end time.Time) {
	rule := "--------------------------------------------------"
	logger.Success("\n%s\n", rule)
	logger.Success("   Application finished at: %s\n", end.Format(timestampLayout))
	logger.Success("   Total execution time: %s\n", FormatDuration(end.Sub(start)))
	logger.Success("%s\n", rule)
}
