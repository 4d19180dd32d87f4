package http

import (
	"fmt"
	"strings"
	"time"
)

// formatTimestamp renders a unix expiry for humans. The ledger's zero
// sentinel covers both never-subscribed and cancelled wallets, so it gets
// a single label.
func formatTimestamp(ts uint64) string {
	if ts == 0 {
		return "never subscribed"
	}
	return time.Unix(int64(ts), 0).UTC().Format("2006-01-02 15:04:05 UTC")
}

// formatDuration renders remaining seconds as days/hours/minutes.
func formatDuration(seconds uint64) string {
	if seconds == 0 {
		return "expired"
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}

	if len(parts) == 0 {
		return "less than a minute"
	}
	return strings.Join(parts, ", ")
}

func plural(n uint64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
