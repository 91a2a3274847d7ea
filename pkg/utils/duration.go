package utils

import "time"

// ToDuration converts whole seconds from configuration into a time.Duration.
func ToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// ToDurationMs converts milliseconds from configuration into a time.Duration.
// Negative values are kept negative so callers can use them as "no timeout".
func ToDurationMs(millis int) time.Duration {
	return time.Duration(millis) * time.Millisecond
}
