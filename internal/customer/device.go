package customer

import (
	"github.com/mssola/useragent"

	"personadesk/internal/identity"
)

// deviceLabel derives a human-readable device name ("Mac OS X", "Windows 10")
// from the most recent log entry carrying a user agent. Empty when the log
// has no usable agent string.
func deviceLabel(entries []identity.LogEntry) string {
	for i := len(entries) - 1; i >= 0; i-- {
		raw, ok := entries[i].Metadata["userAgent"].(string)
		if !ok || raw == "" {
			continue
		}
		ua := useragent.New(raw)
		if info := ua.OSInfo(); info.Name != "" {
			return info.Name
		}
		if platform := ua.Platform(); platform != "" {
			return platform
		}
	}
	return ""
}
