package util

import (
	"strings"
	"time"
)

func NowISO(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FileTimestamp formats a time the way receipt filenames expect,
// e.g. 20250131_154502.
func FileTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// FormatDate renders dd-mm-yyyy for receipt documents.
func FormatDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// SanitizeFilePart keeps letters and digits, replacing everything else
// with underscores, capped at 30 characters.
func SanitizeFilePart(s string) string {
	if strings.TrimSpace(s) == "" {
		s = "Unknown"
	}
	b := strings.Builder{}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 30 {
		out = out[:30]
	}
	return out
}
