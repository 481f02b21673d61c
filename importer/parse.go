package importer

import (
	"strings"
	"time"

	"dealerhub/internal/timeutil"
)

// splitList splits a delimited cell into a set: tokens are trimmed, empty
// tokens and repeats are dropped, first-seen order is kept. It never fails
// and never returns nil.
func splitList(raw, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultListDelimiter
	}
	parts := strings.Split(raw, delimiter)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func parseDate(value string) (time.Time, error) {
	return timeutil.ParseDate(value)
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}
