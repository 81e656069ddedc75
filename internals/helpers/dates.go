// file: internals/helpers/dates.go
package helper

import (
	"strings"
	"time"
)

// ParseDate parses the wire date shape "2006-01-02" (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// ParseWindow resolves the inclusive [start, end] query window, defaulting to
// the last defaultDays days ending on now's calendar day. Callers pass now in
// the tenant's timezone; bounds come back as the UTC-midnight values the date
// columns store.
func ParseWindow(startStr, endStr string, now time.Time, defaultDays int) (time.Time, time.Time, error) {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -defaultDays)

	if strings.TrimSpace(startStr) != "" {
		d, err := ParseDate(startStr)
		if err != nil {
			return start, end, NewApiErrorWithDetail(CodeInvalidInput,
				"invalid start date", map[string]any{"fields": []string{"start"}})
		}
		start = d
	}
	if strings.TrimSpace(endStr) != "" {
		d, err := ParseDate(endStr)
		if err != nil {
			return start, end, NewApiErrorWithDetail(CodeInvalidInput,
				"invalid end date", map[string]any{"fields": []string{"end"}})
		}
		end = d
	}
	if end.Before(start) {
		return start, end, NewApiErrorWithDetail(CodeInvalidInput,
			"window end before start", map[string]any{"fields": []string{"start", "end"}})
	}
	return start, end, nil
}
