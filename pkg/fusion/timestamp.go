package fusion

import (
	"strconv"
	"strings"
	"time"

	"github.com/sentinel-surveillance/core/pkg/apperr"
)

// ParseTimestamp accepts either an ISO-8601 string or a numeric epoch-seconds
// value (as a string, since inputs arrive as JSON which may encode either
// shape as text or number upstream). ISO-8601 is attempted first; on
// failure a numeric parse is attempted; if both fail the result is an
// apperr.Validation-kind "InvalidTimestamp" error, never a silent
// coercion (§4.1 Failure semantics).
func ParseTimestamp(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, apperr.NewValidation("InvalidTimestamp: empty timestamp")
	}

	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return t.UTC(), nil
	}

	if seconds, err := strconv.ParseFloat(trimmed, 64); err == nil {
		whole := int64(seconds)
		frac := seconds - float64(whole)
		return time.Unix(whole, int64(frac*1e9)).UTC(), nil
	}

	return time.Time{}, apperr.NewValidation("InvalidTimestamp: unparseable timestamp").WithDetails(trimmed)
}

// ParseTimestampValue handles a decoded JSON value that may already be a
// float64 (numeric epoch seconds, the shape encoding/json produces for a
// bare JSON number) or a string (ISO-8601 or stringified epoch seconds).
func ParseTimestampValue(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, apperr.NewValidation("InvalidTimestamp: missing timestamp")
	case float64:
		whole := int64(val)
		frac := val - float64(whole)
		return time.Unix(whole, int64(frac*1e9)).UTC(), nil
	case string:
		return ParseTimestamp(val)
	default:
		return time.Time{}, apperr.NewValidation("InvalidTimestamp: unsupported timestamp type")
	}
}
