package graph

// coerce.go converts row strings into typed node properties.
//
// Conversions never fail a row: unparsable input falls back to a caller
// supplied default, matching how spreadsheets in the wild carry stray text
// in numeric columns.

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// dateTimeLayout is the stored form of evaluation and activity dates.
const dateTimeLayout = "2006-01-02T15:04:05"

// isoDateTimeLayouts are the accepted ISO-8601 date-time inputs. An offset
// is accepted and discarded; dates are stored as local date-times.
var isoDateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
}

// toInt parses a base-10 integer, returning def on failure.
func toInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// toFloat parses a floating point number, returning def on failure.
func toFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}

// toBool is true only for "true" in any case. Anything else, including
// yes/1, is false.
func toBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// toDateTime parses an ISO-8601 date-time. The zero time and false are
// returned for anything else, including bare dates.
func toDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Keep the wall clock, drop the zone.
			return time.Date(t.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), true
		}
	}
	return time.Time{}, false
}

func propString(p Props, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

func propFloat(p Props, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		return toFloat(v, 0)
	default:
		return 0
	}
}

// propInt reads integers that may have been decoded from JSON as floats.
func propInt(p Props, key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return int(propFloat(p, key))
	}
}

func propTime(p Props, key string) *time.Time {
	s := propString(p, key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
