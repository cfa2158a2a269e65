package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatDateTime is the schema format name of lenient datetimes.
const FormatDateTime = "datetime"

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
const epochMillisThreshold = 2e10

var (
	zonedLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

var errDateTime = errors.New("invalid datetime format")

// ParseDateTime reads an ISO 8601 datetime (T or space separator, optional
// fraction, optional offset), a date, or Unix epoch seconds. Epoch values above
// 2e10 are taken as milliseconds. naive reports a value without an offset; it is
// returned in UTC.
func ParseDateTime(v any) (t time.Time, naive bool, err error) {
	switch val := v.(type) {
	case string:
		return parseDateTimeString(strings.TrimSpace(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, false, errDateTime
		}
		return fromEpoch(f)
	case float64:
		return fromEpoch(val)
	case int64:
		return fromEpoch(float64(val))
	case int:
		return fromEpoch(float64(val))
	default:
		return time.Time{}, false, fmt.Errorf("%w: unsupported type %T", errDateTime, v)
	}
}

func parseDateTimeString(s string) (time.Time, bool, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true, nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}
	return time.Time{}, false, errDateTime
}

func fromEpoch(f float64) (time.Time, bool, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false, errDateTime
	}
	if math.Abs(f) > epochMillisThreshold {
		f /= 1000
	}
	sec, frac := math.Modf(f)
	if math.Abs(sec) > 1e13 {
		return time.Time{}, false, errDateTime
	}
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), false, nil
}

// validateDateTimeFormat is the schema format check. Values of other types are
// left to the type keyword.
func validateDateTimeFormat(v any) error {
	switch v.(type) {
	case string, json.Number, float64:
		_, _, err := ParseDateTime(v)
		return err
	default:
		return nil
	}
}
