package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Date layouts tried in order. Four-digit years only; ambiguous day/month
// strings resolve to the first matching layout (US order before EU).
var timeLayouts = []string{
	time.RFC3339Nano, time.RFC3339,
	"2006-01-02", "2006/01/02", "2006.01.02",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04:05.000",
	"01/02/2006", "1/2/2006", "02/01/2006", "01-02-2006", "02.01.2006",
	"1/2/2006 15:04", "1/2/2006 15:04:05",
	"Jan 2, 2006", "2 Jan 2006", "January 2, 2006", "02-Jan-2006",
}

// ParseNumber parses an int or float literal. NaN is rejected; callers treat
// it as a missing marker instead.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseTime tries each known layout.
func ParseTime(s string) (time.Time, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBool accepts true/false in any letter case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// AsNumber converts a cell to a float where that is meaningful.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case Number:
		return v.Num, !math.IsNaN(v.Num)
	case Text:
		return ParseNumber(v.Str)
	case Bool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsTime converts a cell to a timestamp where that is meaningful.
func (v Value) AsTime() (time.Time, bool) {
	switch v.Kind {
	case Time:
		return v.Time, true
	case Text:
		return ParseTime(v.Str)
	}
	return time.Time{}, false
}
