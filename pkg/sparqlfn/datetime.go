package sparqlfn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// isoLayouts are tried in order when parsing a TEXT date/dateTime value;
// SQLite stores xsd:date/xsd:dateTime values as plain ISO 8601 text.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseISO(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("sparqlfn: cannot parse %q as ISO 8601: %w", s, firstErr)
}

// FormatTime implements format_time(v) (spec §4.5): nil passes through,
// INTEGER is treated as Unix epoch seconds and rendered ISO 8601 UTC, TEXT
// passes through unchanged.
func FormatTime(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return time.Unix(val, 0).UTC().Format("2006-01-02T15:04:05Z"), nil
	case int:
		return time.Unix(int64(val), 0).UTC().Format("2006-01-02T15:04:05Z"), nil
	case string:
		return val, nil
	default:
		return nil, fmt.Errorf("format_time: unsupported value %T", v)
	}
}

// Timestamp implements timestamp(v): INTEGER is already epoch seconds and
// passes through; TEXT is parsed as ISO 8601, including any UTC-offset
// correction, into seconds since epoch.
func Timestamp(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case string:
		t, err := parseISO(val)
		if err != nil {
			return nil, err
		}
		return t.Unix(), nil
	default:
		return nil, fmt.Errorf("timestamp: unsupported value %T", v)
	}
}

// TimeSort implements time_sort(v): numeric values scale by 1e6; TEXT values
// parse to (epoch_seconds*1e6 + microseconds) for stable sub-second ordering.
func TimeSort(v any) (any, error) {
	switch val := v.(type) {
	case int64:
		return val * 1_000_000, nil
	case float64:
		return int64(val * 1_000_000), nil
	case string:
		t, err := parseISO(val)
		if err != nil {
			return nil, err
		}
		return t.Unix()*1_000_000 + int64(t.Nanosecond()/1000), nil
	default:
		return nil, fmt.Errorf("time_sort: unsupported value %T", v)
	}
}

var offsetSuffixRE = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)

func parseOffsetSeconds(s string) (seconds int, matched string, ok bool) {
	m := offsetSuffixRE.FindString(s)
	if m == "" {
		return 0, "", false
	}
	if m == "Z" {
		return 0, m, true
	}
	sign := 1
	rest := m
	if rest[0] == '-' {
		sign = -1
	}
	rest = strings.TrimLeft(rest, "+-")
	rest = strings.ReplaceAll(rest, ":", "")
	if len(rest) != 4 {
		return 0, "", false
	}
	h, err1 := strconv.Atoi(rest[:2])
	min, err2 := strconv.Atoi(rest[2:])
	if err1 != nil || err2 != nil {
		return 0, "", false
	}
	return sign * (h*3600 + min*60), m, true
}

// TimezoneDuration implements timezone_duration(v): INTEGER always 0; TEXT
// yields the parsed offset in seconds, or 0 if no offset suffix is present.
func TimezoneDuration(v any) (any, error) {
	switch val := v.(type) {
	case int64, int:
		return int64(0), nil
	case string:
		secs, _, ok := parseOffsetSeconds(val)
		if !ok {
			return int64(0), nil
		}
		return int64(secs), nil
	default:
		return nil, fmt.Errorf("timezone_duration: unsupported value %T", v)
	}
}

// TimezoneString implements timezone_string(v): INTEGER always "";
// TEXT yields the literal "Z" or "[+-]HH:MM"/"[+-]HHMM" suffix if present.
func TimezoneString(v any) (string, error) {
	switch val := v.(type) {
	case int64, int:
		return "", nil
	case string:
		_, matched, ok := parseOffsetSeconds(val)
		if !ok {
			return "", nil
		}
		return matched, nil
	default:
		return "", fmt.Errorf("timezone_string: unsupported value %T", v)
	}
}

// Timezone implements timezone(v): INTEGER always "PT0S"; TEXT yields an
// xsd:dayTimeDuration rendering of the offset ("PT5H30M", "-PT2H", ...).
func Timezone(v any) (string, error) {
	switch val := v.(type) {
	case int64, int:
		return "PT0S", nil
	case string:
		secs, _, ok := parseOffsetSeconds(val)
		if !ok || secs == 0 {
			return "PT0S", nil
		}
		sign := ""
		abs := secs
		if abs < 0 {
			sign = "-"
			abs = -abs
		}
		h := abs / 3600
		m := (abs % 3600) / 60
		s := abs % 60
		var b strings.Builder
		b.WriteString(sign)
		b.WriteString("PT")
		if h > 0 {
			fmt.Fprintf(&b, "%dH", h)
		}
		if m > 0 {
			fmt.Fprintf(&b, "%dM", m)
		}
		if s > 0 || (h == 0 && m == 0) {
			fmt.Fprintf(&b, "%dS", s)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("timezone: unsupported value %T", v)
	}
}
