// Package validator checks raw caller input before any request is built.
//
// Every function is pure: it either returns the canonical form of the value
// or a *ValidationError naming the parameter and what it accepts.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a rejected input value.
type ValidationError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(param, value, format string, args ...interface{}) error {
	return &ValidationError{Param: param, Value: value, Reason: fmt.Sprintf(format, args...)}
}

var (
	apiKeyPattern = regexp.MustCompile(`^[0-9A-Z]{32}$`)
	serialPattern = regexp.MustCompile(`^([0-9A-F]{2})([0-9A-F]{2})([0-9A-F]{2})([0-9A-F]{2})-([0-9A-F]{2})$`)
)

// APIKey uppercases raw and checks it is 32 characters of [0-9A-Z].
func APIKey(raw string) (string, error) {
	key := strings.ToUpper(raw)
	if !apiKeyPattern.MatchString(key) {
		// the key itself is never echoed back
		return "", invalid("api_key", "<redacted>", "must be 32 characters of 0-9 and A-Z")
	}
	return key, nil
}

// SiteID accepts a non-empty string of decimal digits and returns it unchanged.
func SiteID(raw string) (string, error) {
	if raw == "" {
		return "", invalid("siteId", raw, "must not be empty")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return "", invalid("siteId", raw, "must contain decimal digits only")
		}
	}
	return raw, nil
}

// SiteIDs validates every id and joins them with commas. The first invalid
// id aborts the whole list.
func SiteIDs(raw []string) (string, error) {
	if len(raw) == 0 {
		return "", invalid("siteIds", "", "at least one site id is required")
	}
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		id, err := SiteID(r)
		if err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	return strings.Join(ids, ","), nil
}

// Serial checks an equipment serial of the form XXXXXXXX-CC where CC is the
// sum of the four leading hex bytes modulo 256. The result is uppercased.
func Serial(raw string) (string, error) {
	serial := strings.ToUpper(raw)
	m := serialPattern.FindStringSubmatch(serial)
	if m == nil {
		return "", invalid("serialNumber", raw, "must match XXXXXXXX-XX (hex)")
	}

	var sum uint64
	for _, b := range m[1:5] {
		v, _ := strconv.ParseUint(b, 16, 8)
		sum += v
	}
	check, _ := strconv.ParseUint(m[5], 16, 8)
	if sum%256 != check {
		return "", invalid("serialNumber", raw, "checksum mismatch: want %02X", sum%256)
	}
	return serial, nil
}

// Serials validates a list of serials, failing on the first bad one.
func Serials(raw []string) (string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		s, err := Serial(r)
		if err != nil {
			return "", err
		}
		out = append(out, s)
	}
	return strings.Join(out, ","), nil
}

// DateOnly rejects any value carrying a time-of-day component.
func DateOnly(param string, t time.Time) (time.Time, error) {
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return time.Time{}, invalid(param, t.Format("2006-01-02 15:04:05.000"), "must be a date without time of day")
	}
	return t, nil
}

// OneOf returns the first entry of allowed equal to raw.
func OneOf(param, raw string, allowed []string) (string, error) {
	for _, a := range allowed {
		if raw == a {
			return a, nil
		}
	}
	return "", invalid(param, raw, "must be one of: %s", strings.Join(allowed, ", "))
}

// ListOf validates each element with OneOf and joins them with commas.
func ListOf(param string, raw []string, allowed []string) (string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		v, err := OneOf(param, r, allowed)
		if err != nil {
			return "", err
		}
		out = append(out, v)
	}
	return strings.Join(out, ","), nil
}

// IntRange checks min <= v <= max.
func IntRange(param string, v, min, max int) (int, error) {
	if v < min || v > max {
		return 0, invalid(param, strconv.Itoa(v), "must be between %d and %d", min, max)
	}
	return v, nil
}
