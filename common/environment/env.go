// Package environment reads FisherMate settings from environment variables.
//
// Every helper returns a fallback instead of failing when a variable is
// unset or unparsable; only RequiredString reports an error, and it leaves
// the decision to exit to the caller in package main.
package environment

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// String returns the raw value of name and whether it was present at all.
func String(name string) (string, bool) {
	return os.LookupEnv(name)
}

// StringOr returns the value of name, or def when it is unset or empty.
func StringOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

// RequiredString returns the value of name or an error naming the variable.
func RequiredString(name string) (string, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return "", fmt.Errorf("required environment variable %q is not set", name)
	}
	return v, nil
}

// parseOr applies parse to the value of name, returning def when the
// variable is empty or parse fails.
func parseOr[T any](name string, def T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

// BoolOr parses name with strconv.ParseBool.
func BoolOr(name string, def bool) bool {
	return parseOr(name, def, strconv.ParseBool)
}

// IntOr parses name as a base-10 integer.
func IntOr(name string, def int) int {
	return parseOr(name, def, strconv.Atoi)
}

// FloatOr parses name as a 64-bit float, e.g. a default coordinate.
func FloatOr(name string, def float64) float64 {
	return parseOr(name, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// DurationOr parses name with time.ParseDuration ("90s", "24h", "168h").
func DurationOr(name string, def time.Duration) time.Duration {
	return parseOr(name, def, time.ParseDuration)
}

// StringSliceOr splits name on commas, dropping blank elements. def is
// returned when nothing non-blank remains.
func StringSliceOr(name string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(name), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
