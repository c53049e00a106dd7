// Package env reads typed settings from the process environment.
package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// String returns the value of key, or defaultValue when the variable is unset or blank.
func String(key string, defaultValue string) string {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	return v
}

// Bool parses key as a boolean. Unparseable values fall back to defaultValue.
func Bool(key string, defaultValue bool) bool {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

// Int parses key as a base-10 integer. Unparseable values fall back to defaultValue.
func Int(key string, defaultValue int) int {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

// Float64 parses key as a float. Unparseable values fall back to defaultValue.
func Float64(key string, defaultValue float64) float64 {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// Duration accepts either a Go duration string ("90s", "2m") or a bare number of seconds.
func Duration(key string, defaultValue time.Duration) time.Duration {
	v, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}
