// Package ledger keeps the append-only record of every check a run performs.
package ledger

import (
	"strconv"
	"strings"
	"time"
)

// Outcome classifies a check.
type Outcome string

const (
	OutcomePass  Outcome = "pass"
	OutcomeFail  Outcome = "fail"
	OutcomeError Outcome = "error"
)

const (
	// MethodAssert marks records that come from a contract assertion rather than an HTTP call.
	MethodAssert = "ASSERT"
	// MethodPrereq marks a step that could not run because something it depends on failed.
	MethodPrereq = "PREREQ"
)

// CheckRecord is a single evaluated check.
type CheckRecord struct {
	Index    int
	Scenario string
	Name     string
	Method   string
	Path     string
	// Expected holds every acceptable status; the first entry is the primary expectation.
	Expected       []int
	ObservedStatus int
	Outcome        Outcome
	Elapsed        time.Duration
	Timed          bool
	Error          string
}

// Passed reports whether the record counts as a pass.
func (r CheckRecord) Passed() bool {
	return r.Outcome == OutcomePass
}

// Synthetic reports whether the record has no HTTP exchange behind it.
func (r CheckRecord) Synthetic() bool {
	return r.Method == MethodAssert || r.Method == MethodPrereq
}

// ExpectedLabel renders the acceptable statuses as "401|403".
func (r CheckRecord) ExpectedLabel() string {
	if len(r.Expected) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(r.Expected))
	for _, s := range r.Expected {
		parts = append(parts, strconv.Itoa(s))
	}
	return strings.Join(parts, "|")
}

// ObservedLabel renders the observed status, or "-" when no response arrived.
func (r CheckRecord) ObservedLabel() string {
	if r.ObservedStatus == 0 {
		return "-"
	}
	return strconv.Itoa(r.ObservedStatus)
}

func (r CheckRecord) glyph() string {
	switch r.Outcome {
	case OutcomePass:
		return "✅"
	case OutcomeError:
		return "💥"
	default:
		return "❌"
	}
}
