// Package analyzer measures generated conversation text against completeness and length targets.
package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Terminal is the class of an utterance's final punctuation.
type Terminal string

const (
	TerminalPeriod      Terminal = "period"
	TerminalExclamation Terminal = "exclamation"
	TerminalQuestion    Terminal = "question"
	TerminalNone        Terminal = "none"
)

// Analysis is the per-utterance measurement.
type Analysis struct {
	Words     int
	Chars     int
	Terminal  Terminal
	Complete  bool
	CutOff    bool
	Narration bool
}

// closers may follow the terminal mark, as in `he said "go."`.
const closers = "\"'”’)]»"

// orphanWords cannot end a finished sentence in English.
var orphanWords = map[string]struct{}{
	"and": {}, "but": {}, "or": {}, "nor": {}, "the": {}, "a": {}, "an": {},
	"so": {}, "because": {}, "with": {}, "to": {}, "of": {}, "for": {},
	"that": {}, "which": {}, "if": {}, "when": {}, "while": {}, "our": {},
	"my": {}, "their": {}, "is": {}, "are": {}, "in": {}, "on": {}, "at": {},
}

var (
	narrationPattern = regexp.MustCompile(`\*[^*\n]+\*`)
	clauseBreak      = regexp.MustCompile(`[.!?;:,—–]`)
)

// maxDanglingClause is the longest unpunctuated final clause that is not treated as cut off.
const maxDanglingClause = 3

// Analyze measures a single utterance.
func Analyze(text string) Analysis {
	trimmed := strings.TrimSpace(text)
	a := Analysis{
		Words:     len(strings.Fields(trimmed)),
		Chars:     utf8.RuneCountInString(trimmed),
		Terminal:  TerminalNone,
		Narration: narrationPattern.MatchString(trimmed),
	}
	if trimmed == "" {
		a.CutOff = true
		return a
	}

	tail := strings.TrimRight(trimmed, closers)
	switch {
	case strings.HasSuffix(tail, "...") || strings.HasSuffix(tail, "…"):
		// trailing off mid-thought
		a.CutOff = true
	case strings.HasSuffix(tail, "."):
		a.Terminal = TerminalPeriod
	case strings.HasSuffix(tail, "!"):
		a.Terminal = TerminalExclamation
	case strings.HasSuffix(tail, "?"):
		a.Terminal = TerminalQuestion
	case strings.HasSuffix(tail, ","), strings.HasSuffix(tail, ";"), strings.HasSuffix(tail, ":"):
		a.CutOff = true
	default:
		if endsOnOrphan(tail) || finalClauseTokens(tail) > maxDanglingClause {
			a.CutOff = true
		}
	}

	a.Complete = a.Terminal != TerminalNone && !a.CutOff
	return a
}

func endsOnOrphan(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.Trim(fields[len(fields)-1], closers+"-"))
	_, ok := orphanWords[last]
	return ok
}

func finalClauseTokens(text string) int {
	parts := clauseBreak.Split(text, -1)
	return len(strings.Fields(parts[len(parts)-1]))
}
