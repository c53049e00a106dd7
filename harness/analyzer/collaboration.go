package analyzer

import (
	"regexp"
	"strings"
)

// Utterance is one speaker's message inside a round.
type Utterance struct {
	Speaker string
	Text    string
}

// Collaboration summarises how much participants engage with each other.
type Collaboration struct {
	Messages    int
	Mentions    int
	MentionRate float64
	BuildOns    int
	BuildOnRate float64
	Exchanges   int
}

var buildOnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbuild(ing)? on\b`),
	regexp.MustCompile(`(?i)\bexpand(ing)? on\b`),
	regexp.MustCompile(`(?i)\badd(ing)? to\b`),
	regexp.MustCompile(`(?i)\bI agree with\b`),
	regexp.MustCompile(`(?i)\bas \w+ (mentioned|said|suggested|pointed out)\b`),
	regexp.MustCompile(`(?i)\blike \w+ said\b`),
	regexp.MustCompile(`(?i)\bfollowing up on\b`),
	regexp.MustCompile(`(?i)\b(good|great|fair|excellent) point\b`),
	regexp.MustCompile(`(?i)\byou'?re right\b`),
}

// honorifics are skipped when deriving the short name people use for each other.
var honorifics = map[string]struct{}{
	"dr.": {}, "dr": {}, "prof.": {}, "prof": {}, "mr.": {}, "ms.": {}, "mrs.": {},
	"commander": {}, "director": {}, "captain": {}, "the": {},
}

// AnalyzeCollaboration measures mentions, building-on phrases and question-answer exchanges.
// Each round is evaluated with its own participant list; the observer's own message counts as
// a participant but not as a message.
func AnalyzeCollaboration(rounds [][]Utterance, observer string) Collaboration {
	var c Collaboration
	for _, round := range rounds {
		participants := map[string][]string{}
		for _, u := range round {
			participants[u.Speaker] = nameForms(u.Speaker)
		}

		for i, u := range round {
			if u.Speaker == observer {
				continue
			}
			c.Messages++
			if mentionsOther(u, participants) {
				c.Mentions++
			}
			if isBuildOn(u.Text) {
				c.BuildOns++
			}
			if strings.Contains(u.Text, "?") && answered(round, i, observer) {
				c.Exchanges++
			}
		}
	}

	if c.Messages > 0 {
		c.MentionRate = float64(c.Mentions) / float64(c.Messages)
		c.BuildOnRate = float64(c.BuildOns) / float64(c.Messages)
	}
	return c
}

func nameForms(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	forms := []string{strings.ToLower(name)}
	for _, f := range strings.Fields(name) {
		lf := strings.ToLower(f)
		if _, skip := honorifics[lf]; skip || len(lf) < 3 {
			continue
		}
		forms = append(forms, lf)
		break
	}
	return forms
}

func mentionsOther(u Utterance, participants map[string][]string) bool {
	text := strings.ToLower(u.Text)
	for speaker, forms := range participants {
		if speaker == u.Speaker {
			continue
		}
		for _, form := range forms {
			if containsWord(text, form) {
				return true
			}
		}
	}
	return false
}

func containsWord(text, word string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		if boundary(text, idx-1) && boundary(text, end) {
			return true
		}
		start = idx + 1
	}
}

func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := text[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_')
}

func isBuildOn(text string) bool {
	for _, p := range buildOnPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// answered reports whether a later message in the round comes from a different agent.
func answered(round []Utterance, i int, observer string) bool {
	for _, next := range round[i+1:] {
		if next.Speaker != round[i].Speaker && next.Speaker != observer {
			return true
		}
	}
	return false
}
