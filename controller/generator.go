package controller

import (
	"fmt"
	"strings"

	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/model"
)

// Canned utterances stay inside this word band and always end on a full stop.
const (
	minUtteranceWords = 120
	maxUtteranceWords = 140
)

const observerAgentID = "observer"

var moods = map[string]string{
	"scientist":  "focused",
	"leader":     "determined",
	"skeptic":    "cautious",
	"optimist":   "excited",
	"artist":     "inspired",
	"researcher": "curious",
	"introvert":  "thoughtful",
	"mediator":   "calm",
	"adventurer": "energetic",
}

var fillers = []string{
	"I would rather test one small idea today than debate ten large ones all week.",
	"We should write down what we already know before we guess at what we do not.",
	"The evidence so far is thin, so every conclusion we draw needs a clear way to check it.",
	"If we split the work by strengths, nobody has to carry the whole problem alone.",
	"I keep coming back to the timeline, because it shapes every other decision we make.",
	"A simple plan that everyone understands beats a clever plan that only one of us can follow.",
	"Let us agree on what success looks like before we start measuring anything.",
	"There is a real chance we are wrong about the basics, and that is fine if we find out early.",
	"I want to hear the strongest objection to this approach before we commit to it.",
	"We have enough information to take a careful first step, but not enough to take a leap.",
	"The people affected by our choice deserve a clear explanation of why we made it.",
	"Each of us sees a different part of the picture, which is exactly why this group works.",
	"My instinct says we should move now, yet my experience says we should double check first.",
	"Small mistakes compound quickly in situations like this, so we should review as we go.",
	"Whatever we decide, we should leave ourselves a way to change course without losing ground.",
	"I am more optimistic than I was this morning, mostly because of how well we are listening.",
	"We should record every assumption so that tomorrow we can see which ones held up.",
	"The hardest part will be staying patient while the first results come in.",
}

var tuners = []string{
	"That matters.",
	"We can do this.",
	"Let us proceed carefully.",
	"I am ready.",
}

func sentence(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "*", ""))
	s = strings.TrimRight(s, ".!?;:, \t\n")
	if s == "" {
		return ""
	}
	return s + "."
}

type utteranceBuilder struct {
	parts []string
	words int
}

// add appends s when it fits under the word ceiling.
func (b *utteranceBuilder) add(s string) bool {
	n := len(strings.Fields(s))
	if n == 0 || b.words+n > maxUtteranceWords {
		return false
	}
	b.parts = append(b.parts, s)
	b.words += n
	return true
}

func (b *utteranceBuilder) done() bool {
	return b.words >= minUtteranceWords
}

func (b *utteranceBuilder) String() string {
	return strings.Join(b.parts, " ")
}

// composeUtterance writes the message of speaker at position within a round.
// The first speaker asks the next one a question; later speakers build on the previous one.
func composeUtterance(speaker, prev, next *model.Agent, state *model.SimulationState, prompt string, position, round int) string {
	var b utteranceBuilder
	topic := state.ScenarioName
	if topic == "" {
		topic = "our current work"
	}

	switch {
	case position == 0 && prompt != "":
		b.add(sentence(fmt.Sprintf("The observer has given us new guidance this %s, and I intend to act on it", state.TimePeriod)))
	case position == 0:
		b.add(sentence(fmt.Sprintf("Let me open this %s session on %s", state.TimePeriod, topic)))
	default:
		b.add(sentence(fmt.Sprintf("Building on what %s said, I want to add a view shaped by %s", prev.Name, strings.ToLower(speaker.Expertise))))
	}
	if position == 0 && next != nil {
		b.add(fmt.Sprintf("%s, what would you check first if you were leading this?", next.Name))
	}
	if position > 0 {
		b.add("To answer the question directly, I would start with the part we can verify today.")
	}
	b.add(sentence("My goal remains to " + strings.ToLower(speaker.Goal)))
	b.add(sentence("I say that as someone with this background: " + speaker.Background))

	start := (round*7 + position*3) % len(fillers)
	for i := 0; i < len(fillers) && !b.done(); i++ {
		b.add(fillers[(start+i)%len(fillers)])
	}
	for i := 0; !b.done(); i++ {
		if !b.add(tuners[i%len(tuners)]) {
			break
		}
	}
	return b.String()
}

// composeRound produces one message per agent, optionally preceded by the observer's prompt.
func composeRound(agents []*model.Agent, state *model.SimulationState, prompt string, round int) []dto.Message {
	messages := make([]dto.Message, 0, len(agents)+1)
	if prompt != "" {
		messages = append(messages, dto.Message{
			AgentID:   observerAgentID,
			AgentName: dto.ObserverName,
			Message:   prompt,
			Mood:      "neutral",
		})
	}

	for i, speaker := range agents {
		var prev, next *model.Agent
		if i > 0 {
			prev = agents[i-1]
		}
		if i+1 < len(agents) {
			next = agents[i+1]
		}
		mood, ok := moods[speaker.Archetype]
		if !ok {
			mood = "neutral"
		}
		messages = append(messages, dto.Message{
			AgentID:   speaker.ID,
			AgentName: speaker.Name,
			Message:   composeUtterance(speaker, prev, next, state, prompt, i, round),
			Mood:      mood,
		})
	}
	return messages
}
