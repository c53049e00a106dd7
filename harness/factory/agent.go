// Package factory produces payloads that the backend's creation endpoints accept.
package factory

import (
	"fmt"
	"sync"

	"github.com/Laisky/errors/v2"

	"github.com/agentsim/simcheck/common"
	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
)

type archetypeProfile struct {
	names       []string
	personality dto.Personality
	goal        string
	expertise   string
	background  string
	avatar      string
}

var profiles = map[string]archetypeProfile{
	"scientist": {
		names:       []string{"Dr. Elena Vasquez", "Dr. Kenji Mori"},
		personality: dto.Personality{Extroversion: 4, Optimism: 6, Curiosity: 10, Cooperativeness: 7, Energy: 6},
		goal:        "Understand the phenomenon through careful experimentation",
		expertise:   "Astrophysics and signal processing",
		background:  "Spent a decade running a radio observatory array",
		avatar:      "thoughtful scientist in a lab coat, soft studio light",
	},
	"leader": {
		names:       []string{"Commander Sarah Okafor", "Director James Whitfield"},
		personality: dto.Personality{Extroversion: 8, Optimism: 7, Curiosity: 6, Cooperativeness: 7, Energy: 8},
		goal:        "Keep the team aligned on a clear decision",
		expertise:   "Crisis management and strategic planning",
		background:  "Led multinational emergency response teams",
		avatar:      "confident leader in a navy uniform",
	},
	"skeptic": {
		names:       []string{"Marcus Hale", "Ingrid Solberg"},
		personality: dto.Personality{Extroversion: 5, Optimism: 3, Curiosity: 8, Cooperativeness: 5, Energy: 5},
		goal:        "Make sure every claim is backed by evidence",
		expertise:   "Statistics and experimental design",
		background:  "Peer reviewer known for catching flawed methodology",
		avatar:      "analytical skeptic with raised eyebrow",
	},
	"optimist": {
		names:       []string{"Priya Raman", "Leo Martins"},
		personality: dto.Personality{Extroversion: 8, Optimism: 10, Curiosity: 7, Cooperativeness: 8, Energy: 9},
		goal:        "Find the opportunity hidden in every setback",
		expertise:   "Community building and outreach",
		background:  "Founded several successful volunteer programs",
		avatar:      "smiling optimist in bright colors",
	},
	"artist": {
		names:       []string{"Mila Novak", "Theo Laurent"},
		personality: dto.Personality{Extroversion: 6, Optimism: 6, Curiosity: 9, Cooperativeness: 6, Energy: 7},
		goal:        "Translate complex ideas into images people feel",
		expertise:   "Visual storytelling and design",
		background:  "Exhibited installations about science and wonder",
		avatar:      "creative artist with paint-stained hands",
	},
	"researcher": {
		names:       []string{"Dr. Amara Chen", "Dr. Felix Brandt"},
		personality: dto.Personality{Extroversion: 3, Optimism: 5, Curiosity: 9, Cooperativeness: 7, Energy: 5},
		goal:        "Build a rigorous body of knowledge on the problem",
		expertise:   "Literature review and data analysis",
		background:  "Published widely on interdisciplinary methods",
		avatar:      "focused researcher surrounded by books",
	},
	"introvert": {
		names:       []string{"Noah Lindqvist", "Hana Sato"},
		personality: dto.Personality{Extroversion: 2, Optimism: 5, Curiosity: 8, Cooperativeness: 6, Energy: 4},
		goal:        "Contribute well-considered ideas at the right moment",
		expertise:   "Systems architecture",
		background:  "Quiet engineer behind several critical systems",
		avatar:      "calm introvert reading by a window",
	},
	"mediator": {
		names:       []string{"Grace Adeyemi", "Tomas Rivera"},
		personality: dto.Personality{Extroversion: 6, Optimism: 7, Curiosity: 6, Cooperativeness: 10, Energy: 6},
		goal:        "Help the group reach a decision everyone can support",
		expertise:   "Negotiation and conflict resolution",
		background:  "Facilitated peace talks and labor negotiations",
		avatar:      "warm mediator with open posture",
	},
	"adventurer": {
		names:       []string{"Jack Thornton", "Sofia Reyes"},
		personality: dto.Personality{Extroversion: 9, Optimism: 8, Curiosity: 9, Cooperativeness: 5, Energy: 10},
		goal:        "Go and see for ourselves instead of guessing",
		expertise:   "Field operations and survival",
		background:  "Led expeditions across deserts and polar ice",
		avatar:      "rugged adventurer with weathered jacket",
	},
}

// AgentFactory cycles through the archetype vocabulary. It is safe for concurrent use.
type AgentFactory struct {
	mu   sync.Mutex
	next int
}

// NewAgentFactory creates a factory starting at the first archetype.
func NewAgentFactory() *AgentFactory {
	return &AgentFactory{}
}

// Agent returns the next spec in the archetype cycle.
func (f *AgentFactory) Agent() dto.AgentSpec {
	f.mu.Lock()
	idx := f.next
	f.next++
	f.mu.Unlock()

	archetype := dto.Archetypes[idx%len(dto.Archetypes)]
	profile := profiles[archetype]
	base := profile.names[(idx/len(dto.Archetypes))%len(profile.names)]
	return build(fmt.Sprintf("%s %s", base, random.Suffix(4)), archetype)
}

// Agents returns n specs.
func (f *AgentFactory) Agents(n int) []dto.AgentSpec {
	specs := make([]dto.AgentSpec, 0, n)
	for range n {
		specs = append(specs, f.Agent())
	}
	return specs
}

// AgentNamed returns a spec with exactly the given name, using the next archetype in the cycle.
func (f *AgentFactory) AgentNamed(name string) dto.AgentSpec {
	spec := f.Agent()
	spec.Name = name
	return spec
}

// AgentWithArchetype returns a spec for a specific archetype.
func AgentWithArchetype(archetype string) (dto.AgentSpec, error) {
	if _, ok := profiles[archetype]; !ok {
		return dto.AgentSpec{}, errors.Errorf("unknown archetype %q", archetype)
	}
	return build(profiles[archetype].names[0]+" "+random.Suffix(4), archetype), nil
}

// Validate checks spec against the payload rules.
func Validate(spec dto.AgentSpec) error {
	if err := common.Validate.Struct(spec); err != nil {
		return errors.Wrap(err, "invalid agent spec")
	}
	return nil
}

func build(name, archetype string) dto.AgentSpec {
	p := profiles[archetype]
	return dto.AgentSpec{
		Name:         name,
		Archetype:    archetype,
		Personality:  p.personality,
		Goal:         p.goal,
		Expertise:    p.expertise,
		Background:   p.background,
		AvatarPrompt: p.avatar,
	}
}
