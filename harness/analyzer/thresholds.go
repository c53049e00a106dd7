package analyzer

import (
	"fmt"
	"os"

	"github.com/Laisky/errors/v2"
	"gopkg.in/yaml.v3"
)

// Thresholds are the pass criteria applied to a run's Stats and Collaboration.
type Thresholds struct {
	MinCompletionRate float64             `yaml:"min_completion_rate"`
	MaxCutOffRate     float64             `yaml:"max_cutoff_rate"`
	MaxNarrationRate  float64             `yaml:"max_narration_rate"`
	MinBandRate       float64             `yaml:"min_band_rate"`
	Band              Band                `yaml:"band"`
	Collaboration     CollaborationFloors `yaml:"collaboration"`
}

// CollaborationFloors are the minimum collaboration signals expected from a run.
type CollaborationFloors struct {
	MinMentionRate float64 `yaml:"min_mention_rate"`
	MinBuildOnRate float64 `yaml:"min_build_on_rate"`
	MinExchanges   int     `yaml:"min_exchanges"`
}

// DefaultThresholds returns the declared quality targets.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinCompletionRate: 0.95,
		MaxCutOffRate:     0.05,
		MaxNarrationRate:  0,
		MinBandRate:       0.80,
		Band:              DefaultBand,
		Collaboration: CollaborationFloors{
			MinMentionRate: 0.30,
			MinBuildOnRate: 0.20,
			MinExchanges:   1,
		},
	}
}

// LoadThresholds overlays the YAML file at path on the defaults. An empty path yields the defaults.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, errors.Wrapf(err, "read thresholds file %s", path)
	}
	if err = yaml.Unmarshal(raw, &t); err != nil {
		return Thresholds{}, errors.Wrapf(err, "parse thresholds file %s", path)
	}
	if err = t.validate(); err != nil {
		return Thresholds{}, errors.Wrapf(err, "thresholds file %s", path)
	}
	return t, nil
}

func (t Thresholds) validate() error {
	for name, v := range map[string]float64{
		"min_completion_rate": t.MinCompletionRate,
		"max_cutoff_rate":     t.MaxCutOffRate,
		"max_narration_rate":  t.MaxNarrationRate,
		"min_band_rate":       t.MinBandRate,
	} {
		if v < 0 || v > 1 {
			return errors.Errorf("%s must be within [0,1], got %v", name, v)
		}
	}
	if t.Band.Min <= 0 || t.Band.Max < t.Band.Min {
		return errors.Errorf("invalid band %d-%d", t.Band.Min, t.Band.Max)
	}
	return nil
}

// Violation describes one threshold that a run did not meet.
type Violation struct {
	Metric   string
	Observed float64
	Limit    float64
	// Op is the comparison that should have held, e.g. ">=".
	Op string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s = %.3f, want %s %.3f", v.Metric, v.Observed, v.Op, v.Limit)
}

// Check is a named threshold with its outcome, used to record one ledger entry per criterion.
type Check struct {
	Name      string
	OK        bool
	Violation Violation
}

// EvaluateStats compares s against the text thresholds.
func (t Thresholds) EvaluateStats(s Stats) []Check {
	return []Check{
		atLeast("completion rate", s.CompleteRate, t.MinCompletionRate),
		atMost("cut-off rate", s.CutOffRate, t.MaxCutOffRate),
		atMost("narration rate", s.NarrationRate, t.MaxNarrationRate),
		atLeast(fmt.Sprintf("%d-%d word band rate", t.Band.Min, t.Band.Max), s.BandRate, t.MinBandRate),
	}
}

// EvaluateCollaboration compares c against the collaboration floors.
func (t Thresholds) EvaluateCollaboration(c Collaboration) []Check {
	return []Check{
		atLeast("mention rate", c.MentionRate, t.Collaboration.MinMentionRate),
		atLeast("building-on rate", c.BuildOnRate, t.Collaboration.MinBuildOnRate),
		atLeast("question-answer exchanges", float64(c.Exchanges), float64(t.Collaboration.MinExchanges)),
	}
}

// Violations filters the failing checks.
func Violations(checks []Check) []Violation {
	var out []Violation
	for _, c := range checks {
		if !c.OK {
			out = append(out, c.Violation)
		}
	}
	return out
}

const epsilon = 1e-9

func atLeast(metric string, observed, limit float64) Check {
	return Check{
		Name:      metric,
		OK:        observed+epsilon >= limit,
		Violation: Violation{Metric: metric, Observed: observed, Limit: limit, Op: ">="},
	}
}

func atMost(metric string, observed, limit float64) Check {
	return Check{
		Name:      metric,
		OK:        observed <= limit+epsilon,
		Violation: Violation{Metric: metric, Observed: observed, Limit: limit, Op: "<="},
	}
}
