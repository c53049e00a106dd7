package analyzer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sentenceOf(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ") + "."
}

func TestAggregate(t *testing.T) {
	texts := []string{
		sentenceOf(130),
		sentenceOf(125),
		sentenceOf(90),
		"*smiles* " + sentenceOf(130),
		"We should wait for more data,",
	}
	s, analyses := Aggregate(texts, DefaultBand)

	require.Len(t, analyses, 5)
	require.Equal(t, 5, s.Total)
	require.Equal(t, 3, s.InBand)
	require.InDelta(t, 0.6, s.BandRate, 1e-9)
	require.Equal(t, 1, s.CutOff)
	require.Equal(t, 1, s.Narration)
	require.Equal(t, 4, s.Complete)
	require.Equal(t, 4, s.Period)
	require.Equal(t, 1, s.NoTerminal)
	require.Equal(t, 6, s.MinWords)
	require.Equal(t, 131, s.MaxWords)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, DefaultBand)
	require.Zero(t, s.Total)
	require.Zero(t, s.CompleteRate)
}

func TestEvaluateStats(t *testing.T) {
	th := DefaultThresholds()

	good := Stats{Total: 20, CompleteRate: 1, CutOffRate: 0, NarrationRate: 0, BandRate: 0.85}
	require.Empty(t, Violations(th.EvaluateStats(good)))

	edge := Stats{Total: 20, CompleteRate: 0.95, CutOffRate: 0.05, BandRate: 0.80}
	require.Empty(t, Violations(th.EvaluateStats(edge)), "limits are inclusive")

	bad := Stats{Total: 20, CompleteRate: 0.9, CutOffRate: 0.1, NarrationRate: 0.05, BandRate: 0.5}
	violations := Violations(th.EvaluateStats(bad))
	require.Len(t, violations, 4)
	require.Equal(t, "completion rate = 0.900, want >= 0.950", violations[0].String())
}

func TestLoadThresholds(t *testing.T) {
	def, err := LoadThresholds("")
	require.NoError(t, err)
	require.Equal(t, DefaultThresholds(), def)

	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
min_completion_rate: 0.9
band:
  min: 100
  max: 150
collaboration:
  min_exchanges: 3
`), 0o600))

	loaded, err := LoadThresholds(path)
	require.NoError(t, err)
	require.Equal(t, 0.9, loaded.MinCompletionRate)
	require.Equal(t, 0.05, loaded.MaxCutOffRate, "unset keys keep their defaults")
	require.Equal(t, Band{Min: 100, Max: 150}, loaded.Band)
	require.Equal(t, 3, loaded.Collaboration.MinExchanges)
	require.Equal(t, 0.30, loaded.Collaboration.MinMentionRate)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("min_band_rate: 1.5\n"), 0o600))
	_, err = LoadThresholds(badPath)
	require.Error(t, err)

	_, err = LoadThresholds(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
