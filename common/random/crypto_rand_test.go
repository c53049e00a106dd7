package random_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/common/random"
)

func TestUniqueness(t *testing.T) {
	tests := []struct {
		name       string
		generator  func() string
		iterations int
	}{
		{name: "GetUUID", generator: random.GetUUID, iterations: 5000},
		{name: "NewID", generator: random.NewID, iterations: 5000},
		{name: "GetRandomString(16)", generator: func() string { return random.GetRandomString(16) }, iterations: 5000},
		{name: "Suffix(10)", generator: func() string { return random.Suffix(10) }, iterations: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[string]struct{}, tt.iterations)
			for i := 0; i < tt.iterations; i++ {
				val := tt.generator()
				_, dup := seen[val]
				require.Falsef(t, dup, "duplicate value %q after %d iterations", val, i)
				seen[val] = struct{}{}
			}
		})
	}
}

func TestFormats(t *testing.T) {
	require.Len(t, random.GetUUID(), 32)
	require.NotContains(t, random.GetUUID(), "-")
	require.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}$`), random.NewID())
	require.Regexp(t, regexp.MustCompile(`^[0-9a-z]{6}$`), random.Suffix(6))
}

func TestRandRange(t *testing.T) {
	min, max := 1, 10
	counts := make(map[int]int)
	for i := 0; i < 20000; i++ {
		val := random.RandRange(min, max)
		require.GreaterOrEqual(t, val, min)
		require.Less(t, val, max)
		counts[val]++
	}
	require.Len(t, counts, max-min)

	require.Equal(t, 5, random.RandRange(5, 5))
}

func TestPick(t *testing.T) {
	items := []string{"scientist", "leader", "skeptic"}
	for i := 0; i < 100; i++ {
		require.Contains(t, items, random.Pick(items))
	}
}
