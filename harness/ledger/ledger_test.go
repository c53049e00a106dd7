package ledger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	seen []CheckRecord
}

func (o *recordingObserver) Observe(r CheckRecord) {
	o.seen = append(o.seen, r)
}

func mixedLedger() *Ledger {
	l := New()
	l.SetScenario("auth")
	l.Append(CheckRecord{Name: "guest login issues bearer", Method: "POST", Path: "/auth/test-login",
		Expected: []int{200}, ObservedStatus: 200, Outcome: OutcomePass})
	l.Append(CheckRecord{Name: "missing bearer rejected", Method: "GET", Path: "/auth/me",
		Expected: []int{401, 403}, ObservedStatus: 403, Outcome: OutcomePass})

	l.SetScenario("agents")
	l.Append(CheckRecord{Name: "create agent", Method: "POST", Path: "/agents",
		Expected: []int{200}, ObservedStatus: 500, Outcome: OutcomeFail,
		Timed: true, Elapsed: 1500 * time.Millisecond})
	l.Append(CheckRecord{Name: "list contains only caller's agents", Method: MethodAssert,
		Outcome: OutcomeFail, Error: "agent a-2 owned by u-9"})

	l.SetScenario("conversation")
	l.Append(CheckRecord{Name: "generate round", Method: "POST", Path: "/conversation/generate",
		Expected: []int{200}, Outcome: OutcomeError, Error: "context deadline exceeded"})
	return l
}

func TestAppendAssignsIndexAndScenario(t *testing.T) {
	obs := &recordingObserver{}
	l := New(obs)
	l.SetScenario("bulk-delete")

	first := l.Append(CheckRecord{Name: "a", Outcome: OutcomePass})
	second := l.Append(CheckRecord{Name: "b", Scenario: "explicit"})

	require.Equal(t, 1, first.Index)
	require.Equal(t, "bulk-delete", first.Scenario)
	require.Equal(t, 2, second.Index)
	require.Equal(t, "explicit", second.Scenario)
	require.Equal(t, OutcomeFail, second.Outcome, "missing outcome must never count as a pass")
	require.Len(t, obs.seen, 2)
}

func TestCountsTreatErrorsAsFailures(t *testing.T) {
	l := mixedLedger()
	counts := l.Counts()

	require.Equal(t, Counts{Total: 5, Passed: 2, Failed: 3, Errored: 1}, counts)
	require.False(t, l.Passed())
	require.Equal(t, VerdictFailed, l.Verdict())
	require.Len(t, l.Failures(), 3)
}

func TestRecordsIsACopy(t *testing.T) {
	l := mixedLedger()
	records := l.Records()
	records[0].Name = "mutated"
	require.Equal(t, "guest login issues bearer", l.Records()[0].Name)
}

func TestEmptyLedgerPasses(t *testing.T) {
	l := New()
	require.True(t, l.Passed())
	require.Equal(t, VerdictPassed, l.Verdict())
}

func TestSummaryGolden(t *testing.T) {
	g := goldie.New(t)

	var buf bytes.Buffer
	require.NoError(t, mixedLedger().Summary(&buf))
	g.Assert(t, "summary_mixed", buf.Bytes())

	l := New()
	l.SetScenario("scenario-persistence")
	l.Append(CheckRecord{Name: "set scenario", Method: "POST", Path: "/simulation/set-scenario",
		Expected: []int{200}, ObservedStatus: 200, Outcome: OutcomePass})
	l.Append(CheckRecord{Name: "scenario survives start", Method: MethodAssert, Outcome: OutcomePass})

	buf.Reset()
	require.NoError(t, l.Summary(&buf))
	g.Assert(t, "summary_passed", buf.Bytes())
}

func TestSummaryIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, mixedLedger().Summary(&a))
	require.NoError(t, mixedLedger().Summary(&b))
	require.Equal(t, a.String(), b.String())
}

func TestScenarioTable(t *testing.T) {
	var buf bytes.Buffer
	mixedLedger().ScenarioTable(&buf)
	out := buf.String()

	require.Contains(t, out, "Scenario")
	authAt := strings.Index(out, "auth")
	agentsAt := strings.Index(out, "agents")
	convAt := strings.Index(out, "conversation")
	require.True(t, authAt >= 0 && authAt < agentsAt && agentsAt < convAt, out)
	require.Contains(t, out, VerdictFailed)
	require.Contains(t, out, VerdictPassed)
}

func TestExpectedAndObservedLabels(t *testing.T) {
	r := CheckRecord{Expected: []int{401, 403}}
	require.Equal(t, "401|403", r.ExpectedLabel())
	require.Equal(t, "-", r.ObservedLabel())
	require.Equal(t, "-", CheckRecord{}.ExpectedLabel())
}
