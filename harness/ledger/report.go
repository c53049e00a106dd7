package ledger

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/olekukonko/tablewriter"

	"github.com/agentsim/simcheck/common/helper"
)

const (
	VerdictPassed = "PASSED"
	VerdictFailed = "FAILED"
)

// Verdict returns PASSED or FAILED.
func (l *Ledger) Verdict() string {
	if l.Passed() {
		return VerdictPassed
	}
	return VerdictFailed
}

// Summary writes one line per record in order, the totals, the failures and the overall verdict.
// The output only depends on the records, so identical runs print identical summaries.
func (l *Ledger) Summary(w io.Writer) error {
	ew := &errWriter{w: w}
	records := l.Records()
	counts := l.Counts()

	ew.printf("\n=== SimCheck Summary ===\n\n")
	for _, r := range records {
		ew.printf("%s\n", summaryLine(r))
	}

	ew.printf("\nTotals  | Checks: %d | Passed: %d | Failed: %d | Errors: %d\n",
		counts.Total, counts.Passed, counts.Failed-counts.Errored, counts.Errored)

	failures := l.Failures()
	if len(failures) > 0 {
		ew.printf("\nFailures:\n")
		for _, r := range failures {
			reason := r.Error
			if reason == "" {
				reason = fmt.Sprintf("status %s, expected %s", r.ObservedLabel(), r.ExpectedLabel())
			}
			ew.printf("- [%d] %s · %s → %s\n", r.Index, r.Scenario, r.Name, helper.Shorten(reason, 200))
		}
	}

	ew.printf("\nOverall: %s\n", l.Verdict())
	return ew.err
}

func summaryLine(r CheckRecord) string {
	var line string
	if r.Synthetic() {
		line = fmt.Sprintf("%s [%d] %s %s", r.glyph(), r.Index, r.Method, r.Name)
	} else {
		line = fmt.Sprintf("%s [%d] %s %s %s (%s/%s)",
			r.glyph(), r.Index, r.Method, r.Path, r.Name, r.ObservedLabel(), r.ExpectedLabel())
	}
	if r.Timed {
		line += " in " + helper.FormatElapsed(r.Elapsed)
	}
	if r.Error != "" {
		line += " :: " + helper.Shorten(r.Error, 160)
	}
	return line
}

type scenarioRow struct {
	name    string
	counts  Counts
	elapsed time.Duration
}

// ScenarioTable renders a per-scenario breakdown, scenarios in order of first appearance.
func (l *Ledger) ScenarioTable(w io.Writer) {
	var rows []*scenarioRow
	index := map[string]*scenarioRow{}
	for _, r := range l.Records() {
		row, ok := index[r.Scenario]
		if !ok {
			row = &scenarioRow{name: r.Scenario}
			index[r.Scenario] = row
			rows = append(rows, row)
		}
		row.counts.Total++
		switch r.Outcome {
		case OutcomePass:
			row.counts.Passed++
		case OutcomeError:
			row.counts.Errored++
		default:
			row.counts.Failed++
		}
		row.elapsed += r.Elapsed
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Scenario", "Checks", "Passed", "Failed", "Errors", "Elapsed", "Verdict"})
	table.SetAutoFormatHeaders(false)
	for _, row := range rows {
		verdict := VerdictPassed
		if row.counts.Failed+row.counts.Errored > 0 {
			verdict = VerdictFailed
		}
		name := row.name
		if name == "" {
			name = "(none)"
		}
		table.Append([]string{
			name,
			strconv.Itoa(row.counts.Total),
			strconv.Itoa(row.counts.Passed),
			strconv.Itoa(row.counts.Failed),
			strconv.Itoa(row.counts.Errored),
			helper.FormatElapsed(row.elapsed),
			verdict,
		})
	}
	table.Render()
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	if _, err := fmt.Fprintf(e.w, format, args...); err != nil {
		e.err = errors.Wrap(err, "write summary")
	}
}
