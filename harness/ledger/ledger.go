package ledger

import (
	"sync"
)

// Observer is notified of every appended record.
type Observer interface {
	Observe(CheckRecord)
}

// Counts is a snapshot of the ledger counters. Failed includes Errored.
type Counts struct {
	Total   int
	Passed  int
	Failed  int
	Errored int
}

// Ledger is an append-only, ordered list of CheckRecords with running counters.
type Ledger struct {
	mu        sync.Mutex
	scenario  string
	records   []CheckRecord
	counts    Counts
	observers []Observer
}

// New creates an empty ledger notifying the given observers.
func New(observers ...Observer) *Ledger {
	return &Ledger{observers: observers}
}

// SetScenario sets the scenario name stamped on subsequently appended records.
func (l *Ledger) SetScenario(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scenario = name
}

// Scenario returns the current scenario name.
func (l *Ledger) Scenario() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scenario
}

// Append stores rec, assigning its index and scenario, and returns the stored copy.
func (l *Ledger) Append(rec CheckRecord) CheckRecord {
	l.mu.Lock()
	rec.Index = len(l.records) + 1
	if rec.Scenario == "" {
		rec.Scenario = l.scenario
	}
	if rec.Outcome == "" {
		rec.Outcome = OutcomeFail
	}
	l.records = append(l.records, rec)

	l.counts.Total++
	switch rec.Outcome {
	case OutcomePass:
		l.counts.Passed++
	case OutcomeError:
		l.counts.Errored++
		l.counts.Failed++
	default:
		l.counts.Failed++
	}
	observers := l.observers
	l.mu.Unlock()

	for _, o := range observers {
		o.Observe(rec)
	}
	return rec
}

// Records returns a copy of every record in append order.
func (l *Ledger) Records() []CheckRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CheckRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Counts returns the current counters.
func (l *Ledger) Counts() Counts {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts
}

// Passed is true iff no check failed or errored.
func (l *Ledger) Passed() bool {
	return l.Counts().Failed == 0
}

// Failures returns the non-passing records in append order.
func (l *Ledger) Failures() []CheckRecord {
	var out []CheckRecord
	for _, r := range l.Records() {
		if !r.Passed() {
			out = append(out, r)
		}
	}
	return out
}
