package monitor

import (
	"sort"
	"sync"

	"github.com/Laisky/zap"

	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/harness/ledger"
)

// EndpointStat is the running tally of one METHOD path pair.
type EndpointStat struct {
	Method  string
	Path    string
	Calls   int
	Success int
}

// SuccessRate returns Success/Calls, or 1 when nothing was called.
func (s EndpointStat) SuccessRate() float64 {
	if s.Calls == 0 {
		return 1
	}
	return float64(s.Success) / float64(s.Calls)
}

// EndpointHealth tracks how often each endpoint behaved as expected during a run.
type EndpointHealth struct {
	mu    sync.Mutex
	stats map[string]*EndpointStat
}

func NewEndpointHealth() *EndpointHealth {
	return &EndpointHealth{stats: map[string]*EndpointStat{}}
}

// Observe tallies a non-assert record.
func (h *EndpointHealth) Observe(r ledger.CheckRecord) {
	key := r.Method + " " + r.Path
	h.mu.Lock()
	defer h.mu.Unlock()

	stat, ok := h.stats[key]
	if !ok {
		stat = &EndpointStat{Method: r.Method, Path: r.Path}
		h.stats[key] = stat
	}
	stat.Calls++
	if r.Passed() {
		stat.Success++
	}
}

// Unhealthy returns endpoints whose success rate is below threshold, worst first.
func (h *EndpointHealth) Unhealthy(threshold float64) []EndpointStat {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []EndpointStat
	for _, s := range h.stats {
		if s.SuccessRate() < threshold {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessRate() == out[j].SuccessRate() {
			return out[i].Method+out[i].Path < out[j].Method+out[j].Path
		}
		return out[i].SuccessRate() < out[j].SuccessRate()
	})
	return out
}

// ReportUnhealthy logs a warning for every endpoint below threshold and returns how many there were.
func (h *EndpointHealth) ReportUnhealthy(threshold float64) int {
	unhealthy := h.Unhealthy(threshold)
	for _, s := range unhealthy {
		logger.Logger.Warn("endpoint below success threshold",
			zap.String("method", s.Method),
			zap.String("path", s.Path),
			zap.Int("calls", s.Calls),
			zap.Float64("success_rate", s.SuccessRate()*100))
	}
	return len(unhealthy)
}
