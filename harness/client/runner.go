// Package client executes checks against the backend and records each one in the ledger.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/agentsim/simcheck/common/helper"
	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/harness/ledger"
)

const (
	maxResponseBodySize = 8 << 20
	userAgent           = "simcheck/1.0"
)

// Runner is a synchronous request executor bound to one API base and one bearer.
type Runner struct {
	apiBase        string
	httpClient     *http.Client
	ledger         *ledger.Ledger
	trace          io.Writer
	logger         glog.Logger
	defaultTimeout time.Duration
	bearer         string
}

// Option customises a Runner.
type Option func(*Runner)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) { r.httpClient = c }
}

// WithTrace redirects the per-check trace; nil silences it.
func WithTrace(w io.Writer) Option {
	return func(r *Runner) { r.trace = w }
}

// WithLogger sets the structured logger.
func WithLogger(l glog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New creates a runner for apiBase (base URL plus API prefix).
func New(apiBase string, l *ledger.Ledger, defaultTimeout time.Duration, opts ...Option) *Runner {
	r := &Runner{
		apiBase:        strings.TrimSuffix(apiBase, "/"),
		httpClient:     &http.Client{},
		ledger:         l,
		trace:          os.Stdout,
		logger:         logger.Logger,
		defaultTimeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.defaultTimeout <= 0 {
		r.defaultTimeout = 30 * time.Second
	}
	return r
}

// SetBearer sets the credential attached to authenticated checks.
func (r *Runner) SetBearer(token string) {
	r.bearer = token
}

// Bearer returns the current credential.
func (r *Runner) Bearer() string {
	return r.bearer
}

// As returns a runner sharing this runner's ledger and transport but using another bearer.
func (r *Runner) As(token string) *Runner {
	clone := *r
	clone.bearer = token
	return &clone
}

// Ledger returns the ledger checks are recorded in.
func (r *Runner) Ledger() *ledger.Ledger {
	return r.ledger
}

// URL returns the absolute URL of path.
func (r *Runner) URL(path string, query map[string]string) string {
	u := r.apiBase + path
	if len(query) == 0 {
		return u
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, k := range keys {
		values.Set(k, query[k])
	}
	return u + "?" + values.Encode()
}

// Check performs req and records exactly one CheckRecord.
// It passes iff the status is acceptable and every expected key is present at the top level.
// Transport failures and timeouts record an error outcome and never pass.
func (r *Runner) Check(ctx context.Context, req Request) (passed bool, body Body) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	rec := ledger.CheckRecord{
		Name:     req.Name,
		Method:   method,
		Path:     req.Path,
		Expected: req.Expected(),
		Timed:    req.Timed,
		Outcome:  ledger.OutcomeFail,
	}
	endpoint := r.URL(req.Path, req.Query)
	body = decodeBody(nil)

	start := time.Now()
	defer func() {
		rec.Elapsed = time.Since(start)
		stored := r.ledger.Append(rec)
		r.printTrace(stored, endpoint, body)
		passed = stored.Passed()
	}()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, contentType, err := req.payload()
	if err != nil {
		rec.Outcome = ledger.OutcomeError
		rec.Error = err.Error()
		return
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, method, endpoint, payload)
	if err != nil {
		rec.Outcome = ledger.OutcomeError
		rec.Error = errors.Wrap(err, "build request").Error()
		return
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if !req.SkipAuth && r.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.bearer)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		rec.Outcome = ledger.OutcomeError
		rec.Error = describeTransportError(err, timeout)
		r.logger.Debug("request failed", zap.String("url", endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	rec.ObservedStatus = resp.StatusCode
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		rec.Outcome = ledger.OutcomeError
		rec.Error = describeTransportError(errors.Wrap(err, "read response"), timeout)
		return
	}
	body = decodeBody(raw)

	if !slices.Contains(rec.Expected, resp.StatusCode) {
		rec.Error = fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, helper.Shorten(helper.Snippet(raw), 160))
		return
	}
	if missing := missingKeys(body, req.ExpectKeys); len(missing) > 0 {
		rec.Error = "missing keys: " + strings.Join(missing, ", ")
		return
	}

	rec.Outcome = ledger.OutcomePass
	return
}

// Assert records a contract check that does not involve an HTTP exchange.
func (r *Runner) Assert(name string, ok bool, detail string) bool {
	rec := ledger.CheckRecord{Name: name, Method: ledger.MethodAssert, Outcome: ledger.OutcomePass}
	if !ok {
		rec.Outcome = ledger.OutcomeFail
		rec.Error = detail
	}
	stored := r.ledger.Append(rec)
	r.printTrace(stored, "", Body{})
	return ok
}

// Fail records a prerequisite failure.
func (r *Runner) Fail(name string, err error) {
	rec := ledger.CheckRecord{Name: name, Method: ledger.MethodPrereq, Outcome: ledger.OutcomeFail}
	if err != nil {
		rec.Error = err.Error()
	}
	stored := r.ledger.Append(rec)
	r.printTrace(stored, "", Body{})
}

func missingKeys(body Body, keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	m := body.Map()
	var missing []string
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

func describeTransportError(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("timeout after %s: %v", timeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Sprintf("cancelled: %v", err)
	}
	return err.Error()
}

func (r *Runner) printTrace(rec ledger.CheckRecord, endpoint string, body Body) {
	if r.trace == nil {
		return
	}
	verdict := "PASS"
	if !rec.Passed() {
		verdict = "FAIL"
	}

	if rec.Synthetic() {
		line := fmt.Sprintf("[%s] %s %s", verdict, rec.Method, rec.Name)
		if rec.Error != "" {
			line += " :: " + rec.Error
		}
		_, _ = fmt.Fprintln(r.trace, line)
		return
	}

	_, _ = fmt.Fprintf(r.trace, "[%s] %s · %s %s → %s (expected %s)",
		verdict, rec.Name, rec.Method, endpoint, rec.ObservedLabel(), rec.ExpectedLabel())
	if rec.Timed {
		_, _ = fmt.Fprintf(r.trace, " in %s", helper.FormatElapsed(rec.Elapsed))
	}
	_, _ = fmt.Fprintln(r.trace)
	if len(body.Bytes()) > 0 {
		_, _ = fmt.Fprintf(r.trace, "    %s\n", helper.Snippet(body.Bytes()))
	}
	if rec.Error != "" && rec.Outcome == ledger.OutcomeError {
		_, _ = fmt.Fprintf(r.trace, "    error: %s\n", rec.Error)
	}
}
