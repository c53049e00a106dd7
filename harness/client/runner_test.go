package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/harness/ledger"
)

type seenRequest struct {
	method string
	path   string
	query  string
	auth   string
	ctype  string
	body   []byte
}

func newServer(t *testing.T, seen *[]seenRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/echo", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		*seen = append(*seen, seenRequest{
			method: r.Method, path: r.URL.Path, query: r.URL.RawQuery,
			auth: r.Header.Get("Authorization"), ctype: r.Header.Get("Content-Type"), body: raw,
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "a1", "user": map[string]any{"id": "u1"}})
	})
	mux.HandleFunc("/api/list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"x"},{"id":"y"}]`))
	})
	mux.HandleFunc("/api/html", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<html>forbidden</html>"))
	})
	mux.HandleFunc("/api/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newRunner(srv *httptest.Server, trace io.Writer) (*Runner, *ledger.Ledger) {
	l := ledger.New()
	return New(srv.URL+"/api", l, 5*time.Second, WithTrace(trace)), l
}

func TestCheckAttachesBearerOnlyWhenRequested(t *testing.T) {
	var seen []seenRequest
	srv := newServer(t, &seen)
	r, l := newRunner(srv, io.Discard)

	ok, _ := r.Check(context.Background(), Request{Name: "no bearer yet", Path: "/echo"})
	require.True(t, ok)

	r.SetBearer("tok")
	ok, _ = r.Check(context.Background(), Request{Name: "with bearer", Path: "/echo"})
	require.True(t, ok)
	ok, _ = r.Check(context.Background(), Request{Name: "skip auth", Path: "/echo", SkipAuth: true})
	require.True(t, ok)

	require.Equal(t, "", seen[0].auth)
	require.Equal(t, "Bearer tok", seen[1].auth)
	require.Equal(t, "", seen[2].auth)
	require.Equal(t, 3, l.Counts().Passed)
}

func TestCheckKeepsDeleteBodyAndQuery(t *testing.T) {
	var seen []seenRequest
	srv := newServer(t, &seen)
	r, _ := newRunner(srv, io.Discard)

	ok, _ := r.Check(context.Background(), Request{
		Name: "bulk delete", Method: http.MethodDelete, Path: "/echo",
		Body: []string{"a", "b"}, Query: map[string]string{"z": "1", "a": "2"},
	})
	require.True(t, ok)
	require.Equal(t, http.MethodDelete, seen[0].method)
	require.JSONEq(t, `["a","b"]`, string(seen[0].body))
	require.Equal(t, "a=2&z=1", seen[0].query)
	require.Equal(t, "application/json", seen[0].ctype)
}

func TestCheckStatusAndKeys(t *testing.T) {
	var seen []seenRequest
	srv := newServer(t, &seen)
	r, l := newRunner(srv, io.Discard)
	ctx := context.Background()

	ok, body := r.Check(ctx, Request{Name: "keys present", Path: "/echo", ExpectKeys: []string{"id", "user"}})
	require.True(t, ok)
	require.Equal(t, "u1", body.String("user", "id"))

	ok, _ = r.Check(ctx, Request{Name: "key missing", Path: "/echo", ExpectKeys: []string{"access_token"}})
	require.False(t, ok)

	ok, _ = r.Check(ctx, Request{Name: "wrong status", Path: "/echo", ExpectStatus: http.StatusCreated})
	require.False(t, ok)

	ok, body = r.Check(ctx, Request{Name: "any of", Path: "/html", ExpectAnyOf: []int{401, 403}})
	require.True(t, ok)
	require.Empty(t, body.Map(), "non-JSON bodies decode to an empty mapping")

	records := l.Records()
	require.Len(t, records, 4)
	require.Contains(t, records[1].Error, "access_token")
	require.Equal(t, []int{401, 403}, records[3].Expected)
	require.Equal(t, 403, records[3].ObservedStatus)
}

func TestCheckListBody(t *testing.T) {
	var seen []seenRequest
	srv := newServer(t, &seen)
	r, _ := newRunner(srv, io.Discard)

	ok, body := r.Check(context.Background(), Request{Name: "list", Path: "/list"})
	require.True(t, ok)
	require.True(t, body.IsList())
	require.Len(t, body.Items(), 2)
	require.Equal(t, "y", body.String("1", "id"))
}

func TestCheckTimeoutIsError(t *testing.T) {
	var seen []seenRequest
	srv := newServer(t, &seen)
	r, l := newRunner(srv, io.Discard)

	ok, body := r.Check(context.Background(), Request{Name: "slow", Path: "/slow", Timeout: 50 * time.Millisecond, Timed: true})
	require.False(t, ok)
	require.Empty(t, body.Map())

	rec := l.Records()[0]
	require.Equal(t, ledger.OutcomeError, rec.Outcome)
	require.Contains(t, rec.Error, "timeout")
	require.Equal(t, 1, l.Counts().Failed)
	require.Equal(t, 1, l.Counts().Errored)
}

func TestCheckTransportErrorRecordsOnce(t *testing.T) {
	l := ledger.New()
	r := New("http://127.0.0.1:1/api", l, time.Second, WithTrace(io.Discard))

	ok, _ := r.Check(context.Background(), Request{Name: "unreachable", Path: "/agents"})
	require.False(t, ok)
	require.Len(t, l.Records(), 1)
	require.Equal(t, ledger.OutcomeError, l.Records()[0].Outcome)
}

func TestCheckMultipartUpload(t *testing.T) {
	var seen []seenRequest
	srv := newServer(t, &seen)
	r, _ := newRunner(srv, io.Discard)

	ok, _ := r.Check(context.Background(), Request{
		Name: "upload", Method: http.MethodPost, Path: "/echo",
		Upload: &Upload{FileName: "clip.wav", ContentType: "audio/wav", Data: []byte("RIFF....WAVE")},
	})
	require.True(t, ok)
	require.True(t, strings.HasPrefix(seen[0].ctype, "multipart/form-data"))
	require.Contains(t, string(seen[0].body), `name="audio"; filename="clip.wav"`)
}

func TestCheckRawBody(t *testing.T) {
	var seen []seenRequest
	srv := newServer(t, &seen)
	r, _ := newRunner(srv, io.Discard)

	ok, _ := r.Check(context.Background(), Request{Name: "raw", Method: http.MethodPost, Path: "/echo", RawBody: []byte("{broken")})
	require.True(t, ok)
	require.Equal(t, "{broken", string(seen[0].body))
}

func TestAssertAndFail(t *testing.T) {
	var trace bytes.Buffer
	l := ledger.New()
	r := New("http://unused/api", l, time.Second, WithTrace(&trace))

	require.True(t, r.Assert("holds", true, "unused"))
	require.False(t, r.Assert("breaks", false, "scenario changed"))
	r.Fail("create agents", nil)

	records := l.Records()
	require.Equal(t, ledger.MethodAssert, records[0].Method)
	require.Equal(t, ledger.OutcomePass, records[0].Outcome)
	require.Equal(t, "scenario changed", records[1].Error)
	require.Equal(t, ledger.MethodPrereq, records[2].Method)
	require.Equal(t, 2, l.Counts().Failed)
	require.Contains(t, trace.String(), "[FAIL] ASSERT breaks :: scenario changed")
}

func TestTracePrintsURLStatusAndVerdict(t *testing.T) {
	var seen []seenRequest
	var trace bytes.Buffer
	srv := newServer(t, &seen)
	r, _ := newRunner(srv, &trace)

	r.Check(context.Background(), Request{Name: "echo", Path: "/echo"})
	out := trace.String()
	require.Contains(t, out, "[PASS] echo · GET "+srv.URL+"/api/echo → 200 (expected 200)")
	require.Contains(t, out, `"id":"a1"`)
}

func TestAsSharesLedger(t *testing.T) {
	l := ledger.New()
	r := New("http://unused/api", l, time.Second, WithTrace(io.Discard))
	r.SetBearer("a")
	other := r.As("b")

	require.Equal(t, "a", r.Bearer())
	require.Equal(t, "b", other.Bearer())
	require.Same(t, r.Ledger(), other.Ledger())
}

func TestRequestExpected(t *testing.T) {
	require.Equal(t, []int{200}, Request{}.Expected())
	require.Equal(t, []int{404}, Request{ExpectStatus: 404}.Expected())
	require.Equal(t, []int{400, 422}, Request{ExpectStatus: 400, ExpectAnyOf: []int{422, 400}}.Expected())
}
