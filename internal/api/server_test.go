package api

import (
	"bytes"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tcbf/internal/beamformer"
	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/logger"
)

const (
	testPixels  = 3
	testFrames  = 2
	testSamples = 20
)

func newTestEcho(t *testing.T, opts Options) (*echo.Echo, *beamformer.Beamformer) {
	t.Helper()
	b, err := beamformer.New(beamformer.Config{
		Pixels: testPixels, Frames: testFrames, Samples: testSamples,
		Variant: ccg.Basic, Logger: logger.Discard(),
	})
	if err != nil {
		t.Fatalf("beamformer.New: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	e := echo.New()
	NewServer(b, opts).Register(e)
	return e, b
}

func do(t *testing.T, e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, mimeOctetStream)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func rfBody(n int, v int16) []byte {
	out := make([]byte, n*2)
	for i := range n {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func TestBeamformLifecycle(t *testing.T) {
	t.Parallel()

	e, b := newTestEcho(t, Options{})
	p := b.Plan()

	rec := do(t, e, http.MethodPost, "/v1/beamform", rfBody(p.RFElements(), 5))
	if rec.Code != http.StatusConflict {
		t.Fatalf("beamform before weights: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "not_ready_error") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	// All-zero packed weights encode +1 for every component.
	rec = do(t, e, http.MethodPost, "/v1/weights", make([]byte, p.BytesAPacked))
	if rec.Code != http.StatusOK {
		t.Fatalf("weights status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var wr WeightsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &wr); err != nil {
		t.Fatalf("decode weights response: %v", err)
	}
	if wr.State != "ready" || wr.Bytes != p.BytesAPacked || wr.RequestID == "" {
		t.Fatalf("unexpected weights response: %+v", wr)
	}

	rec = do(t, e, http.MethodPost, "/v1/beamform", rfBody(p.RFElements(), 5))
	if rec.Code != http.StatusOK {
		t.Fatalf("beamform status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != mimeOctetStream {
		t.Fatalf("content type: got %q", got)
	}
	out := rec.Body.Bytes()
	if len(out) != p.BFElements()*4 {
		t.Fatalf("body length: got %d want %d", len(out), p.BFElements()*4)
	}
	// (1+i)(1+i) = 2i per sample.
	half := p.BFElements() / 2
	for i := range p.BFElements() {
		got := int32(binary.LittleEndian.Uint32(out[i*4:]))
		want := int32(0)
		if i >= half {
			want = 2 * testSamples
		}
		if got != want {
			t.Fatalf("beam value %d: got %d want %d", i, got, want)
		}
	}

	rec = do(t, e, http.MethodGet, "/v1/status", nil)
	var st StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.State != "ready" || st.Batches != 1 || st.Backend != "cpu" || st.Variant != "basic" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.LastError == "" {
		t.Fatalf("expected the earlier not-ready error to be reported")
	}
}

func TestBeamformRejectsWrongSize(t *testing.T) {
	t.Parallel()

	e, b := newTestEcho(t, Options{})
	p := b.Plan()
	if rec := do(t, e, http.MethodPost, "/v1/weights", make([]byte, p.BytesAPacked)); rec.Code != http.StatusOK {
		t.Fatalf("weights status: got %d", rec.Code)
	}

	tests := []struct {
		name string
		body []byte
	}{
		{"short", rfBody(p.RFElements()-1, 1)},
		{"long", rfBody(p.RFElements()+1, 1)},
		{"empty", []byte{}},
	}
	for _, tc := range tests {
		before := b.Stream().Enqueued()
		rec := do(t, e, http.MethodPost, "/v1/beamform", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", tc.name, rec.Code, rec.Body.String())
		}
		if b.Stream().Enqueued() != before {
			t.Fatalf("%s: device work enqueued", tc.name)
		}
	}
}

func TestWeightsRejectsWrongSize(t *testing.T) {
	t.Parallel()

	e, b := newTestEcho(t, Options{})
	rec := do(t, e, http.MethodPost, "/v1/weights", make([]byte, b.Plan().BytesAPacked-4))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "size_error") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
	if b.State() != beamformer.Uninitialized {
		t.Fatalf("state changed to %v", b.State())
	}
}

func TestPlanEndpoint(t *testing.T) {
	t.Parallel()

	e, b := newTestEcho(t, Options{})
	rec := do(t, e, http.MethodGet, "/v1/plan", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("plan status: got %d", rec.Code)
	}
	var got PlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if got.Plan != b.Plan() {
		t.Fatalf("plan: got %+v want %+v", got.Plan, b.Plan())
	}
	if got.Padded.Pixels != 16 || got.Padded.Frames != 8 || got.Padded.Samples != 256 {
		t.Fatalf("unexpected padded shape %+v", got.Padded)
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t, Options{})
	rec := do(t, e, http.MethodGet, "/v1/status", nil)
	if id := rec.Header().Get(headerRequestID); !strings.HasPrefix(id, "req_") {
		t.Fatalf("expected generated request id, got %q", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	req.Header.Set(headerRequestID, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if id := rec.Header().Get(headerRequestID); id != "abc" {
		t.Fatalf("expected propagated request id, got %q", id)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	e, b := newTestEcho(t, Options{RateLimit: 0.001, Burst: 1})
	body := make([]byte, b.Plan().BytesAPacked)
	if rec := do(t, e, http.MethodPost, "/v1/weights", body); rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rec.Code)
	}
	rec := do(t, e, http.MethodPost, "/v1/weights", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	// Reads are not limited.
	if rec := do(t, e, http.MethodGet, "/v1/plan", nil); rec.Code != http.StatusOK {
		t.Fatalf("plan under rate limit: got %d", rec.Code)
	}
}
