package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"skolapp-quizsync/internal/domain"
	"skolapp-quizsync/internal/infra/memory"
	"skolapp-quizsync/internal/logging"
	"skolapp-quizsync/internal/metrics"
	"skolapp-quizsync/internal/remote"
)

func TestCatalogServesList(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	source := memory.NewStaticSummarySource(sampleSummaries())
	server := httptest.NewServer(NewRouter(Routes{
		Catalog:  NewCatalogHandler(source, m, logging.Discard()),
		Gatherer: reg,
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/quizzes.json", nil)
	req.Header.Set("Origin", "http://example.test")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Cache-Control") != "no-cache" {
		t.Fatalf("expected no-cache, got %q", resp.Header.Get("Cache-Control"))
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS header")
	}
	var list []domain.QuizSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" {
		t.Fatalf("unexpected list %+v", list)
	}

	metricsResp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer metricsResp.Body.Close()
	body, _ := io.ReadAll(metricsResp.Body)
	if !strings.Contains(string(body), "skolapp_catalog_requests_total 1") {
		t.Fatalf("expected catalog counter in metrics output")
	}
}

func TestCatalogSourceError(t *testing.T) {
	handler := NewCatalogHandler(failingSource{}, nil, logging.Discard())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quizzes.json", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(Routes{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
}

func TestStateSnapshot(t *testing.T) {
	source := newFakeState(remote.State{Quizzes: sampleSummaries(), Offline: true})
	rec := httptest.NewRecorder()
	NewRouter(Routes{State: NewStateHandler(source, logging.Discard())}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))

	var state remote.State
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !state.Offline || len(state.Quizzes) != 2 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestWebSocketStreamsState(t *testing.T) {
	source := newFakeState(remote.State{Loading: true, Quizzes: []domain.QuizSummary{}})
	server := httptest.NewServer(NewRouter(Routes{State: NewStateHandler(source, logging.Discard())}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readState(t, conn)
	if !first.Loading {
		t.Fatalf("expected initial loading state, got %+v", first)
	}

	source.push(remote.State{Quizzes: sampleSummaries()})
	next := readState(t, conn)
	if next.Loading || len(next.Quizzes) != 2 {
		t.Fatalf("expected loaded state, got %+v", next)
	}

	conn.Close()
	deadline := time.After(2 * time.Second)
	for source.subscribers() > 0 {
		select {
		case <-deadline:
			t.Fatalf("subscription not released after disconnect")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func readState(t *testing.T, conn *websocket.Conn) remote.State {
	t.Helper()
	var msg outboundMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %s", msg.Type)
	}
	return msg.Payload
}

type fakeState struct {
	mu    sync.Mutex
	state remote.State
	subs  map[chan remote.State]struct{}
}

func newFakeState(initial remote.State) *fakeState {
	return &fakeState{state: initial, subs: make(map[chan remote.State]struct{})}
}

func (f *fakeState) State() remote.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeState) Subscribe() (<-chan remote.State, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan remote.State, 4)
	ch <- f.state
	f.subs[ch] = struct{}{}
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[ch]; ok {
			delete(f.subs, ch)
			close(ch)
		}
	}
}

func (f *fakeState) push(s remote.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
	for ch := range f.subs {
		ch <- s
	}
}

func (f *fakeState) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type failingSource struct{}

func (failingSource) ListSummaries(context.Context) ([]domain.QuizSummary, error) {
	return nil, errors.New("db down")
}

func sampleSummaries() []domain.QuizSummary {
	return []domain.QuizSummary{
		{ID: "a", Title: "Bråk", UpdatedAt: "2025-02-01T00:00:00.000Z"},
		{ID: "b", Title: "Geografi", UpdatedAt: "2025-01-01T00:00:00.000Z"},
	}
}
