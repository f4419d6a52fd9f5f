package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ericlein/Eribot/internal/journal"
	"github.com/Ericlein/Eribot/internal/metric"
	"github.com/Ericlein/Eribot/internal/monitor"
)

type fakeReader struct {
	transitions []journal.TransitionRecord
	outcomes    []journal.OutcomeRecord
	err         error
}

func (f *fakeReader) RecentTransitions(context.Context, int) ([]journal.TransitionRecord, error) {
	return f.transitions, f.err
}

func (f *fakeReader) RecentOutcomes(context.Context, int) ([]journal.OutcomeRecord, error) {
	return f.outcomes, f.err
}

func newTestApi(t *testing.T, status *StatusStore, reader IncidentReader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if _, err := NewApi(router, status, reader); err != nil {
		t.Fatalf("NewApi: %v", err)
	}
	return router
}

func doRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthzEndpoint(t *testing.T) {
	router := newTestApi(t, NewStatusStore(), nil)

	w := doRequest(router, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q, want healthy", body["status"])
	}
}

func TestStatusEndpointBeforeFirstTick(t *testing.T) {
	router := newTestApi(t, NewStatusStore(), nil)

	w := doRequest(router, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.States) != 0 {
		t.Errorf("states = %v, want empty before first tick", body.States)
	}
	if body.LastTickAt != nil {
		t.Errorf("last_tick_at = %v, want omitted before first tick", body.LastTickAt)
	}
	if body.Hostname == "" {
		t.Errorf("hostname missing")
	}
}

func TestStatusEndpointReflectsSnapshot(t *testing.T) {
	store := NewStatusStore()
	router := newTestApi(t, store, nil)

	tick := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	store.Publish(monitor.StatusSnapshot{
		States: []monitor.AlertState{
			{Kind: metric.KindCPU, Status: monitor.StatusAlerting, ConsecutiveBreaches: 3, IncidentID: "inc-1"},
			{Kind: metric.KindMemory, Status: monitor.StatusOk},
		},
		Stats:            monitor.Stats{Checks: 12, Raised: 1},
		LastTickAt:       tick,
		LastTickDuration: 40 * time.Millisecond,
	})

	w := doRequest(router, "/status")
	var body statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if len(body.States) != 2 {
		t.Fatalf("states = %d entries, want 2", len(body.States))
	}
	if body.States[0].Status != monitor.StatusAlerting || body.States[0].IncidentID != "inc-1" {
		t.Errorf("cpu state = %+v", body.States[0])
	}
	if body.Stats.Checks != 12 || body.Stats.Raised != 1 {
		t.Errorf("stats = %+v", body.Stats)
	}
	if body.LastTickAt == nil || !body.LastTickAt.Equal(tick) {
		t.Errorf("last_tick_at = %v, want %v", body.LastTickAt, tick)
	}
}

func TestIncidentsWithoutJournalReturns404(t *testing.T) {
	router := newTestApi(t, NewStatusStore(), nil)

	w := doRequest(router, "/incidents")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when journal disabled", w.Code)
	}
}

func TestIncidentsRejectsBadLimit(t *testing.T) {
	router := newTestApi(t, NewStatusStore(), &fakeReader{})

	for _, limit := range []string{"0", "101", "abc"} {
		w := doRequest(router, "/incidents?limit="+limit)
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, w.Code)
		}
	}
}

func TestIncidentsReturnsJournalRows(t *testing.T) {
	reader := &fakeReader{
		transitions: []journal.TransitionRecord{
			{ID: "t1", IncidentID: "inc-1", Kind: "cpu", Event: "raised", MetricValue: 97.2},
		},
		outcomes: []journal.OutcomeRecord{
			{ID: "o1", IncidentID: "inc-1", Kind: "cpu", Success: true, Message: "cleaned"},
		},
	}
	router := newTestApi(t, NewStatusStore(), reader)

	w := doRequest(router, "/incidents")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Transitions []journal.TransitionRecord `json:"transitions"`
		Outcomes    []journal.OutcomeRecord    `json:"outcomes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Transitions) != 1 || body.Transitions[0].IncidentID != "inc-1" {
		t.Errorf("transitions = %+v", body.Transitions)
	}
	if len(body.Outcomes) != 1 || !body.Outcomes[0].Success {
		t.Errorf("outcomes = %+v", body.Outcomes)
	}
}

func TestIncidentsSurfacesReaderErrors(t *testing.T) {
	router := newTestApi(t, NewStatusStore(), &fakeReader{err: errors.New("db down")})

	w := doRequest(router, "/incidents")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestMetricsEndpointServesPrometheus(t *testing.T) {
	router := newTestApi(t, NewStatusStore(), nil)

	w := doRequest(router, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Errorf("metrics body empty")
	}
}
