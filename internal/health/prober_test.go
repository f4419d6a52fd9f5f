package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ericlein/Eribot/internal/metric"
)

func TestProberHealthyEndpointScoresZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	p := NewProber(srv.URL+"/health", time.Second)
	reading, err := p.Sample(context.Background(), metric.KindServiceHealth)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if reading.Value != 0 {
		t.Errorf("Value = %v, want 0 for healthy endpoint", reading.Value)
	}
	if reading.Kind != metric.KindServiceHealth {
		t.Errorf("Kind = %s", reading.Kind)
	}
	if !strings.Contains(srv.URL, reading.Hostname) {
		t.Errorf("Hostname = %q, want probed host", reading.Hostname)
	}
}

func TestProberUnhealthyStatusScoresFull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "degraded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProber(srv.URL+"/health", time.Second)
	reading, err := p.Sample(context.Background(), metric.KindServiceHealth)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if reading.Value != 100 {
		t.Errorf("Value = %v, want 100 for 503", reading.Value)
	}
}

func TestProberUnreachableEndpointScoresFullWithoutError(t *testing.T) {
	p := NewProber("http://127.0.0.1:1/health", 200*time.Millisecond)
	reading, err := p.Sample(context.Background(), metric.KindServiceHealth)
	if err != nil {
		t.Fatalf("Sample = error %v, want unhealthy reading instead", err)
	}
	if reading.Value != 100 {
		t.Errorf("Value = %v, want 100 for unreachable endpoint", reading.Value)
	}
}

func TestProberRejectsOtherKinds(t *testing.T) {
	p := NewProber("http://localhost/health", time.Second)
	if _, err := p.Sample(context.Background(), metric.KindCPU); err == nil {
		t.Errorf("Sample(cpu) = nil error, want rejection")
	}
}
