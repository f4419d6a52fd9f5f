package remediation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPExecutorPostsRequestAndDecodesResponse(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/remediation/execute" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{
			Success:         true,
			Message:         "freed 2.1GB",
			Details:         []string{"removed rotated logs"},
			ExecutionTimeMs: 820,
		})
	}))
	defer srv.Close()

	exec := NewHTTPExecutor(srv.URL+"/", 5*time.Second)
	resp, err := exec.Execute(context.Background(), Request{
		IssueType: IssueHighDisk,
		Priority:  6,
		Context:   map[string]any{"hostname": "host-1"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got.IssueType != IssueHighDisk || got.Priority != 6 {
		t.Errorf("posted request = %+v", got)
	}
	if got.Context["hostname"] != "host-1" {
		t.Errorf("posted context = %v", got.Context)
	}
	if !resp.Success || resp.Message != "freed 2.1GB" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Details) != 1 || resp.ExecutionTimeMs != 820 {
		t.Errorf("response details = %+v", resp)
	}
}

func TestHTTPExecutorTreatsNon2xxAsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	exec := NewHTTPExecutor(srv.URL, 5*time.Second)
	if _, err := exec.Execute(context.Background(), Request{IssueType: IssueHighCPU}); err == nil {
		t.Errorf("Execute on 500 = nil error, want transport error")
	}
}

func TestHTTPExecutorReportsUnreachableService(t *testing.T) {
	exec := NewHTTPExecutor("http://127.0.0.1:1", time.Second)
	if _, err := exec.Execute(context.Background(), Request{IssueType: IssueHighCPU}); err == nil {
		t.Errorf("Execute against closed port = nil error, want failure")
	}
}

func TestHTTPExecutorHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel the request context; otherwise this
		// handler never unblocks and srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	exec := NewHTTPExecutor(srv.URL, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := exec.Execute(ctx, Request{IssueType: IssueHighCPU}); err == nil {
		t.Errorf("Execute with expired context = nil error, want failure")
	}
}

func TestSimulatedExecutorSucceedsWithSteps(t *testing.T) {
	exec := NewSimulatedExecutor()
	exec.delay = time.Millisecond

	resp, err := exec.Execute(context.Background(), Request{IssueType: IssueHighMemory, Priority: 8})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !resp.Success {
		t.Errorf("Success = false, want true")
	}
	if len(resp.Details) == 0 {
		t.Errorf("Details empty, want simulated steps")
	}
}

func TestSimulatedExecutorHonorsCancellation(t *testing.T) {
	exec := NewSimulatedExecutor()
	exec.delay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := exec.Execute(ctx, Request{IssueType: IssueHighCPU}); err == nil {
		t.Errorf("Execute with canceled context = nil error, want ctx.Err()")
	}
}
