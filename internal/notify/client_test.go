package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hexclash/backend/internal/config"
)

func testPayload() ResultPayload {
	now := time.Now()
	return ResultPayload{
		ResultID:    42,
		ArenaID:     "main",
		BoardWidth:  1280,
		BoardHeight: 720,
		RosterSize:  3,
		WhitePoints: 17,
		BlackPoints: 9,
		Winner:      "WHITE",
		EndReason:   "RESET",
		StartedAt:   now.Add(-time.Minute),
		EndedAt:     now,
	}
}

func testClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 5 * time.Second}}
}

func TestNewClientRequiresURL(t *testing.T) {
	if c := NewClient(nil); c != nil {
		t.Error("NewClient(nil) should return nil")
	}
	if c := NewClient(&config.Config{}); c != nil {
		t.Error("NewClient without a webhook URL should return nil")
	}
	if c := NewClient(&config.Config{ResultWebhookURL: "https://example.com/hook"}); c == nil {
		t.Error("NewClient with a webhook URL should not return nil")
	}
}

func TestDeliverPostsJSON(t *testing.T) {
	var got ResultPayload
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := testClient().Deliver(context.Background(), server.URL, testPayload()); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}
	if got.ResultID != 42 || got.ArenaID != "main" || got.Winner != "WHITE" {
		t.Errorf("Server received wrong payload: %+v", got)
	}
}

func TestDeliverDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	if err := testClient().Deliver(context.Background(), server.URL, testPayload()); err == nil {
		t.Fatal("Deliver should fail on 400")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("4xx response was retried: %d calls, want 1", n)
	}
}

func TestDeliverRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := testClient().Deliver(context.Background(), server.URL, testPayload()); err != nil {
		t.Fatalf("Deliver should succeed after 5xx retries: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("Expected 3 attempts, got %d", n)
	}
}

func TestDeliverGivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if err := testClient().Deliver(context.Background(), server.URL, testPayload()); err == nil {
		t.Fatal("Deliver should fail when every attempt gets a 5xx")
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("Expected 3 attempts, got %d", n)
	}
}

func TestNilClientDeliver(t *testing.T) {
	var c *Client
	if err := c.Deliver(context.Background(), "http://localhost:1", testPayload()); err == nil {
		t.Error("Deliver on a nil client should fail")
	}
}
