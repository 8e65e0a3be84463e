package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestClient_FetchOrders(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {
				"data": [
					{"id":"r1","timestamp":"2026-08-28T10:00:00Z","order_status":"pending","order_details":{"type":"callback"}},
					{"id":"r2","timestamp":"2026-08-28T09:00:00Z","order_status":"completed","order_details":"{\"type\":\"faq\"}"}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret"}, zap.NewNop())

	records, err := client.FetchOrders(context.Background(), "+15550001111", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "r1" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}

	if gotPath != "/orders" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotQuery != "page_size=100&twilio_phone_number=%2B15550001111" {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
}

func TestClient_FetchOrders_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, zap.NewNop())
	if _, err := client.FetchOrders(context.Background(), "+15550001111", 100); err == nil {
		t.Fatal("expected error for 502")
	}
}

func TestClient_FetchOrders_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, zap.NewNop())
	if _, err := client.FetchOrders(context.Background(), "+15550001111", 100); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_MarkRead(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, zap.NewNop())
	if err := client.MarkRead(context.Background(), "rec-42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/orders/rec-42/read" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

func TestClient_MarkRead_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, zap.NewNop())
	if err := client.MarkRead(context.Background(), "rec-42"); err == nil {
		t.Fatal("expected error for 404")
	}
}
