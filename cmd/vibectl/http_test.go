package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunNearby(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/moments/nearby" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("maxDistance") == "" {
			t.Errorf("missing query params: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"moments":[]}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := runNearby(srv.URL, 52.37, 4.9, 1000, 1, 10, &out); err != nil {
		t.Fatalf("runNearby: %v", err)
	}
	if !strings.Contains(out.String(), "moments") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestRunUpdateLocation_SendsIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.Header.Get("X-User-ID") != "u1" {
			t.Errorf("missing identity header")
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := runUpdateLocation(srv.URL, "u1", 52.37, 4.9, &out); err != nil {
		t.Fatalf("runUpdateLocation: %v", err)
	}
}

func TestDoRequest_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := runHealth(srv.URL, &out)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
