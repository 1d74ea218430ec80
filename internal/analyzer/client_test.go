package analyzer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"nutrisnap-backend/internal/nutrition"
)

const okBody = `{"mealName":"Oatmeal","calories":310,"protein":11,"carbs":54,"fat":6,"fiber":8,"sugar":12,"sodium":140,"confidenceScore":0.91,"healthScore":8,"rationale":"whole grains"}`

func TestAnalyzeSendsMultipartFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Webhook-Token"); got != "secret" {
			t.Errorf("expected auth header, got %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "jpeg-bytes" {
			t.Errorf("unexpected payload %q", data)
		}
		if header.Filename != "lunch.jpg" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("unexpected part content type %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	client, err := New(Options{URL: srv.URL, AuthHeader: "X-Webhook-Token", AuthToken: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := client.Analyze(context.Background(), "lunch.jpg", "image/jpeg", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.MealName != "Oatmeal" || got.Calories != 310 || got.HealthScore != 8 {
		t.Fatalf("unexpected analysis %+v", got)
	}
}

func TestAnalyzeNon2xxIsAnalysisError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewWithHTTPClient(srv.URL, srv.Client()).Analyze(context.Background(), "a.jpg", "image/jpeg", []byte("x"))
	if !errors.Is(err, ErrAnalysis) {
		t.Fatalf("expected ErrAnalysis, got %v", err)
	}
}

func TestAnalyzeMalformedBodyIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"mealName":`))
	}))
	defer srv.Close()

	_, err := NewWithHTTPClient(srv.URL, srv.Client()).Analyze(context.Background(), "a.jpg", "image/jpeg", []byte("x"))
	if !errors.Is(err, nutrition.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if errors.Is(err, ErrAnalysis) {
		t.Fatalf("parse failure must not be reported as ErrAnalysis")
	}
}

func TestAnalyzeUnreachableIsAnalysisError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewWithHTTPClient(url, nil).Analyze(context.Background(), "a.jpg", "image/jpeg", []byte("x"))
	if !errors.Is(err, ErrAnalysis) {
		t.Fatalf("expected ErrAnalysis, got %v", err)
	}
}

func TestAnalyzeUsesClientCredentials(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected authorization %q", got)
		}
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	client, err := New(Options{URL: srv.URL, ClientID: "svc", ClientSecret: "s3cret", TokenURL: tokenSrv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := client.Analyze(context.Background(), "a.jpg", "image/jpeg", []byte("x")); err != nil {
			t.Fatalf("Analyze: %v", err)
		}
	}
	if tokenCalls.Load() != 1 {
		t.Fatalf("expected cached token, got %d token calls", tokenCalls.Load())
	}
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error for missing url")
	}
}
