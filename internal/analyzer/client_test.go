package analyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAnalyzeDecodesCaptionAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"caption":"an x-ray of a chest","extracted_text":"mild opacity"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	res, err := client.Analyze(context.Background(), "scan.png", []byte("fake-png"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Caption != "an x-ray of a chest" {
		t.Errorf("caption = %q", res.Caption)
	}
	if res.ExtractedText != "mild opacity" {
		t.Errorf("extracted_text = %q", res.ExtractedText)
	}
}

func TestAnalyzeOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	res, err := client.Analyze(context.Background(), "scan.png", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Caption != "" || res.ExtractedText != "" {
		t.Fatalf("expected empty optional fields, got %+v", res)
	}
}

func TestAnalyzeNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if _, err := client.Analyze(context.Background(), "scan.png", nil); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestAnalyzeNetworkErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use

	client := NewClient(srv.URL, time.Second)
	if _, err := client.Analyze(context.Background(), "scan.png", nil); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}
