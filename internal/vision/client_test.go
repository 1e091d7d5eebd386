package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRecognize(t *testing.T) {
	var gotPath string
	var gotReq recognizeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"title":"Naruto","confidence":0.91},{"title":"Bleach","confidence":0.4}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	out, err := client.Recognize(context.Background(), []byte("image-bytes"), 5)
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}

	if gotPath != "/v1/recognize" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotReq.TopK != 5 {
		t.Fatalf("unexpected top_k: %d", gotReq.TopK)
	}
	if gotReq.ImageB64 != base64.StdEncoding.EncodeToString([]byte("image-bytes")) {
		t.Fatalf("image not base64 encoded: %s", gotReq.ImageB64)
	}
	if len(out) != 2 || out[0].Title != "Naruto" || out[0].Confidence != 0.91 {
		t.Fatalf("unexpected candidates: %+v", out)
	}
}

func TestRecognizeNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.Recognize(context.Background(), []byte("x"), 5); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestRecognizeContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel r.Context().
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.Recognize(ctx, []byte("x"), 5); err == nil {
		t.Fatal("expected error when context expires")
	}
}

func TestBuildIndex(t *testing.T) {
	var gotReq indexRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/index" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if err := client.BuildIndex(context.Background(), []string{"Naruto", "Bleach"}); err != nil {
		t.Fatalf("build index: %v", err)
	}
	if len(gotReq.Titles) != 2 || gotReq.Titles[0] != "Naruto" {
		t.Fatalf("unexpected titles: %v", gotReq.Titles)
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://vision.local/", time.Second)
	if client.BaseURL != "http://vision.local" {
		t.Fatalf("trailing slash not trimmed: %s", client.BaseURL)
	}
}
