package transport

import (
	"compress/gzip"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestHardenedFetcherDecodesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a user agent header")
		}
		if r.Header.Get("Accept-Language") == "" {
			t.Error("expected an accept-language header")
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("<html>payload</html>"))
		gz.Close()
	}))
	defer server.Close()

	body, err := NewHardenedFetcher("test-agent").Fetch(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<html>payload</html>" {
		t.Errorf("decoded body = %q", body)
	}
}

func TestHardenedFetcherDecodesBrotli(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		br := brotli.NewWriter(w)
		br.Write([]byte("<html>br</html>"))
		br.Close()
	}))
	defer server.Close()

	body, err := NewHardenedFetcher("test-agent").Fetch(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<html>br</html>" {
		t.Errorf("decoded body = %q", body)
	}
}

func TestFetchReportsRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewPlainFetcher("test-agent").Fetch(server.URL)
	if err == nil {
		t.Fatal("expected an error for a 429 response")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("error must wrap ErrRateLimited, got: %v", err)
	}
}

func TestFetchRejectsOtherStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewPlainFetcher("test-agent").Fetch(server.URL)
	if err == nil {
		t.Fatal("expected an error for a 403 response")
	}
	if errors.Is(err, ErrRateLimited) {
		t.Error("a 403 is not a rate limit")
	}
}
