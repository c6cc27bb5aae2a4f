package pinning

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

func newTestClient(t *testing.T, apiURL, gatewayURL string) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIBaseURL:     apiURL,
		GatewayBaseURL: gatewayURL,
		JWT:            "test-jwt",
		Retries:        3,
		RetryDelay:     time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.sleep = func(time.Duration) {}
	return client
}

func TestPinSuccess(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pinEndpoint {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "EV-1.bin" {
			t.Fatalf("unexpected upload name %q", header.Filename)
		}
		if r.FormValue("pinataMetadata") == "" {
			t.Fatal("missing pinataMetadata field")
		}
		w.Write([]byte(`{"IpfsHash":"QmTestCID"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	cid, err := client.Pin(context.Background(), []byte("ciphertext"), "EV-1.bin", "scene.jpg")
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if cid != "QmTestCID" {
		t.Fatalf("cid = %q", cid)
	}
	if gotAuth != "Bearer test-jwt" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestPinRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"IpfsHash":"QmRetried"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	cid, err := client.Pin(context.Background(), []byte("ciphertext"), "EV-2.bin", "")
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if cid != "QmRetried" {
		t.Fatalf("cid = %q", cid)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestPinDoesNotRetryRejection(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	if _, err := client.Pin(context.Background(), []byte("ciphertext"), "EV-3.bin", ""); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls.Load())
	}
}

func TestFetchIdempotent(t *testing.T) {
	payload := []byte("encrypted-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/QmKnown" {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	first, err := client.Fetch(context.Background(), "QmKnown")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	second, err := client.Fetch(context.Background(), "QmKnown")
	if err != nil {
		t.Fatalf("fetch again: %v", err)
	}
	if !bytes.Equal(first, second) || !bytes.Equal(first, payload) {
		t.Fatal("repeated fetches returned different bytes")
	}
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	if _, err := client.Fetch(context.Background(), "QmMissing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	_, err := client.Fetch(context.Background(), "QmBroken")
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestPinnedFilenameCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pinListEndpoint {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		calls.Add(1)
		w.Write([]byte(`{"rows":[{"metadata":{"name":"scene.jpg"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	if name := client.PinnedFilename(context.Background(), "QmNamed"); name != "scene.jpg" {
		t.Fatalf("name = %q", name)
	}
	if name := client.PinnedFilename(context.Background(), "QmNamed"); name != "scene.jpg" {
		t.Fatalf("cached name = %q", name)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 metadata call, got %d", calls.Load())
	}
}
