package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// MaxResponseBytes caps HTTP response bodies to prevent memory spikes.
	// Upload responses are tiny JSON envelopes; history lists stay well below.
	MaxResponseBytes = 4 * 1024 * 1024
	// Transport tuning for stable connections across repeated API calls.
	MaxIdleConns          = 100
	MaxIdleConnsPerHost   = 20
	IdleConnTimeout       = 120 * time.Second
	TLSHandshakeTimeout   = 30 * time.Second
	ExpectContinueTimeout = 2 * time.Second
)

var (
	mu             sync.Mutex
	clients        = map[time.Duration]*http.Client{}
	overrideClient *http.Client
)

// NewClient returns a new http.Client with the specified timeout.
func NewClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          MaxIdleConns,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// ClientFor returns a shared client for the given timeout. Each endpoint of
// the upload service carries its own deadline (verification 10s, history 15s,
// file upload 60s, URL upload 90s), so clients are cached per timeout rather
// than held as a single default.
func ClientFor(timeout time.Duration) *http.Client {
	mu.Lock()
	defer mu.Unlock()
	if overrideClient != nil {
		return overrideClient
	}
	if c, ok := clients[timeout]; ok {
		return c
	}
	c := NewClient(timeout)
	clients[timeout] = c
	return c
}

// SetClientForTesting overrides the shared clients for tests.
// It returns a restore function to reset the previous override.
func SetClientForTesting(client *http.Client) func() {
	mu.Lock()
	prev := overrideClient
	overrideClient = client
	mu.Unlock()
	return func() {
		mu.Lock()
		overrideClient = prev
		mu.Unlock()
	}
}

// DoAndRead performs an HTTP request, reads the entire response body,
// ensures the body is closed, and returns the body content and the response
// object. This prevents resource leaks by always closing the response body.
func DoAndRead(client *http.Client, req *http.Request) ([]byte, *http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > MaxResponseBytes {
		return nil, resp, fmt.Errorf("response body too large (limit %d bytes)", MaxResponseBytes)
	}

	limited := &io.LimitedReader{R: resp.Body, N: MaxResponseBytes + 1}
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, resp, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseBytes {
		return nil, resp, fmt.Errorf("response body too large (limit %d bytes)", MaxResponseBytes)
	}

	return body, resp, nil
}
