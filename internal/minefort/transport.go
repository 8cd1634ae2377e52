package minefort

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"
)

// DefaultBaseURL is the Minefort API base path. The provider exposes no
// other versions.
const DefaultBaseURL = "https://api.minefort.com/v1"

// requestTimeout bounds every call to the provider. The API normally
// answers in well under a second; console payloads are the largest
// responses and still fit comfortably.
const requestTimeout = 15 * time.Second

// Header profile the provider expects. The API fronts a browser SPA and
// rejects requests without a matching Origin.
const (
	headerAccept    = "application/json, text/plain, */*"
	headerOrigin    = "https://minefort.com"
	headerUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"
)

// transport issues HTTP calls against the provider with a shared cookie jar
// so the session cookie set by login is resent on every subsequent call.
// It surfaces non-2xx statuses to the caller rather than treating them as
// errors; retry and classification policy live in Client.
//
// mu guards the jar swap in resetCookies against requests in flight; the
// http.Client itself is otherwise safe to share.
type transport struct {
	baseURL string

	mu   sync.RWMutex
	http *http.Client
}

// apiResponse is the raw outcome of one provider call.
type apiResponse struct {
	StatusCode int
	Body       []byte
}

func newTransport(baseURL string) *transport {
	jar, _ := cookiejar.New(nil)
	return &transport{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: requestTimeout,
		},
	}
}

// resetCookies drops all session cookies. Called before a fresh login so a
// stale or invalid cookie cannot shadow the new session.
func (t *transport) resetCookies() {
	jar, _ := cookiejar.New(nil)
	t.mu.Lock()
	t.http.Jar = jar
	t.mu.Unlock()
}

// do performs one request. payload, when non-nil, is sent as a JSON body.
// A non-2xx status is not an error; only transport-level failures
// (connection, timeout) return a non-nil error.
func (t *transport) do(ctx context.Context, method, path string, payload any) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", headerAccept)
	req.Header.Set("Origin", headerOrigin)
	req.Header.Set("User-Agent", headerUserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	t.mu.RLock()
	resp, err := t.http.Do(req)
	t.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &apiResponse{StatusCode: resp.StatusCode, Body: data}, nil
}
