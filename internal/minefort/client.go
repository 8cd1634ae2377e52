package minefort

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// maxAttempts bounds the operation retry template: the initial call plus at
// most one retry after a successful re-login.
const maxAttempts = 2

// Observer receives request-level telemetry from the client. Implemented by
// internal/metrics; nil disables observation.
type Observer interface {
	ObserveRequest(operation string, statusCode int, duration time.Duration)
	ObserveLogin(success bool)
}

// Client talks to the Minefort API on behalf of one account. It owns the
// session: the cookie jar inside its transport and the logged-in flag.
// Operations transparently log in when needed and re-login exactly once
// when the provider reports the session expired (401/403).
//
// Client is safe for concurrent use. The logged-in flag is guarded, but two
// operations racing through the retry template may both issue a login
// against the provider; that is accepted, since repeated logins simply
// re-establish the same session.
type Client struct {
	transport *transport
	email     string
	password  string

	mu       sync.Mutex
	loggedIn bool

	obs Observer
}

// NewClient creates a client for the given Minefort account. The session
// starts logged out; the first operation triggers the login.
func NewClient(email, password string) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, email, password)
}

// NewClientWithBaseURL is NewClient against a non-default API base.
// Used by tests to point the client at a local server.
func NewClientWithBaseURL(baseURL, email, password string) *Client {
	return &Client{
		transport: newTransport(baseURL),
		email:     email,
		password:  password,
	}
}

// SetObserver attaches request telemetry. Must be called before the client
// is shared across goroutines.
func (c *Client) SetObserver(obs Observer) {
	c.obs = obs
}

func (c *Client) setLoggedIn(v bool) {
	c.mu.Lock()
	c.loggedIn = v
	c.mu.Unlock()
}

func (c *Client) isLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

// ensureLogin logs in if the session is not currently authenticated.
// At most one login attempt is made; a failure is returned immediately.
func (c *Client) ensureLogin(ctx context.Context) error {
	if c.isLoggedIn() {
		return nil
	}
	return c.login(ctx)
}

// call is the operation template shared by all four public operations:
// ensure a session, issue the request, and on 401/403 drop the session,
// re-login once and retry the request once. Any other outcome, success or
// failure, is returned to the operation for parsing and classification.
func (c *Client) call(ctx context.Context, operation, method, path string, payload any) (*apiResponse, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.ensureLogin(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.transport.do(ctx, method, path, payload)
		if err != nil {
			return nil, classifyTransportError(err)
		}
		if c.obs != nil {
			c.obs.ObserveRequest(operation, resp.StatusCode, time.Since(start))
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.setLoggedIn(false)
			if attempt < maxAttempts {
				// Next iteration performs the single re-login via
				// ensureLogin before retrying the request.
				continue
			}
			return nil, NewAPIError(KindAuthenticationFailed, resp.StatusCode,
				"Session expired and could not be re-established.")
		}

		return resp, nil
	}

	// Unreachable: the loop always returns.
	return nil, NewAPIError(KindUnexpected, 0, "retry loop exhausted")
}

// ListServers fetches the account's servers. The provider nests the list
// under "result"; a response without that key is an empty account, not an
// error.
func (c *Client) ListServers(ctx context.Context) ([]ServerSummary, error) {
	resp, err := c.call(ctx, "list_servers", http.MethodGet, "/user/servers", nil)
	if err != nil {
		return nil, err
	}
	if apiErr := classifyStatus(resp, ""); apiErr != nil {
		return nil, apiErr
	}

	var parsed struct {
		Result []ServerSummary `json:"result"`
	}
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, NewAPIError(KindUnexpected, resp.StatusCode,
			fmt.Sprintf("Unexpected server list response: %s", truncate(string(resp.Body), 200)))
	}
	if parsed.Result == nil {
		return []ServerSummary{}, nil
	}
	return parsed.Result, nil
}

// PerformAction runs a lifecycle action (start, kill, sleep, wakeup)
// against a server. On success the returned message is display-ready.
func (c *Client) PerformAction(ctx context.Context, serverID string, action Action) (string, error) {
	if !action.Valid() {
		return "", NewAPIError(KindBadRequest, 0,
			fmt.Sprintf("Invalid action %q. Must be one of: start, kill, sleep, wakeup.", action))
	}

	path := fmt.Sprintf("/server/%s/%s", serverID, action)
	resp, err := c.call(ctx, "perform_action", http.MethodPost, path, nil)
	if err != nil {
		return "", err
	}
	if apiErr := classifyStatus(resp, action); apiErr != nil {
		return "", apiErr
	}

	if actionSucceeded(action, resp.Body) {
		return fmt.Sprintf("Server %s request sent successfully!", action.DisplayName()), nil
	}
	return "", NewAPIError(KindUnexpected, resp.StatusCode,
		fmt.Sprintf("Minefort API reported: %s", providerMessage(resp.Body)))
}

// GetConsoleLogs fetches the console output of a server. The provider has
// shipped the text under several keys over time; the priority order
// logs, result, console is the observed contract. A response matching none
// of them yields an empty snapshot.
func (c *Client) GetConsoleLogs(ctx context.Context, serverID string) (ConsoleSnapshot, error) {
	path := fmt.Sprintf("/server/%s/console", serverID)
	resp, err := c.call(ctx, "get_console_logs", http.MethodGet, path, nil)
	if err != nil {
		return ConsoleSnapshot{}, err
	}
	if apiErr := classifyStatus(resp, ""); apiErr != nil {
		return ConsoleSnapshot{}, apiErr
	}

	return ConsoleSnapshot{
		ServerID:  serverID,
		Text:      extractConsoleText(resp.Body),
		FetchedAt: time.Now(),
	}, nil
}

// SendConsoleCommand sends one command line to the server console. Any 2xx
// from the provider is success.
func (c *Client) SendConsoleCommand(ctx context.Context, serverID, command string) (string, error) {
	path := fmt.Sprintf("/server/%s/command", serverID)
	resp, err := c.call(ctx, "send_console_command", http.MethodPost, path, map[string]string{
		"command": command,
	})
	if err != nil {
		return "", err
	}
	if apiErr := classifyStatus(resp, ""); apiErr != nil {
		return "", apiErr
	}

	return fmt.Sprintf("Command %q sent successfully.", command), nil
}
