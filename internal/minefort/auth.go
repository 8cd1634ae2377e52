package minefort

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// loginRequest is the body of POST /auth/login.
type loginRequest struct {
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

// login exchanges the stored credentials for a session. The provider
// returns its session as a Set-Cookie on success; the transport's jar picks
// it up. Any previous cookies are cleared first so an expired session
// cannot interfere with the new one.
//
// login performs exactly one attempt and does not retry; the retry policy
// belongs to the operation template in call.
func (c *Client) login(ctx context.Context) error {
	c.transport.resetCookies()

	resp, err := c.transport.do(ctx, http.MethodPost, "/auth/login", loginRequest{
		EmailAddress: c.email,
		Password:     c.password,
	})
	if err != nil {
		c.setLoggedIn(false)
		if c.obs != nil {
			c.obs.ObserveLogin(false)
		}
		return classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.setLoggedIn(false)
		if c.obs != nil {
			c.obs.ObserveLogin(false)
		}
		return NewAPIError(KindAuthenticationFailed, resp.StatusCode, loginFailureMessage(resp.Body))
	}

	c.setLoggedIn(true)
	if c.obs != nil {
		c.obs.ObserveLogin(true)
	}
	return nil
}

// loginFailureMessage extracts the provider's error message from a failed
// login response. The body is usually JSON with a "message" field; when it
// is not parseable, fall back to the first 200 bytes of raw text.
func loginFailureMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return fmt.Sprintf("Login failed: %s", parsed.Message)
	}
	return fmt.Sprintf("Login failed: %s", truncate(string(body), 200))
}

// truncate caps s at n characters. Counting runes rather than bytes keeps
// multibyte provider messages valid UTF-8 after the cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
