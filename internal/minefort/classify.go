package minefort

import (
	"encoding/json"
	"fmt"
	"strings"
)

// This file isolates the response classification heuristics. The provider's
// success and failure payloads are undocumented and inconsistent, so the
// checks here are deliberately loose substring matches reproduced from
// observed responses. Tighten them only against fresh observations of the
// live API, and prefer flagging an unrecognized shape over guessing.

// providerMessage pulls the "message" field out of a provider body, falling
// back to the truncated raw body.
func providerMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return truncate(string(body), 200)
}

// actionSucceeded decides whether a 2xx action response actually indicates
// success. Observed success payloads variously carry an explicit success
// flag, echo the action name in the message, use a progressive verb
// ("starting", "stopping"), or just say "ok" somewhere.
func actionSucceeded(action Action, body []byte) bool {
	var parsed struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Success {
			return true
		}
		msg := strings.ToLower(parsed.Message)
		if strings.Contains(msg, string(action)) || strings.Contains(msg, "ing") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(string(body)), "ok")
}

// badRequestMessage maps known 400 bodies to actionable messages. The
// provider answers lifecycle actions against a server in the wrong state
// with free-text complaints; these are the observed ones.
func badRequestMessage(action Action, body []byte) string {
	text := strings.ToLower(string(body))

	switch {
	case action == ActionStart && strings.Contains(text, "already running"):
		return "Server is already running."
	case action == ActionKill && strings.Contains(text, "not running"):
		return "Server is not running."
	case action == ActionWakeup && strings.Contains(text, "already active"):
		return "Server is already awake/online."
	case action == ActionSleep && strings.Contains(text, "not hibernating"):
		return "Server is not in a state to hibernate."
	}

	return fmt.Sprintf("Bad request to Minefort API: %s", truncate(string(body), 200))
}

// classifyStatus converts a non-2xx, non-auth response into an APIError.
// Returns nil for 2xx. Auth statuses never reach here; the retry template
// consumes them first.
func classifyStatus(resp *apiResponse, action Action) *APIError {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == 400:
		return NewAPIError(KindBadRequest, resp.StatusCode, badRequestMessage(action, resp.Body))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return NewAPIError(KindBadRequest, resp.StatusCode,
			fmt.Sprintf("Minefort API rejected the request (status %d): %s",
				resp.StatusCode, providerMessage(resp.Body)))
	case resp.StatusCode >= 500:
		return NewAPIError(KindServerError, resp.StatusCode,
			fmt.Sprintf("Minefort API is unavailable (status %d).", resp.StatusCode))
	default:
		return NewAPIError(KindUnexpected, resp.StatusCode,
			fmt.Sprintf("Unexpected status %d from Minefort API.", resp.StatusCode))
	}
}

// extractConsoleText reads the console log text from a console response,
// trying the observed keys in priority order.
func extractConsoleText(body []byte) string {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	for _, key := range []string{"logs", "result", "console"} {
		raw, ok := parsed[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			return text
		}
		// Some responses carry the log as an array of lines.
		var lines []string
		if err := json.Unmarshal(raw, &lines); err == nil {
			return strings.Join(lines, "\n")
		}
	}
	return ""
}
