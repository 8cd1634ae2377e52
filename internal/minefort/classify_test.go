package minefort

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestServerState_String(t *testing.T) {
	cases := []struct {
		state ServerState
		want  string
	}{
		{StateHibernating, "HIBERNATING"},
		{StateProcessing, "PROCESSING"},
		{StateStarting, "STARTING"},
		{StateRunning, "RUNNING"},
		{StateOffline, "OFFLINE"},
		{StateStopping, "STOPPING"},
		{ServerState(2), "UNKNOWN (State 2)"},
		{ServerState(99), "UNKNOWN (State 99)"},
		{ServerState(-1), "UNKNOWN (State -1)"},
	}

	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("ServerState(%d).String() = %q, want %q", int(tc.state), got, tc.want)
		}
	}
}

func TestActionSucceeded(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		body   string
		want   bool
	}{
		{"explicit success flag", ActionStart, `{"success":true}`, true},
		{"action name in message", ActionStart, `{"message":"start queued"}`, true},
		{"progressive verb", ActionKill, `{"message":"server is stopping"}`, true},
		{"ok anywhere in body", ActionSleep, `{"status":"OK"}`, true},
		{"plain failure", ActionStart, `{"success":false,"message":"quota exceeded"}`, false},
		{"non-json without ok", ActionStart, `nope`, false},
		{"case insensitive", ActionWakeup, `{"message":"WAKEUP accepted"}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := actionSucceeded(tc.action, []byte(tc.body)); got != tc.want {
				t.Errorf("actionSucceeded(%s, %q) = %v, want %v", tc.action, tc.body, got, tc.want)
			}
		})
	}
}

func TestBadRequestMessage(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		body   string
		want   string
	}{
		{"start on running server", ActionStart, `{"message":"Server is already running"}`, "Server is already running."},
		{"kill on stopped server", ActionKill, `{"message":"server not running"}`, "Server is not running."},
		{"wakeup on active server", ActionWakeup, `{"message":"already active"}`, "Server is already awake/online."},
		{"sleep on awake server", ActionSleep, `{"message":"not hibernating"}`, "Server is not in a state to hibernate."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := badRequestMessage(tc.action, []byte(tc.body)); got != tc.want {
				t.Errorf("badRequestMessage(%s) = %q, want %q", tc.action, got, tc.want)
			}
		})
	}

	t.Run("unclassified body is truncated raw text", func(t *testing.T) {
		long := make([]byte, 400)
		for i := range long {
			long[i] = 'y'
		}
		got := badRequestMessage(ActionStart, long)
		if len(got) > len("Bad request to Minefort API: ")+203 {
			t.Errorf("expected truncation, got %d chars", len(got))
		}
	})

	t.Run("substring must match the action", func(t *testing.T) {
		// "already running" only maps for start; a kill against that body
		// falls through to the raw message.
		got := badRequestMessage(ActionKill, []byte("already running"))
		if got == "Server is already running." {
			t.Error("kill should not classify as already-running")
		}
	})
}

func TestProviderMessage(t *testing.T) {
	if got := providerMessage([]byte(`{"message":"hi"}`)); got != "hi" {
		t.Errorf("expected structured message, got %q", got)
	}
	if got := providerMessage([]byte(`not json`)); got != "not json" {
		t.Errorf("expected raw fallback, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Run("short strings pass through", func(t *testing.T) {
		if got := truncate("hello", 200); got != "hello" {
			t.Errorf("truncate() = %q", got)
		}
	})

	t.Run("long strings are capped with an ellipsis", func(t *testing.T) {
		long := strings.Repeat("x", 500)
		got := truncate(long, 200)
		if got != strings.Repeat("x", 200)+"..." {
			t.Errorf("unexpected truncation: %d chars", len(got))
		}
	})

	t.Run("multibyte text stays valid UTF-8", func(t *testing.T) {
		long := strings.Repeat("ü", 300)
		got := truncate(long, 200)
		if !utf8.ValidString(got) {
			t.Errorf("truncate() produced invalid UTF-8: %q", got[:12])
		}
		if want := strings.Repeat("ü", 200) + "..."; got != want {
			t.Errorf("expected a 200 rune cut, got %d bytes", len(got))
		}
	})
}
