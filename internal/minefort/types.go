package minefort

import (
	"fmt"
	"time"
)

// ServerState is the integer state code Minefort reports for a server.
type ServerState int

// Known server states. The numbering is the provider's, not ours; gaps are
// values that have never been observed in responses.
const (
	StateHibernating ServerState = 0
	StateProcessing  ServerState = 1
	StateStarting    ServerState = 3
	StateRunning     ServerState = 4
	StateOffline     ServerState = 5
	StateStopping    ServerState = 8
)

// String returns the display label for the state. Unmapped codes are
// surfaced with their raw value rather than collapsed into a generic label,
// so that new provider states remain visible.
func (s ServerState) String() string {
	switch s {
	case StateHibernating:
		return "HIBERNATING"
	case StateProcessing:
		return "PROCESSING"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateOffline:
		return "OFFLINE"
	case StateStopping:
		return "STOPPING"
	default:
		return fmt.Sprintf("UNKNOWN (State %d)", int(s))
	}
}

// ServerSummary is a snapshot of one server from the list endpoint. A new
// snapshot replaces the old one on every fetch; summaries are never mutated
// in place.
type ServerSummary struct {
	ServerID    string      `json:"serverId"`
	ServerName  string      `json:"serverName"`
	State       ServerState `json:"state"`
	PlayerCount int         `json:"playerCount"`
	MaxPlayers  int         `json:"maxPlayers"`
}

// Action is a server lifecycle action accepted by the provider.
type Action string

const (
	ActionStart  Action = "start"
	ActionKill   Action = "kill"
	ActionSleep  Action = "sleep"
	ActionWakeup Action = "wakeup"
)

// Valid reports whether a is one of the four provider actions.
func (a Action) Valid() bool {
	switch a {
	case ActionStart, ActionKill, ActionSleep, ActionWakeup:
		return true
	}
	return false
}

// DisplayName returns the action name as shown to users ("wakeup" reads
// better as two words).
func (a Action) DisplayName() string {
	if a == ActionWakeup {
		return "wake up"
	}
	return string(a)
}

// ConsoleSnapshot holds one console log fetch. Callers compare Text across
// snapshots to detect "no change" before re-rendering.
type ConsoleSnapshot struct {
	ServerID  string
	Text      string
	FetchedAt time.Time
}
