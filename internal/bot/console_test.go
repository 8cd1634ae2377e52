package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleDelta(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		current  string
		want     string
	}{
		{"first snapshot is all new", "", "line 1\n", "line 1\n"},
		{"unchanged output is empty", "line 1\n", "line 1\n", ""},
		{"appended lines only", "line 1\n", "line 1\nline 2\n", "line 2\n"},
		{"rollover replays everything", "line 1\nline 2\n", "line 9\n", "line 9\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, consoleDelta(tt.previous, tt.current))
		})
	}
}

// consoleProvider serves a mutable console log alongside the server list.
type consoleProvider struct {
	mu   sync.Mutex
	logs string
}

func (p *consoleProvider) set(logs string) {
	p.mu.Lock()
	p.logs = logs
	p.mu.Unlock()
}

func (p *consoleProvider) handler(servers string) http.HandlerFunc {
	return providerWithServers(servers, func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		logs := p.logs
		p.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"logs": logs})
	})
}

func TestRefreshConsolePostsOnlyNewOutput(t *testing.T) {
	provider := &consoleProvider{}
	provider.set("[12:00] Server started\n")
	servers := `[{"serverId":"abc","serverName":"survival","state":4}]`
	b, api := newTestBot(t, provider.handler(servers), Config{ConsoleChannelID: "CCON"})

	require.NoError(t, b.RefreshConsole(context.Background()))
	require.Len(t, api.posted, 1)
	assert.Equal(t, "CCON", api.posted[0].Channel)
	assert.Contains(t, api.posted[0].Text, "[12:00] Server started")

	// No new output, no new message.
	require.NoError(t, b.RefreshConsole(context.Background()))
	assert.Len(t, api.posted, 1)

	// Appended output posts just the delta.
	provider.set("[12:00] Server started\n[12:05] alice joined\n")
	require.NoError(t, b.RefreshConsole(context.Background()))
	require.Len(t, api.posted, 2)
	assert.Contains(t, api.posted[1].Text, "[12:05] alice joined")
	assert.NotContains(t, api.posted[1].Text, "Server started")
}

func TestRefreshConsoleSkipsWhenNotRunning(t *testing.T) {
	provider := &consoleProvider{}
	provider.set("should not be fetched")
	servers := `[{"serverId":"abc","serverName":"survival","state":0}]`
	b, api := newTestBot(t, provider.handler(servers), Config{ConsoleChannelID: "CCON"})

	require.NoError(t, b.RefreshConsole(context.Background()))
	assert.Empty(t, api.posted)
}

func TestRefreshConsoleSkipsWithoutChannel(t *testing.T) {
	servers := `[{"serverId":"abc","serverName":"survival","state":4}]`
	b, api := newTestBot(t, providerWithServers(servers, nil), Config{})

	require.NoError(t, b.RefreshConsole(context.Background()))
	assert.Empty(t, api.posted)
}
