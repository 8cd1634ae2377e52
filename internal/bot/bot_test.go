package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/require"

	"fortbot/internal/minefort"
)

type fakeMessage struct {
	Channel   string
	Timestamp string
	Text      string
}

// fakeSlack records the Slack calls the bot makes.
type fakeSlack struct {
	mu        sync.Mutex
	posted    []fakeMessage
	updated   []fakeMessage
	archived  []string
	invites   map[string][]string
	history   *slack.GetConversationHistoryResponse
	postErr   error
	updateErr error
	createErr error
	tsCounter int
}

func newFakeSlack() *fakeSlack {
	return &fakeSlack{invites: make(map[string][]string)}
}

func (f *fakeSlack) AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error) {
	return &slack.AuthTestResponse{User: "fortbot", UserID: "UBOT"}, nil
}

func (f *fakeSlack) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return "", "", f.postErr
	}
	f.tsCounter++
	ts := timestampFor(f.tsCounter)
	f.posted = append(f.posted, fakeMessage{
		Channel:   channelID,
		Timestamp: ts,
		Text:      optionText(options...),
	})
	return channelID, ts, nil
}

func (f *fakeSlack) UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return "", "", "", f.updateErr
	}
	f.updated = append(f.updated, fakeMessage{
		Channel:   channelID,
		Timestamp: timestamp,
		Text:      optionText(options...),
	})
	return channelID, timestamp, "", nil
}

func (f *fakeSlack) GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.history != nil {
		return f.history, nil
	}
	return &slack.GetConversationHistoryResponse{}, nil
}

func (f *fakeSlack) CreateConversationContext(ctx context.Context, params slack.CreateConversationParams) (*slack.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	ch := &slack.Channel{}
	ch.ID = "CEPH1"
	ch.Name = params.ChannelName
	return ch, nil
}

func (f *fakeSlack) ArchiveConversationContext(ctx context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, channelID)
	return nil
}

func (f *fakeSlack) InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites[channelID] = append(f.invites[channelID], users...)
	return nil, nil
}

func (f *fakeSlack) lastPost() fakeMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.posted) == 0 {
		return fakeMessage{}
	}
	return f.posted[len(f.posted)-1]
}

func timestampFor(n int) string {
	return "1700000000.00000" + string(rune('0'+n%10))
}

// optionText renders MsgOptions the way the Slack client would and pulls
// out the message text.
func optionText(options ...slack.MsgOption) string {
	_, values, err := slack.UnsafeApplyMsgOptions("xoxb-test", "C000", "https://slack.com/api/", options...)
	if err != nil {
		return ""
	}
	return values.Get("text")
}

// newTestBot wires a bot against a fake Slack and a stub provider API.
func newTestBot(t *testing.T, handler http.HandlerFunc, cfg Config) (*Bot, *fakeSlack) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := minefort.NewClientWithBaseURL(srv.URL, "bot@example.com", "secret")
	cache := minefort.NewServerCache(client, minefort.DefaultCacheTTL)

	api := newFakeSlack()
	b := New(api, nil, client, cache, cfg, nil)
	b.botUserID = "UBOT"
	return b, api
}

// providerWithServers answers login and the server list, delegating every
// other path to extra when it is non-nil.
func providerWithServers(servers string, extra http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.WriteHeader(http.StatusOK)
		case "/user/servers":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":` + servers + `}`))
		default:
			if extra != nil {
				extra(w, r)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestBotReady(t *testing.T) {
	b, _ := newTestBot(t, providerWithServers(`[]`, nil), Config{})
	require.False(t, b.Ready())
	b.ready.Store(true)
	require.True(t, b.Ready())
}

func TestShutdownArchivesEphemeralChannels(t *testing.T) {
	b, api := newTestBot(t, providerWithServers(`[]`, nil), Config{})
	b.ephemeral["CEPH1"] = "U1"
	b.ephemeral["CEPH2"] = "U2"

	b.Shutdown(context.Background())

	require.ElementsMatch(t, []string{"CEPH1", "CEPH2"}, api.archived)
	require.Zero(t, b.EphemeralChannelCount())
}
