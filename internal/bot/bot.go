package bot

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"fortbot/internal/minefort"
)

// Config holds the chat-side settings of the bot.
type Config struct {
	// ControlChannelID restricts lifecycle commands to one channel.
	// Empty allows them anywhere.
	ControlChannelID string
	// ConsoleChannelID is where the console refresher posts. Empty
	// disables the refresher.
	ConsoleChannelID string
	// Operators are the user IDs allowed to run lifecycle and console
	// commands. Empty allows everyone.
	Operators []string
	// ServerIP is the address players connect to, shown by status and ip.
	ServerIP string
}

// Recorder receives command and refresher telemetry. Implemented by
// internal/metrics; nil disables recording.
type Recorder interface {
	RecordCommand(command string)
	RecordRefreshFailure(task string)
}

// slackAPI is the slice of the Slack client the bot uses. *slack.Client
// satisfies it; tests substitute a fake.
type slackAPI interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	CreateConversationContext(ctx context.Context, params slack.CreateConversationParams) (*slack.Channel, error)
	ArchiveConversationContext(ctx context.Context, channelID string) error
	InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error)
}

// Bot connects the Minefort client to Slack: it answers commands from
// mentions and slash invocations, keeps a status message current, relays
// console output, and manages ephemeral channels.
type Bot struct {
	api    slackAPI
	socket *socketmode.Client
	client *minefort.Client
	cache  *minefort.ServerCache
	cfg    Config
	rec    Recorder

	ready     atomic.Bool
	botUserID string

	mu          sync.Mutex
	statusTS    string
	lastConsole minefort.ConsoleSnapshot
	ephemeral   map[string]string // channel ID -> owner user ID
}

// New creates the bot. socket may be nil when running without Socket Mode
// (background refreshers and health reporting still work).
func New(api slackAPI, socket *socketmode.Client, client *minefort.Client, cache *minefort.ServerCache, cfg Config, rec Recorder) *Bot {
	return &Bot{
		api:       api,
		socket:    socket,
		client:    client,
		cache:     cache,
		cfg:       cfg,
		rec:       rec,
		ephemeral: make(map[string]string),
	}
}

// Ready reports whether the Slack connection is established. Exposed to
// the health endpoint.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

// Run connects to Slack and processes events until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	auth, err := b.api.AuthTestContext(ctx)
	if err != nil {
		return err
	}
	b.botUserID = auth.UserID
	slog.Info("authenticated with Slack", "bot_user", auth.User, "bot_user_id", auth.UserID)

	if b.socket == nil {
		slog.Warn("no Socket Mode client configured, chat commands are disabled")
		b.ready.Store(true)
		<-ctx.Done()
		return nil
	}

	go b.handleEvents(ctx)

	err = b.socket.RunContext(ctx)
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// Shutdown archives any ephemeral channels still open.
func (b *Bot) Shutdown(ctx context.Context) {
	b.mu.Lock()
	channels := make([]string, 0, len(b.ephemeral))
	for id := range b.ephemeral {
		channels = append(channels, id)
	}
	b.ephemeral = make(map[string]string)
	b.mu.Unlock()

	for _, id := range channels {
		if err := b.api.ArchiveConversationContext(ctx, id); err != nil {
			slog.Warn("failed to archive ephemeral channel on shutdown", "channel", id, "error", err)
		}
	}
}

func (b *Bot) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-b.socket.Events:
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				slog.Info("connecting to Slack Socket Mode")
			case socketmode.EventTypeConnectionError:
				b.ready.Store(false)
				slog.Warn("Slack Socket Mode connection failed, retrying")
			case socketmode.EventTypeConnected:
				b.ready.Store(true)
				slog.Info("connected to Slack Socket Mode")
			case socketmode.EventTypeEventsAPI:
				apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				if evt.Request != nil {
					b.socket.Ack(*evt.Request)
				}
				b.handleEventsAPI(ctx, apiEvent)
			case socketmode.EventTypeSlashCommand:
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				if evt.Request != nil {
					b.socket.Ack(*evt.Request)
				}
				go b.handleCommand(ctx, cmd.UserID, cmd.ChannelID, cmd.Text)
			}
		}
	}
}

func (b *Bot) handleEventsAPI(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		text := stripMention(ev.Text, b.botUserID)
		go b.handleCommand(ctx, ev.User, ev.Channel, text)
	}
}

func (b *Bot) reply(ctx context.Context, channelID, text string) {
	if text == "" {
		return
	}
	if _, _, err := b.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		slog.Warn("failed to post reply", "channel", channelID, "error", err)
	}
}
