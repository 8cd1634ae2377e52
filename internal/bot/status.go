package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// RefreshStatus forces a server list refresh and updates the pinned status
// message in the control channel, posting a new one when none exists yet.
// Run periodically and after lifecycle actions.
func (b *Bot) RefreshStatus(ctx context.Context) error {
	if b.cfg.ControlChannelID == "" {
		return nil
	}

	servers := b.cache.GetServers(ctx, true)
	if len(servers) == 0 {
		// Nothing to render; keep the previous message rather than
		// replacing it with an empty one.
		return nil
	}

	text := buildStatusMessage(servers, b.cfg.ServerIP, time.Now())

	b.mu.Lock()
	ts := b.statusTS
	b.mu.Unlock()

	if ts == "" {
		ts = b.findStatusMessage(ctx)
	}

	if ts != "" {
		_, newTS, _, err := b.api.UpdateMessageContext(ctx, b.cfg.ControlChannelID, ts,
			slack.MsgOptionText(text, false))
		if err == nil {
			b.setStatusTS(newTS)
			return nil
		}
		// The message may have been deleted; fall through and post fresh.
		slog.Debug("status message update failed, posting a new one", "error", err)
	}

	_, newTS, err := b.api.PostMessageContext(ctx, b.cfg.ControlChannelID,
		slack.MsgOptionText(text, false))
	if err != nil {
		return err
	}
	b.setStatusTS(newTS)
	return nil
}

func (b *Bot) setStatusTS(ts string) {
	b.mu.Lock()
	b.statusTS = ts
	b.mu.Unlock()
}

// findStatusMessage searches recent channel history for this bot's status
// message, so a restarted bot edits its old message instead of stacking
// new ones.
func (b *Bot) findStatusMessage(ctx context.Context) string {
	resp, err := b.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: b.cfg.ControlChannelID,
		Limit:     10,
	})
	if err != nil {
		slog.Debug("status message lookup failed", "error", err)
		return ""
	}

	for _, msg := range resp.Messages {
		if msg.User == b.botUserID && strings.Contains(msg.Text, statusMarker) {
			b.setStatusTS(msg.Timestamp)
			return msg.Timestamp
		}
	}
	return ""
}
