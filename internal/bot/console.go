package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"fortbot/internal/minefort"
)

// RefreshConsole fetches the primary server's console and posts the new
// output to the console channel. Unchanged output posts nothing, so a
// quiet server stays quiet in chat.
func (b *Bot) RefreshConsole(ctx context.Context) error {
	if b.cfg.ConsoleChannelID == "" {
		return nil
	}

	server, ok := b.firstServer(ctx, false)
	if !ok {
		return nil
	}
	if server.State != minefort.StateRunning {
		return nil
	}

	snap, err := b.client.GetConsoleLogs(ctx, server.ServerID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	previous := b.lastConsole
	b.lastConsole = snap
	b.mu.Unlock()

	delta := consoleDelta(previous.Text, snap.Text)
	if strings.TrimSpace(delta) == "" {
		return nil
	}

	text := fmt.Sprintf("```%s```", consoleTail(delta, consoleTailLimit))
	_, _, err = b.api.PostMessageContext(ctx, b.cfg.ConsoleChannelID, slack.MsgOptionText(text, false))
	return err
}

// consoleDelta returns the part of current that was appended since
// previous. When the console rolled over (current no longer extends
// previous), the whole current text is new.
func consoleDelta(previous, current string) string {
	if previous == "" {
		return current
	}
	if current == previous {
		return ""
	}
	if strings.HasPrefix(current, previous) {
		return current[len(previous):]
	}
	return current
}
