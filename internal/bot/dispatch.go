package bot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"fortbot/internal/minefort"
)

// settleDelay is how long to wait after a lifecycle action before forcing
// a status refresh, giving the provider time to move the server through
// its transitional state.
const settleDelay = 5 * time.Second

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// stripMention removes the bot's own mention tag from command text. When
// the bot user ID is unknown (auth test failed), all mention tags are
// stripped so the verb still parses.
func stripMention(text, botUserID string) string {
	if botUserID != "" {
		text = strings.ReplaceAll(text, fmt.Sprintf("<@%s>", botUserID), "")
	} else {
		text = mentionPattern.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// parseCommand splits a command line into verb and arguments. The verb is
// lowercased; arguments keep their case (console commands are
// case-sensitive).
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// lifecycleActions maps user-facing verbs to provider actions. "stop" is
// the provider's kill, "sleep" its hibernate.
var lifecycleActions = map[string]minefort.Action{
	"start": minefort.ActionStart,
	"stop":  minefort.ActionKill,
	"sleep": minefort.ActionSleep,
	"wake":  minefort.ActionWakeup,
}

func (b *Bot) handleCommand(ctx context.Context, userID, channelID, text string) {
	verb, args := parseCommand(text)
	if verb == "" {
		b.reply(ctx, channelID, helpText)
		return
	}
	if b.rec != nil {
		b.rec.RecordCommand(verb)
	}
	slog.Debug("handling command", "verb", verb, "user", userID, "channel", channelID)

	switch verb {
	case "ping":
		b.reply(ctx, channelID, "Pong! :ping_pong:")
	case "help":
		b.reply(ctx, channelID, helpText)
	case "ip":
		b.reply(ctx, channelID, b.serverIPMessage())
	case "status":
		b.reply(ctx, channelID, b.statusReply(ctx))
	case "players":
		b.reply(ctx, channelID, b.playersReply(ctx))
	case "start", "stop", "sleep", "wake":
		b.reply(ctx, channelID, b.actionReply(ctx, userID, channelID, verb))
	case "console":
		b.reply(ctx, channelID, b.consoleReply(ctx, userID, channelID))
	case "cmd":
		b.reply(ctx, channelID, b.sendCommandReply(ctx, userID, channelID, strings.Join(args, " ")))
	case "channel":
		b.reply(ctx, channelID, b.channelReply(ctx, userID, channelID, args))
	default:
		b.reply(ctx, channelID, fmt.Sprintf("Unknown command %q. Try `help`.", verb))
	}
}

// authorize gates privileged commands to the control channel and the
// operator list.
func (b *Bot) authorize(userID, channelID string) string {
	if b.cfg.ControlChannelID != "" && channelID != b.cfg.ControlChannelID {
		return ":x: This command can only be used in the control channel."
	}
	if len(b.cfg.Operators) > 0 {
		allowed := false
		for _, op := range b.cfg.Operators {
			if op == userID {
				allowed = true
				break
			}
		}
		if !allowed {
			return ":x: You don't have permission to use this command."
		}
	}
	return ""
}

// firstServer returns the account's primary server, the one every command
// operates on. Provider order decides which server is primary.
func (b *Bot) firstServer(ctx context.Context, forceRefresh bool) (minefort.ServerSummary, bool) {
	servers := b.cache.GetServers(ctx, forceRefresh)
	if len(servers) == 0 {
		return minefort.ServerSummary{}, false
	}
	return servers[0], true
}

func (b *Bot) serverIPMessage() string {
	if b.cfg.ServerIP == "" {
		return "No server address is configured."
	}
	return fmt.Sprintf("*Server IP:* `%s`\nCopy the address and paste it into your Minecraft client.", b.cfg.ServerIP)
}

func (b *Bot) statusReply(ctx context.Context) string {
	servers := b.cache.GetServers(ctx, true)
	if len(servers) == 0 {
		return ":x: Failed to fetch server status. Please try again later."
	}
	return buildStatusMessage(servers, b.cfg.ServerIP, time.Now())
}

func (b *Bot) playersReply(ctx context.Context) string {
	server, ok := b.firstServer(ctx, false)
	if !ok {
		return ":x: Failed to fetch server information. Please try again later."
	}
	if server.State != minefort.StateRunning {
		return fmt.Sprintf(":x: Server is not running. Current status: *%s*", server.State)
	}
	return fmt.Sprintf(":busts_in_silhouette: *%d/%d* players currently online on *%s*.",
		server.PlayerCount, server.MaxPlayers, server.ServerName)
}

func (b *Bot) actionReply(ctx context.Context, userID, channelID, verb string) string {
	if denied := b.authorize(userID, channelID); denied != "" {
		return denied
	}

	server, ok := b.firstServer(ctx, false)
	if !ok {
		return ":x: Failed to fetch server information. Please try again later."
	}

	action := lifecycleActions[verb]
	msg, err := b.client.PerformAction(ctx, server.ServerID, action)
	if err != nil {
		return fmt.Sprintf(":x: Failed to %s server: %s", action.DisplayName(), err)
	}

	// Let the provider settle, then refresh the pinned status so the
	// channel reflects the transition.
	time.AfterFunc(settleDelay, func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := b.RefreshStatus(refreshCtx); err != nil {
			slog.Warn("post-action status refresh failed", "error", err)
		}
	})

	return fmt.Sprintf(":white_check_mark: %s server *%s*!\n%s", actionHeadline(action), server.ServerName, msg)
}

func actionHeadline(action minefort.Action) string {
	switch action {
	case minefort.ActionStart:
		return "Starting"
	case minefort.ActionKill:
		return "Stopping"
	case minefort.ActionSleep:
		return "Hibernating"
	case minefort.ActionWakeup:
		return "Waking up"
	default:
		return "Updating"
	}
}

func (b *Bot) consoleReply(ctx context.Context, userID, channelID string) string {
	if denied := b.authorize(userID, channelID); denied != "" {
		return denied
	}

	server, ok := b.firstServer(ctx, false)
	if !ok {
		return ":x: Failed to fetch server information. Please try again later."
	}

	snap, err := b.client.GetConsoleLogs(ctx, server.ServerID)
	if err != nil {
		return fmt.Sprintf(":x: Failed to fetch console logs: %s", err)
	}
	if strings.TrimSpace(snap.Text) == "" {
		return "Console is empty."
	}
	return fmt.Sprintf("Console for *%s*:\n```%s```", server.ServerName, consoleTail(snap.Text, consoleTailLimit))
}

func (b *Bot) sendCommandReply(ctx context.Context, userID, channelID, command string) string {
	if denied := b.authorize(userID, channelID); denied != "" {
		return denied
	}
	if strings.TrimSpace(command) == "" {
		return "Usage: `cmd <console command>`"
	}

	server, ok := b.firstServer(ctx, false)
	if !ok {
		return ":x: Failed to fetch server information. Please try again later."
	}
	if server.State != minefort.StateRunning {
		return fmt.Sprintf(":x: Server is not running. Current status: *%s*", server.State)
	}

	msg, err := b.client.SendConsoleCommand(ctx, server.ServerID, command)
	if err != nil {
		return fmt.Sprintf(":x: Failed to send command: %s", err)
	}
	return ":white_check_mark: " + msg
}

const helpText = "*Available commands*\n" +
	"`status` - current server status\n" +
	"`ip` - the server address\n" +
	"`players` - who is online\n" +
	"`start` / `stop` / `sleep` / `wake` - control the server (operators only)\n" +
	"`console` - recent console output (operators only)\n" +
	"`cmd <command>` - run a console command (operators only)\n" +
	"`channel create [name]` / `channel close` / `channel invite <@user>` - ephemeral channels\n" +
	"`ping` - check the bot is alive"
