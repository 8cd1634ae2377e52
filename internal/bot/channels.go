package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

// Ephemeral channels are short-lived rooms: any user can spin one up, the
// creator owns it, and the owner (or a bot shutdown) archives it again.
// Ownership lives in memory only; channels abandoned across a restart are
// cleaned up by whoever owns the workspace.

var userTagPattern = regexp.MustCompile(`<@([A-Z0-9]+)(\|[^>]*)?>`)

// channelNamePattern matches what Slack accepts for channel names.
var channelNamePattern = regexp.MustCompile(`[^a-z0-9-_]+`)

func (b *Bot) channelReply(ctx context.Context, userID, channelID string, args []string) string {
	if len(args) == 0 {
		return "Usage: `channel create [name]`, `channel close`, `channel invite <@user>`"
	}

	switch strings.ToLower(args[0]) {
	case "create":
		name := ""
		if len(args) > 1 {
			name = strings.Join(args[1:], "-")
		}
		return b.createEphemeralChannel(ctx, userID, name)
	case "close":
		return b.closeEphemeralChannel(ctx, userID, channelID)
	case "invite":
		if len(args) < 2 {
			return "Usage: `channel invite <@user>`"
		}
		return b.inviteToEphemeralChannel(ctx, userID, channelID, args[1])
	default:
		return fmt.Sprintf("Unknown channel subcommand %q.", args[0])
	}
}

func (b *Bot) createEphemeralChannel(ctx context.Context, ownerID, name string) string {
	if name == "" {
		name = fmt.Sprintf("room-%s", strings.ToLower(ownerID))
	}
	name = channelNamePattern.ReplaceAllString(strings.ToLower(name), "-")
	name = strings.Trim(name, "-")
	if len(name) > 70 {
		name = name[:70]
	}

	channel, err := b.api.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
	})
	if err != nil {
		return fmt.Sprintf(":x: Could not create channel: %s", err)
	}

	b.mu.Lock()
	b.ephemeral[channel.ID] = ownerID
	b.mu.Unlock()

	if _, err := b.api.InviteUsersToConversationContext(ctx, channel.ID, ownerID); err != nil {
		// The channel exists either way; the owner can still join by hand.
		return fmt.Sprintf(":white_check_mark: Created <#%s>, but could not invite you: %s", channel.ID, err)
	}
	return fmt.Sprintf(":white_check_mark: Created <#%s>. Use `channel close` inside it when you're done.", channel.ID)
}

func (b *Bot) closeEphemeralChannel(ctx context.Context, userID, channelID string) string {
	b.mu.Lock()
	owner, tracked := b.ephemeral[channelID]
	b.mu.Unlock()

	if !tracked {
		return ":x: This is not an ephemeral channel I manage."
	}
	if owner != userID {
		return ":x: Only the channel owner can close it."
	}

	if err := b.api.ArchiveConversationContext(ctx, channelID); err != nil {
		return fmt.Sprintf(":x: Could not archive this channel: %s", err)
	}

	b.mu.Lock()
	delete(b.ephemeral, channelID)
	b.mu.Unlock()
	return ""
}

func (b *Bot) inviteToEphemeralChannel(ctx context.Context, userID, channelID, userTag string) string {
	b.mu.Lock()
	owner, tracked := b.ephemeral[channelID]
	b.mu.Unlock()

	if !tracked {
		return ":x: This is not an ephemeral channel I manage."
	}
	if owner != userID {
		return ":x: Only the channel owner can invite people."
	}

	m := userTagPattern.FindStringSubmatch(userTag)
	if m == nil {
		return "Usage: `channel invite <@user>`"
	}

	if _, err := b.api.InviteUsersToConversationContext(ctx, channelID, m[1]); err != nil {
		return fmt.Sprintf(":x: Could not invite <@%s>: %s", m[1], err)
	}
	return fmt.Sprintf(":white_check_mark: Invited <@%s>.", m[1])
}

// EphemeralChannelCount reports how many ephemeral channels are currently
// tracked.
func (b *Bot) EphemeralChannelCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ephemeral)
}
