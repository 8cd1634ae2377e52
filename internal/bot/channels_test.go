package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelCreate(t *testing.T) {
	b, api := newTestBot(t, providerWithServers(`[]`, nil), Config{})

	got := b.channelReply(context.Background(), "UOWNER", "C1", []string{"create", "Build", "Night"})

	assert.Contains(t, got, "<#CEPH1>")
	assert.Equal(t, "UOWNER", b.ephemeral["CEPH1"])
	assert.Equal(t, []string{"UOWNER"}, api.invites["CEPH1"])
}

func TestChannelCreateDefaultName(t *testing.T) {
	b, _ := newTestBot(t, providerWithServers(`[]`, nil), Config{})
	got := b.channelReply(context.Background(), "UOWNER", "C1", []string{"create"})
	assert.Contains(t, got, "<#CEPH1>")
	require.Equal(t, 1, b.EphemeralChannelCount())
}

func TestChannelClose(t *testing.T) {
	t.Run("owner closes and the channel is archived", func(t *testing.T) {
		b, api := newTestBot(t, providerWithServers(`[]`, nil), Config{})
		b.ephemeral["CEPH1"] = "UOWNER"

		got := b.channelReply(context.Background(), "UOWNER", "CEPH1", []string{"close"})

		assert.Empty(t, got)
		assert.Equal(t, []string{"CEPH1"}, api.archived)
		assert.Zero(t, b.EphemeralChannelCount())
	})

	t.Run("non-owner is refused", func(t *testing.T) {
		b, api := newTestBot(t, providerWithServers(`[]`, nil), Config{})
		b.ephemeral["CEPH1"] = "UOWNER"

		got := b.channelReply(context.Background(), "UINTRUDER", "CEPH1", []string{"close"})

		assert.Contains(t, got, "owner")
		assert.Empty(t, api.archived)
		assert.Equal(t, 1, b.EphemeralChannelCount())
	})

	t.Run("untracked channel is refused", func(t *testing.T) {
		b, api := newTestBot(t, providerWithServers(`[]`, nil), Config{})
		got := b.channelReply(context.Background(), "U1", "CRANDOM", []string{"close"})
		assert.Contains(t, got, "not an ephemeral channel")
		assert.Empty(t, api.archived)
	})
}

func TestChannelInvite(t *testing.T) {
	t.Run("owner invites a tagged user", func(t *testing.T) {
		b, api := newTestBot(t, providerWithServers(`[]`, nil), Config{})
		b.ephemeral["CEPH1"] = "UOWNER"

		got := b.channelReply(context.Background(), "UOWNER", "CEPH1", []string{"invite", "<@UGUEST>"})

		assert.Contains(t, got, "<@UGUEST>")
		assert.Equal(t, []string{"UGUEST"}, api.invites["CEPH1"])
	})

	t.Run("malformed tag shows usage", func(t *testing.T) {
		b, api := newTestBot(t, providerWithServers(`[]`, nil), Config{})
		b.ephemeral["CEPH1"] = "UOWNER"

		got := b.channelReply(context.Background(), "UOWNER", "CEPH1", []string{"invite", "alice"})

		assert.Contains(t, got, "Usage:")
		assert.Empty(t, api.invites["CEPH1"])
	})

	t.Run("non-owner is refused", func(t *testing.T) {
		b, _ := newTestBot(t, providerWithServers(`[]`, nil), Config{})
		b.ephemeral["CEPH1"] = "UOWNER"
		got := b.channelReply(context.Background(), "UINTRUDER", "CEPH1", []string{"invite", "<@UGUEST>"})
		assert.Contains(t, got, "owner")
	})
}

func TestChannelUsageAndUnknown(t *testing.T) {
	b, _ := newTestBot(t, providerWithServers(`[]`, nil), Config{})
	assert.Contains(t, b.channelReply(context.Background(), "U1", "C1", nil), "Usage:")
	assert.Contains(t, b.channelReply(context.Background(), "U1", "C1", []string{"explode"}), "Unknown channel subcommand")
}
