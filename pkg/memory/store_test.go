package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	channelID := "test_channel"

	err := store.AddRecentMessage(channelID, "user", "Test message 1")
	assert.NoError(t, err, "Failed to add recent message")

	err = store.AddRecentMessage(channelID, "assistant", "Test message 2")
	assert.NoError(t, err, "Failed to add second recent message")

	recent, err := store.GetRecentMessages(channelID)
	assert.NoError(t, err, "Failed to get recent messages")
	require.Len(t, recent, 2, "Expected 2 recent messages")
	assert.Equal(t, "Test message 1", recent[0].Text, "Unexpected first message text")
	assert.Equal(t, "user", recent[0].Role, "Unexpected first message role")

	// Other channels are isolated
	other, err := store.GetRecentMessages("other_channel")
	assert.NoError(t, err)
	assert.Empty(t, other)

	err = store.ClearRecentMessages(channelID)
	assert.NoError(t, err, "Failed to clear recent messages")

	recent, err = store.GetRecentMessages(channelID)
	assert.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMemStoreWindow(t *testing.T) {
	store := NewMemStore()
	channelID := "busy_channel"

	for i := 0; i < maxRecentMessages+10; i++ {
		require.NoError(t, store.AddRecentMessage(channelID, "user", fmt.Sprintf("msg %d", i)))
	}

	recent, err := store.GetRecentMessages(channelID)
	require.NoError(t, err)
	assert.Len(t, recent, maxRecentMessages, "history must be capped")
	assert.Equal(t, "msg 10", recent[0].Text, "oldest messages beyond the window are dropped")
}
