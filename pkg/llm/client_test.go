package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientParsesKeys(t *testing.T) {
	c := NewClient("key1, key2,  ,key3,", "", 1.0, 1.0, nil)
	require.Len(t, c.keys, 3)
	assert.Equal(t, "key1", c.keys[0].Key)
	assert.Equal(t, "key3", c.keys[2].Key)
	assert.Equal(t, DefaultModels, c.models)
}

func TestGetBestKeyPrefersLeastFailures(t *testing.T) {
	c := NewClient("a,b,c", "", 1.0, 1.0, nil)
	c.keys[0].FailureCount = 3
	c.keys[1].FailureCount = 1
	c.keys[2].FailureCount = 2

	best := c.getBestKey()
	require.NotNil(t, best)
	assert.Equal(t, "b", best.Key)

	// Success gradually recovers the failure count.
	c.recordSuccess(best)
	assert.Equal(t, 0, c.keys[1].FailureCount)

	c.recordFailure(c.keys[1])
	c.recordFailure(c.keys[1])
	assert.Equal(t, 2, c.keys[1].FailureCount)
}

func TestChatCompletionNoKeys(t *testing.T) {
	c := NewClient("", "", 1.0, 1.0, nil)
	_, err := c.ChatCompletion(nil)
	assert.Error(t, err)
}

func TestCleanResponse(t *testing.T) {
	assert.Equal(t, "hello", cleanResponse("<think>reasoning\nmore</think>hello"))
	assert.Equal(t, "quoted", cleanResponse(`"quoted"`))
	assert.Equal(t, "plain", cleanResponse("  plain  "))
}

func TestIsRateLimitOrAuthError(t *testing.T) {
	assert.True(t, isRateLimitOrAuthError(errString("status 429: slow down")))
	assert.True(t, isRateLimitOrAuthError(errString("Unauthorized")))
	assert.False(t, isRateLimitOrAuthError(errString("connection refused")))
}

type errString string

func (e errString) Error() string { return string(e) }
