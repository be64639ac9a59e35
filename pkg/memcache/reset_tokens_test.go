package memcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokensSingleUse(t *testing.T) {
	store := NewResetTokens()
	token, err := store.Issue("a@example.com", time.Minute)
	require.NoError(t, err)
	require.Len(t, token, 64)

	assert.Equal(t, "a@example.com", store.Consume(token))
	assert.Empty(t, store.Consume(token))
	assert.Empty(t, store.Consume("unknown"))
}

func TestResetTokensExpire(t *testing.T) {
	store := NewResetTokens()
	now := time.Now()
	store.now = func() time.Time { return now }

	token, err := store.Issue("a@example.com", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.Empty(t, store.Consume(token))
}
