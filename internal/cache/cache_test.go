package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKey_FormatsAllComponents(t *testing.T) {
	got := Key([]string{"en", "fr"}, []string{"city", "street"}, "abc123", "paris", "fuzzy")
	assert.Equal(t, "autocomplete:[en fr]:[city street]:abc123:paris:fuzzy", got)
}

func TestResultCache_SetThenGetHitsL1WithoutRedisRoundtrip(t *testing.T) {
	c, err := New[string]("redis://127.0.0.1:0/0", 16, time.Minute, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k1", "paris")

	v, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "paris", v)
}

func TestResultCache_GetMissReturnsZeroValue(t *testing.T) {
	c, err := New[string]("redis://127.0.0.1:0/0", 16, time.Minute, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	v, ok := c.Get(context.Background(), "missing")
	assert.False(t, ok)
	assert.Equal(t, "", v)
}
