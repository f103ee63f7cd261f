package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemorySet()
	m.now = func() time.Time { return now }

	seen, err := m.IsProcessed(ctx, "a")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, m.MarkProcessed(ctx, "a", time.Hour))
	require.NoError(t, m.MarkProcessed(ctx, "b", 0))

	seen, _ = m.IsProcessed(ctx, "a")
	assert.True(t, seen)

	now = now.Add(2 * time.Hour)
	seen, _ = m.IsProcessed(ctx, "a")
	assert.False(t, seen)
	seen, _ = m.IsProcessed(ctx, "b")
	assert.True(t, seen)
}

func TestItemKeyScopesBySource(t *testing.T) {
	assert.Equal(t, ItemKey(1, "guid"), ItemKey(1, "guid"))
	assert.NotEqual(t, ItemKey(1, "guid"), ItemKey(2, "guid"))
	assert.NotEqual(t, ItemKey(1, "guid"), ItemKey(1, "guid2"))
}

func TestNewWithoutURLUsesMemory(t *testing.T) {
	set, err := New("", "")
	require.NoError(t, err)
	_, ok := set.(*MemorySet)
	assert.True(t, ok)
	assert.NoError(t, set.Close())
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not a url", "")
	assert.Error(t, err)
}
