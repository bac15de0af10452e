package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"wardrobeapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(owner, name string, category models.Category) *models.ClothingItem {
	return &models.ClothingItem{UserID: owner, Name: name, Category: category, Color: "白", ImageURL: "clothes/" + owner + "/1.png"}
}

func TestMemoryListNewestFirst(t *testing.T) {
	store := NewMemoryItemStore()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newItem("u1", "first", models.CategoryTops)))
	require.NoError(t, store.Create(ctx, newItem("u1", "second", models.CategoryBottoms)))
	require.NoError(t, store.Create(ctx, newItem("u2", "other", models.CategoryShoes)))
	require.NoError(t, store.Create(ctx, newItem("u1", "third", models.CategoryShoes)))

	items, err := store.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "third", items[0].Name)
	assert.Equal(t, "second", items[1].Name)
	assert.Equal(t, "first", items[2].Name)
	for _, item := range items {
		assert.NotEmpty(t, item.ID)
	}
}

func TestMemoryListStableOnEqualTimestamps(t *testing.T) {
	store := NewMemoryItemStore()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, store.Create(ctx, newItem("u1", name, models.CategoryTops)))
	}
	for i := 0; i < 5; i++ {
		items, err := store.ListByOwner(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, []string{items[0].Name, items[1].Name, items[2].Name})
	}
}

func TestMemoryListEmptyOwner(t *testing.T) {
	store := NewMemoryItemStore()
	items, err := store.ListByOwner(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestMemoryDelete(t *testing.T) {
	store := NewMemoryItemStore()
	ctx := context.Background()
	item := newItem("u1", "coat", models.CategoryOuterwear)
	require.NoError(t, store.Create(ctx, item))

	_, err := store.Delete(ctx, "u2", item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)

	deleted, err := store.Delete(ctx, "u1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, "coat", deleted.Name)

	_, err = store.Delete(ctx, "u1", item.ID)
	assert.True(t, IsNotFound(err))

	items, err := store.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryCanceledContext(t *testing.T) {
	store := NewMemoryItemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ListByOwner(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Create(ctx, newItem("u1", "x", models.CategoryTops)), context.Canceled)
}

func TestMemoryConcurrentCreate(t *testing.T) {
	store := NewMemoryItemStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Create(ctx, newItem("u1", "tee", models.CategoryTops)))
		}()
	}
	wg.Wait()

	items, err := store.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 50)
}
