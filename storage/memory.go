package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"wardrobeapi/models"
)

type MemoryItemStore struct {
	mu    sync.RWMutex
	items map[string]models.ClothingItem
	// insertion counter, breaks created_at ties so ordering stays stable
	seq   map[string]int64
	next  int64
	now   func() time.Time
}

func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{
		items: make(map[string]models.ClothingItem),
		seq:   make(map[string]int64),
		now:   time.Now,
	}
}

func (s *MemoryItemStore) ListByOwner(ctx context.Context, ownerID string) ([]models.ClothingItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.ClothingItem, 0)
	for _, item := range s.items {
		if item.UserID == ownerID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return s.seq[items[i].ID] > s.seq[items[j].ID]
	})
	return items, nil
}

func (s *MemoryItemStore) Create(ctx context.Context, item *models.ClothingItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item.AssignID()
	now := s.now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	s.next++
	s.seq[item.ID] = s.next
	s.items[item.ID] = *item
	return nil
}

func (s *MemoryItemStore) Delete(ctx context.Context, ownerID, itemID string) (*models.ClothingItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || item.UserID != ownerID {
		return nil, ErrItemNotFound
	}
	delete(s.items, itemID)
	delete(s.seq, itemID)
	return &item, nil
}
