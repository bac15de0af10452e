package storage

import (
	"context"
	"errors"

	"wardrobeapi/models"
)

var ErrItemNotFound = errors.New("clothing item not found")

// ItemStore persists clothing items per owner. Lists are newest first.
type ItemStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.ClothingItem, error)
	Create(ctx context.Context, item *models.ClothingItem) error
	// Delete removes the owner's item and returns it. ErrItemNotFound covers items
	// that do not exist as well as items of other owners.
	Delete(ctx context.Context, ownerID, itemID string) (*models.ClothingItem, error)
}
