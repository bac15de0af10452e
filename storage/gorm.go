package storage

import (
	"context"
	"errors"
	"fmt"

	"wardrobeapi/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormItemStore struct {
	db *gorm.DB
}

func NewGormItemStore(db *gorm.DB) *GormItemStore {
	return &GormItemStore{db: db}
}

func (s *GormItemStore) ListByOwner(ctx context.Context, ownerID string) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list clothing items: %w", err)
	}
	return items, nil
}

func (s *GormItemStore) Create(ctx context.Context, item *models.ClothingItem) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create clothing item: %w", err)
	}
	return nil
}

func (s *GormItemStore) Delete(ctx context.Context, ownerID, itemID string) (*models.ClothingItem, error) {
	var item models.ClothingItem
	result := s.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", itemID, ownerID).
		Delete(&item)
	if result.Error != nil {
		return nil, fmt.Errorf("delete clothing item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

// IsNotFound also accepts gorm's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
