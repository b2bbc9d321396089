// Package repository contains data access layers for the application's collections.
package repository

import (
	"context"
	"errors"
	"strings"

	"foodshare/internal/models"

	"gorm.io/gorm"
)

// ExpiryOrder selects the direction of the freshness sort.
type ExpiryOrder string

const (
	// ExpiryAscending lists soonest-expiring items first.
	ExpiryAscending ExpiryOrder = "ascending"
	// ExpiryDescending lists freshest items first (the default).
	ExpiryDescending ExpiryOrder = "descending"
)

// FoodRepository defines the interface for food item data operations
type FoodRepository interface {
	Create(ctx context.Context, item *models.FoodItem) error
	GetByID(ctx context.Context, id uint) (*models.FoodItem, error)
	ListAvailable(ctx context.Context) ([]*models.FoodItem, error)
	ListByDonor(ctx context.Context, donorEmail string) ([]*models.FoodItem, error)
	Search(ctx context.Context, term string) ([]*models.FoodItem, error)
	ListByExpiry(ctx context.Context, order ExpiryOrder) ([]*models.FoodItem, error)
	Update(ctx context.Context, item *models.FoodItem) error
	Delete(ctx context.Context, id uint) (int64, error)
}

// foodRepository implements FoodRepository
type foodRepository struct {
	db *gorm.DB
}

// NewFoodRepository creates a new food repository
func NewFoodRepository(db *gorm.DB) FoodRepository {
	return &foodRepository{db: db}
}

func (r *foodRepository) Create(ctx context.Context, item *models.FoodItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID returns (nil, nil) when the id does not resolve; callers decide
// whether a miss is an error.
func (r *foodRepository) GetByID(ctx context.Context, id uint) (*models.FoodItem, error) {
	var item models.FoodItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *foodRepository) ListAvailable(ctx context.Context) ([]*models.FoodItem, error) {
	var items []*models.FoodItem
	err := r.db.WithContext(ctx).
		Where("status = ?", models.FoodStatusAvailable).
		Order("quantity DESC").
		Find(&items).Error
	return items, err
}

func (r *foodRepository) ListByDonor(ctx context.Context, donorEmail string) ([]*models.FoodItem, error) {
	var items []*models.FoodItem
	err := r.db.WithContext(ctx).
		Where("donor_email = ?", donorEmail).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// Search matches the term at a word boundary of the name, case-insensitively:
// "bre" matches "Bread" and "Rye Bread" but not "Shortbread". An empty term
// returns the unfiltered available listing.
func (r *foodRepository) Search(ctx context.Context, term string) ([]*models.FoodItem, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return r.ListAvailable(ctx)
	}

	pattern := escapeLike(term)
	var items []*models.FoodItem
	err := r.db.WithContext(ctx).
		Where("status = ?", models.FoodStatusAvailable).
		Where("LOWER(name) LIKE ? OR LOWER(name) LIKE ?", pattern+"%", "% "+pattern+"%").
		Order("quantity DESC").
		Find(&items).Error
	return items, err
}

func (r *foodRepository) ListByExpiry(ctx context.Context, order ExpiryOrder) ([]*models.FoodItem, error) {
	direction := "expires_at DESC"
	if order == ExpiryAscending {
		direction = "expires_at ASC"
	}

	var items []*models.FoodItem
	err := r.db.WithContext(ctx).
		Where("status = ?", models.FoodStatusAvailable).
		Order(direction).
		Find(&items).Error
	return items, err
}

func (r *foodRepository) Update(ctx context.Context, item *models.FoodItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes an item by id and reports the number of deleted rows.
// Deleting an absent id is not an error.
func (r *foodRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.FoodItem{}, id)
	return res.RowsAffected, res.Error
}

// escapeLike escapes LIKE metacharacters in a user-supplied search term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
