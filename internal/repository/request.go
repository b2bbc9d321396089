package repository

import (
	"context"
	"errors"

	"foodshare/internal/models"

	"gorm.io/gorm"
)

// RequestRepository defines the interface for food request data operations
type RequestRepository interface {
	Create(ctx context.Context, request *models.FoodRequest) error
	GetByID(ctx context.Context, id uint) (*models.FoodRequest, error)
	GetByFoodID(ctx context.Context, foodID uint) (*models.FoodRequest, error)
	ListByRequester(ctx context.Context, requesterEmail string) ([]*models.FoodRequest, error)
	ListByDonor(ctx context.Context, donorEmail string) ([]*models.FoodRequest, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

// requestRepository implements RequestRepository
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new food request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *models.FoodRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID returns (nil, nil) when the id does not resolve.
func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.FoodRequest, error) {
	var request models.FoodRequest
	err := r.db.WithContext(ctx).Preload("Food").First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetByFoodID returns the most recent request against an item, or (nil, nil).
func (r *requestRepository) GetByFoodID(ctx context.Context, foodID uint) (*models.FoodRequest, error) {
	var request models.FoodRequest
	err := r.db.WithContext(ctx).
		Where("food_id = ?", foodID).
		Order("created_at DESC").
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterEmail string) ([]*models.FoodRequest, error) {
	var requests []*models.FoodRequest
	err := r.db.WithContext(ctx).
		Preload("Food").
		Where("requester_email = ?", requesterEmail).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *requestRepository) ListByDonor(ctx context.Context, donorEmail string) ([]*models.FoodRequest, error) {
	var requests []*models.FoodRequest
	err := r.db.WithContext(ctx).
		Preload("Food").
		Where("donor_email = ?", donorEmail).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// Delete removes a request by id and reports the number of deleted rows.
// Deleting an absent id is not an error.
func (r *requestRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.FoodRequest{}, id)
	return res.RowsAffected, res.Error
}
