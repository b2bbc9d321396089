// Package service implements the donation lifecycle rules on top of the repositories.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"foodshare/internal/cache"
	"foodshare/internal/models"
	"foodshare/internal/repository"
	"foodshare/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FoodService guards all item and request state transitions and serves the
// read-side query surface. Mutations that touch both collections run inside a
// single database transaction.
type FoodService struct {
	foodRepo    repository.FoodRepository
	requestRepo repository.RequestRepository
	db          *gorm.DB
	now         func() time.Time
}

// CreateFoodInput is the typed payload for publishing an item. Status is not
// part of the input: new items are always available.
type CreateFoodInput struct {
	DonorEmail      string
	DonorName       string
	DonorAvatar     string
	Name            string
	ImageURL        string
	Quantity        int
	AdditionalNotes string
	PickupLocation  string
	ExpiresAt       string
}

// UpdateFoodInput replaces all mutable fields of an item. If the id does not
// resolve, the item is created with these fields (replace-or-insert semantics,
// which callers rely on).
type UpdateFoodInput struct {
	DonorEmail      string
	DonorName       string
	DonorAvatar     string
	FoodID          uint
	Name            string
	ImageURL        string
	Quantity        int
	AdditionalNotes string
	PickupLocation  string
	ExpiresAt       string
}

// CreateRequestInput is the typed payload for claiming an item.
type CreateRequestInput struct {
	RequesterEmail string
	FoodID         uint
	Notes          string
}

// TransitionRequestInput carries a donor's approve/reject decision.
type TransitionRequestInput struct {
	DonorEmail string
	RequestID  uint
	NewStatus  models.RequestStatus
}

// NewFoodService creates the lifecycle service. The db handle is used for
// multi-entity transactions; single-entity access goes through the repositories.
func NewFoodService(foodRepo repository.FoodRepository, requestRepo repository.RequestRepository, db *gorm.DB) *FoodService {
	return &FoodService{
		foodRepo:    foodRepo,
		requestRepo: requestRepo,
		db:          db,
		now:         time.Now,
	}
}

func (s *FoodService) validateFoodFields(name string, quantity int, location, notes, expiry string) (time.Time, error) {
	if err := validation.ValidateFoodName(name); err != nil {
		return time.Time{}, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateQuantity(quantity); err != nil {
		return time.Time{}, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePickupLocation(location); err != nil {
		return time.Time{}, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateNotes(notes); err != nil {
		return time.Time{}, models.NewValidationError(err.Error())
	}
	expiresAt, err := validation.ParseExpiry(expiry, s.now())
	if err != nil {
		return time.Time{}, models.NewValidationError(err.Error())
	}
	return expiresAt, nil
}

// CreateFood validates and publishes a new available item.
func (s *FoodService) CreateFood(ctx context.Context, in CreateFoodInput) (*models.FoodItem, error) {
	expiresAt, err := s.validateFoodFields(in.Name, in.Quantity, in.PickupLocation, in.AdditionalNotes, in.ExpiresAt)
	if err != nil {
		return nil, err
	}

	item := &models.FoodItem{
		Name:            strings.TrimSpace(in.Name),
		ImageURL:        in.ImageURL,
		Quantity:        in.Quantity,
		AdditionalNotes: in.AdditionalNotes,
		PickupLocation:  strings.TrimSpace(in.PickupLocation),
		ExpiresAt:       expiresAt,
		DonorName:       in.DonorName,
		DonorAvatar:     in.DonorAvatar,
		DonorEmail:      in.DonorEmail,
		Status:          models.FoodStatusAvailable,
	}

	if err := s.foodRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	cache.InvalidateAvailableListing(ctx)
	return item, nil
}

// UpdateFood replaces all mutable fields of the donor's item in one operation.
// An id that does not resolve creates the item instead (upsert law). Status is
// never taken from the caller: an existing item keeps its status, an upserted
// one starts available.
func (s *FoodService) UpdateFood(ctx context.Context, in UpdateFoodInput) (*models.FoodItem, error) {
	expiresAt, err := s.validateFoodFields(in.Name, in.Quantity, in.PickupLocation, in.AdditionalNotes, in.ExpiresAt)
	if err != nil {
		return nil, err
	}

	var item models.FoodItem
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists := true
		findErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, in.FoodID).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			exists = false
			item = models.FoodItem{
				ID:     in.FoodID,
				Status: models.FoodStatusAvailable,
			}
		case findErr != nil:
			return findErr
		default:
			if item.DonorEmail != in.DonorEmail {
				return models.NewForbiddenError("Only the donor can update this item")
			}
		}

		item.Name = strings.TrimSpace(in.Name)
		item.ImageURL = in.ImageURL
		item.Quantity = in.Quantity
		item.AdditionalNotes = in.AdditionalNotes
		item.PickupLocation = strings.TrimSpace(in.PickupLocation)
		item.ExpiresAt = expiresAt
		item.DonorName = in.DonorName
		item.DonorAvatar = in.DonorAvatar
		item.DonorEmail = in.DonorEmail

		if !exists {
			return tx.Create(&item).Error
		}
		return tx.Save(&item).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	cache.InvalidateFood(ctx, item.ID)
	return &item, nil
}

// DeleteFood removes the donor's item. Deleting an id that does not resolve is
// idempotent and reports zero deleted rows.
func (s *FoodService) DeleteFood(ctx context.Context, donorEmail string, id uint) (int64, error) {
	item, err := s.foodRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, nil
	}
	if item.DonorEmail != donorEmail {
		return 0, models.NewForbiddenError("Only the donor can delete this item")
	}

	deleted, err := s.foodRepo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	cache.InvalidateFood(ctx, id)
	return deleted, nil
}

// CompleteFood marks a handed-over item as completed. Valid only once a
// request against it has been approved.
func (s *FoodService) CompleteFood(ctx context.Context, donorEmail string, id uint) (*models.FoodItem, error) {
	item, err := s.foodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, models.NewNotFoundError("Food item", id)
	}
	if item.DonorEmail != donorEmail {
		return nil, models.NewForbiddenError("Only the donor can complete this item")
	}
	if item.Status != models.FoodStatusUnavailable {
		return nil, models.NewInvalidTransitionError("only an item with an approved request can be completed")
	}

	item.Status = models.FoodStatusCompleted
	if err := s.foodRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	cache.InvalidateFood(ctx, id)
	return item, nil
}

// CreateRequest claims an available item for the requester. The donor email is
// denormalized from the item so donor-side listings never need a join.
func (s *FoodService) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.FoodRequest, error) {
	if err := validation.ValidateNotes(in.Notes); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	item, err := s.foodRepo.GetByID(ctx, in.FoodID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, models.NewNotFoundError("Food item", in.FoodID)
	}
	if item.Status != models.FoodStatusAvailable {
		return nil, models.NewInvalidStateError("food item is no longer available")
	}

	request := &models.FoodRequest{
		FoodID:         item.ID,
		RequesterEmail: in.RequesterEmail,
		DonorEmail:     item.DonorEmail,
		Notes:          in.Notes,
		RequestedAt:    s.now(),
		Status:         models.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// TransitionRequest applies the donor's approve/reject decision. Approval also
// moves the referenced item out of the available pool; both writes happen in
// one transaction, with the item write conditioned on its current status so a
// lost race can never cascade twice.
func (s *FoodService) TransitionRequest(ctx context.Context, in TransitionRequestInput) (*models.FoodRequest, error) {
	if in.NewStatus != models.RequestStatusApproved && in.NewStatus != models.RequestStatusRejected {
		return nil, models.NewInvalidTransitionError("status must be approved or rejected")
	}

	var request models.FoodRequest
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&request, in.RequestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Food request", in.RequestID)
			}
			return err
		}

		if request.DonorEmail != in.DonorEmail {
			return models.NewForbiddenError("Only the item's donor can review this request")
		}
		if request.Status != models.RequestStatusPending {
			return models.NewInvalidTransitionError("request is not pending")
		}

		request.Status = in.NewStatus
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		if in.NewStatus == models.RequestStatusApproved {
			res := tx.Model(&models.FoodItem{}).
				Where("id = ? AND status = ?", request.FoodID, models.FoodStatusAvailable).
				Update("status", models.FoodStatusUnavailable)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Another pending request against the same item already won;
				// roll the whole decision back so nothing moves.
				return models.NewInvalidStateError("food item is no longer available")
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if in.NewStatus == models.RequestStatusApproved {
		cache.InvalidateFood(ctx, request.FoodID)
	}
	return &request, nil
}

// DeleteRequest removes a pending request. Either party may delete it; a
// request that already reached a terminal state stays on record. Deleting an
// absent id is idempotent.
func (s *FoodService) DeleteRequest(ctx context.Context, callerEmail string, id uint) (int64, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if request == nil {
		return 0, nil
	}
	if request.RequesterEmail != callerEmail && request.DonorEmail != callerEmail {
		return 0, models.NewForbiddenError("Only the requester or the donor can delete this request")
	}
	if request.Status != models.RequestStatusPending {
		return 0, models.NewInvalidStateError("only pending requests can be deleted")
	}

	return s.requestRepo.Delete(ctx, id)
}

// GetFood looks up a single item; a miss is NOT_FOUND, uniformly.
func (s *FoodService) GetFood(ctx context.Context, id uint) (*models.FoodItem, error) {
	item, err := s.foodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, models.NewNotFoundError("Food item", id)
	}
	return item, nil
}

// GetRequest looks up a single request, visible only to its two parties.
func (s *FoodService) GetRequest(ctx context.Context, callerEmail string, id uint) (*models.FoodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, models.NewNotFoundError("Food request", id)
	}
	if request.RequesterEmail != callerEmail && request.DonorEmail != callerEmail {
		return nil, models.NewForbiddenError("Only the requester or the donor can view this request")
	}
	return request, nil
}

// GetRequestForFood returns the most recent request against an item.
func (s *FoodService) GetRequestForFood(ctx context.Context, foodID uint) (*models.FoodRequest, error) {
	request, err := s.requestRepo.GetByFoodID(ctx, foodID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, models.NewNotFoundError("Food request for item", foodID)
	}
	return request, nil
}

// ListAvailable serves the available listing (quantity descending) cache-aside.
func (s *FoodService) ListAvailable(ctx context.Context) ([]*models.FoodItem, error) {
	var items []*models.FoodItem
	err := cache.CacheAside(ctx, cache.AvailableFoodKey, &items, cache.AvailableTTL, func() error {
		fetched, fetchErr := s.foodRepo.ListAvailable(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		items = fetched
		return nil
	})
	return items, err
}

// Search filters available items by a word-anchored name match; an empty term
// returns the unfiltered listing.
func (s *FoodService) Search(ctx context.Context, term string) ([]*models.FoodItem, error) {
	return s.foodRepo.Search(ctx, term)
}

// ListByExpiry sorts available items by expiry; descending is the default.
func (s *FoodService) ListByExpiry(ctx context.Context, order string) ([]*models.FoodItem, error) {
	direction := repository.ExpiryDescending
	if order == string(repository.ExpiryAscending) {
		direction = repository.ExpiryAscending
	}
	return s.foodRepo.ListByExpiry(ctx, direction)
}

// ListByDonor lists the donor's own items.
func (s *FoodService) ListByDonor(ctx context.Context, donorEmail string) ([]*models.FoodItem, error) {
	return s.foodRepo.ListByDonor(ctx, donorEmail)
}

// ListRequestsByRequester lists the caller's own requests.
func (s *FoodService) ListRequestsByRequester(ctx context.Context, requesterEmail string) ([]*models.FoodRequest, error) {
	return s.requestRepo.ListByRequester(ctx, requesterEmail)
}

// ListRequestsForDonor lists requests against the caller's items.
func (s *FoodService) ListRequestsForDonor(ctx context.Context, donorEmail string) ([]*models.FoodRequest, error) {
	return s.requestRepo.ListByDonor(ctx, donorEmail)
}
