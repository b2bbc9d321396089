package server

import (
	"foodshare/internal/models"
	"foodshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// foodBody is the typed request body for create and update. Status is
// deliberately absent: callers cannot write lifecycle state directly.
type foodBody struct {
	Name            string `json:"name"`
	ImageURL        string `json:"image_url"`
	Quantity        int    `json:"quantity"`
	AdditionalNotes string `json:"additional_notes"`
	PickupLocation  string `json:"pickup_location"`
	ExpiresAt       string `json:"expires_at"`
	DonorName       string `json:"donor_name"`
	DonorAvatar     string `json:"donor_avatar"`
}

// GetFoods handles GET /api/foods. Without parameters it returns the
// available listing sorted by quantity descending; ?search= filters by a
// word-anchored name match and ?sort=ascending|descending switches to
// expiry ordering.
func (s *Server) GetFoods(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if sort := c.Query("sort"); sort != "" {
		items, err := s.foodService.ListByExpiry(ctx, sort)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(items)
	}

	if search := c.Query("search"); search != "" {
		items, err := s.foodService.Search(ctx, search)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(items)
	}

	items, err := s.foodService.ListAvailable(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(items)
}

// GetFood handles GET /api/foods/:id
func (s *Server) GetFood(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.foodService.GetFood(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(item)
}

// GetMyFoods handles GET /api/foods/mine, the donor's management listing.
func (s *Server) GetMyFoods(c *fiber.Ctx) error {
	items, err := s.foodService.ListByDonor(c.UserContext(), callerEmail(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(items)
}

// CreateFood handles POST /api/foods
func (s *Server) CreateFood(c *fiber.Ctx) error {
	var body foodBody
	if err := decodeBody(c, &body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.foodService.CreateFood(c.UserContext(), service.CreateFoodInput{
		DonorEmail:      callerEmail(c),
		DonorName:       body.DonorName,
		DonorAvatar:     body.DonorAvatar,
		Name:            body.Name,
		ImageURL:        body.ImageURL,
		Quantity:        body.Quantity,
		AdditionalNotes: body.AdditionalNotes,
		PickupLocation:  body.PickupLocation,
		ExpiresAt:       body.ExpiresAt,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateFood handles PUT /api/foods/:id with replace-or-insert semantics.
func (s *Server) UpdateFood(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body foodBody
	if err := decodeBody(c, &body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.foodService.UpdateFood(c.UserContext(), service.UpdateFoodInput{
		DonorEmail:      callerEmail(c),
		DonorName:       body.DonorName,
		DonorAvatar:     body.DonorAvatar,
		FoodID:          id,
		Name:            body.Name,
		ImageURL:        body.ImageURL,
		Quantity:        body.Quantity,
		AdditionalNotes: body.AdditionalNotes,
		PickupLocation:  body.PickupLocation,
		ExpiresAt:       body.ExpiresAt,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(item)
}

// CompleteFood handles POST /api/foods/:id/complete
func (s *Server) CompleteFood(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.foodService.CompleteFood(c.UserContext(), callerEmail(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(item)
}

// DeleteFood handles DELETE /api/foods/:id. Deleting an absent id reports
// zero deleted rows rather than an error.
func (s *Server) DeleteFood(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	deleted, err := s.foodService.DeleteFood(c.UserContext(), callerEmail(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
