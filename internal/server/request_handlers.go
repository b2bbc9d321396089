package server

import (
	"foodshare/internal/models"
	"foodshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateRequest handles POST /api/requests
func (s *Server) CreateRequest(c *fiber.Ctx) error {
	var body struct {
		FoodID uint   `json:"food_id"`
		Notes  string `json:"notes"`
	}
	if err := decodeBody(c, &body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if body.FoodID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("food_id is required"))
	}

	request, err := s.foodService.CreateRequest(c.UserContext(), service.CreateRequestInput{
		RequesterEmail: callerEmail(c),
		FoodID:         body.FoodID,
		Notes:          body.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetMyRequests handles GET /api/requests/mine, the requester's own claims.
func (s *Server) GetMyRequests(c *fiber.Ctx) error {
	requests, err := s.foodService.ListRequestsByRequester(c.UserContext(), callerEmail(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(requests)
}

// GetIncomingRequests handles GET /api/requests/incoming, the requests made
// against the caller's items.
func (s *Server) GetIncomingRequests(c *fiber.Ctx) error {
	requests, err := s.foodService.ListRequestsForDonor(c.UserContext(), callerEmail(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(requests)
}

// GetRequestForFood handles GET /api/requests/food/:foodId, the donor's view
// of the most recent request against one of their items.
func (s *Server) GetRequestForFood(c *fiber.Ctx) error {
	foodID, err := s.parseID(c, "foodId")
	if err != nil {
		return nil
	}

	request, err := s.foodService.GetRequestForFood(c.UserContext(), foodID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(request)
}

// GetRequest handles GET /api/requests/:id. Only the requester or the donor
// can see a request.
func (s *Server) GetRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	request, err := s.foodService.GetRequest(c.UserContext(), callerEmail(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(request)
}

// ApproveRequest handles POST /api/requests/:id/approve. Approval also moves
// the referenced item out of the available pool, in the same transaction.
func (s *Server) ApproveRequest(c *fiber.Ctx) error {
	return s.transitionRequest(c, models.RequestStatusApproved)
}

// RejectRequest handles POST /api/requests/:id/reject
func (s *Server) RejectRequest(c *fiber.Ctx) error {
	return s.transitionRequest(c, models.RequestStatusRejected)
}

func (s *Server) transitionRequest(c *fiber.Ctx, newStatus models.RequestStatus) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	request, err := s.foodService.TransitionRequest(c.UserContext(), service.TransitionRequestInput{
		DonorEmail: callerEmail(c),
		RequestID:  id,
		NewStatus:  newStatus,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(request)
}

// DeleteRequest handles DELETE /api/requests/:id. Either party may withdraw a
// pending request; deleting an absent id reports zero deleted rows.
func (s *Server) DeleteRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	deleted, err := s.foodService.DeleteRequest(c.UserContext(), callerEmail(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
