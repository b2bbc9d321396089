package models

import "time"

// RequestStatus defines lifecycle states for food requests.
type RequestStatus string

const (
	// RequestStatusPending indicates the request is awaiting the donor's review.
	RequestStatusPending RequestStatus = "pending"
	// RequestStatusApproved indicates the donor accepted the request.
	RequestStatusApproved RequestStatus = "approved"
	// RequestStatusRejected indicates the donor declined the request.
	RequestStatusRejected RequestStatus = "rejected"
)

// FoodRequest is a claim by a user against a published food item.
// DonorEmail is denormalized from the item at request time so donor-side
// listings never need a join.
type FoodRequest struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	FoodID         uint          `gorm:"not null;index" json:"food_id"`
	Food           *FoodItem     `gorm:"foreignKey:FoodID" json:"food,omitempty"`
	RequesterEmail string        `gorm:"size:254;not null;index" json:"requester_email"`
	DonorEmail     string        `gorm:"size:254;not null;index" json:"donor_email"`
	Notes          string        `gorm:"type:text" json:"notes"`
	RequestedAt    time.Time     `gorm:"not null" json:"requested_at"`
	Status         RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (FoodRequest) TableName() string {
	return "food_requests"
}
