// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// FoodStatus defines the lifecycle states of a published food item.
type FoodStatus string

const (
	// FoodStatusAvailable indicates the item can be requested.
	FoodStatusAvailable FoodStatus = "available"
	// FoodStatusUnavailable indicates a request against the item was approved.
	FoodStatusUnavailable FoodStatus = "unavailable"
	// FoodStatusCompleted indicates the donor marked the handover as done.
	FoodStatusCompleted FoodStatus = "completed"
)

// FoodItem is a unit of surplus food published by a donor.
type FoodItem struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:200;not null" json:"name"`
	ImageURL        string         `json:"image_url"`
	Quantity        int            `gorm:"not null" json:"quantity"`
	AdditionalNotes string         `gorm:"type:text" json:"additional_notes"`
	PickupLocation  string         `gorm:"size:200;not null" json:"pickup_location"`
	ExpiresAt       time.Time      `gorm:"not null;index" json:"expires_at"`
	DonorName       string         `gorm:"size:120" json:"donor_name"`
	DonorAvatar     string         `json:"donor_avatar"`
	DonorEmail      string         `gorm:"size:254;not null;index" json:"donor_email"`
	Status          FoodStatus     `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (FoodItem) TableName() string {
	return "food_items"
}
