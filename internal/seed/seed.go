// Package seed provides database seeding utilities for development and demos.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"foodshare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumDonors   int
	NumItems    int
	ShouldClean bool
}

var foodNames = []string{
	"Bread", "Milk", "Rice", "Pasta", "Apples", "Bananas", "Carrots",
	"Potatoes", "Tomato Soup", "Lentils", "Chickpeas", "Oats", "Yogurt",
	"Cheese", "Eggs", "Orange Juice", "Canned Beans", "Granola Bars",
	"Peanut Butter", "Vegetable Stew",
}

// Seeder populates the store with demo donors, items, and pending requests.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// ClearAll removes all seeded data.
func (s *Seeder) ClearAll() error {
	if err := s.db.Exec("DELETE FROM food_requests").Error; err != nil {
		return err
	}
	return s.db.Exec("DELETE FROM food_items").Error
}

// Run seeds donors and their items, plus a pending request against roughly a
// third of them so approval flows have something to act on.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	donors := make([]string, 0, opts.NumDonors)
	for i := 0; i < opts.NumDonors; i++ {
		donors = append(donors, gofakeit.Email())
	}

	for i := 0; i < opts.NumItems; i++ {
		donor := donors[rand.Intn(len(donors))]
		item := models.FoodItem{
			Name:            foodNames[rand.Intn(len(foodNames))],
			ImageURL:        fmt.Sprintf("https://picsum.photos/seed/%s/400/300", gofakeit.UUID()),
			Quantity:        rand.Intn(9) + 1,
			AdditionalNotes: gofakeit.Sentence(8),
			PickupLocation:  gofakeit.Address().City,
			ExpiresAt:       time.Now().Add(time.Duration(rand.Intn(14)+1) * 24 * time.Hour),
			DonorName:       gofakeit.Name(),
			DonorAvatar:     fmt.Sprintf("https://picsum.photos/seed/%s/128/128", gofakeit.UUID()),
			DonorEmail:      donor,
			Status:          models.FoodStatusAvailable,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return fmt.Errorf("seed item: %w", err)
		}

		if i%3 == 0 {
			request := models.FoodRequest{
				FoodID:         item.ID,
				RequesterEmail: gofakeit.Email(),
				DonorEmail:     item.DonorEmail,
				Notes:          gofakeit.Sentence(6),
				RequestedAt:    time.Now(),
				Status:         models.RequestStatusPending,
			}
			if err := s.db.Create(&request).Error; err != nil {
				return fmt.Errorf("seed request: %w", err)
			}
		}
	}

	return nil
}
