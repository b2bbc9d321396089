package cache

import (
	"context"
	"fmt"
	"time"
)

// AvailableFoodKey caches the available listing, the hottest read in the
// system. It turns over on every item mutation, hence the short TTL.
const AvailableFoodKey = "foods:available"

const (
	FoodTTL      = 5 * time.Minute
	AvailableTTL = 1 * time.Minute
)

// FoodKey is the cache key for a single food item.
func FoodKey(foodID uint) string {
	return fmt.Sprintf("food:%d", foodID)
}

// InvalidateFood drops a mutated item along with the listing it may appear in.
func InvalidateFood(ctx context.Context, foodID uint) {
	Invalidate(ctx, FoodKey(foodID), AvailableFoodKey)
}

// InvalidateAvailableListing drops the available listing after a new item is
// published.
func InvalidateAvailableListing(ctx context.Context) {
	Invalidate(ctx, AvailableFoodKey)
}
