package seed

import (
	"context"
	"fmt"
	"time"

	"mealbridge/internal/store"
	"mealbridge/pkg/types"
)

// SeedListings inserts a handful of Available listings so a fresh
// environment has something to browse.
func SeedListings(ctx context.Context, repo *store.ListingRepository) ([]*types.Listing, error) {

	listings := []*types.Listing{
		{
			DonorID:     "seed-donor-1",
			DonorMail:   "bakery@example.com",
			DonorName:   "Corner Bakery",
			Title:       "Day-old sourdough loaves",
			FoodItem:    "Sourdough bread",
			Description: "Six loaves baked yesterday morning, still soft.",
			Quantity:    6,
			Location:    "114 Main St",
			ExpiryDate:  time.Now().Add(48 * time.Hour),
			Status:      types.ListingStatusAvailable,
		},
		{
			DonorID:     "seed-donor-2",
			DonorMail:   "greengrocer@example.com",
			DonorName:   "Green Grocer",
			Title:       "Mixed vegetable box",
			FoodItem:    "Vegetables",
			Description: "Carrots, zucchini, and bell peppers nearing their best-by date.",
			Quantity:    4,
			Location:    "22 Market Sq",
			ExpiryDate:  time.Now().Add(72 * time.Hour),
			Status:      types.ListingStatusAvailable,
		},
		{
			DonorID:     "seed-donor-2",
			DonorMail:   "greengrocer@example.com",
			DonorName:   "Green Grocer",
			Title:       "Crate of ripe bananas",
			FoodItem:    "Bananas",
			Description: "Perfect for banana bread, about 30 in the crate.",
			Quantity:    30,
			Location:    "22 Market Sq",
			ExpiryDate:  time.Now().Add(24 * time.Hour),
			Status:      types.ListingStatusAvailable,
		},
	}

	for _, listing := range listings {
		if err := repo.CreateListing(ctx, listing); err != nil {
			return nil, fmt.Errorf("seed listing %q: %w", listing.Title, err)
		}
	}

	return listings, nil
}
