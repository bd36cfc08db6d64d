package types

import (
	"time"
)

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "Available"
	ListingStatusClaimed   ListingStatus = "Claimed"
)

type Listing struct {
	ID          string        `db:"id" json:"id"`
	DonorID     string        `db:"donor_id" json:"donorId"`
	DonorMail   string        `db:"donor_mail" json:"donorMail"`
	DonorName   string        `db:"donor_name" json:"donorName"`
	Title       string        `db:"title" json:"title"`
	FoodItem    string        `db:"food_item" json:"foodItem"`
	Description string        `db:"description" json:"description"`
	Quantity    int           `db:"quantity" json:"quantity"`
	Location    string        `db:"location" json:"location"`
	ExpiryDate  time.Time     `db:"expiry_date" json:"expiryDate"`
	ImageURL    string        `db:"image_url" json:"imageUrl"`
	ClaimedBy   *string       `db:"claimed_by" json:"claimedBy"`
	Status      ListingStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
}

// ListingForm is the multipart form payload for creating a listing. The
// image file itself is read from the multipart body, not through this struct.
type ListingForm struct {
	Title       string `form:"title"`
	FoodItem    string `form:"foodItem"`
	Description string `form:"description"`
	Quantity    int    `form:"quantity"`
	Location    string `form:"location"`
	ExpiryDate  string `form:"expiryDate"`
}
