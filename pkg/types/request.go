package types

import (
	"time"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusAccepted RequestStatus = "Accepted"
	RequestStatusRejected RequestStatus = "Rejected"
)

// Request is a recipient's claim attempt against a Listing. Title is copied
// from the listing at submit time so the donor queue renders without a join.
type Request struct {
	ID                string        `db:"id" json:"id"`
	Title             string        `db:"title" json:"title"`
	UserMail          string        `db:"user_mail" json:"userMail"`
	DonorMail         string        `db:"donor_mail" json:"donorMail"`
	ListingID         string        `db:"listing_id" json:"foodItemId"`
	RequestedQuantity int           `db:"requested_quantity" json:"requestedQuantity"`
	Message           string        `db:"message" json:"message"`
	Status            RequestStatus `db:"status" json:"status"`
	CreatedAt         time.Time     `db:"created_at" json:"requestDate"`
}
