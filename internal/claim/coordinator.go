// Package claim resolves donation requests against their listings. It is
// the only place where a Listing and a Request change together, so all of
// the lifecycle rules live here: a listing flips Available -> Claimed at
// most once, a request leaves Pending exactly once, and the requester is
// notified of the outcome in the same transaction.
package claim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealbridge/pkg/types"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

type ListingStore interface {
	Listing(ctx context.Context, listingID string) (*types.Listing, error)
	ClaimListing(ctx context.Context, listingID, claimedBy string) (bool, error)
}

type RequestStore interface {
	Request(ctx context.Context, requestID string) (*types.Request, error)
	RequestsByDonor(ctx context.Context, donorMail string) ([]*types.Request, error)
	PendingRequestsByListing(ctx context.Context, listingID string) ([]*types.Request, error)
	CreateRequest(ctx context.Context, request *types.Request) error
	SetRequestStatus(ctx context.Context, requestID string, status types.RequestStatus) (bool, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notification *types.Notification) error
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Coordinator struct {
	logger        *logrus.Logger
	listings      ListingStore
	requests      RequestStore
	notifications NotificationStore
	tx            TxRunner
}

func New(
	logger *logrus.Logger,
	listings ListingStore,
	requests RequestStore,
	notifications NotificationStore,
	tx TxRunner,
) *Coordinator {
	return &Coordinator{
		logger:        logger,
		listings:      listings,
		requests:      requests,
		notifications: notifications,
		tx:            tx,
	}
}

type SubmitParams struct {
	ListingID         string
	UserMail          string
	RequestedQuantity int
	Message           string
}

// Submit creates a Pending request against an Available listing. Title and
// donor identity are copied from the listing, never trusted from the caller.
func (c *Coordinator) Submit(ctx context.Context, params SubmitParams) (*types.Request, error) {

	if params.ListingID == "" || params.UserMail == "" {
		return nil, types.Validationf("missing required fields")
	}

	if params.RequestedQuantity <= 0 {
		return nil, types.Validationf("requested quantity must be positive")
	}

	listing, err := c.listings.Listing(ctx, params.ListingID)
	if err != nil {
		return nil, err
	}

	if listing.DonorMail == params.UserMail {
		return nil, types.ErrSelfRequest
	}

	if listing.Status != types.ListingStatusAvailable {
		return nil, types.ErrListingNotAvailable
	}

	if params.RequestedQuantity > listing.Quantity {
		return nil, types.Validationf("requested quantity exceeds the listed quantity")
	}

	request := &types.Request{
		Title:             listing.Title,
		UserMail:          params.UserMail,
		DonorMail:         listing.DonorMail,
		ListingID:         listing.ID,
		RequestedQuantity: params.RequestedQuantity,
		Message:           params.Message,
		Status:            types.RequestStatusPending,
	}

	if err := c.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"request_id": request.ID,
		"listing_id": listing.ID,
		"user_mail":  params.UserMail,
	}).Info("donation request submitted")

	return request, nil
}

type DecideParams struct {
	ListingID string
	// RequestID pins the exact request to decide. When empty, the oldest
	// Pending request on the listing is targeted.
	RequestID   string
	ActingDonor string
}

// Accept claims the listing for the matched request's user and marks the
// request Accepted. Listing, request, and notification writes share one
// transaction; the listing flip is conditional on it still being Available,
// so concurrent accepts lose with ErrClaimConflict.
func (c *Coordinator) Accept(ctx context.Context, params DecideParams) (*types.Listing, error) {

	request, err := c.resolveRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	listing, err := c.listings.Listing(ctx, request.ListingID)
	if err != nil {
		return nil, err
	}

	if listing.Status != types.ListingStatusAvailable {
		return nil, types.ErrClaimConflict
	}

	err = c.withTxRetry(ctx, func(ctx context.Context) error {
		claimed, err := c.listings.ClaimListing(ctx, listing.ID, request.UserMail)
		if err != nil {
			return err
		}
		if !claimed {
			return types.ErrClaimConflict
		}

		changed, err := c.requests.SetRequestStatus(ctx, request.ID, types.RequestStatusAccepted)
		if err != nil {
			return err
		}
		if !changed {
			return types.ErrRequestNotFound
		}

		return c.notifications.CreateNotification(ctx, &types.Notification{
			Recipient: request.UserMail,
			Title:     "Food Claimed",
			Message:   fmt.Sprintf("Your request for %s has been accepted.", listing.FoodItem),
		})
	})
	if err != nil {
		return nil, err
	}

	listing.Status = types.ListingStatusClaimed
	listing.ClaimedBy = &request.UserMail

	c.logger.WithFields(logrus.Fields{
		"listing_id": listing.ID,
		"request_id": request.ID,
		"claimed_by": request.UserMail,
	}).Info("listing claimed")

	return listing, nil
}

// Reject marks the matched request Rejected and notifies the requester.
// The listing stays Available, so sibling pending requests remain winnable.
func (c *Coordinator) Reject(ctx context.Context, params DecideParams) (*types.Request, error) {

	request, err := c.resolveRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	err = c.tx.WithinTx(ctx, func(ctx context.Context) error {
		changed, err := c.requests.SetRequestStatus(ctx, request.ID, types.RequestStatusRejected)
		if err != nil {
			return err
		}
		if !changed {
			return types.ErrRequestNotFound
		}

		return c.notifications.CreateNotification(ctx, &types.Notification{
			Recipient: request.UserMail,
			Title:     "Request Rejected",
			Message:   fmt.Sprintf("Your request for %s has been rejected.", request.Title),
		})
	})
	if err != nil {
		return nil, err
	}

	request.Status = types.RequestStatusRejected

	c.logger.WithFields(logrus.Fields{
		"listing_id": request.ListingID,
		"request_id": request.ID,
	}).Info("request rejected")

	return request, nil
}

// DonorQueue partitions a donor's requests for review. Rejected requests
// carry no further action and appear in neither slice.
type DonorQueue struct {
	Available []*types.Request `json:"available"`
	Claimed   []*types.Request `json:"claimed"`
}

func (c *Coordinator) ListByDonor(ctx context.Context, donorMail string) (*DonorQueue, error) {

	requests, err := c.requests.RequestsByDonor(ctx, donorMail)
	if err != nil {
		return nil, err
	}

	queue := &DonorQueue{
		Available: make([]*types.Request, 0, len(requests)),
		Claimed:   make([]*types.Request, 0, len(requests)),
	}

	for _, request := range requests {
		switch request.Status {
		case types.RequestStatusPending:
			queue.Available = append(queue.Available, request)
		case types.RequestStatusAccepted:
			queue.Claimed = append(queue.Claimed, request)
		}
	}

	return queue, nil
}

func (c *Coordinator) resolveRequest(ctx context.Context, params DecideParams) (*types.Request, error) {

	var request *types.Request

	if params.RequestID != "" {
		found, err := c.requests.Request(ctx, params.RequestID)
		if err != nil {
			return nil, err
		}
		if params.ListingID != "" && found.ListingID != params.ListingID {
			return nil, types.ErrRequestNotFound
		}
		if found.Status != types.RequestStatusPending {
			return nil, types.ErrRequestNotFound
		}
		request = found
	} else {
		if params.ListingID == "" {
			return nil, types.Validationf("listing id is required")
		}
		pending, err := c.requests.PendingRequestsByListing(ctx, params.ListingID)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			return nil, types.ErrRequestNotFound
		}
		request = pending[0]
	}

	// Report a donor mismatch the same as a missing request so the caller
	// learns nothing about other donors' requests.
	if request.DonorMail != params.ActingDonor {
		return nil, types.ErrRequestNotFound
	}

	return request, nil
}

const claimAttempts = 3

// withTxRetry reruns the whole transaction on transient storage errors. A
// failed statement aborts a pg transaction, so the retry unit is the tx,
// not the individual update.
func (c *Coordinator) withTxRetry(ctx context.Context, fn func(ctx context.Context) error) error {

	var lastErr error
	for attempt := 1; attempt <= claimAttempts; attempt++ {
		err := c.tx.WithinTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}

		lastErr = err
		c.logger.WithError(err).WithField("attempt", attempt).Warn("transient storage error during claim")

		if attempt == claimAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}

	return fmt.Errorf("claim failed after %d attempts: %w", claimAttempts, lastErr)
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}

	return pgconn.SafeToRetry(err)
}
