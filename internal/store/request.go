package store

import (
	"context"
	"fmt"
	"time"

	"mealbridge/internal/utils"
	"mealbridge/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestTableName = "mealbridge.requests"

var requestColumns = utils.StructTagValues(types.Request{})

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

func (r *RequestRepository) Request(ctx context.Context, requestID string) (*types.Request, error) {

	query, args, err := psql().Select(requestColumns...).From(requestTableName).
		Where(sq.Eq{"id": requestID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request query: %w", err)
	}

	var request = new(types.Request)
	err = pgxscan.Get(ctx, querier(ctx, r.pool), request, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrRequestNotFound
	}

	return request, nil
}

func (r *RequestRepository) RequestsByDonor(ctx context.Context, donorMail string) ([]*types.Request, error) {

	query, args, err := psql().Select(requestColumns...).From(requestTableName).
		Where(sq.Eq{"donor_mail": donorMail}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor requests query: %w", err)
	}

	var requests = make([]*types.Request, 0)
	err = pgxscan.Select(ctx, querier(ctx, r.pool), &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query donor requests: %w", err)
	}

	return requests, nil
}

// PendingRequestsByListing returns pending requests oldest first, so the
// fallback "no explicit request id" path always targets the same request.
func (r *RequestRepository) PendingRequestsByListing(ctx context.Context, listingID string) ([]*types.Request, error) {

	query, args, err := psql().Select(requestColumns...).From(requestTableName).
		Where(sq.Eq{"listing_id": listingID, "status": types.RequestStatusPending}).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pending requests query: %w", err)
	}

	var requests = make([]*types.Request, 0)
	err = pgxscan.Select(ctx, querier(ctx, r.pool), &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending requests: %w", err)
	}

	return requests, nil
}

func (r *RequestRepository) CreateRequest(ctx context.Context, request *types.Request) error {

	request.ID = utils.NanoID()
	request.CreatedAt = time.Now()
	if request.Status == "" {
		request.Status = types.RequestStatusPending
	}

	requestMap := utils.StructToMap(request)

	query, args, err := psql().Insert(requestTableName).SetMap(requestMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert request query: %w", err)
	}

	_, err = querier(ctx, r.pool).Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create request")
}

// SetRequestStatus transitions a request out of Pending. The Pending guard
// keeps Accepted/Rejected terminal. Returns whether a row changed.
func (r *RequestRepository) SetRequestStatus(ctx context.Context, requestID string, status types.RequestStatus) (bool, error) {

	query, args, err := psql().Update(requestTableName).
		Set("status", status).
		Where(sq.Eq{"id": requestID, "status": types.RequestStatusPending}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate update request query for request %s: %w", requestID, err)
	}

	tag, err := querier(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return false, utils.ErrorWrapOrNil(err, "failed to update request status")
	}

	return tag.RowsAffected() == 1, nil
}
