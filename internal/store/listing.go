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

const listingTableName = "mealbridge.listings"

var listingColumns = utils.StructTagValues(types.Listing{})

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) Listing(ctx context.Context, listingID string) (*types.Listing, error) {

	query, args, err := psql().Select(listingColumns...).From(listingTableName).
		Where(sq.Eq{"id": listingID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate listing query: %w", err)
	}

	var listing = new(types.Listing)
	err = pgxscan.Get(ctx, querier(ctx, r.pool), listing, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrListingNotFound
	}

	return listing, nil
}

func (r *ListingRepository) AvailableListings(ctx context.Context, excludeDonorMail string) ([]*types.Listing, error) {

	query, args, err := psql().Select(listingColumns...).From(listingTableName).
		Where(sq.Eq{"status": types.ListingStatusAvailable}).
		Where(sq.NotEq{"donor_mail": excludeDonorMail}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate available listings query: %w", err)
	}

	var listings = make([]*types.Listing, 0)
	err = pgxscan.Select(ctx, querier(ctx, r.pool), &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query available listings: %w", err)
	}

	return listings, nil
}

func (r *ListingRepository) ListingsByDonor(ctx context.Context, donorMail string) ([]*types.Listing, error) {

	query, args, err := psql().Select(listingColumns...).From(listingTableName).
		Where(sq.Eq{"donor_mail": donorMail}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor listings query: %w", err)
	}

	var listings = make([]*types.Listing, 0)
	err = pgxscan.Select(ctx, querier(ctx, r.pool), &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query donor listings: %w", err)
	}

	return listings, nil
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing *types.Listing) error {

	listing.ID = utils.NanoID()
	listing.CreatedAt = time.Now()
	if listing.Status == "" {
		listing.Status = types.ListingStatusAvailable
	}

	listingMap := utils.StructToMap(listing)

	query, args, err := psql().Insert(listingTableName).SetMap(listingMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert listing query: %w", err)
	}

	_, err = querier(ctx, r.pool).Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create listing")
}

// ClaimListing performs the conditional status flip: the row only changes
// if the listing is still Available. Returns whether a row was claimed.
func (r *ListingRepository) ClaimListing(ctx context.Context, listingID, claimedBy string) (bool, error) {

	query, args, err := psql().Update(listingTableName).
		Set("status", types.ListingStatusClaimed).
		Set("claimed_by", claimedBy).
		Where(sq.Eq{"id": listingID, "status": types.ListingStatusAvailable}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate claim listing query for listing %s: %w", listingID, err)
	}

	tag, err := querier(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return false, utils.ErrorWrapOrNil(err, "failed to claim listing")
	}

	return tag.RowsAffected() == 1, nil
}
