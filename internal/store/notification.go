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

const notificationTableName = "mealbridge.notifications"

var notificationColumns = utils.StructTagValues(types.Notification{})

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, notification *types.Notification) error {

	notification.ID = utils.NanoID()
	notification.CreatedAt = time.Now()
	notification.IsRead = false

	notificationMap := utils.StructToMap(notification)

	query, args, err := psql().Insert(notificationTableName).SetMap(notificationMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert notification query: %w", err)
	}

	_, err = querier(ctx, r.pool).Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create notification")
}

func (r *NotificationRepository) NotificationsByRecipient(ctx context.Context, recipient string) ([]*types.Notification, error) {

	query, args, err := psql().Select(notificationColumns...).From(notificationTableName).
		Where(sq.Eq{"recipient": recipient}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate notifications query: %w", err)
	}

	var notifications = make([]*types.Notification, 0)
	err = pgxscan.Select(ctx, querier(ctx, r.pool), &notifications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	return notifications, nil
}

// MarkNotificationRead flips the read flag. The recipient guard keeps a
// notification mutable only by its owner.
func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, notificationID, recipient string) error {

	query, args, err := psql().Update(notificationTableName).
		Set("is_read", true).
		Where(sq.Eq{"id": notificationID, "recipient": recipient}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate mark read query for notification %s: %w", notificationID, err)
	}

	tag, err := querier(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return utils.ErrorWrapOrNil(err, "failed to mark notification read")
	}

	if tag.RowsAffected() == 0 {
		return types.ErrNotificationNotFound
	}

	return nil
}

func (r *NotificationRepository) DeleteNotification(ctx context.Context, notificationID, recipient string) error {

	query, args, err := psql().Delete(notificationTableName).
		Where(sq.Eq{"id": notificationID, "recipient": recipient}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete query for notification %s: %w", notificationID, err)
	}

	tag, err := querier(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return utils.ErrorWrapOrNil(err, "failed to delete notification")
	}

	if tag.RowsAffected() == 0 {
		return types.ErrNotificationNotFound
	}

	return nil
}
