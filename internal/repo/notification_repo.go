package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
)

var notificationFields = []string{"id", "user_id", "kind", "body", "read", "ctime"}

type NotificationRepo struct {
	db dbutil.Executor
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, notification *model.Notification) error {
	data := map[string]interface{}{
		"id":      notification.ID,
		"user_id": notification.UserID,
		"kind":    notification.Kind,
		"body":    notification.Body,
		"read":    notification.Read,
		"ctime":   notification.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("notifications", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Broadcast inserts one notification per non-banned user in one statement.
func (r *NotificationRepo) Broadcast(ctx context.Context, kind, body string, ctime int64) error {
	const sqlStr = `INSERT INTO notifications (id, user_id, kind, body, read, ctime)
SELECT md5(random()::text || id), id, $1, $2, FALSE, $3 FROM users WHERE is_banned = FALSE`
	_, err := r.db.ExecContext(ctx, sqlStr, kind, body, ctime)
	return err
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	where := map[string]interface{}{"user_id": userID, "_orderby": "ctime desc"}
	if unreadOnly {
		where["read"] = false
	}
	sqlStr, args, err := builder.BuildSelect("notifications", where, notificationFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []*model.Notification
	for rows.Next() {
		var item model.Notification
		if err := rows.Scan(&item.ID, &item.UserID, &item.Kind, &item.Body, &item.Read, &item.Ctime); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// MarkRead is scoped by user so one account can not touch another's rows.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	where := map[string]interface{}{"id": id, "user_id": userID}
	update := map[string]interface{}{"read": true}
	sqlStr, args, err := builder.BuildUpdate("notifications", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	where := map[string]interface{}{"user_id": userID, "read": false}
	update := map[string]interface{}{"read": true}
	sqlStr, args, err := builder.BuildUpdate("notifications", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
