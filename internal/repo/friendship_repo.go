package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
)

var friendshipFields = []string{"id", "requester_id", "addressee_id", "status", "ctime", "mtime"}

type FriendshipRepo struct {
	db dbutil.Executor
}

func NewFriendshipRepo(db *sql.DB) *FriendshipRepo {
	return &FriendshipRepo{db: db}
}

func (r *FriendshipRepo) Create(ctx context.Context, friendship *model.Friendship) error {
	data := map[string]interface{}{
		"id":           friendship.ID,
		"requester_id": friendship.RequesterID,
		"addressee_id": friendship.AddresseeID,
		"status":       friendship.Status,
		"ctime":        friendship.Ctime,
		"mtime":        friendship.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("friendships", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *FriendshipRepo) Get(ctx context.Context, id string) (*model.Friendship, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("friendships", where, friendshipFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanFriendship(rows)
}

// GetByPair finds the relationship between two users in either direction.
func (r *FriendshipRepo) GetByPair(ctx context.Context, userA, userB string) (*model.Friendship, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT id, requester_id, addressee_id, status, ctime, mtime FROM friendships WHERE (requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		[]interface{}{userA, userB, userB, userA},
	)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanFriendship(rows)
}

func scanFriendship(rows *sql.Rows) (*model.Friendship, error) {
	var friendship model.Friendship
	if err := rows.Scan(&friendship.ID, &friendship.RequesterID, &friendship.AddresseeID, &friendship.Status, &friendship.Ctime, &friendship.Mtime); err != nil {
		return nil, err
	}
	return &friendship, nil
}

// ListAcceptedFor returns accepted relationships involving userID.
func (r *FriendshipRepo) ListAcceptedFor(ctx context.Context, userID string) ([]*model.Friendship, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT id, requester_id, addressee_id, status, ctime, mtime FROM friendships WHERE status = ? AND (requester_id = ? OR addressee_id = ?) ORDER BY mtime DESC",
		[]interface{}{model.FriendshipAccepted, userID, userID},
	)
	return r.listQuery(ctx, sqlStr, args)
}

// ListIncomingPending returns pending requests addressed to userID.
func (r *FriendshipRepo) ListIncomingPending(ctx context.Context, userID string) ([]*model.Friendship, error) {
	where := map[string]interface{}{"addressee_id": userID, "status": model.FriendshipPending, "_orderby": "ctime desc"}
	sqlStr, args, err := builder.BuildSelect("friendships", where, friendshipFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	return r.listQuery(ctx, sqlStr, args)
}

func (r *FriendshipRepo) listQuery(ctx context.Context, sqlStr string, args []interface{}) ([]*model.Friendship, error) {
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []*model.Friendship
	for rows.Next() {
		item, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *FriendshipRepo) UpdateStatus(ctx context.Context, id, status string, mtime int64) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{"status": status, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("friendships", where, update)
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

func (r *FriendshipRepo) Delete(ctx context.Context, id string) error {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildDelete("friendships", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
