package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
)

var userFields = []string{"id", "email", "username", "password_hash", "is_verified", "is_banned", "remaining_credits", "plan_id", "avatar_key", "ctime", "mtime"}

type UserRepo struct {
	db dbutil.Executor
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// WithTx returns a copy of the repo bound to tx.
func (r *UserRepo) WithTx(tx *sql.Tx) *UserRepo {
	return &UserRepo{db: tx}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"id":                user.ID,
		"email":             user.Email,
		"username":          user.Username,
		"password_hash":     user.PasswordHash,
		"is_verified":       user.IsVerified,
		"is_banned":         user.IsBanned,
		"remaining_credits": user.RemainingCredits,
		"plan_id":           user.PlanID,
		"avatar_key":        user.AvatarKey,
		"ctime":             user.Ctime,
		"mtime":             user.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
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

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"username": username})
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
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
	return scanUser(rows)
}

func scanUser(rows *sql.Rows) (*model.User, error) {
	var user model.User
	if err := rows.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.IsVerified, &user.IsBanned, &user.RemainingCredits, &user.PlanID, &user.AvatarKey, &user.Ctime, &user.Mtime); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) List(ctx context.Context, limit, offset uint) ([]*model.User, error) {
	where := map[string]interface{}{"_orderby": "ctime desc", "_limit": []uint{offset, limit}}
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	where := map[string]interface{}{"id in": ids}
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepo) SetVerified(ctx context.Context, userID string, mtime int64) error {
	return r.update(ctx, userID, map[string]interface{}{"is_verified": true, "mtime": mtime})
}

func (r *UserRepo) SetBanned(ctx context.Context, userID string, banned bool, mtime int64) error {
	return r.update(ctx, userID, map[string]interface{}{"is_banned": banned, "mtime": mtime})
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string, mtime int64) error {
	return r.update(ctx, userID, map[string]interface{}{"password_hash": passwordHash, "mtime": mtime})
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, userID, avatarKey string, mtime int64) error {
	return r.update(ctx, userID, map[string]interface{}{"avatar_key": avatarKey, "mtime": mtime})
}

func (r *UserRepo) SetCredits(ctx context.Context, userID string, credits int, mtime int64) error {
	return r.update(ctx, userID, map[string]interface{}{"remaining_credits": credits, "mtime": mtime})
}

func (r *UserRepo) update(ctx context.Context, userID string, update map[string]interface{}) error {
	where := map[string]interface{}{"id": userID}
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
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

// DecrementCredits takes one credit, guarded so the counter can not go
// negative under concurrent generations. Zero rows affected means the
// account was already exhausted.
func (r *UserRepo) DecrementCredits(ctx context.Context, userID string, mtime int64) error {
	sqlStr, args := dbutil.Finalize(
		"UPDATE users SET remaining_credits = remaining_credits - 1, mtime = ? WHERE id = ? AND remaining_credits > 0",
		[]interface{}{mtime, userID},
	)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNeedsUpgrade
	}
	return nil
}

// RefillCredits resets every metered account to its plan allowance.
func (r *UserRepo) RefillCredits(ctx context.Context, mtime int64) (int64, error) {
	sqlStr, args := dbutil.Finalize(
		"UPDATE users SET remaining_credits = plans.trial_count, mtime = ? FROM plans WHERE users.plan_id = plans.id AND plans.trial_count >= 0",
		[]interface{}{mtime},
	)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *UserRepo) Count(ctx context.Context, where map[string]interface{}) (int64, error) {
	return countRows(ctx, r.db, "users", where)
}
