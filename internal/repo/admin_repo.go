package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
)

var adminFields = []string{"id", "email", "username", "password_hash", "is_verified", "is_active", "role", "ctime", "mtime"}

type AdminRepo struct {
	db dbutil.Executor
}

func NewAdminRepo(db *sql.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) WithTx(tx *sql.Tx) *AdminRepo {
	return &AdminRepo{db: tx}
}

func (r *AdminRepo) Create(ctx context.Context, admin *model.Admin) error {
	data := map[string]interface{}{
		"id":            admin.ID,
		"email":         admin.Email,
		"username":      admin.Username,
		"password_hash": admin.PasswordHash,
		"is_verified":   admin.IsVerified,
		"is_active":     admin.IsActive,
		"role":          admin.Role,
		"ctime":         admin.Ctime,
		"mtime":         admin.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("admins", []map[string]interface{}{data})
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

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *AdminRepo) GetByID(ctx context.Context, adminID string) (*model.Admin, error) {
	return r.getOne(ctx, map[string]interface{}{"id": adminID})
}

func (r *AdminRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Admin, error) {
	sqlStr, args, err := builder.BuildSelect("admins", where, adminFields)
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
	var admin model.Admin
	if err := rows.Scan(&admin.ID, &admin.Email, &admin.Username, &admin.PasswordHash, &admin.IsVerified, &admin.IsActive, &admin.Role, &admin.Ctime, &admin.Mtime); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepo) List(ctx context.Context, limit, offset uint) ([]*model.Admin, error) {
	where := map[string]interface{}{"_orderby": "ctime desc", "_limit": []uint{offset, limit}}
	sqlStr, args, err := builder.BuildSelect("admins", where, adminFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var admins []*model.Admin
	for rows.Next() {
		var admin model.Admin
		if err := rows.Scan(&admin.ID, &admin.Email, &admin.Username, &admin.PasswordHash, &admin.IsVerified, &admin.IsActive, &admin.Role, &admin.Ctime, &admin.Mtime); err != nil {
			return nil, err
		}
		admins = append(admins, &admin)
	}
	return admins, rows.Err()
}

func (r *AdminRepo) UpdatePassword(ctx context.Context, adminID, passwordHash string, mtime int64) error {
	where := map[string]interface{}{"id": adminID}
	update := map[string]interface{}{"password_hash": passwordHash, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("admins", where, update)
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

func (r *AdminRepo) Count(ctx context.Context, where map[string]interface{}) (int64, error) {
	return countRows(ctx, r.db, "admins", where)
}
