package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
)

var verificationCodeFields = []string{"id", "owner_type", "owner_id", "purpose", "code_hash", "used", "ctime", "expires_at"}

type VerificationCodeRepo struct {
	db dbutil.Executor
}

func NewVerificationCodeRepo(db *sql.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

func (r *VerificationCodeRepo) WithTx(tx *sql.Tx) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: tx}
}

func (r *VerificationCodeRepo) Create(ctx context.Context, code *model.VerificationCode) error {
	data := map[string]interface{}{
		"id":         code.ID,
		"owner_type": code.OwnerType,
		"owner_id":   code.OwnerID,
		"purpose":    code.Purpose,
		"code_hash":  code.CodeHash,
		"used":       code.Used,
		"ctime":      code.Ctime,
		"expires_at": code.ExpiresAt,
	}
	sqlStr, args, err := builder.BuildInsert("verification_codes", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// LatestByOwner returns the newest code for (owner, purpose). Lookups are
// always owner-scoped; a bare code value is never enough to find a row.
func (r *VerificationCodeRepo) LatestByOwner(ctx context.Context, owner model.CodeOwner, purpose string) (*model.VerificationCode, error) {
	where := map[string]interface{}{
		"owner_type": owner.Type,
		"owner_id":   owner.ID,
		"purpose":    purpose,
		"_orderby":   "ctime desc",
		"_limit":     []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("verification_codes", where, verificationCodeFields)
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
	var code model.VerificationCode
	if err := rows.Scan(&code.ID, &code.OwnerType, &code.OwnerID, &code.Purpose, &code.CodeHash, &code.Used, &code.Ctime, &code.ExpiresAt); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *VerificationCodeRepo) MarkUsed(ctx context.Context, id string) error {
	where := map[string]interface{}{"id": id, "used": false}
	update := map[string]interface{}{"used": true}
	sqlStr, args, err := builder.BuildUpdate("verification_codes", where, update)
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
		return appErr.ErrCodeUsed
	}
	return nil
}

// InvalidateActive marks every unused code for (owner, purpose) as used.
// Called on reissue so at most one code is live per account and purpose.
func (r *VerificationCodeRepo) InvalidateActive(ctx context.Context, owner model.CodeOwner, purpose string) error {
	where := map[string]interface{}{
		"owner_type": owner.Type,
		"owner_id":   owner.ID,
		"purpose":    purpose,
		"used":       false,
	}
	update := map[string]interface{}{"used": true}
	sqlStr, args, err := builder.BuildUpdate("verification_codes", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// DeleteExpiredBefore garbage-collects rows whose expiry passed before cutoff.
func (r *VerificationCodeRepo) DeleteExpiredBefore(ctx context.Context, cutoff int64) (int64, error) {
	where := map[string]interface{}{"expires_at <": cutoff}
	sqlStr, args, err := builder.BuildDelete("verification_codes", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
