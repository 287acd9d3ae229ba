package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
)

var contactFields = []string{"id", "name", "email", "message", "ctime"}

type ContactRepo struct {
	db dbutil.Executor
}

func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

func (r *ContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	data := map[string]interface{}{
		"id":      contact.ID,
		"name":    contact.Name,
		"email":   contact.Email,
		"message": contact.Message,
		"ctime":   contact.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("contacts", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ContactRepo) List(ctx context.Context, limit, offset uint) ([]*model.Contact, error) {
	where := map[string]interface{}{"_orderby": "ctime desc", "_limit": []uint{offset, limit}}
	sqlStr, args, err := builder.BuildSelect("contacts", where, contactFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []*model.Contact
	for rows.Next() {
		var item model.Contact
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.Message, &item.Ctime); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *ContactRepo) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, "contacts", nil)
}
