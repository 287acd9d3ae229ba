package repo

import (
	"context"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/pkg/dbutil"
)

func countRows(ctx context.Context, db dbutil.Executor, table string, where map[string]interface{}) (int64, error) {
	sqlStr, args, err := builder.BuildSelect(table, where, []string{"count(*)"})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return 0, rows.Err()
	}
	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
