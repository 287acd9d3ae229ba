package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
)

var planFields = []string{"id", "name", "trial_count", "price_cents"}

type PlanRepo struct {
	db dbutil.Executor
}

func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

func (r *PlanRepo) Get(ctx context.Context, planID string) (*model.Plan, error) {
	where := map[string]interface{}{"id": planID}
	sqlStr, args, err := builder.BuildSelect("plans", where, planFields)
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
	var plan model.Plan
	if err := rows.Scan(&plan.ID, &plan.Name, &plan.TrialCount, &plan.PriceCents); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepo) List(ctx context.Context) ([]*model.Plan, error) {
	where := map[string]interface{}{"_orderby": "price_cents asc"}
	sqlStr, args, err := builder.BuildSelect("plans", where, planFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var plans []*model.Plan
	for rows.Next() {
		var plan model.Plan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.TrialCount, &plan.PriceCents); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}
	return plans, rows.Err()
}
