package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
)

// CreditRefillJob resets remaining_credits to the plan allowance at the start
// of each billing cycle. Unmetered plans are untouched.
type CreditRefillJob struct {
	users *repo.UserRepo
}

func NewCreditRefillJob(users *repo.UserRepo) *CreditRefillJob {
	return &CreditRefillJob{users: users}
}

func (j *CreditRefillJob) Name() string {
	return "credit_refill"
}

func (j *CreditRefillJob) Run(ctx context.Context) error {
	refilled, err := j.users.RefillCredits(ctx, timeutil.NowUnix())
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("credits refilled", zap.Int64("users", refilled))
	return nil
}
