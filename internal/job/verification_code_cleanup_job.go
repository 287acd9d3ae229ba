package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextai/nextai/internal/repo"
)

// retention after expiry, so recently expired codes stay visible for support.
const codeRetention = 24 * time.Hour

type VerificationCodeCleanupJob struct {
	codes *repo.VerificationCodeRepo
}

func NewVerificationCodeCleanupJob(codes *repo.VerificationCodeRepo) *VerificationCodeCleanupJob {
	return &VerificationCodeCleanupJob{codes: codes}
}

func (j *VerificationCodeCleanupJob) Name() string {
	return "verification_code_cleanup"
}

func (j *VerificationCodeCleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-codeRetention).Unix()
	deleted, err := j.codes.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("expired verification codes removed", zap.Int64("count", deleted))
	}
	return nil
}
