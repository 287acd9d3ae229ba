package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/nextai/nextai/internal/model"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/password"
	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
)

const (
	// Signup confirmation codes live longer than reset codes.
	verifyExpireMinutes = 15
	resetExpireMinutes  = 10

	reissueCooldownSeconds = 60
)

// VerificationService is the single code component shared by user and admin
// flows. A code is bound to its owner: issuing invalidates the owner's prior
// unused codes, and checking never matches a code against another account.
type VerificationService struct {
	codes *repo.VerificationCodeRepo
}

func NewVerificationService(codes *repo.VerificationCodeRepo) *VerificationService {
	return &VerificationService{codes: codes}
}

func ExpireMinutes(purpose string) int {
	if purpose == model.PurposeReset {
		return resetExpireMinutes
	}
	return verifyExpireMinutes
}

// Issue creates a fresh code for (owner, purpose) and returns the plaintext
// exactly once; only the bcrypt hash is stored. The caller delivers it.
func (s *VerificationService) Issue(ctx context.Context, owner model.CodeOwner, purpose string) (string, error) {
	if owner.ID == "" || owner.Type == "" {
		return "", appErr.ErrInvalid
	}
	if err := s.ensureCooldown(ctx, owner, purpose); err != nil {
		return "", err
	}
	code := generateCode()
	hash, err := password.Hash(code)
	if err != nil {
		return "", err
	}
	if err := s.codes.InvalidateActive(ctx, owner, purpose); err != nil {
		return "", err
	}
	now := timeutil.NowUnix()
	item := &model.VerificationCode{
		ID:        newID(),
		OwnerType: owner.Type,
		OwnerID:   owner.ID,
		Purpose:   purpose,
		CodeHash:  hash,
		Used:      false,
		Ctime:     now,
		ExpiresAt: now + int64(ExpireMinutes(purpose)*60),
	}
	if err := s.codes.Create(ctx, item); err != nil {
		return "", err
	}
	return code, nil
}

// Check validates code against the owner's latest issue without consuming
// it. Rejections carry the reason: ErrCodeInvalid (none issued or mismatch),
// ErrCodeUsed (already consumed), ErrCodeExpired.
func (s *VerificationService) Check(ctx context.Context, owner model.CodeOwner, purpose, code string) (*model.VerificationCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, appErr.ErrCodeInvalid
	}
	item, err := s.codes.LatestByOwner(ctx, owner, purpose)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrCodeInvalid
		}
		return nil, err
	}
	if item.Used {
		return nil, appErr.ErrCodeUsed
	}
	if item.ExpiresAt <= timeutil.NowUnix() {
		return nil, appErr.ErrCodeExpired
	}
	if err := password.Compare(item.CodeHash, code); err != nil {
		return nil, appErr.ErrCodeInvalid
	}
	return item, nil
}

// Consume marks the code used. It runs on tx so consumption commits together
// with the account mutation the code authorizes.
func (s *VerificationService) Consume(ctx context.Context, tx *sql.Tx, id string) error {
	return s.codes.WithTx(tx).MarkUsed(ctx, id)
}

func (s *VerificationService) ensureCooldown(ctx context.Context, owner model.CodeOwner, purpose string) error {
	item, err := s.codes.LatestByOwner(ctx, owner, purpose)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil
		}
		return err
	}
	if item.Ctime+reissueCooldownSeconds > timeutil.NowUnix() {
		return appErr.ErrTooMany
	}
	return nil
}

func generateCode() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return fmt.Sprintf("%06d", 100000+rng.Intn(900000))
}
