package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/jwt"
	"github.com/nextai/nextai/internal/pkg/password"
	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
)

const defaultPlanID = "free"

type AuthService struct {
	db           *sql.DB
	users        *repo.UserRepo
	plans        *PlanService
	verification *VerificationService
	mail         EmailSender
	jwtSecret    []byte
	jwtTTL       time.Duration
}

func NewAuthService(db *sql.DB, users *repo.UserRepo, plans *PlanService, verification *VerificationService, mail EmailSender, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		db:           db,
		users:        users,
		plans:        plans,
		verification: verification,
		mail:         mail,
		jwtSecret:    secret,
		jwtTTL:       ttl,
	}
}

// Signup creates an unverified account on the free plan and issues a signup
// confirmation code. The code is returned so the handler can embed it in the
// response in addition to the email.
func (s *AuthService) Signup(ctx context.Context, email, username, plainPassword string) (*model.User, string, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", appErr.ErrConflict
	} else if !appErr.IsNotFound(err) {
		return nil, "", err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, "", appErr.ErrConflict
	} else if !appErr.IsNotFound(err) {
		return nil, "", err
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	plan, err := s.plans.Get(ctx, defaultPlanID)
	if err != nil {
		return nil, "", err
	}
	credits := plan.TrialCount
	if credits < 0 {
		credits = 0
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:               newID(),
		Email:            email,
		Username:         username,
		PasswordHash:     hash,
		RemainingCredits: credits,
		PlanID:           plan.ID,
		Ctime:            now,
		Mtime:            now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	code, err := s.verification.Issue(ctx, model.UserOwner(user.ID), model.PurposeVerify)
	if err != nil {
		return nil, "", err
	}
	s.deliver(ctx, email, "Your verification code", verificationMailBody(code, ExpireMinutes(model.PurposeVerify)))
	return user, code, nil
}

// Verify flips is_verified and consumes the code in one transaction.
func (s *AuthService) Verify(ctx context.Context, email, code string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrCodeInvalid
		}
		return err
	}
	item, err := s.verification.Check(ctx, model.UserOwner(user.ID), model.PurposeVerify, code)
	if err != nil {
		return err
	}
	return dbutil.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.users.WithTx(tx).SetVerified(ctx, user.ID, timeutil.NowUnix()); err != nil {
			return err
		}
		return s.verification.Consume(ctx, tx, item.ID)
	})
}

func (s *AuthService) Signin(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if user.IsBanned {
		return nil, "", appErr.ErrBanned
	}
	if !user.IsVerified {
		return nil, "", appErr.ErrNotVerified
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, jwt.RoleUser, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ForgotPassword issues a reset code when the account exists. The outcome is
// indistinguishable to the caller either way, so emails can not be probed.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil
		}
		return err
	}
	code, err := s.verification.Issue(ctx, model.UserOwner(user.ID), model.PurposeReset)
	if err != nil {
		return err
	}
	s.deliver(ctx, user.Email, "Password reset code", resetMailBody(code, ExpireMinutes(model.PurposeReset)))
	return nil
}

// ResetPassword updates the password and consumes the code in one
// transaction; replaying the same code afterwards fails.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrCodeInvalid
		}
		return err
	}
	item, err := s.verification.Check(ctx, model.UserOwner(user.ID), model.PurposeReset, code)
	if err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return dbutil.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.users.WithTx(tx).UpdatePassword(ctx, user.ID, hash, timeutil.NowUnix()); err != nil {
			return err
		}
		return s.verification.Consume(ctx, tx, item.ID)
	})
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, *model.Plan, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.plans.Get(ctx, user.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return user, plan, nil
}

func (s *AuthService) deliver(ctx context.Context, to, subject, body string) {
	if err := s.mail.Send(to, subject, body); err != nil {
		logutil.GetLogger(ctx).Warn("send mail failed", zap.String("to", to), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
