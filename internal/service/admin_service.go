package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/jwt"
	"github.com/nextai/nextai/internal/pkg/password"
	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
)

type AdminService struct {
	db           *sql.DB
	admins       *repo.AdminRepo
	users        *repo.UserRepo
	sessions     *repo.ChatSessionRepo
	messages     *repo.AiMessageRepo
	contacts     *repo.ContactRepo
	verification *VerificationService
	mail         EmailSender
	jwtSecret    []byte
	jwtTTL       time.Duration
}

func NewAdminService(db *sql.DB, admins *repo.AdminRepo, users *repo.UserRepo, sessions *repo.ChatSessionRepo, messages *repo.AiMessageRepo, contacts *repo.ContactRepo, verification *VerificationService, mail EmailSender, secret []byte, ttl time.Duration) *AdminService {
	return &AdminService{
		db:           db,
		admins:       admins,
		users:        users,
		sessions:     sessions,
		messages:     messages,
		contacts:     contacts,
		verification: verification,
		mail:         mail,
		jwtSecret:    secret,
		jwtTTL:       ttl,
	}
}

func (s *AdminService) Signin(ctx context.Context, email, plainPassword string) (*model.Admin, string, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if err := password.Compare(admin.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if !admin.IsActive {
		return nil, "", appErr.ErrBanned
	}
	role := jwt.RoleAdmin
	if admin.Role == model.AdminRoleSuperAdmin {
		role = jwt.RoleSuperAdmin
	}
	token, err := jwt.GenerateToken(admin.ID, admin.Email, role, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

func (s *AdminService) ForgotPassword(ctx context.Context, email string) error {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil
		}
		return err
	}
	code, err := s.verification.Issue(ctx, model.AdminOwner(admin.ID), model.PurposeReset)
	if err != nil {
		return err
	}
	if err := s.mail.Send(admin.Email, "Password reset code", resetMailBody(code, ExpireMinutes(model.PurposeReset))); err != nil {
		return err
	}
	return nil
}

func (s *AdminService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrCodeInvalid
		}
		return err
	}
	item, err := s.verification.Check(ctx, model.AdminOwner(admin.ID), model.PurposeReset, code)
	if err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return dbutil.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.admins.WithTx(tx).UpdatePassword(ctx, admin.ID, hash, timeutil.NowUnix()); err != nil {
			return err
		}
		return s.verification.Consume(ctx, tx, item.ID)
	})
}

// CreateAdmin is restricted to super admins. The email must be unique across
// admins and users, checked explicitly against both tables.
func (s *AdminService) CreateAdmin(ctx context.Context, actorRole, email, username, plainPassword, role string) (*model.Admin, error) {
	if actorRole != jwt.RoleSuperAdmin {
		return nil, appErr.ErrForbidden
	}
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if role == "" {
		role = model.AdminRoleAdmin
	}
	if role != model.AdminRoleAdmin && role != model.AdminRoleSuperAdmin {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil, appErr.ErrConflict
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, appErr.ErrConflict
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	admin := &model.Admin{
		ID:           newID(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsVerified:   true,
		IsActive:     true,
		Role:         role,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

type DashboardStats struct {
	Users         int64 `json:"users"`
	VerifiedUsers int64 `json:"verified_users"`
	BannedUsers   int64 `json:"banned_users"`
	Admins        int64 `json:"admins"`
	ChatSessions  int64 `json:"chat_sessions"`
	AiMessages    int64 `json:"ai_messages"`
	Contacts      int64 `json:"contacts"`
}

func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error
	if stats.Users, err = s.users.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.VerifiedUsers, err = s.users.Count(ctx, map[string]interface{}{"is_verified": true}); err != nil {
		return nil, err
	}
	if stats.BannedUsers, err = s.users.Count(ctx, map[string]interface{}{"is_banned": true}); err != nil {
		return nil, err
	}
	if stats.Admins, err = s.admins.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.ChatSessions, err = s.sessions.Count(ctx); err != nil {
		return nil, err
	}
	if stats.AiMessages, err = s.messages.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Contacts, err = s.contacts.Count(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context, limit, offset uint) ([]*model.User, error) {
	if limit == 0 || limit > 100 {
		limit = 50
	}
	return s.users.List(ctx, limit, offset)
}

func (s *AdminService) SetUserBanned(ctx context.Context, userID string, banned bool) error {
	return s.users.SetBanned(ctx, userID, banned, timeutil.NowUnix())
}

func (s *AdminService) ListContacts(ctx context.Context, limit, offset uint) ([]*model.Contact, error) {
	if limit == 0 || limit > 100 {
		limit = 50
	}
	return s.contacts.List(ctx, limit, offset)
}
