package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextai/nextai/internal/ai"
	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
)

// ErrAIUnavailable is surfaced when the provider is not configured.
var ErrAIUnavailable = ai.ErrUnavailable

const defaultSessionTitle = "New chat"

type ChatService struct {
	db       *sql.DB
	sessions *repo.ChatSessionRepo
	messages *repo.AiMessageRepo
	users    *repo.UserRepo
	plans    *PlanService
	provider ai.Provider
	model    string
	timeout  time.Duration
	// Number of prior messages carried as prompt context.
	contextWindow uint
	maxInputChars int
}

func NewChatService(db *sql.DB, sessions *repo.ChatSessionRepo, messages *repo.AiMessageRepo, users *repo.UserRepo, plans *PlanService, provider ai.Provider, modelName string, timeout time.Duration, contextWindow uint, maxInputChars int) *ChatService {
	return &ChatService{
		db:            db,
		sessions:      sessions,
		messages:      messages,
		users:         users,
		plans:         plans,
		provider:      provider,
		model:         modelName,
		timeout:       timeout,
		contextWindow: contextWindow,
		maxInputChars: maxInputChars,
	}
}

func (s *ChatService) CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultSessionTitle
	}
	now := timeutil.NowUnix()
	session := &model.ChatSession{
		ID:     newID(),
		UserID: userID,
		Title:  title,
		Ctime:  now,
		Mtime:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// GetSession answers not-found for other users' sessions, never forbidden,
// so session ids can not be probed.
func (s *ChatService) GetSession(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, appErr.ErrNotFound
	}
	return session, nil
}

func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return dbutil.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.messages.WithTx(tx).DeleteBySession(ctx, sessionID); err != nil {
			return err
		}
		return s.sessions.WithTx(tx).Delete(ctx, sessionID)
	})
}

func (s *ChatService) ListMessages(ctx context.Context, userID, sessionID string) ([]*model.AiMessage, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.messages.ListBySession(ctx, sessionID)
}

// SendMessage runs one generation round: credit precheck, AI call, then a
// single transaction persisting both sides of the exchange and, for metered
// plans, the credit decrement. The pair and the decrement commit together or
// not at all.
func (s *ChatService) SendMessage(ctx context.Context, userID, sessionID, content string) (*model.AiMessage, *model.AiMessage, int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, 0, appErr.ErrInvalid
	}
	if s.maxInputChars > 0 && len(content) > s.maxInputChars {
		return nil, nil, 0, appErr.ErrInvalid
	}
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, nil, 0, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, 0, err
	}
	plan, err := s.plans.Get(ctx, user.PlanID)
	if err != nil {
		return nil, nil, 0, err
	}
	metered := plan.Metered()
	if metered && user.RemainingCredits <= 0 {
		return nil, nil, 0, appErr.ErrNeedsUpgrade
	}

	history, err := s.messages.ListRecent(ctx, sessionID, s.contextWindow)
	if err != nil {
		return nil, nil, 0, err
	}
	prompt := buildPrompt(history, content)

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	reply, err := s.provider.Generate(genCtx, s.model, prompt)
	if err != nil {
		logutil.GetLogger(ctx).Error("ai generate failed",
			zap.String("user_id", userID),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		if errors.Is(err, ai.ErrQuota) {
			return nil, nil, 0, appErr.ErrTooMany
		}
		return nil, nil, 0, err
	}

	now := timeutil.NowUnix()
	userMsg := &model.AiMessage{ID: newID(), SessionID: sessionID, Role: model.MessageRoleUser, Content: content, Ctime: now}
	aiMsg := &model.AiMessage{ID: newID(), SessionID: sessionID, Role: model.MessageRoleAssistant, Content: reply, Ctime: now}
	err = dbutil.InTx(ctx, s.db, func(tx *sql.Tx) error {
		messages := s.messages.WithTx(tx)
		if err := messages.Create(ctx, userMsg); err != nil {
			return err
		}
		if err := messages.Create(ctx, aiMsg); err != nil {
			return err
		}
		if err := s.sessions.WithTx(tx).Touch(ctx, sessionID, now); err != nil {
			return err
		}
		if metered {
			return s.users.WithTx(tx).DecrementCredits(ctx, userID, now)
		}
		return nil
	})
	if err != nil {
		return nil, nil, 0, err
	}
	remaining := user.RemainingCredits
	if metered {
		remaining--
	}
	return userMsg, aiMsg, remaining, nil
}

// buildPrompt concatenates the context window into a plain conversational
// transcript ending with the new user turn.
func buildPrompt(history []*model.AiMessage, content string) string {
	var b strings.Builder
	for _, message := range history {
		switch message.Role {
		case model.MessageRoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(message.Content)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(content)
	return b.String()
}
