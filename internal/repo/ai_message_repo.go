package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
)

var aiMessageFields = []string{"id", "session_id", "role", "content", "ctime"}

type AiMessageRepo struct {
	db dbutil.Executor
}

func NewAiMessageRepo(db *sql.DB) *AiMessageRepo {
	return &AiMessageRepo{db: db}
}

func (r *AiMessageRepo) WithTx(tx *sql.Tx) *AiMessageRepo {
	return &AiMessageRepo{db: tx}
}

func (r *AiMessageRepo) Create(ctx context.Context, message *model.AiMessage) error {
	data := map[string]interface{}{
		"id":         message.ID,
		"session_id": message.SessionID,
		"role":       message.Role,
		"content":    message.Content,
		"ctime":      message.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("ai_messages", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AiMessageRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.AiMessage, error) {
	where := map[string]interface{}{"session_id": sessionID, "_orderby": "ctime asc"}
	return r.list(ctx, where)
}

// ListRecent returns the newest limit messages in chronological order, the
// context window for prompt building.
func (r *AiMessageRepo) ListRecent(ctx context.Context, sessionID string, limit uint) ([]*model.AiMessage, error) {
	where := map[string]interface{}{"session_id": sessionID, "_orderby": "ctime desc", "_limit": []uint{0, limit}}
	messages, err := r.list(ctx, where)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *AiMessageRepo) list(ctx context.Context, where map[string]interface{}) ([]*model.AiMessage, error) {
	sqlStr, args, err := builder.BuildSelect("ai_messages", where, aiMessageFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var messages []*model.AiMessage
	for rows.Next() {
		var message model.AiMessage
		if err := rows.Scan(&message.ID, &message.SessionID, &message.Role, &message.Content, &message.Ctime); err != nil {
			return nil, err
		}
		messages = append(messages, &message)
	}
	return messages, rows.Err()
}

func (r *AiMessageRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	where := map[string]interface{}{"session_id": sessionID}
	sqlStr, args, err := builder.BuildDelete("ai_messages", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AiMessageRepo) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, "ai_messages", nil)
}
