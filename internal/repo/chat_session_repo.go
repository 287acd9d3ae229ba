package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/dbutil"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
)

var chatSessionFields = []string{"id", "user_id", "title", "ctime", "mtime"}

type ChatSessionRepo struct {
	db dbutil.Executor
}

func NewChatSessionRepo(db *sql.DB) *ChatSessionRepo {
	return &ChatSessionRepo{db: db}
}

func (r *ChatSessionRepo) WithTx(tx *sql.Tx) *ChatSessionRepo {
	return &ChatSessionRepo{db: tx}
}

func (r *ChatSessionRepo) Create(ctx context.Context, session *model.ChatSession) error {
	data := map[string]interface{}{
		"id":      session.ID,
		"user_id": session.UserID,
		"title":   session.Title,
		"ctime":   session.Ctime,
		"mtime":   session.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("chat_sessions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ChatSessionRepo) Get(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	where := map[string]interface{}{"id": sessionID}
	sqlStr, args, err := builder.BuildSelect("chat_sessions", where, chatSessionFields)
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
	var session model.ChatSession
	if err := rows.Scan(&session.ID, &session.UserID, &session.Title, &session.Ctime, &session.Mtime); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ChatSessionRepo) ListByUser(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	where := map[string]interface{}{"user_id": userID, "_orderby": "mtime desc"}
	sqlStr, args, err := builder.BuildSelect("chat_sessions", where, chatSessionFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var sessions []*model.ChatSession
	for rows.Next() {
		var session model.ChatSession
		if err := rows.Scan(&session.ID, &session.UserID, &session.Title, &session.Ctime, &session.Mtime); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

func (r *ChatSessionRepo) Touch(ctx context.Context, sessionID string, mtime int64) error {
	where := map[string]interface{}{"id": sessionID}
	update := map[string]interface{}{"mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("chat_sessions", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ChatSessionRepo) Delete(ctx context.Context, sessionID string) error {
	where := map[string]interface{}{"id": sessionID}
	sqlStr, args, err := builder.BuildDelete("chat_sessions", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *ChatSessionRepo) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, "chat_sessions", nil)
}
