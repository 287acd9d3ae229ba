package model

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

type ChatSession struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Ctime  int64  `json:"ctime"`
	Mtime  int64  `json:"mtime"`
}

type AiMessage struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Ctime     int64  `json:"ctime"`
}
