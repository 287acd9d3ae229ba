package model

const (
	NotificationFriendRequest  = "friend_request"
	NotificationFriendAccepted = "friend_accepted"
	NotificationAnnouncement   = "announcement"
)

type Notification struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	Body   string `json:"body"`
	Read   bool   `json:"read"`
	Ctime  int64  `json:"ctime"`
}
