package model

type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Username         string `json:"username"`
	PasswordHash     string `json:"-"`
	IsVerified       bool   `json:"is_verified"`
	IsBanned         bool   `json:"is_banned"`
	RemainingCredits int    `json:"remaining_credits"`
	PlanID           string `json:"plan_id"`
	AvatarKey        string `json:"avatar_key,omitempty"`
	Ctime            int64  `json:"ctime"`
	Mtime            int64  `json:"mtime"`
}
