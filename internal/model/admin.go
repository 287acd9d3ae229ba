package model

const (
	AdminRoleAdmin      = "ADMIN"
	AdminRoleSuperAdmin = "SUPER_ADMIN"
)

type Admin struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsVerified   bool   `json:"is_verified"`
	IsActive     bool   `json:"is_active"`
	Role         string `json:"role"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
