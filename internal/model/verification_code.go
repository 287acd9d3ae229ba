package model

const (
	OwnerTypeUser  = "user"
	OwnerTypeAdmin = "admin"

	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

// CodeOwner identifies the account a verification code belongs to. User and
// admin flows share one code component; the owner is always part of the
// lookup so a code can never validate against a different account.
type CodeOwner struct {
	Type string
	ID   string
}

func UserOwner(id string) CodeOwner {
	return CodeOwner{Type: OwnerTypeUser, ID: id}
}

func AdminOwner(id string) CodeOwner {
	return CodeOwner{Type: OwnerTypeAdmin, ID: id}
}

type VerificationCode struct {
	ID        string `json:"id"`
	OwnerType string `json:"owner_type"`
	OwnerID   string `json:"owner_id"`
	Purpose   string `json:"purpose"`
	CodeHash  string `json:"-"`
	Used      bool   `json:"used"`
	Ctime     int64  `json:"ctime"`
	ExpiresAt int64  `json:"expires_at"`
}
