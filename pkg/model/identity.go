package model

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated caller as asserted by a verified bearer token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess reports whether the caller may read or modify a resource owned by ownerID.
func (i Identity) CanAccess(ownerID string) bool {
	return i.IsAdmin() || (i.UserID != "" && i.UserID == ownerID)
}

func (i Identity) Summary() *UserSummary {
	return &UserSummary{ID: i.UserID, Email: i.Email, Name: i.Name}
}

type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
