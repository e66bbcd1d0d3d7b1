package domain

import "time"

// Role is the opaque role string issued by the academy API.
type Role string

const (
	RoleSuperAdmin      Role = "SuperAdmin"
	RoleAdmissionsAdmin Role = "AdmissionsAdmin"
	RoleContentAdmin    Role = "ContentAdmin"
	RoleAudienceAdmin   Role = "AudienceAdmin"
	RoleUser            Role = "User"

	// RoleLegacyAdmin predates the split admin roles and is still issued to
	// accounts that were never migrated. It resolves to RoleSuperAdmin.
	RoleLegacyAdmin Role = "admin"
)

// Identity is the authenticated principal persisted for a session.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Token    string `json:"token"`
}

// Complete reports whether the identity carries everything a session needs.
// A session never holds a token without a role, or a role without an id.
func (i *Identity) Complete() bool {
	return i != nil && i.ID != "" && i.Role != "" && i.Token != ""
}

// Account is a user record owned by the local academy API.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
