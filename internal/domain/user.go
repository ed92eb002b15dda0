package domain

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants account management and moderation.
	RoleAdmin Role = "admin"
	// RoleUser grants browsing, adding and commenting.
	RoleUser Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an account. Salt and digest serialize as base64.
type User struct {
	Record       `json:",inline"`
	Username     string `json:"username"`
	Salt         []byte `json:"salt"`
	PasswordHash []byte `json:"password_hash"`
	Role         Role   `json:"role"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity returns the session-facing view of the account.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Identity is the authenticated principal threaded explicitly through
// catalog and admin operations. A nil *Identity means anonymous.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role. Nil-safe.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Name returns the username, or fallback for an anonymous caller.
func (i *Identity) Name(fallback string) string {
	if i == nil || i.Username == "" {
		return fallback
	}
	return i.Username
}
