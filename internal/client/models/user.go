// Package models defines the client-side data models of invoicekeeper.
package models

// User is the profile returned by the backend for the authenticated account.
type User struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role,omitempty"`
	Department string  `json:"department,omitempty"`
	Status     string  `json:"status,omitempty"`
	CreatedAt  *string `json:"created_at,omitempty"`
	LastLogin  *string `json:"last_login,omitempty"`
}

// DisplayName is what the header greets the user with.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return "User"
	}
}

// Session is the locally persisted authentication state.
//
// User is only ever set together with Token; an empty Token means the
// client is unauthenticated.
type Session struct {
	Token string
	User  *User
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}
