package domain

// Role distinguishes store staff from platform operators.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Actor identifies who is asking for a change.
type Actor struct {
	ID      string
	StoreID int64
	Role    Role
}

// IsAdmin reports whether the actor may act on any store.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
