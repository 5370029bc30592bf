package models

// UserLevel is the role attached to an authenticated caller.
type UserLevel string

const (
	LevelAdmin UserLevel = "Admin"
	LevelUser  UserLevel = "User"
	LevelGuest UserLevel = "Guest"
)

// Identity is the already-authenticated caller passed into every mutating
// operation. Token verification happens upstream; the core trusts it as given.
type Identity struct {
	UserID int64     `json:"user_id"`
	Level  UserLevel `json:"level_name"`
}

// IsAdmin reports whether the caller may act on content they do not own.
func (i Identity) IsAdmin() bool {
	return i.Level == LevelAdmin
}
