package domain

import "time"

// Role is the registration-time account role. It never changes after
// registration and is orthogonal to the moderator flag.
type Role string

const (
	RoleReader     Role = "reader"
	RoleCreator    Role = "creator"
	RoleJournalist Role = "journalist"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleCreator, RoleJournalist:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

type Account struct {
	ID           string
	Username     string // unique; for creators, equals the email domain
	Email        string
	Role         Role
	PasswordHash string // argon2id encoded
	TOTPSecret   string // base32 encoded, set once at registration
	Moderator    bool   // universal delete rights; mutated only out-of-band
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
