package domain

import "time"

// CreatorInvite is an operator-issued permission to register a creator
// account. It is addressed to one exact email and guarded by an opaque code;
// only the code's fingerprint is stored. The used flag transitions
// false to true exactly once, atomically with the account insert.
type CreatorInvite struct {
	ID          string
	DomainEmail string // exact-match registration email
	CodeHash    string // SHA-256 fingerprint of the invite code
	Used        bool
	UsedBy      *string
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// JournalistInvite is a moderator-minted single-use registration link.
// Possession of the token is the only guard; same one-shot invariant as
// CreatorInvite.
type JournalistInvite struct {
	ID        string
	TokenHash string // SHA-256 fingerprint of the link token
	CreatedBy string // minting moderator's account id
	Used      bool
	UsedBy    *string
	UsedAt    *time.Time
	CreatedAt time.Time
}
