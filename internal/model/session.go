package model

import "time"

// Session models a row in the `sessions` table. The token itself is the
// primary key; it is generated from 32 bytes of crypto/rand entropy and
// handed to the client as an opaque bearer credential. Rows are immutable
// after insert except for the revoked flag.
//
// Fields:
//
//	Token     – opaque bearer token, primary key.
//	UserID    – owning user.
//	CreatedAt – timestamp of issuance.
//	ExpiresAt – CreatedAt plus the configured TTL.
//	Revoked   – excludes the session from lookups when true.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// Live reports whether the session is usable at the given instant: not
// revoked and strictly before its expiry.
func (s Session) Live(now time.Time) bool {
	return !s.Revoked && s.ExpiresAt.After(now)
}
