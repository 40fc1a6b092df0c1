package model

import "time"

// User represents an application user record as stored in the `users`
// table. The password hash and pending verification/reset tokens never
// leave the repository layer in API responses; handlers serialize the
// PublicUser projection instead.
//
// Fields:
//
//	ID            – opaque identifier (UUID string), primary key.
//	Username      – unique login name.
//	Email         – unique email address.
//	Name          – display name.
//	PasswordHash  – bcrypt digest, or a legacy sha256 hex digest.
//	XPTotal       – lifetime experience points.
//	LevelIdx      – current level index.
//	XPInLevel     – experience accumulated inside the current level.
//	Wallet        – coin balance.
//	IsAdmin       – grants access to the module store write path.
//	EmailVerified – set once the verification token is consumed.
//	CreatedAt     – timestamp of creation.
type User struct {
	ID            string
	Username      string
	Email         string
	Name          string
	PasswordHash  string
	XPTotal       int
	LevelIdx      int
	XPInLevel     int
	Wallet        int
	IsAdmin       bool
	EmailVerified bool
	CreatedAt     time.Time
}

// PublicUser is the projection of a user returned to clients. It excludes
// the password hash and any verification or reset tokens.
type PublicUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	XPTotal       int    `json:"xp_total"`
	LevelIdx      int    `json:"level_idx"`
	XPInLevel     int    `json:"xp_in_level"`
	Wallet        int    `json:"wallet"`
	EmailVerified bool   `json:"email_verified"`
	IsAdmin       bool   `json:"is_admin"`
}

// Public returns the client-safe projection of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Name:          u.Name,
		XPTotal:       u.XPTotal,
		LevelIdx:      u.LevelIdx,
		XPInLevel:     u.XPInLevel,
		Wallet:        u.Wallet,
		EmailVerified: u.EmailVerified,
		IsAdmin:       u.IsAdmin,
	}
}

// Progress carries the four counters updated by PUT /api/users/progress.
type Progress struct {
	XPTotal   int
	LevelIdx  int
	XPInLevel int
	Wallet    int
}
