package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/skillforge/quest-backend/internal/model"
	"github.com/skillforge/quest-backend/internal/utils"
)

// SessionRepo issues and resolves opaque bearer tokens backed by the
// `sessions` table. It is the single authority for "is this token currently
// valid": every resolve re-reads the store, nothing is cached in process.
type SessionRepo struct {
	DB  *sql.DB
	TTL time.Duration // lifetime of newly issued sessions
}

func NewSessionRepo(db *sql.DB, ttl time.Duration) *SessionRepo {
	return &SessionRepo{DB: db, TTL: ttl}
}

// Create generates a random token, inserts a live session row and returns
// it. The insert is a single statement; on failure no session exists and the
// caller maps the error to HTTP 503.
func (r *SessionRepo) Create(ctx context.Context, userID string) (model.Session, error) {
	token, err := utils.NewSessionToken()
	if err != nil {
		return model.Session{}, err
	}
	s := model.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(r.TTL),
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, expires_at) VALUES (?,?,?)",
		s.Token, s.UserID, s.ExpiresAt)
	if err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// ResolveUser joins a live session row to its user and returns the user.
// sql.ErrNoRows means the token is unknown, expired or revoked; the three
// cases are indistinguishable to callers on purpose.
func (r *SessionRepo) ResolveUser(ctx context.Context, token string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.email, u.name, u.password_hash,
		        u.xp_total, u.level_idx, u.xp_in_level, u.wallet,
		        u.is_admin, u.email_verified, u.created_at
		 FROM sessions s
		 JOIN users u ON s.user_id = u.id
		 WHERE s.token=? AND s.revoked=FALSE AND s.expires_at > UTC_TIMESTAMP()
		 LIMIT 1`,
		token).Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.PasswordHash,
		&u.XPTotal, &u.LevelIdx, &u.XPInLevel, &u.Wallet,
		&u.IsAdmin, &u.EmailVerified, &u.CreatedAt)
	return u, err
}

// Revoke marks a session unusable regardless of its expiry. No HTTP
// endpoint exposes this yet; it exists for operational cleanup and tests.
func (r *SessionRepo) Revoke(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked=TRUE WHERE token=? AND revoked=FALSE",
		token)
	return err
}
