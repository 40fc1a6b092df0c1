package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/skillforge/quest-backend/internal/model"
)

const userCols = "id, username, email, name, password_hash, xp_total, level_idx, xp_in_level, wallet, is_admin, email_verified, created_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the full user row in a single statement. A uniqueness
// violation is mapped to ErrEmailExists / ErrUsernameExists by inspecting
// the index name in the driver error; no partial state is left behind on
// failure.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, email, name, password_hash) VALUES (?,?,?,?,?)",
		u.ID, u.Username, u.Email, u.Name, u.PasswordHash)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") || strings.Contains(msg, "duplicate") {
			switch {
			case strings.Contains(msg, "uq_users_email"):
				return ErrEmailExists
			case strings.Contains(msg, "uq_users_username"):
				return ErrUsernameExists
			default:
				return ErrDuplicate
			}
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by email, including the password hash.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByUsername fetches a user by username, including the password hash.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepo) getBy(ctx context.Context, col, val string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE "+col+"=? LIMIT 1",
		val).Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.PasswordHash,
		&u.XPTotal, &u.LevelIdx, &u.XPInLevel, &u.Wallet,
		&u.IsAdmin, &u.EmailVerified, &u.CreatedAt)
	return u, err
}

// SetVerificationToken stores a fresh verification token on the user with
// the given email, replacing any prior pending token. Returns false when no
// row matched the address.
func (r *UserRepo) SetVerificationToken(ctx context.Context, email, token string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email_verification_token=? WHERE email=?",
		token, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ConsumeVerificationToken marks the matching user verified and clears the
// token in one conditional update. The row count makes this consume-once: a
// second call with the same token matches nothing and returns false.
func (r *UserRepo) ConsumeVerificationToken(ctx context.Context, token string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email_verified=TRUE, email_verification_token=NULL WHERE email_verification_token=?",
		token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetResetToken stores a password-reset token and its expiry on the user
// with the given email. Both columns are written together; they are only
// ever set or cleared as a pair.
func (r *UserRepo) SetResetToken(ctx context.Context, email, token string, expires time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=?, reset_token_expires=? WHERE email=?",
		token, expires.UTC(), email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ConsumeResetToken replaces the password hash and clears the reset pair in
// one conditional update. The token only matches while unexpired.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, token, passwordHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users
		 SET password_hash=?, reset_token=NULL, reset_token_expires=NULL
		 WHERE reset_token=? AND reset_token_expires > UTC_TIMESTAMP()`,
		passwordHash, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateProgress overwrites the four progress counters for a user. Returns
// false when the row no longer exists.
func (r *UserRepo) UpdateProgress(ctx context.Context, id string, p model.Progress) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET xp_total=?, level_idx=?, xp_in_level=?, wallet=? WHERE id=?",
		p.XPTotal, p.LevelIdx, p.XPInLevel, p.Wallet, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
