package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/skillforge/quest-backend/internal/model"
)

// Store interfaces consumed by the handlers. The repository package
// provides the real implementations; tests substitute in-memory fakes.

// UserStore is the credential store: it exclusively owns user persistence.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	SetVerificationToken(ctx context.Context, email, token string) (bool, error)
	ConsumeVerificationToken(ctx context.Context, token string) (bool, error)
	SetResetToken(ctx context.Context, email, token string, expires time.Time) (bool, error)
	ConsumeResetToken(ctx context.Context, token, passwordHash string) (bool, error)
	UpdateProgress(ctx context.Context, id string, p model.Progress) (bool, error)
}

// SessionStore issues and revokes bearer sessions.
type SessionStore interface {
	Create(ctx context.Context, userID string) (model.Session, error)
	Revoke(ctx context.Context, token string) error
}

// ModuleStore holds the singleton module document.
type ModuleStore interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
	Upsert(ctx context.Context, data json.RawMessage) error
}

// ActivityStore appends activity log rows.
type ActivityStore interface {
	Insert(ctx context.Context, a *model.ActivityLog) error
}
