package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/skillforge/quest-backend/internal/model"
	"github.com/skillforge/quest-backend/internal/repository"
)

// In-memory store fakes shared by the handler tests. They mimic the
// conditional-update semantics of the real repositories: token consumption
// is consume-once, reset tokens expire, zero-row updates report false.

var errStoreDown = errors.New("store down")

type resetEntry struct {
	userID  string
	expires time.Time
}

type fakeUsers struct {
	mu        sync.Mutex
	users     []*model.User
	verify    map[string]string     // verification token -> user id
	resets    map[string]resetEntry // reset token -> entry
	down      bool                  // all operations fail when set
	readsDown bool                  // lookups fail while writes still succeed
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{verify: map[string]string{}, resets: map[string]resetEntry{}}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errStoreDown
	}
	for _, ex := range f.users {
		if ex.Email == u.Email {
			return repository.ErrEmailExists
		}
		if ex.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	cp := *u
	cp.CreatedAt = time.Now().UTC()
	f.users = append(f.users, &cp)
	return nil
}

func (f *fakeUsers) find(pred func(*model.User) bool) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down || f.readsDown {
		return model.User{}, errStoreDown
	}
	for _, u := range f.users {
		if pred(u) {
			return *u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUsers) SetVerificationToken(_ context.Context, email, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errStoreDown
	}
	for _, u := range f.users {
		if u.Email == email {
			// at most one outstanding token per user
			for t, id := range f.verify {
				if id == u.ID {
					delete(f.verify, t)
				}
			}
			f.verify[token] = u.ID
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) ConsumeVerificationToken(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errStoreDown
	}
	id, ok := f.verify[token]
	if !ok {
		return false, nil
	}
	delete(f.verify, token)
	for _, u := range f.users {
		if u.ID == id {
			u.EmailVerified = true
		}
	}
	return true, nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, email, token string, expires time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errStoreDown
	}
	for _, u := range f.users {
		if u.Email == email {
			f.resets[token] = resetEntry{userID: u.ID, expires: expires}
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) ConsumeResetToken(_ context.Context, token, passwordHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errStoreDown
	}
	e, ok := f.resets[token]
	if !ok || !e.expires.After(time.Now()) {
		return false, nil
	}
	delete(f.resets, token)
	for _, u := range f.users {
		if u.ID == e.userID {
			u.PasswordHash = passwordHash
		}
	}
	return true, nil
}

func (f *fakeUsers) UpdateProgress(_ context.Context, id string, p model.Progress) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errStoreDown
	}
	for _, u := range f.users {
		if u.ID == id {
			u.XPTotal, u.LevelIdx, u.XPInLevel, u.Wallet = p.XPTotal, p.LevelIdx, p.XPInLevel, p.Wallet
			return true, nil
		}
	}
	return false, nil
}

// fakeSessions implements both handler.SessionStore and the middleware's
// SessionResolver so end-to-end tests can route real bearer tokens.
type fakeSessions struct {
	mu    sync.Mutex
	users *fakeUsers
	live  map[string]model.Session
	next  int
	down  bool
}

func newFakeSessions(users *fakeUsers) *fakeSessions {
	return &fakeSessions{users: users, live: map[string]model.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, userID string) (model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return model.Session{}, errStoreDown
	}
	f.next++
	s := model.Session{
		Token:     fmt.Sprintf("session-token-%04d", f.next),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(7 * 24 * time.Hour),
	}
	f.live[s.Token] = s
	return s, nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.live[token]; ok {
		s.Revoked = true
		f.live[token] = s
	}
	return nil
}

func (f *fakeSessions) ResolveUser(ctx context.Context, token string) (model.User, error) {
	f.mu.Lock()
	s, ok := f.live[token]
	f.mu.Unlock()
	if !ok || !s.Live(time.Now()) {
		return model.User{}, sql.ErrNoRows
	}
	return f.users.GetByID(ctx, s.UserID)
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

type fakeModules struct {
	mu   sync.Mutex
	data json.RawMessage
	down bool
}

func (f *fakeModules) Fetch(context.Context) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errStoreDown
	}
	if f.data == nil {
		return nil, sql.ErrNoRows
	}
	return f.data, nil
}

func (f *fakeModules) Upsert(_ context.Context, data json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errStoreDown
	}
	f.data = append(json.RawMessage(nil), data...)
	return nil
}

type fakeActivities struct {
	mu   sync.Mutex
	rows []*model.ActivityLog
	down bool
}

func (f *fakeActivities) Insert(_ context.Context, a *model.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errStoreDown
	}
	cp := *a
	f.rows = append(f.rows, &cp)
	return nil
}

// fakeMailer records sends and can simulate delivery failure.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []string // recipient addresses
	failErr error    // returned as delivery error when set
	offline bool     // unconfigured: (false, nil)
}

func (f *fakeMailer) Send(to, subject, textBody, htmlBody string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return false, nil
	}
	if f.failErr != nil {
		return false, f.failErr
	}
	f.sent = append(f.sent, to)
	return true, nil
}

func (f *fakeMailer) sentTo(addr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sent {
		if strings.EqualFold(s, addr) {
			return true
		}
	}
	return false
}
