package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/events"
	"github.com/yukikurage/task-tracker-api/internal/logger"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated means the token does not identify a live session.
	ErrUnauthenticated = errors.New("session is missing or expired")
	// ErrFailedToCreateSession wraps token generation or storage failures on login.
	ErrFailedToCreateSession = errors.New("failed to create session")
)

// Metadata describes the client a session was issued to.
type Metadata struct {
	ClientIP  string
	UserAgent string
}

// Manager issues, resolves and revokes sessions. Expiry is absolute from
// issuance; sessions are never extended.
type Manager struct {
	store     Store
	users     repository.UserRepository
	ttl       time.Duration
	now       func() time.Time
	publisher events.Publisher
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithPublisher emits session.created and session.revoked events.
func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// NewManager creates a Manager backed by store.
func NewManager(store Store, users repository.UserRepository, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		users:     users,
		ttl:       constants.SessionTTL,
		now:       time.Now,
		publisher: events.NoopPublisher{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login creates a session for an already verified user.
func (m *Manager) Login(ctx context.Context, user *models.User, meta Metadata) (*models.Session, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateSession, err)
	}

	now := m.now().UTC()
	data, err := json.Marshal(models.SessionData{
		Username:  user.Username,
		IssuedAt:  now,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateSession, err)
	}

	sess := &models.Session{
		Token:     token,
		UserID:    user.ID,
		Expiry:    now.Add(m.ttl),
		Data:      string(data),
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateSession, err)
	}

	events.Emit(ctx, m.publisher, events.New(events.SessionCreated, user.ID, 0))
	return sess, nil
}

// Resolve maps a token to the user it was issued for. Expired sessions are
// deleted as they are found.
func (m *Manager) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	sess, err := m.store.Find(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if sess.Expired(m.now()) {
		m.purge(ctx, token)
		return nil, ErrUnauthenticated
	}

	user, err := m.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			m.purge(ctx, token)
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return user, nil
}

// Logout revokes the session of userID. Unknown or empty tokens succeed.
func (m *Manager) Logout(ctx context.Context, userID uint64, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	events.Emit(ctx, m.publisher, events.New(events.SessionRevoked, userID, 0))
	return nil
}

// PurgeExpired deletes every session that has expired.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpired(ctx, m.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return n, nil
}

func (m *Manager) purge(ctx context.Context, token string) {
	if err := m.store.Delete(ctx, token); err != nil {
		logger.WarnContext(ctx, "Failed to delete stale session", "error", err)
	}
}
