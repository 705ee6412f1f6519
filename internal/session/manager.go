package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"compass-field-client/internal/domain"
	"compass-field-client/internal/logger"
	"compass-field-client/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

// State is the session lifecycle position. The only transitions are
// Hydrating → SignedOut, Hydrating → SignedIn, SignedOut → SignedIn on
// login and SignedIn → SignedOut on logout.
type State int

const (
	StateHydrating State = iota
	StateSignedOut
	StateSignedIn
)

func (s State) String() string {
	switch s {
	case StateHydrating:
		return "hydrating"
	case StateSignedOut:
		return "signed-out"
	case StateSignedIn:
		return "signed-in"
	}
	return "unknown"
}

// Snapshot is an immutable view of the session handed to the router and the
// presentation layer.
type Snapshot struct {
	State State
	Token string
	User  *domain.User
	Role  domain.Role
}

// IsSignedIn is derived fresh from token and user presence, never stored.
func (s Snapshot) IsSignedIn() bool {
	return s.Token != "" && s.User != nil
}

// Manager owns the in-memory session and its persisted mirror. It is created
// once at boot, injected into whoever needs it, and shares the store with
// the gateway's interceptors, hence the mutex.
type Manager struct {
	mu       sync.Mutex
	store    store.Store
	state    State
	token    string
	user     *domain.User
	role     domain.Role
	hydrated bool
}

// NewManager returns a Manager in the Hydrating state.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st, state: StateHydrating}
}

// Hydrate loads persisted session state. It runs exactly once per process;
// later calls are no-ops. The session is SignedIn only when all three keys
// are present and the stored user decodes; anything else, including a store
// read failure, lands on SignedOut so the app is never stuck hydrating.
func (m *Manager) Hydrate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hydrated {
		return
	}
	m.hydrated = true

	token := m.readKey(ctx, store.KeyAuthToken)
	userJSON := m.readKey(ctx, store.KeyUser)
	roleValue := m.readKey(ctx, store.KeyUserType)

	if token == "" || userJSON == "" || roleValue == "" {
		m.clearLocked()
		return
	}

	var user domain.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		logger.Warn("Stored user record is corrupt, treating as signed out", "error", err)
		m.clearLocked()
		return
	}

	role, err := domain.ParseRole(roleValue)
	if err != nil {
		logger.Warn("Stored role is invalid, treating as signed out", "error", err)
		m.clearLocked()
		return
	}

	m.token = token
	m.user = &user
	m.role = role
	m.state = StateSignedIn
	logger.Info("Session restored", "user_id", user.ID, "role", string(role))
}

func (m *Manager) readKey(ctx context.Context, key string) string {
	v, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Warn("Session store read failed", "key", key, "error", err)
		}
		return ""
	}
	return v
}

// Login persists the credentials and then updates in-memory state. The
// persist-first order means a crash mid-login can never leave the process
// looking signed in with nothing on disk. Any persistence failure aborts
// the login.
func (m *Manager) Login(ctx context.Context, token string, user domain.User, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Set(ctx, store.KeyAuthToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := m.store.Set(ctx, store.KeyUser, string(userJSON)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	if err := m.store.Set(ctx, store.KeyUserType, string(role)); err != nil {
		return fmt.Errorf("failed to persist role: %w", err)
	}

	u := user
	m.token = token
	m.user = &u
	m.role = role
	m.state = StateSignedIn
	logger.Info("Signed in", "user_id", user.ID, "role", string(role))
	return nil
}

// Logout removes the persisted keys and clears in-memory state. Removal
// failures are logged and tolerated: logout must never leave the user stuck
// signed in from the presentation layer's perspective.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range []string{store.KeyAuthToken, store.KeyUser, store.KeyUserType} {
		if err := m.store.Remove(ctx, key); err != nil {
			logger.Error("Failed to remove persisted session key", "key", key, "error", err)
		}
	}
	m.clearLocked()
	logger.Info("Signed out")
}

// Refresh reconciles in-memory state with the store. The gateway evicts the
// persisted token on 401 without touching this manager; a Refresh afterwards
// notices the eviction and signs the session out.
func (m *Manager) Refresh(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateSignedIn {
		return
	}
	if _, err := m.store.Get(ctx, store.KeyAuthToken); errors.Is(err, store.ErrNotFound) {
		logger.Info("Persisted token is gone, signing out")
		m.clearLocked()
	}
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{State: m.state, Token: m.token, Role: m.role}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// TokenExpiry peeks at the token's unverified JWT claims and reports its
// expiry when the token happens to be a parseable JWT. The token stays
// opaque for every authorization decision; this exists only so the
// presentation layer can show when the session will lapse.
func (m *Manager) TokenExpiry() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(m.token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (m *Manager) clearLocked() {
	m.token = ""
	m.user = nil
	m.role = ""
	m.state = StateSignedOut
}
