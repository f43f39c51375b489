// Package session owns the authenticated user and the persisted bearer token.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reportdesk/internal/common/errors"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/metrics"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/common/observability"
	"reportdesk/internal/models"
)

var (
	errEmptyUser    = fmt.Errorf("empty user response")
	errMissingToken = fmt.Errorf("response carries no token")
)

// Manager is the single session owner of a process. Screens and commands
// receive it by injection.
type Manager struct {
	config   *Config
	logger   logger.Logger
	api      API
	store    TokenStore
	notifier notify.Notifier
	obs      *observability.Observability
	now      func() time.Time

	// storeMu orders token store writes against generation changes.
	storeMu sync.Mutex

	mu         sync.RWMutex
	state      State
	user       *models.AuthUser
	token      string
	generation uint64
	closed     bool
}

func NewManager(deps ServiceDependencies, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	store := deps.Store
	if store == nil {
		store = NewMemoryTokenStore()
	}
	obs := deps.Observability
	if obs == nil {
		obs = observability.Noop()
	}
	m := &Manager{
		config:   config,
		logger:   log.WithFields(map[string]interface{}{"component": "session"}),
		api:      deps.API,
		store:    store,
		notifier: deps.Notifier,
		obs:      obs,
		now:      time.Now,
		state:    StateLoading,
	}
	metrics.SessionState.WithLabelValues(StateLoading.String()).Set(1)
	return m
}

// Token implements the REST client's TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns a copy of the current user, or nil.
func (m *Manager) User() *models.AuthUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyUser(m.user)
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, User: copyUser(m.user)}
}

// Init restores the session from the stored token. It never fails the caller:
// any problem ends in StateAnonymous and is only logged. A restore that is
// overtaken by Login, Register, Logout or Close leaves state untouched.
func (m *Manager) Init(ctx context.Context) {
	start := time.Now()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	gen := m.generation
	m.mu.Unlock()

	token, err := m.store.Load(ctx, m.config.StorageKey)
	if err != nil {
		m.logger.Warn("failed to read stored token", map[string]interface{}{"error": err.Error()})
		m.finishRestore(ctx, gen, nil, "", true)
		m.obs.Track(ctx, observability.FlowRestore, start, err)
		return
	}
	if token == "" {
		m.finishRestore(ctx, gen, nil, "", false)
		m.obs.RecordFlow(ctx, observability.FlowRestore, "anonymous")
		return
	}

	if m.config.ExpiryCheck && tokenExpired(token, m.now(), m.config.ClockSkew) {
		m.logger.Info("stored token expired, clearing", map[string]interface{}{"token": logger.MaskToken(token)})
		m.finishRestore(ctx, gen, nil, "", true)
		m.obs.RecordFlow(ctx, observability.FlowRestore, "expired")
		return
	}

	m.mu.Lock()
	if m.generation != gen || m.closed {
		m.mu.Unlock()
		return
	}
	m.token = token
	m.setStateLocked(StateLoading)
	m.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	var user models.AuthUser
	res, err := m.api.Get(reqCtx, PathMe, &user)
	if err == nil && res.Empty {
		err = errors.NewParseError(PathMe, errEmptyUser)
	}
	if err != nil {
		m.logger.Info("stored token rejected", map[string]interface{}{
			"error":  err.Error(),
			"status": errors.StatusCode(err),
		})
		m.finishRestore(ctx, gen, nil, "", true)
		m.obs.Track(ctx, observability.FlowRestore, start, err)
		return
	}

	m.finishRestore(ctx, gen, &user, token, false)
	m.obs.Track(ctx, observability.FlowRestore, start, nil)
}

func (m *Manager) finishRestore(ctx context.Context, gen uint64, user *models.AuthUser, token string, clearStored bool) {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	m.mu.Lock()
	if m.generation != gen || m.closed {
		m.mu.Unlock()
		m.logger.Debug("dropping superseded restore result", nil)
		return
	}
	m.user = user
	m.token = token
	if user != nil {
		m.setStateLocked(StateAuthenticated)
	} else {
		m.setStateLocked(StateAnonymous)
	}
	m.mu.Unlock()

	// A Login that lands now waits on storeMu, so its token is saved after this clear.
	if clearStored {
		if err := m.store.Clear(ctx, m.config.StorageKey); err != nil {
			m.logger.Warn("failed to clear stored token", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Login authenticates with email and password and persists the token.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.AuthUser, error) {
	start := time.Now()
	user, err := m.authenticate(ctx, PathLogin, models.LoginRequest{Email: email, Password: password})
	m.obs.Track(ctx, observability.FlowLogin, start, err)
	return user, err
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, email, password, fullName string) (*models.AuthUser, error) {
	start := time.Now()
	user, err := m.authenticate(ctx, PathRegister, models.RegisterRequest{Email: email, Password: password, FullName: fullName})
	m.obs.Track(ctx, observability.FlowRegister, start, err)
	return user, err
}

func (m *Manager) authenticate(ctx context.Context, path string, body interface{}) (*models.AuthUser, error) {
	var resp models.AuthResponse
	res, err := m.api.Post(ctx, path, body, &resp)
	if err == nil && (res.Empty || resp.Token == "") {
		err = errors.NewParseError(path, errMissingToken)
	}
	if err != nil {
		m.logger.Warn("authentication failed", map[string]interface{}{
			"path":   path,
			"error":  err.Error(),
			"status": errors.StatusCode(err),
		})
		if m.notifier != nil {
			m.notifier.Error(errors.UserMessage(err))
		}
		return nil, err
	}

	m.storeMu.Lock()
	if err := m.store.Save(ctx, m.config.StorageKey, resp.Token); err != nil {
		// The session still works for this process.
		m.logger.Warn("failed to persist token", map[string]interface{}{"error": err.Error()})
	}

	user := resp.AuthUser
	m.mu.Lock()
	m.generation++
	m.token = resp.Token
	m.user = &user
	m.setStateLocked(StateAuthenticated)
	m.mu.Unlock()
	m.storeMu.Unlock()

	m.logger.Info("signed in", map[string]interface{}{
		"userId": user.ID,
		"role":   string(user.Role),
		"token":  logger.MaskToken(resp.Token),
	})
	return copyUser(&user), nil
}

// Refresh re-reads the current user, e.g. after credits changed. A rejected
// token ends the session.
func (m *Manager) Refresh(ctx context.Context) (*models.AuthUser, error) {
	m.mu.RLock()
	gen := m.generation
	authenticated := m.state == StateAuthenticated
	m.mu.RUnlock()
	if !authenticated {
		return nil, errors.NewNotAuthenticatedError()
	}

	var user models.AuthUser
	if _, err := m.api.Get(ctx, PathMe, &user); err != nil {
		if status := errors.StatusCode(err); status == 401 || status == 403 {
			m.finishRestore(ctx, gen, nil, "", true)
		}
		return nil, err
	}

	m.mu.Lock()
	if m.generation == gen && !m.closed {
		m.user = &user
	}
	m.mu.Unlock()
	return copyUser(&user), nil
}

// Logout forgets the session locally; there is no server call.
func (m *Manager) Logout(ctx context.Context) error {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	m.mu.Lock()
	m.generation++
	m.user = nil
	m.token = ""
	m.setStateLocked(StateAnonymous)
	m.mu.Unlock()

	if err := m.store.Clear(ctx, m.config.StorageKey); err != nil {
		m.logger.Warn("failed to clear stored token", map[string]interface{}{"error": err.Error()})
		return errors.NewTokenStoreError("clear", err)
	}
	m.logger.Info("signed out", nil)
	return nil
}

// Close invalidates any in-flight restore and releases the token store.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.generation++
	m.mu.Unlock()
	return m.store.Close()
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	metrics.SessionState.WithLabelValues(m.state.String()).Set(0)
	metrics.SessionState.WithLabelValues(s.String()).Set(1)
	m.state = s
}

func copyUser(u *models.AuthUser) *models.AuthUser {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
