package session

import (
	"context"

	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/common/observability"
	"reportdesk/internal/models"
)

// State is the tri-state of the session as seen by route guards.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the session at one instant.
type Snapshot struct {
	State State
	User  *models.AuthUser
}

// API is the subset of the REST client the session needs.
type API interface {
	Get(ctx context.Context, path string, out interface{}) (apihttp.Result, error)
	Post(ctx context.Context, path string, body, out interface{}) (apihttp.Result, error)
}

const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathMe       = "/auth/me"
)

type ServiceDependencies struct {
	Logger        logger.Logger
	API           API
	Store         TokenStore
	Notifier      notify.Notifier
	Observability *observability.Observability
}
