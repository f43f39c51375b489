package templates

import (
	"context"

	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/common/observability"
)

// API is the subset of the REST client the editor needs.
type API interface {
	Get(ctx context.Context, path string, out interface{}) (apihttp.Result, error)
	Post(ctx context.Context, path string, body, out interface{}) (apihttp.Result, error)
	Put(ctx context.Context, path string, body, out interface{}) (apihttp.Result, error)
	Delete(ctx context.Context, path string) (apihttp.Result, error)
}

const (
	PathTemplates = "/admin/report-templates"
	PathTemplate  = "/admin/report-templates/%s"
	PathFields    = "/admin/report-templates/%s/input-fields"
	PathField     = "/admin/report-templates/input-fields/%s"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Outcome carries the navigation target after a successful mutation.
type Outcome struct {
	Navigate string
}

type ServiceDependencies struct {
	Logger        logger.Logger
	API           API
	Notifier      notify.Notifier
	Confirmer     Confirmer
	Observability *observability.Observability
}
