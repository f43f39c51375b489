package wizard

import (
	"context"

	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/common/observability"
)

// API is the subset of the REST client the wizard needs.
type API interface {
	Get(ctx context.Context, path string, out interface{}) (apihttp.Result, error)
	Post(ctx context.Context, path string, body, out interface{}) (apihttp.Result, error)
	Upload(ctx context.Context, path string, file apihttp.FilePart, fields map[string]string, out interface{}) (apihttp.Result, error)
}

const (
	PathTool           = "/tools/%s"
	PathToolTemplate   = "/report-templates/%s"
	PathReports        = "/reports"
	PathReportGenerate = "/reports/%s/generate"
	PathFileUpload     = "/files/upload"
)

// Outcome tells the caller what to do after a successful generation.
type Outcome struct {
	ReportID string
	Navigate string
}

type ServiceDependencies struct {
	Logger        logger.Logger
	API           API
	Notifier      notify.Notifier
	Observability *observability.Observability
}
