package reports

import (
	"context"

	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
)

// API is the subset of the REST client used for reports and tools.
type API interface {
	Get(ctx context.Context, path string, out interface{}) (apihttp.Result, error)
	Download(ctx context.Context, path string) (*apihttp.Blob, error)
}

const (
	PathReports        = "/reports"
	PathReport         = "/reports/%s"
	PathReportExport   = "/reports/%s/export/%s"
	PathTools          = "/tools"
	PathTool           = "/tools/%s"
	PathToolFields     = "/tools/%s/fields"
	PathToolCategories = "/tools/categories"
)

type ServiceDependencies struct {
	Logger   logger.Logger
	API      API
	Notifier notify.Notifier
}
