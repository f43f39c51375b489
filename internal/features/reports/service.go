// Package reports reads reports and the tool catalog, and saves exports.
package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"reportdesk/internal/common/errors"
	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/models"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type Service struct {
	logger   logger.Logger
	api      API
	notifier notify.Notifier
}

func NewService(deps ServiceDependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	return &Service{
		logger:   log.WithFields(map[string]interface{}{"component": "reports"}),
		api:      deps.API,
		notifier: notifier,
	}
}

// ==========================
// Reports
// ==========================

func (s *Service) List(ctx context.Context) ([]models.Report, error) {
	var list []models.Report
	if _, err := s.api.Get(ctx, PathReports, &list); err != nil {
		return nil, s.fail("Failed to load reports", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	res, err := s.api.Get(ctx, apihttp.PathEscape(PathReport, id), &report)
	if err == nil && res.Empty {
		err = errors.NewParseError(PathReport, fmt.Errorf("empty report"))
	}
	if err != nil {
		return nil, s.fail("Failed to load report", err)
	}
	return &report, nil
}

// Export downloads a rendition of the report into dir and returns the path
// of the written file. The server's filename is used when it sends one.
func (s *Service) Export(ctx context.Context, id string, format models.ExportFormat, dir string) (string, error) {
	if format != models.ExportPDF && format != models.ExportMarkdown {
		return "", errors.NewValidationError(
			fmt.Sprintf("Unsupported export format %q", format),
			map[string]string{"format": "must be pdf or markdown"},
		)
	}

	blob, err := s.api.Download(ctx, apihttp.PathEscape(PathReportExport, id, string(format)))
	if err != nil {
		label := "PDF"
		if format == models.ExportMarkdown {
			label = "Markdown"
		}
		return "", s.fail("Failed to export "+label, err)
	}

	name := ExportFilename(blob.Filename, id, format)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", s.fail("Failed to save export", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return "", s.fail("Failed to save export", err)
	}

	s.logger.Info("report exported", map[string]interface{}{
		"reportId": id,
		"format":   string(format),
		"path":     path,
		"bytes":    len(blob.Data),
	})
	s.notifier.Success(fmt.Sprintf("Saved %s", path))
	return path, nil
}

// ExportFilename picks a safe local filename for an export.
func ExportFilename(serverName, id string, format models.ExportFormat) string {
	name := filepath.Base(strings.TrimSpace(serverName))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "report-" + id + format.Extension()
	}
	name = unsafeFilename.ReplaceAllString(name, "_")
	if filepath.Ext(name) == "" {
		name += format.Extension()
	}
	return name
}

// ==========================
// Tools
// ==========================

func (s *Service) Tools(ctx context.Context) ([]models.Tool, error) {
	var tools []models.Tool
	if _, err := s.api.Get(ctx, PathTools, &tools); err != nil {
		return nil, s.fail("Failed to load tools", err)
	}
	return tools, nil
}

func (s *Service) Tool(ctx context.Context, id string) (*models.Tool, error) {
	var tool models.Tool
	if _, err := s.api.Get(ctx, apihttp.PathEscape(PathTool, id), &tool); err != nil {
		return nil, s.fail("Failed to load tool", err)
	}
	return &tool, nil
}

// ToolFields lists the input fields declared by a tool, ordered for display.
func (s *Service) ToolFields(ctx context.Context, id string) ([]models.InputField, error) {
	var fields []models.InputField
	if _, err := s.api.Get(ctx, apihttp.PathEscape(PathToolFields, id), &fields); err != nil {
		return nil, s.fail("Failed to load tool fields", err)
	}
	SortFields(fields)
	return fields, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if _, err := s.api.Get(ctx, PathToolCategories, &categories); err != nil {
		return nil, s.fail("Failed to load categories", err)
	}
	return categories, nil
}

// ToolsByCategory groups tools for display. Category order follows first
// appearance.
func ToolsByCategory(tools []models.Tool) ([]string, map[string][]models.Tool) {
	var order []string
	groups := map[string][]models.Tool{}
	for _, t := range tools {
		cat := t.Category
		if cat == "" {
			cat = "Other"
		}
		if _, seen := groups[cat]; !seen {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], t)
	}
	return order, groups
}

func (s *Service) fail(fallback string, err error) error {
	s.logger.Warn(fallback, map[string]interface{}{
		"error":  err.Error(),
		"status": errors.StatusCode(err),
	})
	msg := errors.UserMessage(err)
	if msg == errors.DefaultErrorMessage {
		msg = fallback
	}
	s.notifier.Error(msg)
	return err
}
