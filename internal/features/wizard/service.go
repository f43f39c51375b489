// Package wizard drives the six-step report creation flow.
package wizard

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"reportdesk/internal/common/errors"
	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/metrics"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/common/observability"
	"reportdesk/internal/common/validation"
	"reportdesk/internal/models"
)

var errMissingReportID = fmt.Errorf("create response carries no report id")

// Wizard holds one report draft and its step position. It is safe for use by
// a TUI and background commands at the same time.
type Wizard struct {
	config   *Config
	logger   logger.Logger
	api      API
	notifier notify.Notifier
	obs      *observability.Observability

	mu         sync.Mutex
	tool       *models.Tool
	fields     []models.InputField
	draft      *Draft
	step       Step
	uploading  bool
	generating bool
}

func New(deps ServiceDependencies, config *Config) *Wizard {
	if config == nil {
		config = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	obs := deps.Observability
	if obs == nil {
		obs = observability.Noop()
	}
	return &Wizard{
		config:   config,
		logger:   log.WithFields(map[string]interface{}{"component": "wizard"}),
		api:      deps.API,
		notifier: notifier,
		obs:      obs,
		draft:    newDraft(config.Catalog),
	}
}

// ==========================
// Bootstrap
// ==========================

// Start loads the tool and its template questions and resets the draft. The
// industry is pre-filled from the tool when it has one.
func (w *Wizard) Start(ctx context.Context, toolID string) error {
	var tool models.Tool
	if _, err := w.api.Get(ctx, apihttp.PathEscape(PathTool, toolID), &tool); err != nil {
		w.logger.Warn("failed to load tool", map[string]interface{}{"toolId": toolID, "error": err.Error()})
		w.notifier.Error("Failed to load tool")
		return err
	}
	if tool.ID == "" {
		tool.ID = toolID
	}

	var tmpl models.UserReportTemplate
	if _, err := w.api.Get(ctx, apihttp.PathEscape(PathToolTemplate, toolID), &tmpl); err != nil {
		// Only a missing template means the tool has no extra questions.
		if errors.StatusCode(err) != http.StatusNotFound {
			w.logger.Warn("failed to load template fields", map[string]interface{}{"toolId": toolID, "error": err.Error()})
			w.notifier.Error(errors.UserMessage(err))
			return err
		}
		tmpl.InputFields = nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.tool = &tool
	w.fields = tmpl.InputFields
	w.draft = newDraft(w.config.Catalog)
	w.draft.Industry = tool.Industry
	w.step = StepIndustry

	w.logger.Info("wizard started", map[string]interface{}{
		"toolId":   tool.ID,
		"industry": tool.Industry,
		"fields":   len(tmpl.InputFields),
	})
	return nil
}

// Reset clears the draft and returns to the first step, keeping the tool.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *Wizard) resetLocked() {
	industry := ""
	if w.tool != nil {
		industry = w.tool.Industry
	}
	w.draft = newDraft(w.config.Catalog)
	w.draft.Industry = industry
	w.step = StepIndustry
}

// ==========================
// Read access
// ==========================

func (w *Wizard) Catalog() Catalog {
	return w.config.Catalog
}

func (w *Wizard) Tool() *models.Tool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tool == nil {
		return nil
	}
	t := *w.tool
	return &t
}

// Fields returns the dynamic questions of the tool's template.
func (w *Wizard) Fields() []models.InputField {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.InputField(nil), w.fields...)
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() *Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone()
}

func (w *Wizard) Uploading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.uploading
}

// ReportTypes lists the report types offered for the drafted industry.
func (w *Wizard) ReportTypes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	types, _ := w.config.Catalog.ReportTypes(w.draft.Industry)
	return types
}

// ==========================
// Navigation
// ==========================

// CanProceed reports whether the current step's gate is satisfied.
func (w *Wizard) CanProceed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step != StepReview && len(w.step.missing(w.draft)) == 0
}

// Missing lists what the current step still needs.
func (w *Wizard) Missing() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepReview {
		return nil
	}
	return w.step.missing(w.draft)
}

// Next advances one step. An incomplete step blocks with STEP_INCOMPLETE.
func (w *Wizard) Next() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepReview {
		return w.step, nil
	}
	if missing := w.step.missing(w.draft); len(missing) > 0 {
		return w.step, errors.NewStepIncompleteError(w.step.String(), missing)
	}
	w.step++
	return w.step, nil
}

// Back moves one step back. The draft is never modified.
func (w *Wizard) Back() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepIndustry {
		w.step--
	}
	return w.step
}

// ==========================
// Selections
// ==========================

// SetIndustry selects an industry from the catalog. A report type that the
// new industry does not offer is cleared.
func (w *Wizard) SetIndustry(industry string) error {
	types, ok := w.config.Catalog.ReportTypes(industry)
	if !ok {
		return invalidChoice("industry", industry)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft.Industry != industry && !contains(types, w.draft.ReportType) {
		w.draft.ReportType = ""
	}
	w.draft.Industry = industry
	return nil
}

// SetReportType selects a report type. Industries outside the catalog, which
// a tool can carry, accept any non-empty type.
func (w *Wizard) SetReportType(reportType string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft.Industry == "" {
		return errors.NewStepIncompleteError(StepIndustry.String(), []string{"industry"})
	}
	types, known := w.config.Catalog.ReportTypes(w.draft.Industry)
	if reportType == "" || (known && !contains(types, reportType)) {
		return invalidChoice("reportType", reportType)
	}
	w.draft.ReportType = reportType
	return nil
}

func (w *Wizard) SetAudience(audience string) error {
	return w.choose("audience", audience, w.config.Catalog.Audiences, func(d *Draft) { d.Audience = audience })
}

func (w *Wizard) SetPurpose(purpose string) error {
	return w.choose("purpose", purpose, w.config.Catalog.Purposes, func(d *Draft) { d.Purpose = purpose })
}

func (w *Wizard) SetTone(tone string) error {
	return w.choose("tone", tone, w.config.Catalog.Tones, func(d *Draft) { d.Tone = tone })
}

func (w *Wizard) SetDepth(depth string) error {
	return w.choose("depth", depth, w.config.Catalog.Depths, func(d *Draft) { d.Depth = depth })
}

func (w *Wizard) choose(field, value string, options []string, apply func(*Draft)) error {
	if !contains(options, value) {
		return invalidChoice(field, value)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	apply(w.draft)
	return nil
}

func (w *Wizard) SetNotes(notes string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Notes = notes
}

// SetAnswer records the answer to a template question. Blank clears it.
func (w *Wizard) SetAnswer(fieldID, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.fields) > 0 && !w.hasFieldLocked(fieldID) {
		return errors.NewValidationError("Unknown input field", map[string]string{fieldID: "not part of this template"})
	}
	if value == "" {
		delete(w.draft.Inputs, fieldID)
		return nil
	}
	w.draft.Inputs[fieldID] = value
	return nil
}

func (w *Wizard) hasFieldLocked(id string) bool {
	for _, f := range w.fields {
		if f.ID == id {
			return true
		}
	}
	return false
}

func invalidChoice(field, value string) error {
	return errors.NewValidationError(
		fmt.Sprintf("%q is not a valid %s", value, field),
		map[string]string{field: "not one of the offered choices"},
	)
}

// ==========================
// Uploads
// ==========================

// Upload sends every file concurrently and attaches the results to the draft.
// The batch is all-or-nothing: if any upload fails nothing is attached. A
// second batch is rejected while one is running.
func (w *Wizard) Upload(ctx context.Context, files []apihttp.FilePart) ([]models.FileUpload, error) {
	if len(files) == 0 {
		return nil, nil
	}

	w.mu.Lock()
	if w.uploading {
		w.mu.Unlock()
		return nil, errors.NewUploadInProgressError()
	}
	w.uploading = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.uploading = false
		w.mu.Unlock()
	}()

	start := time.Now()
	uploaded := make([]models.FileUpload, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.UploadConcurrency)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			metrics.UploadsActive.Inc()
			defer metrics.UploadsActive.Dec()

			var out models.FileUpload
			res, err := w.api.Upload(gctx, PathFileUpload, file, nil, &out)
			if err == nil && (res.Empty || out.ID == "") {
				err = errors.NewParseError(PathFileUpload, fmt.Errorf("upload response carries no file id"))
			}
			if err != nil {
				return errors.NewUploadFailedError(file.Filename, err)
			}
			uploaded[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		w.logger.Warn("file upload failed", map[string]interface{}{"files": len(files), "error": err.Error()})
		w.notifier.Error(errors.UserMessage(err))
		w.obs.Track(ctx, observability.FlowUpload, start, err)
		return nil, err
	}

	w.mu.Lock()
	w.draft.Files = append(w.draft.Files, uploaded...)
	w.mu.Unlock()

	w.logger.Info("files uploaded", map[string]interface{}{"files": len(uploaded)})
	w.notifier.Success(fmt.Sprintf("%d file(s) uploaded successfully!", len(uploaded)))
	w.obs.Track(ctx, observability.FlowUpload, start, nil)
	return uploaded, nil
}

// RemoveFile detaches an uploaded file from the draft. The server copy is
// left alone.
func (w *Wizard) RemoveFile(fileID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.draft.Files[:0:0]
	for _, f := range w.draft.Files {
		if f.ID != fileID {
			kept = append(kept, f)
		}
	}
	removed := len(kept) != len(w.draft.Files)
	w.draft.Files = kept
	return removed
}

// ==========================
// Generation
// ==========================

// Generate creates the report and asks the server to generate it. It only runs
// from the review step. Both calls
// must succeed; on any failure the draft is kept so the user can retry. A
// failed generate call reports the id of the report that was created.
func (w *Wizard) Generate(ctx context.Context) (*Outcome, error) {
	w.mu.Lock()
	payload, err := w.prepareLocked()
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.generating = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.generating = false
		w.mu.Unlock()
	}()

	start := time.Now()
	var report models.Report
	res, err := w.api.Post(ctx, PathReports, payload, &report)
	if err == nil && (res.Empty || report.ID == "") {
		err = errors.NewParseError(PathReports, errMissingReportID)
	}
	if err != nil {
		return nil, w.generateFailed(ctx, start, errors.NewReportCreateFailedError(err))
	}

	if _, err := w.api.Post(ctx, apihttp.PathEscape(PathReportGenerate, report.ID), nil, nil); err != nil {
		return nil, w.generateFailed(ctx, start, errors.NewReportGenerateFailedError(report.ID, err))
	}

	w.mu.Lock()
	w.resetLocked()
	w.mu.Unlock()

	w.logger.Info("report generated", map[string]interface{}{"reportId": report.ID, "toolId": payload.ToolID})
	w.notifier.Success("Report generated successfully!")
	w.obs.Track(ctx, observability.FlowReportGenerate, start, nil)
	return &Outcome{ReportID: report.ID, Navigate: w.config.DoneRoute}, nil
}

// prepareLocked checks every gate and the template answers, then builds the
// request body. Nothing here touches the network.
func (w *Wizard) prepareLocked() (models.CreateReportRequest, error) {
	if w.tool == nil {
		return models.CreateReportRequest{}, errors.NewValidationError("No tool selected", map[string]string{"toolId": "required"})
	}
	if w.generating {
		return models.CreateReportRequest{}, errors.NewValidationError("Report generation already in progress", nil)
	}
	if w.uploading {
		return models.CreateReportRequest{}, errors.NewUploadInProgressError()
	}
	for _, s := range Steps()[:StepReview] {
		if missing := s.missing(w.draft); len(missing) > 0 {
			return models.CreateReportRequest{}, errors.NewStepIncompleteError(s.String(), missing)
		}
	}
	if w.step != StepReview {
		return models.CreateReportRequest{}, errors.NewValidationError(
			"Review the report before generating",
			map[string]string{"step": w.step.String()},
		)
	}
	if result := validation.ValidateAnswers(w.fields, w.draft.Inputs); !result.Valid {
		return models.CreateReportRequest{}, errors.NewValidationError("Some inputs are invalid", result.FieldErrors())
	}
	return w.draft.Payload(*w.tool), nil
}

func (w *Wizard) generateFailed(ctx context.Context, start time.Time, err *errors.StandardError) error {
	w.logger.Error("report generation failed", map[string]interface{}{
		"code":     string(err.Code),
		"error":    err.Error(),
		"metadata": err.Metadata,
	})
	w.notifier.Error(errors.UserMessage(err))
	w.obs.Track(ctx, observability.FlowReportGenerate, start, err)
	return err
}
