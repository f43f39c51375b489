// Package templates is the admin editor for report templates and their
// input fields.
package templates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reportdesk/internal/common/errors"
	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/common/logger"
	"reportdesk/internal/common/notify"
	"reportdesk/internal/common/observability"
	"reportdesk/internal/models"
)

var errMissingID = fmt.Errorf("response carries no id")

// Editor holds at most one loaded template. Field mutations patch the loaded
// copy by id instead of refetching it.
type Editor struct {
	config    *Config
	logger    logger.Logger
	api       API
	notifier  notify.Notifier
	confirmer Confirmer
	obs       *observability.Observability
	errs      *errors.ErrorHandler

	mu       sync.Mutex
	template *models.ReportTemplate
}

func NewEditor(deps ServiceDependencies, config *Config) *Editor {
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
	log = log.WithFields(map[string]interface{}{"component": "template_editor"})
	return &Editor{
		config:    config,
		logger:    log,
		api:       deps.API,
		notifier:  notifier,
		confirmer: deps.Confirmer,
		obs:       obs,
		errs:      errors.NewErrorHandler(log, notifier),
	}
}

// Template returns a copy of the loaded template, or nil.
func (e *Editor) Template() *models.ReportTemplate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyTemplate(e.template)
}

// ==========================
// Reads
// ==========================

func (e *Editor) List(ctx context.Context) ([]models.ReportTemplate, error) {
	var list []models.ReportTemplate
	if _, err := e.api.Get(ctx, PathTemplates, &list); err != nil {
		return nil, e.fail("list templates", err)
	}
	return list, nil
}

// Load fetches a template and makes it the one being edited.
func (e *Editor) Load(ctx context.Context, id string) (*models.ReportTemplate, error) {
	if id == "" {
		return nil, errors.NewTemplateNotLoadedError()
	}
	var tmpl models.ReportTemplate
	res, err := e.api.Get(ctx, apihttp.PathEscape(PathTemplate, id), &tmpl)
	if err == nil && res.Empty {
		err = errors.NewParseError(PathTemplate, errMissingID)
	}
	if err != nil {
		return nil, e.fail("load template", err)
	}

	e.mu.Lock()
	e.template = &tmpl
	e.mu.Unlock()
	return copyTemplate(&tmpl), nil
}

// ==========================
// Template mutations
// ==========================

// Create saves a new template. The outcome points at its editor page.
func (e *Editor) Create(ctx context.Context, req models.ReportTemplateRequest) (*models.ReportTemplate, *Outcome, error) {
	if err := e.config.ValidateTemplate(req); err != nil {
		return nil, nil, e.reject(err)
	}
	start := time.Now()

	var created models.ReportTemplate
	res, err := e.api.Post(ctx, PathTemplates, req, &created)
	if err == nil && (res.Empty || created.ID == "") {
		err = errors.NewParseError(PathTemplates, errMissingID)
	}
	e.obs.Track(ctx, observability.FlowTemplateSave, start, err)
	if err != nil {
		return nil, nil, e.fail("create template", err)
	}

	e.mu.Lock()
	e.template = &created
	e.mu.Unlock()

	e.logger.Info("template created", map[string]interface{}{"templateId": created.ID, "toolId": created.ToolID})
	e.notifier.Success("Template created successfully")
	return copyTemplate(&created), &Outcome{Navigate: e.config.TemplateRoute(created.ID)}, nil
}

// Update saves metadata and AI configuration of the loaded template.
func (e *Editor) Update(ctx context.Context, req models.ReportTemplateRequest) (*models.ReportTemplate, error) {
	id, err := e.loadedID()
	if err != nil {
		return nil, e.reject(err)
	}
	if err := e.config.ValidateTemplate(req); err != nil {
		return nil, e.reject(err)
	}
	start := time.Now()

	var updated models.ReportTemplate
	res, err := e.api.Put(ctx, apihttp.PathEscape(PathTemplate, id), req, &updated)
	e.obs.Track(ctx, observability.FlowTemplateSave, start, err)
	if err != nil {
		return nil, e.fail("update template", err)
	}

	e.mu.Lock()
	if e.template != nil && e.template.ID == id {
		if res.Empty {
			applyRequest(e.template, req)
		} else {
			if updated.InputFields == nil {
				updated.InputFields = e.template.InputFields
			}
			e.template = &updated
		}
	}
	out := copyTemplate(e.template)
	e.mu.Unlock()

	e.logger.Info("template updated", map[string]interface{}{"templateId": id})
	e.notifier.Success("Template updated successfully")
	return out, nil
}

// Delete removes the loaded template after an explicit confirmation. A
// declined confirmation sends nothing.
func (e *Editor) Delete(ctx context.Context) (*Outcome, error) {
	e.mu.Lock()
	tmpl := copyTemplate(e.template)
	e.mu.Unlock()
	if tmpl == nil {
		return nil, e.reject(errors.NewTemplateNotLoadedError())
	}

	prompt := fmt.Sprintf("Are you sure you want to delete %q? This cannot be undone.", tmpl.Title)
	ok := false
	if e.confirmer != nil {
		var err error
		if ok, err = e.confirmer.Confirm(ctx, prompt); err != nil {
			return nil, err
		}
	}
	if !ok {
		e.logger.Info("template delete declined", map[string]interface{}{"templateId": tmpl.ID})
		return nil, errors.NewConfirmationDeclinedError("delete template")
	}

	if _, err := e.api.Delete(ctx, apihttp.PathEscape(PathTemplate, tmpl.ID)); err != nil {
		return nil, e.fail("delete template", err)
	}

	e.mu.Lock()
	if e.template != nil && e.template.ID == tmpl.ID {
		e.template = nil
	}
	e.mu.Unlock()

	e.logger.Info("template deleted", map[string]interface{}{"templateId": tmpl.ID})
	e.notifier.Success("Template deleted successfully")
	return &Outcome{Navigate: e.config.ListRoute}, nil
}

// ==========================
// Field mutations
// ==========================

// AddField creates a field on the loaded template and appends it locally.
func (e *Editor) AddField(ctx context.Context, req models.InputFieldRequest) (*models.InputField, error) {
	id, err := e.loadedID()
	if err != nil {
		return nil, e.reject(err)
	}
	if err := ValidateField(req); err != nil {
		return nil, e.reject(err)
	}

	var field models.InputField
	res, err := e.api.Post(ctx, apihttp.PathEscape(PathFields, id), req, &field)
	if err == nil && (res.Empty || field.ID == "") {
		err = errors.NewParseError(PathFields, errMissingID)
	}
	if err != nil {
		return nil, e.fail("add field", err)
	}

	e.mu.Lock()
	if e.template != nil && e.template.ID == id {
		e.template.InputFields = append(e.template.InputFields, field)
	}
	e.mu.Unlock()

	e.logger.Info("input field added", map[string]interface{}{"templateId": id, "fieldId": field.ID})
	e.notifier.Success("Input field added successfully")
	return &field, nil
}

// UpdateField replaces the field with a matching id in the loaded template.
func (e *Editor) UpdateField(ctx context.Context, fieldID string, req models.InputFieldRequest) (*models.InputField, error) {
	id, err := e.loadedID()
	if err != nil {
		return nil, e.reject(err)
	}
	if err := ValidateField(req); err != nil {
		return nil, e.reject(err)
	}

	var field models.InputField
	res, err := e.api.Put(ctx, apihttp.PathEscape(PathField, fieldID), req, &field)
	if err != nil {
		return nil, e.fail("update field", err)
	}
	if res.Empty || field.ID == "" {
		field = fieldFromRequest(fieldID, req)
	}

	e.mu.Lock()
	if e.template != nil && e.template.ID == id {
		for i := range e.template.InputFields {
			if e.template.InputFields[i].ID == fieldID {
				e.template.InputFields[i] = field
			}
		}
	}
	e.mu.Unlock()

	e.logger.Info("input field updated", map[string]interface{}{"templateId": id, "fieldId": fieldID})
	e.notifier.Success("Input field updated successfully")
	return &field, nil
}

// DeleteField removes a field and filters it out of the loaded template.
func (e *Editor) DeleteField(ctx context.Context, fieldID string) error {
	id, err := e.loadedID()
	if err != nil {
		return e.reject(err)
	}

	if _, err := e.api.Delete(ctx, apihttp.PathEscape(PathField, fieldID)); err != nil {
		return e.fail("delete field", err)
	}

	e.mu.Lock()
	if e.template != nil && e.template.ID == id {
		kept := e.template.InputFields[:0:0]
		for _, f := range e.template.InputFields {
			if f.ID != fieldID {
				kept = append(kept, f)
			}
		}
		e.template.InputFields = kept
	}
	e.mu.Unlock()

	e.logger.Info("input field deleted", map[string]interface{}{"templateId": id, "fieldId": fieldID})
	e.notifier.Success("Input field deleted successfully")
	return nil
}

// ==========================
// Helpers
// ==========================

func (e *Editor) loadedID() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.template == nil || e.template.ID == "" {
		return "", errors.NewTemplateNotLoadedError()
	}
	return e.template.ID, nil
}

// reject reports a client-side failure that never reached the network.
func (e *Editor) reject(err error) error {
	return e.errs.Handle("validate template", err)
}

func (e *Editor) fail(op string, err error) error {
	return e.errs.Handle(op, err)
}

func applyRequest(t *models.ReportTemplate, req models.ReportTemplateRequest) {
	t.ToolID = req.ToolID
	t.Title = req.Title
	t.Description = req.Description
	t.Category = req.Category
	t.Industry = req.Industry
	t.SystemPrompt = req.SystemPrompt
	t.CalculationPrompt = req.CalculationPrompt
	t.OutputFormatPrompt = req.OutputFormatPrompt
	t.Temperature = req.Temperature
	t.MaxTokens = req.MaxTokens
	t.Active = req.Active
}

func fieldFromRequest(id string, req models.InputFieldRequest) models.InputField {
	return models.InputField{
		ID:          id,
		Label:       req.Label,
		Description: req.Description,
		Type:        req.Type,
		Required:    req.Required,
		MinValue:    req.MinValue,
		MaxValue:    req.MaxValue,
		Options:     req.Options,
		SortOrder:   req.SortOrder,
	}
}

func copyTemplate(t *models.ReportTemplate) *models.ReportTemplate {
	if t == nil {
		return nil
	}
	c := *t
	c.InputFields = append([]models.InputField(nil), t.InputFields...)
	return &c
}
