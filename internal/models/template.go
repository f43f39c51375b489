// internal/models/template.go
package models

// InputFieldType enumerates the kinds of dynamic template inputs.
type InputFieldType string

const (
	FieldText     InputFieldType = "TEXT"
	FieldNumber   InputFieldType = "NUMBER"
	FieldTextarea InputFieldType = "TEXTAREA"
	FieldSelect   InputFieldType = "SELECT"
	FieldDate     InputFieldType = "DATE"
	FieldBoolean  InputFieldType = "BOOLEAN"
)

var InputFieldTypes = []InputFieldType{FieldText, FieldNumber, FieldTextarea, FieldSelect, FieldDate, FieldBoolean}

// Valid reports whether t is one of the known field types.
func (t InputFieldType) Valid() bool {
	for _, known := range InputFieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// InputField is one dynamic question of a report template.
type InputField struct {
	ID          string         `json:"id" yaml:"id"`
	Label       string         `json:"label" yaml:"label"`
	Description string         `json:"description" yaml:"description,omitempty"`
	Type        InputFieldType `json:"type" yaml:"type"`
	Required    bool           `json:"required" yaml:"required"`
	MinValue    *float64       `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue    *float64       `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	Options     []string       `json:"options,omitempty" yaml:"options,omitempty"`
	SortOrder   int            `json:"sortOrder" yaml:"sortOrder"`
}

// InputFieldRequest is the body of the field create/update endpoints.
type InputFieldRequest struct {
	Label       string         `json:"label" yaml:"label"`
	Description string         `json:"description" yaml:"description"`
	Type        InputFieldType `json:"type" yaml:"type"`
	Required    bool           `json:"required" yaml:"required"`
	MinValue    *float64       `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue    *float64       `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	Options     []string       `json:"options,omitempty" yaml:"options,omitempty"`
	SortOrder   int            `json:"sortOrder" yaml:"sortOrder"`
}

// ToRequest converts a stored field back into an update body.
func (f InputField) ToRequest() InputFieldRequest {
	return InputFieldRequest{
		Label:       f.Label,
		Description: f.Description,
		Type:        f.Type,
		Required:    f.Required,
		MinValue:    f.MinValue,
		MaxValue:    f.MaxValue,
		Options:     f.Options,
		SortOrder:   f.SortOrder,
	}
}

// ReportTemplate is the admin view of a template, including its AI configuration.
type ReportTemplate struct {
	ID                 string       `json:"id" yaml:"id"`
	ToolID             string       `json:"toolId" yaml:"toolId"`
	Title              string       `json:"title" yaml:"title"`
	Description        string       `json:"description" yaml:"description,omitempty"`
	Category           string       `json:"category" yaml:"category,omitempty"`
	Industry           string       `json:"industry" yaml:"industry,omitempty"`
	SystemPrompt       string       `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	CalculationPrompt  string       `json:"calculationPrompt,omitempty" yaml:"calculationPrompt,omitempty"`
	OutputFormatPrompt string       `json:"outputFormatPrompt,omitempty" yaml:"outputFormatPrompt,omitempty"`
	Temperature        *float64     `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens          *int         `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
	Active             *bool        `json:"active,omitempty" yaml:"active,omitempty"`
	InputFields        []InputField `json:"inputFields" yaml:"inputFields"`
}

// ReportTemplateRequest is the body of template create/update.
type ReportTemplateRequest struct {
	ToolID             string              `json:"toolId" yaml:"toolId"`
	Title              string              `json:"title" yaml:"title"`
	Description        string              `json:"description,omitempty" yaml:"description,omitempty"`
	Category           string              `json:"category,omitempty" yaml:"category,omitempty"`
	Industry           string              `json:"industry,omitempty" yaml:"industry,omitempty"`
	SystemPrompt       string              `json:"systemPrompt" yaml:"systemPrompt"`
	CalculationPrompt  string              `json:"calculationPrompt" yaml:"calculationPrompt"`
	OutputFormatPrompt string              `json:"outputFormatPrompt" yaml:"outputFormatPrompt"`
	Temperature        *float64            `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens          *int                `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
	Active             *bool               `json:"active,omitempty" yaml:"active,omitempty"`
	InputFields        []InputFieldRequest `json:"inputFields,omitempty" yaml:"inputFields,omitempty"`
}

// ToRequest converts a loaded template into an update body without its fields,
// which have their own endpoints.
func (t ReportTemplate) ToRequest() ReportTemplateRequest {
	return ReportTemplateRequest{
		ToolID:             t.ToolID,
		Title:              t.Title,
		Description:        t.Description,
		Category:           t.Category,
		Industry:           t.Industry,
		SystemPrompt:       t.SystemPrompt,
		CalculationPrompt:  t.CalculationPrompt,
		OutputFormatPrompt: t.OutputFormatPrompt,
		Temperature:        t.Temperature,
		MaxTokens:          t.MaxTokens,
		Active:             t.Active,
	}
}

// UserReportTemplate is the read-only template shown to users in the wizard.
type UserReportTemplate struct {
	ToolID      string       `json:"toolId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Industry    string       `json:"industry"`
	InputFields []InputField `json:"inputFields"`
}
