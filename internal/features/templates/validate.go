package templates

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"reportdesk/internal/common/errors"
	"reportdesk/internal/models"
)

// ValidateTemplate checks metadata and AI configuration before a save.
// Temperature and max tokens are optional; when set they must be in range.
func (c *Config) ValidateTemplate(req models.ReportTemplateRequest) error {
	problems := map[string]string{}

	required := []struct {
		field, value, label string
	}{
		{"toolId", req.ToolID, "Tool ID"},
		{"title", req.Title, "Title"},
		{"systemPrompt", req.SystemPrompt, "System prompt"},
		{"calculationPrompt", req.CalculationPrompt, "Calculation prompt"},
		{"outputFormatPrompt", req.OutputFormatPrompt, "Output format prompt"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems[r.field] = r.label + " is required"
		}
	}

	if len(req.Description) > c.MaxDescription {
		problems["description"] = fmt.Sprintf("Description cannot exceed %d characters", c.MaxDescription)
	}
	if t := req.Temperature; t != nil && (math.IsNaN(*t) || *t < c.MinTemperature || *t > c.MaxTemperature) {
		problems["temperature"] = fmt.Sprintf("Temperature must be between %g and %g", c.MinTemperature, c.MaxTemperature)
	}
	if m := req.MaxTokens; m != nil && *m <= 0 {
		problems["maxTokens"] = "Max tokens must be a positive integer"
	}

	for i, f := range req.InputFields {
		if err := ValidateField(f); err != nil {
			problems[fmt.Sprintf("inputFields[%d]", i)] = errors.UserMessage(err)
		}
	}

	if len(problems) > 0 {
		return errors.NewValidationError(firstProblem(problems, "toolId", "title", "systemPrompt", "calculationPrompt", "outputFormatPrompt", "description", "temperature", "maxTokens"), problems)
	}
	return nil
}

// ValidateField checks one input field definition.
func ValidateField(req models.InputFieldRequest) error {
	problems := map[string]string{}

	if strings.TrimSpace(req.Label) == "" {
		problems["label"] = "Label is required"
	}
	if !req.Type.Valid() {
		problems["type"] = fmt.Sprintf("Type must be one of %v", models.InputFieldTypes)
	}
	switch {
	case req.Type == models.FieldSelect && len(req.Options) == 0:
		problems["options"] = "Select fields need at least one option"
	case req.Type != models.FieldSelect && len(req.Options) > 0:
		problems["options"] = "Options are only allowed on select fields"
	}
	if req.MinValue != nil && req.MaxValue != nil && *req.MinValue > *req.MaxValue {
		problems["minValue"] = "Min value must not exceed max value"
	}
	if req.SortOrder < 0 {
		problems["sortOrder"] = "Sort order must not be negative"
	}

	if len(problems) > 0 {
		return errors.NewValidationError(firstProblem(problems, "label", "type", "options", "minValue", "sortOrder"), problems)
	}
	return nil
}

// firstProblem picks the message of the first failing field in order so the
// notification is stable.
func firstProblem(problems map[string]string, order ...string) string {
	for _, k := range order {
		if msg, ok := problems[k]; ok {
			return msg
		}
	}
	keys := make([]string, 0, len(problems))
	for k := range problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return problems[keys[0]]
	}
	return "Invalid input"
}
