package validation

import (
	"math"
	"strconv"
	"strings"

	"reportdesk/internal/models"
)

const datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`

// SchemaForFields builds the JSON Schema that wizard answers must satisfy.
// Properties are keyed by field id.
func SchemaForFields(fields []models.InputField) JSONSchema {
	schema := JSONSchema{
		Type:       "object",
		Properties: make(map[string]Property, len(fields)),
	}
	one := 1

	for _, f := range fields {
		prop := Property{Title: f.Label, Description: f.Description}
		switch f.Type {
		case models.FieldNumber:
			prop.Type = "number"
			prop.Minimum = f.MinValue
			prop.Maximum = f.MaxValue
		case models.FieldBoolean:
			prop.Type = "boolean"
		case models.FieldSelect:
			prop.Type = "string"
			prop.Enum = f.Options
		case models.FieldDate:
			prop.Type = "string"
			prop.Pattern = datePattern
		default:
			prop.Type = "string"
		}
		if f.Required && prop.Type == "string" {
			prop.MinLength = &one
		}
		schema.Properties[f.ID] = prop
		if f.Required {
			schema.Required = append(schema.Required, f.ID)
		}
	}
	return schema
}

// AnswersDocument converts the string answers of the wizard into typed JSON
// values. Blank optional answers are dropped; values that do not parse are
// kept as strings so the schema reports them.
func AnswersDocument(fields []models.InputField, answers map[string]string) map[string]interface{} {
	doc := make(map[string]interface{}, len(answers))
	byID := make(map[string]models.InputField, len(fields))
	for _, f := range fields {
		byID[f.ID] = f
	}

	for id, raw := range answers {
		value := strings.TrimSpace(raw)
		f, known := byID[id]
		if value == "" && (!known || !f.Required) {
			continue
		}
		if !known {
			doc[id] = raw
			continue
		}
		switch f.Type {
		case models.FieldNumber:
			if n, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
				doc[id] = n
			} else {
				doc[id] = raw
			}
		case models.FieldBoolean:
			if b, err := strconv.ParseBool(value); err == nil {
				doc[id] = b
			} else {
				doc[id] = raw
			}
		default:
			doc[id] = value
		}
	}
	return doc
}

// ValidateAnswers checks the wizard answers against the template fields.
// Error fields are reported by label.
func ValidateAnswers(fields []models.InputField, answers map[string]string) *ValidationResult {
	if len(fields) == 0 {
		return &ValidationResult{Valid: true}
	}
	result := ValidateInput(AnswersDocument(fields, answers), SchemaForFields(fields))
	if result.Valid {
		return result
	}

	labels := make(map[string]string, len(fields))
	for _, f := range fields {
		labels[f.ID] = f.Label
	}
	for i, e := range result.Errors {
		if label, ok := labels[e.Field]; ok && label != "" {
			result.Errors[i].Field = label
		}
	}
	return result
}
