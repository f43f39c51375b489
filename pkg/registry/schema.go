// pkg/registry/schema.go
package registry

import "reportdesk/internal/models"

// TemplateBundle is a versioned set of report templates kept under source
// control and applied with "reportdesk admin templates import".
type TemplateBundle struct {
	Version     string                         `json:"version" yaml:"version"`
	LastUpdated string                         `json:"lastUpdated" yaml:"lastUpdated"`
	Templates   []models.ReportTemplateRequest `json:"templates" yaml:"templates"`
}

// Titles lists the template titles in bundle order.
func (b *TemplateBundle) Titles() []string {
	out := make([]string, 0, len(b.Templates))
	for _, t := range b.Templates {
		out = append(out, t.Title)
	}
	return out
}
