package wizard

import (
	"reportdesk/internal/models"
)

// Draft is the accumulated wizard input for one report.
type Draft struct {
	Industry   string              `json:"industry" yaml:"industry"`
	ReportType string              `json:"reportType" yaml:"reportType"`
	Audience   string              `json:"audience" yaml:"audience"`
	Purpose    string              `json:"purpose" yaml:"purpose"`
	Tone       string              `json:"tone" yaml:"tone"`
	Depth      string              `json:"depth" yaml:"depth"`
	Notes      string              `json:"notes" yaml:"notes"`
	Inputs     map[string]string   `json:"inputs" yaml:"inputs"`
	Files      []models.FileUpload `json:"files" yaml:"files"`
}

func newDraft(c Catalog) *Draft {
	return &Draft{
		Tone:   c.DefaultTone,
		Depth:  c.DefaultDepth,
		Inputs: map[string]string{},
	}
}

func (d *Draft) clone() *Draft {
	c := *d
	c.Inputs = make(map[string]string, len(d.Inputs))
	for k, v := range d.Inputs {
		c.Inputs[k] = v
	}
	c.Files = append([]models.FileUpload(nil), d.Files...)
	return &c
}

// FileIDs returns the ids of the attached uploads in attach order.
func (d *Draft) FileIDs() []string {
	ids := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		ids = append(ids, f.ID)
	}
	return ids
}

// Payload builds the POST /reports body for tool.
func (d *Draft) Payload(tool models.Tool) models.CreateReportRequest {
	inputs := make(map[string]string, len(d.Inputs))
	for k, v := range d.Inputs {
		inputs[k] = v
	}
	return models.CreateReportRequest{
		ToolID:     tool.ID,
		Title:      tool.Title + " Report",
		Industry:   d.Industry,
		ReportType: d.ReportType,
		Audience:   d.Audience,
		Purpose:    d.Purpose,
		Tone:       d.Tone,
		Depth:      d.Depth,
		WizardData: models.WizardData{
			Notes:           d.Notes,
			UploadedFileIDs: d.FileIDs(),
		},
		Inputs: inputs,
	}
}
