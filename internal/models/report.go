// internal/models/report.go
package models

// ReportStatus follows DRAFT -> PENDING -> PROCESSING -> GENERATED | FAILED.
type ReportStatus string

const (
	ReportDraft      ReportStatus = "DRAFT"
	ReportPending    ReportStatus = "PENDING"
	ReportProcessing ReportStatus = "PROCESSING"
	ReportGenerated  ReportStatus = "GENERATED"
	ReportFailed     ReportStatus = "FAILED"
)

// Terminal reports whether the status will not change any more.
func (s ReportStatus) Terminal() bool {
	return s == ReportGenerated || s == ReportFailed
}

// WizardData is the free-form part of the creation payload.
type WizardData struct {
	Notes           string   `json:"notes"`
	UploadedFileIDs []string `json:"uploadedFileIds"`
}

// CreateReportRequest is the body of POST /reports.
type CreateReportRequest struct {
	ToolID     string            `json:"tool_id"`
	Title      string            `json:"title"`
	Industry   string            `json:"industry"`
	ReportType string            `json:"report_type"`
	Audience   string            `json:"audience"`
	Purpose    string            `json:"purpose"`
	Tone       string            `json:"tone"`
	Depth      string            `json:"depth"`
	WizardData WizardData        `json:"wizard_data"`
	Inputs     map[string]string `json:"inputs"`
}

type ChartData struct {
	ID          string `json:"id" yaml:"id"`
	ChartType   string `json:"chartType" yaml:"chartType"`
	Title       string `json:"title" yaml:"title"`
	DataJSON    string `json:"dataJson" yaml:"dataJson"`
	OptionsJSON string `json:"optionsJson" yaml:"optionsJson"`
}

type UploadedFileInfo struct {
	ID          string `json:"id" yaml:"id"`
	Filename    string `json:"filename" yaml:"filename"`
	ContentType string `json:"contentType" yaml:"contentType"`
	FileSize    int64  `json:"fileSize" yaml:"fileSize"`
	DataSummary string `json:"dataSummary" yaml:"dataSummary"`
}

// Report is the server view of a report.
type Report struct {
	ID         string             `json:"id" yaml:"id"`
	ToolID     string             `json:"toolId" yaml:"toolId"`
	Title      string             `json:"title" yaml:"title"`
	Status     ReportStatus       `json:"status" yaml:"status"`
	Content    string             `json:"content" yaml:"content,omitempty"`
	CreatedAt  string             `json:"createdAt" yaml:"createdAt"`
	Industry   string             `json:"industry,omitempty" yaml:"industry,omitempty"`
	ReportType string             `json:"reportType,omitempty" yaml:"reportType,omitempty"`
	Audience   string             `json:"audience,omitempty" yaml:"audience,omitempty"`
	Purpose    string             `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Tone       string             `json:"tone,omitempty" yaml:"tone,omitempty"`
	Depth      string             `json:"depth,omitempty" yaml:"depth,omitempty"`
	Charts     []ChartData        `json:"charts,omitempty" yaml:"charts,omitempty"`
	Files      []UploadedFileInfo `json:"files,omitempty" yaml:"files,omitempty"`
}

// ExportFormat is a downloadable rendition of a report.
type ExportFormat string

const (
	ExportPDF      ExportFormat = "pdf"
	ExportMarkdown ExportFormat = "markdown"
)

// Extension returns the file extension for saved exports.
func (f ExportFormat) Extension() string {
	if f == ExportMarkdown {
		return ".md"
	}
	return ".pdf"
}
