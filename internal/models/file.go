package models

// FileUpload is the server record of an uploaded data file.
type FileUpload struct {
	ID             string                 `json:"id" yaml:"id"`
	Filename       string                 `json:"filename" yaml:"filename"`
	ContentType    string                 `json:"contentType" yaml:"contentType"`
	FileSize       int64                  `json:"fileSize" yaml:"fileSize"`
	TextPreview    string                 `json:"textPreview,omitempty" yaml:"textPreview,omitempty"`
	StructuredData map[string]interface{} `json:"structuredData,omitempty" yaml:"structuredData,omitempty"`
	DataSummary    string                 `json:"dataSummary" yaml:"dataSummary"`
}
