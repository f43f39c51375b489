package models

type Tool struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	Industry    string `json:"industry,omitempty" yaml:"industry,omitempty"`
}
