// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"reportdesk/internal/models"
)

// LoadBundle reads a template bundle. Files ending in .json are decoded as
// JSON, everything else as YAML.
func LoadBundle(path string) (*TemplateBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bundle TemplateBundle
	if isJSON(path) {
		err = json.Unmarshal(data, &bundle)
	} else {
		err = yaml.Unmarshal(data, &bundle)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse bundle %s: %w", path, err)
	}
	if len(bundle.Templates) == 0 {
		return nil, fmt.Errorf("bundle %s has no templates", path)
	}
	return &bundle, nil
}

// SaveBundle writes templates as a bundle, stamping LastUpdated.
func SaveBundle(path, version string, templates []models.ReportTemplate) error {
	bundle := TemplateBundle{
		Version:     version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Templates:   make([]models.ReportTemplateRequest, 0, len(templates)),
	}
	for _, t := range templates {
		req := t.ToRequest()
		for _, f := range t.InputFields {
			req.InputFields = append(req.InputFields, f.ToRequest())
		}
		bundle.Templates = append(bundle.Templates, req)
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(bundle, "", "  ")
	} else {
		data, err = yaml.Marshal(bundle)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
