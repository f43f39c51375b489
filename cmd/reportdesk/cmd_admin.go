package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"reportdesk/internal/features/templates"
	"reportdesk/internal/models"
	"reportdesk/pkg/registry"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration: report templates and their input fields",
	}
	cmd.AddCommand(newTemplatesCmd(a))
	return cmd
}

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template"},
		Short:   "Manage report templates",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every template",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ed, err := a.adminEditor(cmd, "")
				if err != nil {
					return err
				}
				list, err := ed.List(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(list))
				for _, t := range list {
					rows = append(rows, []string{t.ID, t.ToolID, t.Title, t.Category, fmt.Sprint(len(t.InputFields))})
				}
				return a.printer().print(list, []string{"ID", "TOOL", "TITLE", "CATEGORY", "FIELDS"}, rows)
			},
		},
		&cobra.Command{
			Use:   "show <template-id>",
			Short: "Show a template with its input fields",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ed, err := a.adminEditor(cmd, args[0])
				if err != nil {
					return err
				}
				tmpl, err := ed.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printTemplate(tmpl)
			},
		},
		newTemplateCreateCmd(a),
		newTemplateUpdateCmd(a),
		&cobra.Command{
			Use:   "delete <template-id>",
			Short: "Delete a template after confirmation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ed, err := a.adminEditor(cmd, args[0])
				if err != nil {
					return err
				}
				if _, err := ed.Load(cmd.Context(), args[0]); err != nil {
					return err
				}
				if _, err := ed.Delete(cmd.Context()); err != nil {
					return err
				}
				a.printer().line("Deleted %s", args[0])
				return nil
			},
		},
		newTemplateImportCmd(a),
		newTemplateExportCmd(a),
		newFieldsCmd(a),
	)
	return cmd
}

// adminEditor guards the admin template screens and builds an editor.
func (a *app) adminEditor(cmd *cobra.Command, templateID string) (*templates.Editor, error) {
	route := a.cfg.Routes.Templates
	if templateID != "" {
		route = path.Join(route, templateID)
	}
	if err := a.enter(cmd.Context(), route); err != nil {
		return nil, err
	}
	return a.editor()
}

func (a *app) printTemplate(tmpl *models.ReportTemplate) error {
	p := a.printer()
	if p.format != outputTable {
		return p.print(tmpl, nil, nil)
	}
	p.line("%s  %s (tool %s)", tmpl.ID, tmpl.Title, tmpl.ToolID)
	if tmpl.Description != "" {
		p.line("%s", tmpl.Description)
	}
	return p.print(nil, fieldHeaders, fieldRows(tmpl.InputFields))
}

// ==========================
// Template create / update
// ==========================

// templateFlags are the editable template attributes. Only flags that were
// set are applied, on top of --file or the stored template.
type templateFlags struct {
	file               string
	toolID             string
	title              string
	description        string
	category           string
	industry           string
	systemPrompt       string
	calculationPrompt  string
	outputFormatPrompt string
	temperature        float64
	maxTokens          int
	active             bool
}

func (f *templateFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.file, "file", "f", "", "read the template from a YAML or JSON file")
	fs.StringVar(&f.toolID, "tool", "", "tool id")
	fs.StringVar(&f.title, "title", "", "title")
	fs.StringVar(&f.description, "description", "", "description")
	fs.StringVar(&f.category, "category", "", "category")
	fs.StringVar(&f.industry, "industry", "", "industry")
	fs.StringVar(&f.systemPrompt, "system-prompt", "", "system prompt")
	fs.StringVar(&f.calculationPrompt, "calculation-prompt", "", "calculation prompt")
	fs.StringVar(&f.outputFormatPrompt, "output-format-prompt", "", "output format prompt")
	fs.Float64Var(&f.temperature, "temperature", 0, "sampling temperature")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "maximum output tokens")
	fs.BoolVar(&f.active, "active", true, "whether users can pick the template")
}

func (f *templateFlags) apply(fs *pflag.FlagSet, req *models.ReportTemplateRequest) error {
	if f.file != "" {
		if err := readInto(f.file, req); err != nil {
			return err
		}
	}
	strs := []struct {
		flag string
		dst  *string
		val  string
	}{
		{"tool", &req.ToolID, f.toolID},
		{"title", &req.Title, f.title},
		{"description", &req.Description, f.description},
		{"category", &req.Category, f.category},
		{"industry", &req.Industry, f.industry},
		{"system-prompt", &req.SystemPrompt, f.systemPrompt},
		{"calculation-prompt", &req.CalculationPrompt, f.calculationPrompt},
		{"output-format-prompt", &req.OutputFormatPrompt, f.outputFormatPrompt},
	}
	for _, s := range strs {
		if fs.Changed(s.flag) {
			*s.dst = s.val
		}
	}
	if fs.Changed("temperature") {
		t := f.temperature
		req.Temperature = &t
	}
	if fs.Changed("max-tokens") {
		m := f.maxTokens
		req.MaxTokens = &m
	}
	if fs.Changed("active") {
		act := f.active
		req.Active = &act
	}
	return nil
}

func newTemplateCreateCmd(a *app) *cobra.Command {
	var flags templateFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a template from flags or a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.adminEditor(cmd, "new")
			if err != nil {
				return err
			}
			var req models.ReportTemplateRequest
			if err := flags.apply(cmd.Flags(), &req); err != nil {
				return err
			}
			created, outcome, err := ed.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printer().line("Created %s, edit it at %s", created.ID, outcome.Navigate)
			return a.printTemplate(created)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newTemplateUpdateCmd(a *app) *cobra.Command {
	var flags templateFlags
	cmd := &cobra.Command{
		Use:   "update <template-id>",
		Short: "Update template metadata and AI configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.adminEditor(cmd, args[0])
			if err != nil {
				return err
			}
			current, err := ed.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := current.ToRequest()
			if err := flags.apply(cmd.Flags(), &req); err != nil {
				return err
			}
			// Fields have their own commands.
			req.InputFields = nil
			updated, err := ed.Update(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printTemplate(updated)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// readInto decodes a YAML or JSON file by extension.
func readInto(file string, v interface{}) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(file), ".json") {
		err = json.Unmarshal(data, v)
	} else {
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return nil
}

// ==========================
// Bundles
// ==========================

func newTemplateImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <bundle-file>",
		Short: "Create every template of a YAML or JSON bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.adminEditor(cmd, "")
			if err != nil {
				return err
			}
			bundle, err := registry.LoadBundle(args[0])
			if err != nil {
				return err
			}

			var created []models.ReportTemplate
			for _, req := range bundle.Templates {
				tmpl, _, err := ed.Create(cmd.Context(), req)
				if err != nil {
					return fmt.Errorf("import %q: %w (%d of %d imported)", req.Title, err, len(created), len(bundle.Templates))
				}
				created = append(created, *tmpl)
			}

			rows := make([][]string, 0, len(created))
			for _, t := range created {
				rows = append(rows, []string{t.ID, t.ToolID, t.Title, fmt.Sprint(len(t.InputFields))})
			}
			return a.printer().print(created, []string{"ID", "TOOL", "TITLE", "FIELDS"}, rows)
		},
	}
}

func newTemplateExportCmd(a *app) *cobra.Command {
	var version string
	cmd := &cobra.Command{
		Use:   "export <bundle-file>",
		Short: "Write every template with its fields to a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.adminEditor(cmd, "")
			if err != nil {
				return err
			}
			list, err := ed.List(cmd.Context())
			if err != nil {
				return err
			}
			full := make([]models.ReportTemplate, 0, len(list))
			for _, t := range list {
				loaded, err := ed.Load(cmd.Context(), t.ID)
				if err != nil {
					return err
				}
				full = append(full, *loaded)
			}
			if err := registry.SaveBundle(args[0], version, full); err != nil {
				return err
			}
			a.printer().line("Exported %d template(s) to %s", len(full), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "1", "bundle version")
	return cmd
}

// ==========================
// Input fields
// ==========================

type fieldFlags struct {
	label       string
	description string
	fieldType   string
	required    bool
	minValue    float64
	maxValue    float64
	options     []string
	sortOrder   int
}

func (f *fieldFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.label, "label", "", "question label")
	fs.StringVar(&f.description, "description", "", "help text")
	fs.StringVar(&f.fieldType, "type", "", "TEXT, NUMBER, TEXTAREA, SELECT, DATE or BOOLEAN")
	fs.BoolVar(&f.required, "required", false, "answer is required")
	fs.Float64Var(&f.minValue, "min", 0, "minimum for NUMBER fields")
	fs.Float64Var(&f.maxValue, "max", 0, "maximum for NUMBER fields")
	fs.StringSliceVar(&f.options, "option", nil, "choice of a SELECT field, repeatable")
	fs.IntVar(&f.sortOrder, "order", 0, "display order")
}

func (f *fieldFlags) apply(fs *pflag.FlagSet, req *models.InputFieldRequest) {
	if fs.Changed("label") {
		req.Label = f.label
	}
	if fs.Changed("description") {
		req.Description = f.description
	}
	if fs.Changed("type") {
		req.Type = models.InputFieldType(strings.ToUpper(f.fieldType))
	}
	if fs.Changed("required") {
		req.Required = f.required
	}
	if fs.Changed("min") {
		v := f.minValue
		req.MinValue = &v
	}
	if fs.Changed("max") {
		v := f.maxValue
		req.MaxValue = &v
	}
	if fs.Changed("option") {
		req.Options = f.options
	}
	if fs.Changed("order") {
		req.SortOrder = f.sortOrder
	}
}

func newFieldsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Manage the input fields of a template",
	}

	var addFlags fieldFlags
	add := &cobra.Command{
		Use:   "add <template-id>",
		Short: "Add an input field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.loadedEditor(cmd, args[0])
			if err != nil {
				return err
			}
			req := models.InputFieldRequest{Type: models.FieldText, SortOrder: len(ed.Template().InputFields) + 1}
			addFlags.apply(cmd.Flags(), &req)
			field, err := ed.AddField(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printer().print(field, fieldHeaders, fieldRows([]models.InputField{*field}))
		},
	}
	addFlags.register(add.Flags())
	_ = add.MarkFlagRequired("label")

	var updateFlags fieldFlags
	update := &cobra.Command{
		Use:   "update <template-id> <field-id>",
		Short: "Change an input field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.loadedEditor(cmd, args[0])
			if err != nil {
				return err
			}
			current, ok := findField(ed.Template(), args[1])
			if !ok {
				return fmt.Errorf("template %s has no field %s", args[0], args[1])
			}
			req := current.ToRequest()
			updateFlags.apply(cmd.Flags(), &req)
			field, err := ed.UpdateField(cmd.Context(), args[1], req)
			if err != nil {
				return err
			}
			return a.printer().print(field, fieldHeaders, fieldRows([]models.InputField{*field}))
		},
	}
	updateFlags.register(update.Flags())

	remove := &cobra.Command{
		Use:     "delete <template-id> <field-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an input field",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.loadedEditor(cmd, args[0])
			if err != nil {
				return err
			}
			if err := ed.DeleteField(cmd.Context(), args[1]); err != nil {
				return err
			}
			a.printer().line("Deleted field %s", args[1])
			return nil
		},
	}

	cmd.AddCommand(add, update, remove)
	return cmd
}

func (a *app) loadedEditor(cmd *cobra.Command, templateID string) (*templates.Editor, error) {
	ed, err := a.adminEditor(cmd, templateID)
	if err != nil {
		return nil, err
	}
	if _, err := ed.Load(cmd.Context(), templateID); err != nil {
		return nil, err
	}
	return ed, nil
}

func findField(tmpl *models.ReportTemplate, id string) (models.InputField, bool) {
	if tmpl == nil {
		return models.InputField{}, false
	}
	for _, f := range tmpl.InputFields {
		if f.ID == id {
			return f, true
		}
	}
	return models.InputField{}, false
}
