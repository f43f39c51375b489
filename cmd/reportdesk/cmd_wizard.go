package main

import (
	"fmt"
	"path"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/features/wizard"
	"reportdesk/internal/models"
	"reportdesk/internal/tui"
)

type reportFlags struct {
	interactive bool
	industry    string
	reportType  string
	audience    string
	purpose     string
	tone        string
	depth       string
	notes       string
	answers     []string
	files       []string
}

func newNewReportCmd(a *app) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "new-report <tool-id>",
		Short: "Create and generate a report with the wizard",
		Long: `Create and generate a report for a tool.

With --interactive the wizard runs in the terminal. Files given with --file
are attached first and more can be attached on the data step.

Otherwise every choice comes from flags; --answer takes field-id=value or
label=value and may be repeated, --file uploads a data file and may be
repeated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolID := args[0]
			if err := a.enter(cmd.Context(), path.Join(a.cfg.Routes.UserRoot, "tools", toolID, "new")); err != nil {
				return err
			}
			wiz, err := a.wizard()
			if err != nil {
				return err
			}
			if err := wiz.Start(cmd.Context(), toolID); err != nil {
				return err
			}

			var outcome *wizard.Outcome
			if f.interactive {
				// Files named on the command line are attached before the wizard opens.
				if err := uploadFiles(cmd, wiz, f.files); err != nil {
					return err
				}
				outcome, err = a.runInteractive(cmd, wiz)
			} else {
				outcome, err = a.runFromFlags(cmd, wiz, f)
			}
			if err != nil || outcome == nil {
				return err
			}

			p := a.printer()
			if p.format != outputTable {
				return p.print(map[string]string{"reportId": outcome.ReportID, "next": outcome.Navigate}, nil, nil)
			}
			p.line("Report %s is being generated", outcome.ReportID)
			p.line("Follow it with: reportdesk reports show %s", outcome.ReportID)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.BoolVarP(&f.interactive, "interactive", "i", false, "run the wizard in the terminal")
	fs.StringVar(&f.industry, "industry", "", "industry (default: the tool's industry)")
	fs.StringVar(&f.reportType, "report-type", "", "report type")
	fs.StringVar(&f.audience, "audience", "", "target audience")
	fs.StringVar(&f.purpose, "purpose", "", "report purpose")
	fs.StringVar(&f.tone, "tone", "", "writing tone (default from config)")
	fs.StringVar(&f.depth, "depth", "", "level of detail (default from config)")
	fs.StringVar(&f.notes, "notes", "", "additional notes")
	fs.StringArrayVar(&f.answers, "answer", nil, "template answer as field=value, repeatable")
	fs.StringArrayVar(&f.files, "file", nil, "data file to upload, repeatable")
	return cmd
}

func (a *app) runInteractive(cmd *cobra.Command, wiz *wizard.Wizard) (*wizard.Outcome, error) {
	model := tui.NewWizardModel(cmd.Context(), wiz)
	final, err := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	).Run()
	if err != nil {
		return nil, err
	}
	done := final.(tui.WizardModel)
	if done.Cancelled() {
		a.printer().line("Cancelled")
		return nil, nil
	}
	return done.Outcome(), nil
}

// runFromFlags applies the flags in wizard order, walking each step so that a
// missing choice fails with the step it belongs to.
func (a *app) runFromFlags(cmd *cobra.Command, wiz *wizard.Wizard, f reportFlags) (*wizard.Outcome, error) {
	if f.industry != "" && f.industry != wiz.Draft().Industry {
		if err := wiz.SetIndustry(f.industry); err != nil {
			return nil, err
		}
	}
	if _, err := wiz.Next(); err != nil {
		return nil, err
	}

	if f.reportType != "" {
		if err := wiz.SetReportType(f.reportType); err != nil {
			return nil, err
		}
	}
	if _, err := wiz.Next(); err != nil {
		return nil, err
	}

	if f.audience != "" {
		if err := wiz.SetAudience(f.audience); err != nil {
			return nil, err
		}
	}
	if f.purpose != "" {
		if err := wiz.SetPurpose(f.purpose); err != nil {
			return nil, err
		}
	}
	if _, err := wiz.Next(); err != nil {
		return nil, err
	}

	if f.tone != "" {
		if err := wiz.SetTone(f.tone); err != nil {
			return nil, err
		}
	}
	if f.depth != "" {
		if err := wiz.SetDepth(f.depth); err != nil {
			return nil, err
		}
	}
	if _, err := wiz.Next(); err != nil {
		return nil, err
	}

	for _, raw := range f.answers {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("--answer %q: expected field=value", raw)
		}
		if err := wiz.SetAnswer(resolveField(wiz.Fields(), key), value); err != nil {
			return nil, err
		}
	}
	wiz.SetNotes(f.notes)
	if err := uploadFiles(cmd, wiz, f.files); err != nil {
		return nil, err
	}
	if _, err := wiz.Next(); err != nil {
		return nil, err
	}

	return wiz.Generate(cmd.Context())
}

// resolveField maps a field label to its id; ids pass through.
func resolveField(fields []models.InputField, key string) string {
	for _, f := range fields {
		if f.ID == key {
			return key
		}
	}
	for _, f := range fields {
		if strings.EqualFold(f.Label, key) {
			return f.ID
		}
	}
	return key
}

func uploadFiles(cmd *cobra.Command, wiz *wizard.Wizard, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	parts, closeAll, err := apihttp.OpenFiles("file", paths)
	if err != nil {
		return err
	}
	defer closeAll()
	_, err = wiz.Upload(cmd.Context(), parts)
	return err
}
