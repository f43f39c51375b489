package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"reportdesk/internal/features/reports"
	"reportdesk/internal/models"
)

func newToolsCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the report tools, grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), a.cfg.Routes.UserRoot); err != nil {
				return err
			}
			tools, err := a.reports().Tools(cmd.Context())
			if err != nil {
				return err
			}
			if category != "" {
				var kept []models.Tool
				for _, t := range tools {
					if strings.EqualFold(t.Category, category) {
						kept = append(kept, t)
					}
				}
				tools = kept
			}

			order, groups := reports.ToolsByCategory(tools)
			var rows [][]string
			for _, cat := range order {
				for _, t := range groups[cat] {
					rows = append(rows, []string{cat, t.ID, t.Title, t.Industry})
				}
			}
			return a.printer().print(tools, []string{"CATEGORY", "ID", "TITLE", "INDUSTRY"}, rows)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list tools of this category")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "categories",
			Short: "List the tool categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.enter(cmd.Context(), a.cfg.Routes.UserRoot); err != nil {
					return err
				}
				categories, err := a.reports().Categories(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(categories))
				for _, c := range categories {
					rows = append(rows, []string{c})
				}
				return a.printer().print(categories, []string{"CATEGORY"}, rows)
			},
		},
		&cobra.Command{
			Use:   "fields <tool-id>",
			Short: "Show the input fields a tool asks for",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.enter(cmd.Context(), a.cfg.Routes.UserRoot); err != nil {
					return err
				}
				fields, err := a.reports().ToolFields(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printer().print(fields, fieldHeaders, fieldRows(fields))
			},
		},
	)
	return cmd
}

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Browse and export your reports",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), a.cfg.Routes.MyReports); err != nil {
				return err
			}
			list, err := a.reports().List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, r := range list {
				rows = append(rows, []string{r.ID, r.Title, string(r.Status), r.CreatedAt})
			}
			return a.printer().print(list, []string{"ID", "TITLE", "STATUS", "CREATED"}, rows)
		},
	}

	var style string
	var width int
	show := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Render a report in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), path.Join(a.cfg.Routes.MyReports, args[0])); err != nil {
				return err
			}
			report, err := a.reports().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.opts.output != outputTable {
				return a.printer().print(report, nil, nil)
			}
			out, err := reports.Render(report, style, width)
			if err != nil {
				return fmt.Errorf("render report: %w", err)
			}
			_, err = fmt.Fprint(a.out, out)
			return err
		},
	}
	show.Flags().StringVar(&style, "style", "", "glamour style: dark, light or notty (default: detect)")
	show.Flags().IntVar(&width, "width", 100, "word wrap width")

	var format, dir string
	export := &cobra.Command{
		Use:   "export <report-id>",
		Short: "Download a report as PDF or Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), path.Join(a.cfg.Routes.MyReports, args[0])); err != nil {
				return err
			}
			saved, err := a.reports().Export(cmd.Context(), args[0], models.ExportFormat(format), dir)
			if err != nil {
				return err
			}
			return a.printer().print(map[string]string{"path": saved}, []string{"SAVED"}, [][]string{{saved}})
		},
	}
	export.Flags().StringVarP(&format, "format", "f", string(models.ExportPDF), "pdf or markdown")
	export.Flags().StringVarP(&dir, "dir", "d", ".", "directory to save into")

	cmd.AddCommand(list, show, export)
	return cmd
}

var fieldHeaders = []string{"ID", "LABEL", "TYPE", "REQUIRED", "ORDER", "OPTIONS"}

func fieldRows(fields []models.InputField) [][]string {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		required := "no"
		if f.Required {
			required = "yes"
		}
		rows = append(rows, []string{f.ID, f.Label, string(f.Type), required, fmt.Sprint(f.SortOrder), strings.Join(f.Options, ", ")})
	}
	return rows
}
