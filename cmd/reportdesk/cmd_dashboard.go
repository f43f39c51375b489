package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"reportdesk/internal/features/reports"
	"reportdesk/internal/models"
)

var dashboardStatuses = []models.ReportStatus{
	models.ReportGenerated,
	models.ReportProcessing,
	models.ReportPending,
	models.ReportDraft,
	models.ReportFailed,
}

func newDashboardCmd(a *app) *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show credits and a summary of your reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), a.cfg.Routes.UserRoot); err != nil {
				return err
			}

			var (
				balance *models.CreditBalance
				list    []models.Report
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				balance, err = a.billing().Balance(ctx)
				return err
			})
			g.Go(func() error {
				var err error
				list, err = a.reports().List(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			summary := reports.Summarize(list, recent)
			p := a.printer()
			if p.format != outputTable {
				return p.print(struct {
					Credits int             `json:"credits" yaml:"credits"`
					Reports reports.Summary `json:"reports" yaml:"reports"`
				}{balance.Balance, summary}, nil, nil)
			}

			p.line("Credits: %d", balance.Balance)
			var counts []string
			for _, s := range dashboardStatuses {
				if n := summary.ByStatus[s]; n > 0 {
					counts = append(counts, fmt.Sprintf("%s %d", strings.ToLower(string(s)), n))
				}
			}
			if len(counts) > 0 {
				p.line("Reports: %d (%s)", summary.Total, strings.Join(counts, ", "))
			} else {
				p.line("Reports: 0")
			}

			rows := make([][]string, 0, len(summary.Recent))
			for _, r := range summary.Recent {
				rows = append(rows, []string{r.ID, r.Title, string(r.Status), r.CreatedAt})
			}
			return p.print(summary.Recent, []string{"ID", "TITLE", "STATUS", "CREATED"}, rows)
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 5, "number of recent reports to list")
	return cmd
}
