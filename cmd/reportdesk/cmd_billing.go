package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"reportdesk/internal/features/billing"
)

func newBillingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Credits, plans and purchases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enterBilling(cmd); err != nil {
				return err
			}
			snap, err := a.billing().Load(cmd.Context())
			if err != nil {
				return err
			}
			return a.printSnapshot(snap)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "subscribe <plan-id>",
			Short: "Switch to a subscription plan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.enterBilling(cmd); err != nil {
					return err
				}
				sub, _, err := a.billing().Subscribe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printer().print(sub,
					[]string{"PLAN", "STATUS", "START", "END"},
					[][]string{{sub.PlanName, sub.Status, sub.StartDate, sub.EndDate}},
				)
			},
		},
		&cobra.Command{
			Use:   "purchase <package-id>",
			Short: "Buy a credit package",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.enterBilling(cmd); err != nil {
					return err
				}
				outcome, _, err := a.billing().Purchase(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				p := a.printer()
				if p.format != outputTable {
					return p.print(outcome, nil, nil)
				}
				switch {
				case outcome.Completed:
					p.line("Purchase completed")
				case outcome.RedirectURL != "":
					p.line("Complete the payment at %s", outcome.RedirectURL)
				default:
					p.line("Purchase %s", outcome.Status)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "transactions",
			Short: "Show the full credit history",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.enterBilling(cmd); err != nil {
					return err
				}
				txs, err := a.billing().Transactions(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(txs))
				for _, tx := range txs {
					rows = append(rows, []string{tx.CreatedAt, tx.Type, fmt.Sprintf("%+d", tx.Credits), fmt.Sprint(tx.BalanceAfter), tx.Description})
				}
				return a.printer().print(txs, []string{"DATE", "TYPE", "CREDITS", "BALANCE", "DESCRIPTION"}, rows)
			},
		},
	)
	return cmd
}

func (a *app) enterBilling(cmd *cobra.Command) error {
	return a.enter(cmd.Context(), path.Join(a.cfg.Routes.UserRoot, "billing"))
}

func (a *app) printSnapshot(snap *billing.Snapshot) error {
	p := a.printer()
	if p.format != outputTable {
		return p.print(snap, nil, nil)
	}

	if snap.Balance != nil {
		p.line("Balance: %d credits", snap.Balance.Balance)
	}
	if snap.Subscription != nil {
		p.line("Subscription: %s (%s)", snap.Subscription.PlanName, snap.Subscription.Status)
	}
	for _, r := range snap.Failed() {
		p.line("Could not load %s: %v", r, snap.Err(r))
	}

	user := a.session.User()
	plans := make([][]string, 0, len(snap.Plans))
	for _, plan := range snap.Plans {
		current := ""
		if snap.CurrentPlan(plan, user) {
			current = "*"
		}
		plans = append(plans, []string{current, plan.ID, plan.Name, fmt.Sprintf("%.2f", plan.MonthlyPrice),
			fmt.Sprint(plan.CreditsPerMonth), strings.Join(plan.Features, ", ")})
	}
	if err := p.print(nil, []string{"", "PLAN", "NAME", "MONTHLY", "CREDITS", "FEATURES"}, plans); err != nil {
		return err
	}

	packages := make([][]string, 0, len(snap.Packages))
	for _, pkg := range snap.Packages {
		packages = append(packages, []string{pkg.ID, pkg.Name, fmt.Sprint(pkg.Credits), fmt.Sprintf("%.2f", pkg.Price)})
	}
	return p.print(nil, []string{"PACKAGE", "NAME", "CREDITS", "PRICE"}, packages)
}
