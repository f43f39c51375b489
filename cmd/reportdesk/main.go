// Command reportdesk is the terminal client for the report generation platform.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"reportdesk/internal/common/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := newRootCmd(a)
	root.SetErr(os.Stderr)
	if err := execute(ctx, a, root); err != nil {
		stop()
		os.Exit(1)
	}
}

// execute runs root, releases a and prints the error unless a notification
// already showed the same message.
func execute(ctx context.Context, a *app, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	a.close()
	if err == nil {
		return nil
	}
	msg := errors.UserMessage(err)
	if a.shown != nil && slices.Contains(a.shown.Errors(), msg) {
		return err
	}
	fmt.Fprintln(root.ErrOrStderr(), "Error:", msg)
	return err
}

// newRootCmd builds the command tree around a. The caller closes a once the
// command has run.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "reportdesk",
		Short: "Generate, browse and export AI reports from the terminal",
		Long: `reportdesk talks to the report platform API.

Users pick a tool, walk the report wizard and export the results.
Admins manage report templates and their input fields.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			a.in = cmd.InOrStdin()
			if err := validOutput(a.opts.output); err != nil {
				return err
			}
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "config file (default: configs/config.yaml)")
	flags.StringVar(&a.opts.apiBase, "api-base", "", "API base URL, overrides api.base_url")
	flags.StringVar(&a.opts.tokenStore, "token-store", "", "token store: file, redis or memory")
	flags.StringVar(&a.opts.tokenFile, "token-file", "", "token file for the file store")
	flags.StringVarP(&a.opts.output, "output", "o", outputTable, "output format: table, json or yaml")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level, overrides logging.level")
	flags.BoolVarP(&a.opts.yes, "yes", "y", false, "answer yes to confirmation prompts")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newDashboardCmd(a),
		newToolsCmd(a),
		newReportsCmd(a),
		newNewReportCmd(a),
		newBillingCmd(a),
		newAdminCmd(a),
	)
	return root
}

func (a *app) printer() printer {
	return printer{out: a.out, format: a.opts.output}
}
