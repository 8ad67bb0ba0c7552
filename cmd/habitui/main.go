package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"habitui/internal/config"
	"habitui/internal/habitica"
	"habitui/internal/importer"
	"habitui/internal/parse"
	"habitui/internal/tui"
)

var (
	flagBaseURL string
	flagTimeout int
	flagQuiet   bool
)

func main() {
	root := &cobra.Command{
		Use:          "habitui",
		Short:        "Manage and import Habitica tasks from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd)
		},
	}
	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Habitica API base URL")
	root.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "per-request timeout in seconds")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a CSV, YAML, or Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0])
		},
	}
	importCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "print only the summary line")
	root.AddCommand(importCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient resolves settings and credentials and builds the API
// client. Flags override the config file; credentials come from the
// environment or, failing that, an interactive prompt.
func newClient(cmd *cobra.Command) (*habitica.Client, error) {
	var settings config.Settings
	if path, err := config.ConfigPath(); err == nil {
		if loaded, err := config.LoadSettings(path); err == nil {
			settings = loaded
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
	}
	if flagBaseURL != "" {
		settings.BaseURL = flagBaseURL
	}
	if flagTimeout > 0 {
		settings.TimeoutSeconds = flagTimeout
	}

	creds, ok := config.EnvCredentials()
	if !ok {
		in := cmd.InOrStdin()
		if f, isFile := in.(*os.File); isFile && !isatty.IsTerminal(f.Fd()) {
			return nil, fmt.Errorf("credentials not set: export %s and %s",
				config.EnvUserID, config.EnvAPIToken)
		}
		var err error
		creds, err = config.PromptCredentials(in, cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
	}

	return habitica.NewClient(settings.BaseURL, creds.UserID, creds.APIToken, settings.Timeout()), nil
}

func runTUI(cmd *cobra.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	m := tui.NewModel(client, importer.DefaultBackoffPolicy())
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func runImport(cmd *cobra.Command, path string) error {
	records, err := parse.File(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to import")
		return nil
	}

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runner := importer.NewRunner(client, importer.DefaultBackoffPolicy())
	report, err := runner.Run(ctx, records)
	if err != nil {
		var authErr *importer.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("authentication failed, check %s and %s: %w",
				config.EnvUserID, config.EnvAPIToken, err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if !flagQuiet {
		for _, row := range report.Rows {
			if row.Err != nil {
				fmt.Fprintf(out, "%-11s %s (%s): %v\n", row.Outcome, row.Record.Name, row.Record.Type, row.Err)
			} else {
				fmt.Fprintf(out, "%-11s %s (%s)\n", row.Outcome, row.Record.Name, row.Record.Type)
			}
		}
	}
	fmt.Fprintf(out, "%d created, %d skipped, %d invalid, %d failed, %d interrupted\n",
		report.Created, report.Skipped, report.Invalid, report.Failed, report.Interrupted)

	if !report.Ok() {
		return fmt.Errorf("import finished with %d failed and %d interrupted records",
			report.Failed, report.Interrupted)
	}
	return nil
}
