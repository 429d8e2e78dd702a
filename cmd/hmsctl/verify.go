package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/hmsctl/pkg/config"
	"github.com/doodlesbykumbi/hmsctl/pkg/db"
	"github.com/doodlesbykumbi/hmsctl/pkg/probe"
	"github.com/doodlesbykumbi/hmsctl/pkg/store"
	gormstore "github.com/doodlesbykumbi/hmsctl/pkg/store/gorm"
	"github.com/doodlesbykumbi/hmsctl/pkg/verify"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the end-to-end checks of a deployment",
	Long: `Run the end-to-end checks of a hospital-management deployment.

The checks run in order: database connection, required tables, doctors
schema, backend API, API endpoints, sample data and doctor validation. A
failing check never stops the run.

The command exits 0 only when every check passed. When at least the
pass threshold (default 70%) of the checks passed the verdict is a
warning, otherwise an error; both exit 1.

Example:
  hmsctl verify
  hmsctl verify --base-url http://api.internal:8000 --output json
  hmsctl verify --only database_connection,database_tables`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		only, _ := cmd.Flags().GetString("only")
		return runVerify(cmd, output, splitList(only))
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().String("base-url", "", "Backend base URL (default $HMS_BASE_URL or "+config.DefaultBaseURL+")")
	verifyCmd.Flags().String("database-url", "", "Database connection string (default $DATABASE_URL)")
	verifyCmd.Flags().Float64("threshold", config.DefaultPassThreshold, "Share of checks that must pass for a warning verdict")
	verifyCmd.Flags().Duration("http-timeout", config.DefaultHTTPTimeout, "Timeout of each HTTP request")
	verifyCmd.Flags().Duration("db-timeout", config.DefaultDBTimeout, "Timeout of the database work of each check")
	verifyCmd.Flags().StringP("output", "o", verify.FormatText, "Output format ("+strings.Join(verify.Formats, ", ")+")")
	verifyCmd.Flags().String("only", "", "Comma-separated checks to run ("+strings.Join(verify.Names(verify.DefaultChecks()), ", ")+")")
}

func runVerify(cmd *cobra.Command, output string, only []string) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	checks, err := verify.Select(verify.DefaultChecks(), only)
	if err != nil {
		return err
	}
	switch output {
	case verify.FormatText, verify.FormatJSON, verify.FormatMarkdown, verify.FormatHTML:
	default:
		return fmt.Errorf("unknown output format %q (expected one of %s)", output, strings.Join(verify.Formats, ", "))
	}

	st := openStore()
	defer func() { _ = st.Close() }()

	env := &verify.Env{
		Store:          st,
		Prober:         probe.New(settings.BaseURL, settings.HTTPTimeout),
		RequiredTables: settings.RequiredTables,
		DBTimeout:      settings.DBTimeout,
		Logger:         logger,
	}
	runner := verify.NewRunner(env, checks, settings.PassThreshold)

	out := cmd.OutOrStdout()
	var summary verify.Summary
	if output == verify.FormatText {
		printer := verify.NewTextPrinter(out)
		printer.Header()
		runner.Progress = printer.Result
		summary = runner.Run(cmd.Context())
		printer.Summary(summary)
	} else {
		summary = runner.Run(cmd.Context())
		if err := verify.Write(out, summary, output); err != nil {
			return err
		}
	}

	logger.Info("verification finished",
		zap.Int("passed", summary.Passed),
		zap.Int("total", summary.Total),
		zap.Stringer("verdict", summary.Verdict),
	)
	if code := summary.ExitCode(); code != 0 {
		return exitError{code: code}
	}
	return nil
}

// openStore connects to the configured database. When that is impossible
// the returned store fails every session with the reason, so the database
// checks report it instead of aborting the run.
func openStore() store.Store {
	if settings.DatabaseURL == "" {
		return store.Unavailable(db.ErrNoDatabaseURL)
	}

	database, err := db.Connect(db.Config{URL: settings.DatabaseURL, LogLevel: settings.LogLevel})
	if err != nil {
		logger.Warn("database unavailable", zap.String("database_url", config.RedactURL(settings.DatabaseURL)), zap.Error(err))
		return store.Unavailable(err)
	}
	return gormstore.New(database)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
