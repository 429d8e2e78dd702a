package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/hmsctl/pkg/config"
	"github.com/doodlesbykumbi/hmsctl/pkg/logging"
)

var (
	// settings and logger are initialized before every command runs
	settings *config.Settings
	logger   = zap.NewNop()
)

// exitError carries a non-zero exit status without an error message.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var rootCmd = &cobra.Command{
	Use:   "hmsctl",
	Short: "Operational tooling for the hospital-management backend",
	Long: `hmsctl inspects the configuration of the hospital-management backend and
verifies that a deployment (database, schema, API and data) is healthy.

Configuration is read from hmsctl.yml, the .env file and the environment.
Command flags take precedence over all of them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config-path")
		envFile, _ := cmd.Flags().GetString("env-file")

		cfg, err := config.Load(config.Options{ConfigPath: configPath, EnvFile: envFile})
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
			return err
		}

		l, err := logging.New(cfg.LogLevel)
		if err != nil {
			if l, err = logging.New(config.DefaultLogLevel); err != nil {
				return err
			}
			l.Warn("ignoring log level", zap.String("log_level", cfg.LogLevel))
		}
		settings = cfg
		logger = l
		for _, problem := range cfg.Problems() {
			logger.Warn("ignoring configuration value", zap.Error(problem))
		}
		logger.Debug("configuration loaded",
			zap.String("config_file", cfg.ConfigFilePath()),
			zap.String("env_file", cfg.EnvFile().Path),
			zap.Bool("env_file_exists", cfg.EnvFile().Exists),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config-path", "", "Directory containing hmsctl.yml (default $HMS_CONFIG_PATH or .)")
	rootCmd.PersistentFlags().String("env-file", "", "Path to the .env file (default $HMS_ENV_FILE or .env)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// execute runs the command line and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var exit exitError
	if errors.As(err, &exit) {
		_ = logger.Sync()
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
