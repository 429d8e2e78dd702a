package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/hmsctl/pkg/probe"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the backend to be ready",
	Long: `Wait for the backend to be ready by polling its health endpoint.

This command will repeatedly check the endpoint until it responds
successfully or the maximum number of retries is reached.

Example:
  hmsctl wait
  hmsctl wait --base-url http://localhost:9000 --retries 60`,
	RunE: func(cmd *cobra.Command, args []string) error {
		retries, _ := cmd.Flags().GetInt("retries")
		interval, _ := cmd.Flags().GetDuration("interval")
		path, _ := cmd.Flags().GetString("path")

		if err := settings.Validate(); err != nil {
			return err
		}
		return waitForBackend(cmd, path, retries, interval)
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("base-url", "", "Backend base URL (default $HMS_BASE_URL or http://localhost:8000)")
	waitCmd.Flags().String("path", "/health", "Path to poll")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
	waitCmd.Flags().Duration("interval", time.Second, "Delay between retries")
}

func waitForBackend(cmd *cobra.Command, path string, retries int, interval time.Duration) error {
	out := cmd.OutOrStdout()
	p := probe.New(settings.BaseURL, settings.HTTPTimeout)

	fmt.Fprintf(out, "Waiting for backend at %s to be ready (polling %s)...\n", p.BaseURL(), path)

	err := p.WaitReady(cmd.Context(), path, retries, interval, func(int, int, error) {
		fmt.Fprint(out, ".")
	})
	fmt.Fprintln(out)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Backend did not become ready: %v\n", err)
		return exitError{code: 1}
	}

	fmt.Fprintln(out, "Backend is ready!")
	return nil
}
