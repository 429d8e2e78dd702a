package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show hmsctl configuration attributes and their sources",
	Long: `Show hmsctl configuration attributes and their sources.

Every attribute is listed with its effective value and where it came from:
default, file (hmsctl.yml), .env, environment or flag. SECRET_KEY and the
password in DATABASE_URL are redacted.

Config file location: ./hmsctl.yml (or HMS_CONFIG_PATH)

Example:
  hmsctl configuration show
  hmsctl configuration show --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return showConfiguration(cmd, output)
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(cmd *cobra.Command, output string) error {
	out := cmd.OutOrStdout()
	switch output {
	case "json":
		jsonOutput, err := settings.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, jsonOutput)
	case "text":
		fmt.Fprint(out, settings.FormatText())
	default:
		return fmt.Errorf("unknown output format %q (expected text or json)", output)
	}
	return nil
}
