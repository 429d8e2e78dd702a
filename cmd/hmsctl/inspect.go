package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/hmsctl/pkg/config"
	"github.com/doodlesbykumbi/hmsctl/pkg/inspect"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Aliases: []string{"debug-auth"},
	Short:   "Show how the authentication settings resolve",
	Long: `Show how the authentication settings of the backend resolve on this machine.

Reports whether the .env file exists and which keys it defines, whether
SECRET_KEY, DATABASE_URL and ACCESS_TOKEN_EXPIRE_MINUTES are set, where each
value comes from, and a recommendation. Secret values are never printed in
full. When a SECRET_KEY is set, a token is signed and verified with it.

Example:
  hmsctl inspect
  hmsctl inspect --env-file backend/.env --output json
  hmsctl inspect --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		watch, _ := cmd.Flags().GetBool("watch")

		if err := writeInspection(cmd.OutOrStdout(), settings, output); err != nil {
			return err
		}
		if !watch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w := &envWatcher{
			path:   settings.EnvFile().Path,
			output: output,
			out:    cmd.OutOrStdout(),
			errOut: cmd.ErrOrStderr(),
			reload: func() (*config.Settings, error) { return reloadSettings(cmd) },
		}
		return w.run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	inspectCmd.Flags().BoolP("watch", "w", false, "Re-run the inspection whenever the .env file changes")
}

func writeInspection(w io.Writer, s *config.Settings, output string) error {
	return inspect.Write(w, inspect.Inspect(s), output)
}

// envWatcher re-runs the inspection on every change of the .env file.
type envWatcher struct {
	path   string
	output string
	out    io.Writer
	errOut io.Writer
	reload func() (*config.Settings, error)
}

// run watches until ctx is done. The directory is watched so that files
// replaced by editors, or created after startup, are picked up.
func (w *envWatcher) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fmt.Fprintf(w.errOut, "Watching %s for changes (Ctrl-C to stop)\n", w.path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("env file changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))

			reloaded, err := w.reload()
			if err != nil {
				fmt.Fprintf(w.errOut, "Error reloading configuration: %v\n", err)
				continue
			}
			fmt.Fprintf(w.out, "\n[%s] %s changed\n", time.Now().Format(time.RFC3339), w.path)
			if err := writeInspection(w.out, reloaded, w.output); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w.errOut, "Watcher error: %v\n", err)
		case <-ctx.Done():
			fmt.Fprintln(w.errOut, "\nShutting down...")
			return nil
		}
	}
}

func (w *envWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func reloadSettings(cmd *cobra.Command) (*config.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config-path")
	cfg, err := config.Load(config.Options{ConfigPath: configPath, EnvFile: settings.EnvFile().Path})
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return cfg, nil
}
