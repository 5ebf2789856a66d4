package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newWatchCmd creates the "watch" subcommand for rebuilding on config changes.
func newWatchCmd(opts *rootOptions) *cobra.Command {
	var wopts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the template when the config changes",
		Long: `Watch monitors the site configuration and rebuilds the template.

The watch command:
- Monitors the directory holding the config file
- Rebuilds when the config file is written, created or renamed
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    wetwire-site watch -o template.json
    wetwire-site watch --config site.yaml --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd.ErrOrStderr())
			defer func() { _ = log.Sync() }()
			return runWatch(cmd, opts, wopts, log)
		},
	}

	cmd.Flags().DurationVar(&wopts.debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&wopts.build.format, "format", "f", "json", "Output format for build: json or yaml")
	cmd.Flags().StringVarP(&wopts.build.file, "output", "o", "", "Output file for build (default: stdout)")

	return cmd
}

type watchOptions struct {
	debounce time.Duration
	build    buildOptions
}

// runWatch rebuilds on config changes until interrupted.
func runWatch(cmd *cobra.Command, opts *rootOptions, wopts watchOptions, log *zap.Logger) error {
	configPath, err := filepath.Abs(opts.configPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Editors replace files on save; watch the directory, not the file.
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", configPath, err)
	}
	log.Info("watching", zap.String("config", configPath))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	rebuild(cmd, opts, wopts, log)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(event, configPath) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(wopts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			log.Info("change detected, rebuilding")
			rebuild(cmd, opts, wopts, log)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))

		case <-sigChan:
			log.Info("stopping watch")
			return nil

		case <-cmd.Context().Done():
			return nil
		}
	}
}

func isConfigEvent(event fsnotify.Event, configPath string) bool {
	if filepath.Clean(event.Name) != configPath {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// rebuild synthesizes the template once. Failures are logged and the watch
// carries on.
func rebuild(cmd *cobra.Command, opts *rootOptions, wopts watchOptions, log *zap.Logger) {
	if err := buildOnce(cmd.Context(), opts, wopts.build, log, cmd.OutOrStdout()); err != nil {
		log.Error("build failed", zap.Error(err))
	}
}
