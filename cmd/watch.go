package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkamal/slicebom/internal/bom"
	"github.com/mkamal/slicebom/internal/config"
	"github.com/mkamal/slicebom/internal/slicer"
	"github.com/mkamal/slicebom/internal/watcher"
)

var watchVerbose bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir...]",
	Short: "Watch for STEP file changes, re-slice, and rebuild the BOM",
	Long: `Watch monitors the given directories (or the configured watch paths)
for STEP file changes. Each changed file is sliced and its metrics record
updated, then the bill of materials is rebuilt from the stats folder.

Generated folders (Slicer_Stats, temp_configs, BOM) are ignored so pipeline
output never retriggers a run.

Examples:
  slicebom watch                  # Watch configured paths
  slicebom watch parts/           # Watch a specific directory
  slicebom watch --verbose        # Show each changed file`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Verbose output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Watch.Paths
	}
	if len(paths) == 0 {
		return errors.New("no watch paths given and none configured")
	}

	profile, err := config.LoadProfile(cfg.Slicer.Profile)
	if err != nil {
		return err
	}

	logger := newLogger()

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.GeometryFilter)
	fileWatcher.AddFilter(watcher.ExistingFileFilter)
	fileWatcher.AddFilter(watcher.NoOutputFilter(
		cfg.Output.StatsDir, cfg.Output.BOMDir, slicer.TempConfigDir))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		if watchVerbose {
			fmt.Printf("📁 File changes detected:\n")
			for _, event := range events {
				fmt.Printf("   %s: %s\n", event.Type, event.Path)
			}
		} else {
			fmt.Printf("📁 %d file(s) changed\n", len(events))
		}

		statsDirs := make(map[string]struct{})
		for _, event := range events {
			runner := slicer.NewRunner(cfg, profile, logger)
			fmt.Printf("🔪 Slicing %s\n", filepath.Base(event.Path))
			if _, err := runner.Slice(ctx, event.Path); err != nil {
				fmt.Fprintf(os.Stderr, "Slicing failed for %s: %v\n", event.Path, err)
				continue
			}
			for _, warning := range runner.Warnings() {
				fmt.Fprintf(os.Stderr, "⚠️  %s\n", warning.Error())
			}
			statsDirs[filepath.Dir(runner.StatsPath(event.Path))] = struct{}{}
		}

		for statsDir := range statsDirs {
			aggregator := bom.New(cfg, logger)
			result, err := aggregator.Generate(statsDir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "BOM generation failed for %s: %v\n", statsDir, err)
				continue
			}
			fmt.Printf("📋 BOM updated: %s\n", result.CSVPath)
		}

		return nil
	})

	fmt.Println("🔍 Setting up file watching...")
	for _, path := range paths {
		if err := fileWatcher.AddRecursive(path,
			cfg.Output.StatsDir, cfg.Output.BOMDir, slicer.TempConfigDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to watch path %s: %v\n", path, err)
		} else {
			fmt.Printf("   - Watching: %s\n", path)
		}
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Println("👀 Watching for changes... (Press Ctrl+C to stop)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		fmt.Println("\n🛑 Stopping file watcher...")
		cancel()
	case <-ctx.Done():
	}

	return nil
}
