// Package main implements the projkit CLI for working with project files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectkit/internal/config"
	"github.com/fyrsmithlabs/projectkit/internal/logging"
	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
	"github.com/fyrsmithlabs/projectkit/pkg/refresher"
	"github.com/fyrsmithlabs/projectkit/pkg/serializer"
	"github.com/fyrsmithlabs/projectkit/pkg/validator"
)

var (
	// configPath overrides the default config file location
	configPath string
	// watch enables filesystem refresh regardless of config
	watch bool
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "projkit",
	Short: "CLI for managing file-backed projects",
	Long: `projkit loads, inspects and watches file-backed project documents.
Supported formats are JSON (.json, .proj) and TOML (.toml).`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/projectkit/config.yaml)")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().BoolVar(&watch, "watch", false, "reload projects when their files change on disk")
}

// showCmd loads a project file and prints it
var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Load a project file and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

// openCmd loads project files and keeps them open until interrupted
var openCmd = &cobra.Command{
	Use:   "open <file>...",
	Short: "Open project files and report lifecycle events until interrupted",
	Long: `Open one or more project files. The last file becomes the active
project. Lifecycle events are printed as they happen; with --watch, external
modifications to the files trigger reloads.

Examples:
  # Open two projects and watch them for changes
  projkit open --watch app.json infra.toml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

// setup loads configuration and builds a manager wired with the default
// collaborators.
func setup(watching bool) (*lifecycle.Manager, *logging.Logger, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, nil, err
	}

	log, err := logging.NewLogger(&cfg.Logging, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	opts := []lifecycle.Option{
		lifecycle.WithMode(cfg.ManagementMode()),
		lifecycle.WithValidator(validator.NewPath()),
		lifecycle.WithInitializer(config.NewInitializer(cfg)),
		lifecycle.WithLogger(log),
	}
	if watching || cfg.Refresh.Enabled {
		opts = append(opts, lifecycle.WithRefresherSelector(
			refresher.NewSelector(refresher.WithDebounce(cfg.Refresh.Debounce.Duration()))))
	}

	mgr, err := lifecycle.NewManager(serializer.NewSelector(), opts...)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return mgr, log, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	mgr, log, err := setup(false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	p, err := mgr.LoadInactive(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	if p == nil {
		return fmt.Errorf("load of %s was canceled", args[0])
	}
	defer func() { _, _ = mgr.Close(ctx, p) }()

	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	mgr, log, err := setup(watch)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	mgr.Subscribe(&eventPrinter{})

	ctx := cmd.Context()
	for _, location := range args {
		p, err := mgr.Load(ctx, location)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", location, err)
		}
		if p == nil {
			return fmt.Errorf("load of %s was canceled", location)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	for _, p := range mgr.Projects() {
		if _, err := mgr.Close(context.Background(), p); err != nil {
			log.Error(ctx, "failed to close project",
				zap.String("location", p.Location), zap.Error(err))
		}
	}
	return nil
}

// eventPrinter reports lifecycle events on stdout.
type eventPrinter struct {
	lifecycle.BaseObserver
}

func (o *eventPrinter) Loaded(ctx context.Context, e *lifecycle.LoadedEvent) {
	fmt.Printf("loaded   %s (%s)\n", e.Project.Location, e.Project.Name)
}

func (o *eventPrinter) Saved(ctx context.Context, e *lifecycle.SavedEvent) {
	fmt.Printf("saved    %s\n", e.Location)
}

func (o *eventPrinter) Closed(ctx context.Context, e *lifecycle.ClosedEvent) {
	fmt.Printf("closed   %s\n", e.Project.Location)
}

func (o *eventPrinter) Refreshed(ctx context.Context, e *lifecycle.RefreshedEvent) {
	fmt.Printf("reloaded %s\n", e.New.Location)
}

func (o *eventPrinter) Activated(ctx context.Context, e *lifecycle.ActivatedEvent) {
	if e.New != nil {
		fmt.Printf("active   %s\n", e.New.Location)
	}
}
