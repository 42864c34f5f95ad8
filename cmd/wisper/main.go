package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MaikFakir/wIsper-notes-local/internal/actions"
	"github.com/MaikFakir/wIsper-notes-local/internal/config"
	"github.com/MaikFakir/wIsper-notes-local/internal/events"
	"github.com/MaikFakir/wIsper-notes-local/internal/logging"
	"github.com/MaikFakir/wIsper-notes-local/internal/metrics"
	"github.com/MaikFakir/wIsper-notes-local/internal/poller"
	"github.com/MaikFakir/wIsper-notes-local/internal/refresh"
	"github.com/MaikFakir/wIsper-notes-local/internal/state"
	"github.com/MaikFakir/wIsper-notes-local/internal/submit"
	"github.com/MaikFakir/wIsper-notes-local/internal/view"
	"github.com/MaikFakir/wIsper-notes-local/pkg/client"
	"github.com/MaikFakir/wIsper-notes-local/pkg/models"
	"github.com/MaikFakir/wIsper-notes-local/pkg/retry"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// engine wires the full client stack for one command invocation.
type engine struct {
	cfg       *config.Config
	bus       *events.Broadcaster
	app       *state.App
	refresher *refresh.Refresher
	scheduler *poller.Scheduler
	views     *view.Controller
	actions   *actions.Controller
	submitter *submit.Submitter
}

func newEngine() (*engine, error) {
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return nil, err
	}

	api := client.New(client.Config{
		BaseURL:   cfg.ServerURL,
		Timeout:   cfg.RequestTimeout,
		AuthToken: cfg.AuthToken,
	})
	// Poll ticks run single-attempt: the timer itself is the retry, so
	// backing off inside a tick would only pile up against the interval.
	pollAPI := client.New(client.Config{
		BaseURL:     cfg.ServerURL,
		Timeout:     cfg.RequestTimeout,
		AuthToken:   cfg.AuthToken,
		RetryConfig: retry.None(),
	})

	bus := events.NewBroadcaster()
	app := state.NewApp(bus)
	refresher := refresh.New(api, app)
	scheduler := poller.New(refresh.New(pollAPI, app), cfg.PollInterval, app.Banner)
	views := view.New(app, refresher, scheduler)
	submitter := submit.New(api, app, refresher)
	acts := actions.New(api, app, refresher, views, submitter, confirmOnTerminal)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				logging.Warn("metrics endpoint stopped", logging.Err(err))
			}
		}()
	}

	return &engine{
		cfg:       cfg,
		bus:       bus,
		app:       app,
		refresher: refresher,
		scheduler: scheduler,
		views:     views,
		actions:   acts,
		submitter: submitter,
	}, nil
}

func confirmOnTerminal(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printListing(app *state.App) {
	for _, e := range app.Listing() {
		if e.IsFolder() {
			fmt.Printf("  [folder] %s\n", e.Name)
		} else {
			fmt.Printf("  [%s] %s  %s\n", e.Status, e.FileName, e.DateCreated)
		}
	}
}

func printTree(node *models.Folder, indent string) {
	fmt.Printf("%s%s/\n", indent, node.Name)
	for _, child := range node.Children {
		printTree(child, indent+"  ")
	}
}

var rootCmd = &cobra.Command{
	Use:   "wisper",
	Short: "Client for the wIsper audio transcription library",
}

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a library directory (folders first, server order)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		path := models.RootPath
		if len(args) == 1 {
			path = args[0]
		}
		e.app.NavigateTo(path)
		if err := e.refresher.Directory(cmd.Context(), path); err != nil {
			return err
		}
		printListing(e.app)
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the full folder hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		if err := e.refresher.TreeSnapshot(cmd.Context()); err != nil {
			return err
		}
		printTree(e.app.Tree.Root(), "")
		return nil
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail <path>",
	Short: "Show one recording, including its transcription when completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		e.app.EnterDetail(args[0])
		if _, err := e.refresher.Detail(cmd.Context(), args[0]); err != nil {
			return err
		}
		rec, ok := e.app.Store.Get(args[0])
		if !ok {
			return fmt.Errorf("recording %q not found", args[0])
		}
		fmt.Printf("%s  [%s]\n", rec.FileName, rec.Status)
		if rec.Duration != "" {
			fmt.Println("duration:", rec.Duration)
		}
		if rec.Transcription != "" {
			fmt.Println()
			fmt.Println(rec.Transcription)
		}
		if rec.SpectrogramRef != "" {
			fmt.Println("\nspectrogram:", rec.SpectrogramRef)
		}
		return nil
	},
}

var (
	submitModel  string
	submitFolder string
)

var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Upload a recording for transcription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		e.app.NavigateTo(submitFolder)
		e.actions.BeginUpload(args[0])
		e.actions.SelectModel(submitModel)
		rec, err := e.actions.ConfirmUpload(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("submitted %s (status: %s)\n", rec.Path, rec.Status)
		return nil
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		return e.actions.CreateFolder(cmd.Context(), args[0])
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <path> <new-name>",
	Short: "Rename a recording or folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		e.actions.BeginRename(args[0])
		return e.actions.ConfirmRename(cmd.Context(), args[1])
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <path> <destination-folder>",
	Short: "Move a recording or folder into another folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		e.actions.BeginMove(args[0])
		e.actions.SelectDestination(args[1])
		return e.actions.ConfirmMove(cmd.Context())
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a recording or folder (asks for confirmation)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		return e.actions.Delete(cmd.Context(), args[0])
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Follow a directory, re-rendering on every change until interrupted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			e.app.NavigateTo(args[0])
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		sub := e.bus.Subscribe()
		defer e.bus.Unsubscribe(sub)

		if err := e.views.Start(ctx); err != nil {
			return err
		}
		defer e.scheduler.Stop()

		fmt.Printf("watching %s (interval %s)\n", e.app.CurrentPath(), e.cfg.PollInterval)
		printListing(e.app)

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-sub:
				switch ev.Kind {
				case events.ListingChanged:
					fmt.Printf("\n-- %s --\n", e.app.CurrentPath())
					printListing(e.app)
				case events.StatusBanner:
					fmt.Println("!", ev.Message)
				}
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	submitCmd.Flags().StringVar(&submitModel, "model", "", "transcription model (required)")
	submitCmd.Flags().StringVar(&submitFolder, "folder", models.RootPath, "destination folder")

	rootCmd.AddCommand(lsCmd, treeCmd, detailCmd, submitCmd, mkdirCmd, renameCmd, moveCmd, rmCmd, watchCmd)
}
