package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/onotes"
	"github.com/aretw0/onotes/pkg/adapters/lifecycle"
	"github.com/aretw0/onotes/pkg/core"
	"github.com/aretw0/onotes/pkg/notify"
	"github.com/aretw0/onotes/pkg/reminders"
)

var noInput bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Deliver reminders as they fall due",
	Long: `Run the reminder scheduler in the foreground.

Reminders already past due are delivered immediately. Changes made by other
onotes commands (or by editing the data file) are picked up while running.

Type "list", "dismiss <id>", "clear", "pending" or "quit" on stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runScheduler(ctx, os.Stdin)
	},
}

func runScheduler(ctx context.Context, input io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	logger := slog.Default()

	store, err := newStore()
	if err != nil {
		return err
	}
	// A broken document still yields an empty, hydrated store; keep running
	// so that fixing the file on disk is picked up by Follow.
	if err := store.Load(ctx); err != nil {
		logger.Warn("starting with an empty store", "error", err)
	}

	inbox := notify.NewLog(notify.WithLogger(logger))
	rt := onotes.NewRuntime(store, inbox,
		reminders.WithRuntimeLogger(logger),
		reminders.WithReconcileHook(func(e core.Event, res reminders.Result) {
			if !res.Empty() {
				logger.Debug("reconciled", "trigger", e.String(),
					"delivered", len(res.Delivered), "scheduled", len(res.Scheduled), "cancelled", len(res.Cancelled))
			}
		}),
	)

	delivered := lifecycle.NewSource(inbox.Watch(ctx))
	if err := delivered.Start(ctx); err != nil {
		return err
	}
	rt.Start(ctx)

	if cfg.Watch {
		if err := store.Follow(ctx); errors.Is(err, core.ErrNotWatchable) {
			logger.Debug("adapter does not support watching", "adapter", cfg.Adapter)
		} else if err != nil {
			logger.Warn("failed to watch data file", "error", err)
		}
	}

	lines := make(chan string)
	if !noInput {
		go func() {
			scanner := bufio.NewScanner(input)
			for scanner.Scan() {
				select {
				case lines <- strings.TrimSpace(scanner.Text()):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	logger.Info("scheduler running", "data_dir", cfg.DataDir, "adapter", cfg.Adapter)
	notifications := delivered.Events()
	for {
		select {
		case <-ctx.Done():
			<-rt.Done()
			return nil
		case <-rt.Done():
			return nil
		case e, ok := <-notifications:
			if !ok {
				notifications = nil
				continue
			}
			if n, ok := e.(notify.Notification); ok {
				printNotification(n)
			}
		case line := <-lines:
			if quit := handleLine(line, inbox, rt.Engine()); quit {
				cancel()
			}
		}
	}
}

// handleLine runs one interactive command and reports whether to quit.
func handleLine(line string, inbox *notify.Log, engine *reminders.Engine) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "list", "ls":
		printNotifications(inbox.List())
	case "dismiss", "d":
		for _, id := range fields[1:] {
			if !inbox.Dismiss(id) {
				_, _ = fmt.Fprintln(color.Output, color.RedString("no notification %s", id))
			}
		}
	case "clear":
		inbox.Clear()
	case "pending":
		for _, id := range engine.Pending() {
			fmt.Println(id)
		}
	case "quit", "exit", "q":
		return true
	default:
		_, _ = fmt.Fprintln(color.Output, faint.Sprint("commands: list, dismiss <id>, clear, pending, quit"))
	}
	return false
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&noInput, "no-input", false, "Do not read commands from stdin")
}
