package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hvlabs/apibind/internal/engine"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate on every source change",
		Long: `Watch the configured directories and rerun generation whenever a Go
source file changes. Runs until interrupted.`,
		Example: `  # Keep generated files current while editing
  apibind watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := cmdCtx.Renderer
	r.Println("watching for changes (ctrl-c to stop)")

	err = cmdCtx.Engine.Watch(ctx, engine.Options{}, func(result *engine.Result) {
		for _, d := range result.Diags {
			r.Error(d.Error())
		}
		r.Println(result.Summary())
	})
	if ctx.Err() != nil {
		// Interrupted; a clean exit.
		return nil
	}
	return err
}
