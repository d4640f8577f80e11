package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hvlabs/apibind/internal/docs"
)

// NewDocsCommand creates the docs command.
func NewDocsCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Serve a browsable view of the declaration index",
		Long: `Start an HTTP server rendering the indexed interfaces, operations and
bindings. Reads from the SQLite index; run 'apibind index' first.`,
		Example: `  # Serve on the configured port
  apibind docs

  # Serve on a specific port
  apibind docs --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDocs(cmd, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to serve on (default from config)")
	return cmd
}

func runDocs(cmd *cobra.Command, port int) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if port == 0 {
		port = cmdCtx.Config.GetDocsConfig().Port
	}

	store, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := docs.NewServer(docs.Config{
		Store:  store,
		Port:   port,
		Logger: cmdCtx.Logger,
	})

	cmdCtx.Renderer.Printf("serving docs at http://localhost:%d (ctrl-c to stop)\n", port)
	err = server.Serve(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
