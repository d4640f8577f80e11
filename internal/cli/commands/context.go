// Package commands implements the apibind subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hvlabs/apibind/internal/cli/output"
	"github.com/hvlabs/apibind/internal/config"
	"github.com/hvlabs/apibind/internal/engine"
	"github.com/hvlabs/apibind/internal/state"
)

type configKey struct{}
type rendererKey struct{}

// WithContext stores the loaded config and renderer in the command context.
// Called by the root command's PersistentPreRunE.
func WithContext(ctx context.Context, cfg *config.Config, r *output.Renderer) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return context.WithValue(ctx, rendererKey{}, r)
}

// CommandContext bundles everything a subcommand needs.
type CommandContext struct {
	Config   *config.Config
	Renderer *output.Renderer
	Logger   *slog.Logger
	Engine   *engine.Engine
}

// NewCommandContext assembles the command context from the cobra command.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	ctx := cmd.Context()

	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok {
		return nil, fmt.Errorf("configuration not loaded")
	}
	r, ok := ctx.Value(rendererKey{}).(*output.Renderer)
	if !ok {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	eng := engine.New(engine.Config{
		Dirs:      cfg.Dirs,
		Namespace: cfg.Namespace,
		Logger:    logger,
	})

	return &CommandContext{
		Config:   cfg,
		Renderer: r,
		Logger:   logger,
		Engine:   eng,
	}, nil
}

// OpenStore opens the SQLite index at the configured path, creating the
// parent directory if needed.
func (c *CommandContext) OpenStore() (state.Store, error) {
	dir := filepath.Dir(c.Config.StatePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return state.Open(c.Config.StatePath)
}
