package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hvlabs/apibind/internal/state"
)

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Scan and persist the declaration index",
		Long: `Scan the configured directories and write the resulting interfaces,
operations and bindings into the SQLite index. The docs server reads from
this index.`,
		Example: `  # Rebuild the index
  apibind index`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd)
		},
	}
	return cmd
}

func runIndex(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	started := time.Now()
	snap, err := cmdCtx.Engine.Scan()
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	for _, d := range snap.Diags {
		r.Warning(d.Error())
	}

	store, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		ifaces   []*state.IndexedInterface
		ops      []*state.IndexedOperation
		bindings []*state.IndexedBinding
	)
	for _, iface := range snap.Registry.Interfaces() {
		ifaces = append(ifaces, &state.IndexedInterface{
			Name:       iface.Name,
			Namespace:  iface.Namespace,
			Package:    iface.Package,
			File:       iface.File,
			Line:       iface.Pos.Line,
			Doc:        strings.Join(iface.Doc, "\n"),
			Constraint: iface.Constraint,
			Ops:        len(iface.Ops),
		})
		for _, op := range iface.Ops {
			ops = append(ops, &state.IndexedOperation{
				Interface:  iface.Name,
				Name:       op.Name,
				Signature:  op.Signature(),
				Doc:        strings.Join(op.Doc, "\n"),
				Constraint: op.Constraint,
			})
		}
		for _, b := range snap.Registry.Bindings(iface.Name) {
			bindings = append(bindings, &state.IndexedBinding{
				Interface: iface.Name,
				Marker:    b.Marker,
				Package:   b.Package,
				File:      b.File,
				Line:      b.Pos.Line,
			})
		}
	}

	run := &state.Run{
		ID:         uuid.NewString(),
		StartedAt:  started,
		FinishedAt: time.Now(),
		Interfaces: len(ifaces),
		Operations: len(ops),
		Bindings:   len(bindings),
	}
	if err := store.SaveSnapshot(run, ifaces, ops, bindings); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	r.Success(fmt.Sprintf("indexed %d interfaces, %d operations, %d bindings into %s",
		len(ifaces), len(ops), len(bindings), cmdCtx.Config.StatePath))
	return nil
}
