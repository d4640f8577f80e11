package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hvlabs/apibind/internal/engine"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan for directives and write caller stubs and bridges",
		Long: `Scan the configured directories for //apibind:interface and
//apibind:implement directives and write the generated files next to the
declarations that produced them. Stale generated files are removed.

Safe to run repeatedly; unchanged files are left untouched.`,
		Example: `  # Generate into the current module
  apibind generate

  # Generate for specific directories
  apibind generate --dirs api,host`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd)
		},
	}
	return cmd
}

func runGenerate(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	result, err := cmdCtx.Engine.Generate(engine.Options{})
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	for _, d := range result.Diags {
		r.Error(d.Error())
	}
	r.Println(result.Summary())

	if result.HasDiags() {
		return fmt.Errorf("%d declaration(s) failed", len(result.Diags))
	}
	return nil
}
