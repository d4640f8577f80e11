package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hvlabs/apibind/internal/cli/output"
	"github.com/hvlabs/apibind/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize an apibind project",
		Long: `Write an apibind.yaml configuration file with default settings.

The file anchors the project root: commands run anywhere below it find it
by searching upward.`,
		Example: `  # Initialize in the current directory
  apibind init

  # Initialize in a new directory
  apibind init my-project

  # Overwrite an existing config
  apibind init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "apibind.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("apibind.yaml already exists. Use --force to overwrite")
	}

	defaults := map[string]any{
		"dirs":       []string{"."},
		"namespace":  config.DefaultNamespace,
		"state_path": config.DefaultStateFile,
		"output":     config.DefaultOutput,
		"docs": map[string]any{
			"port": config.DefaultDocsPort,
		},
	}
	body, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	content := append([]byte("# apibind project configuration\n"), body...)

	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	r.Success("apibind project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Mark interfaces with //apibind:interface")
	r.Println("  2. Mark implementations with //apibind:implement")
	r.Println("  3. Run 'apibind generate'")

	return nil
}
