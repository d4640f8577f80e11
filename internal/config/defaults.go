package config

import "github.com/hvlabs/apibind/pkg/link"

// Default configuration values.
const (
	DefaultStateFile = ".apibind/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultDocsPort  = 8765
)

// DefaultNamespace is the symbol namespace used when none is configured.
const DefaultNamespace = link.DefaultNamespace
