// Package config provides configuration management for the apibind CLI.
//
// Configuration is layered: defaults, then an apibind.yaml project file,
// then APIBIND_ environment variables, then command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Dirs are the package directories scanned for directives, relative to
	// the project root unless absolute.
	Dirs []string `koanf:"dirs"`
	// Namespace prefixes every exported link symbol.
	Namespace string `koanf:"namespace"`
	// StatePath is where the SQLite index lives.
	StatePath string `koanf:"state_path"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// OutputFormat selects the render mode: auto, text, markdown or json.
	OutputFormat string `koanf:"output"`
	// Docs configures the docs server.
	Docs *DocsConfig `koanf:"docs"`

	// ProjectRoot is the directory the config was anchored at. Not read
	// from the file; set by the loader.
	ProjectRoot string `koanf:"-"`
}

// DocsConfig holds configuration for the docs server.
type DocsConfig struct {
	Port int `koanf:"port"`
}

// GetDocsConfig returns the docs config with defaults applied for any
// unset values.
func (c *Config) GetDocsConfig() *DocsConfig {
	if c.Docs == nil {
		return &DocsConfig{Port: DefaultDocsPort}
	}
	d := c.Docs
	if d.Port == 0 {
		d.Port = DefaultDocsPort
	}
	return d
}
