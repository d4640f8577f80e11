package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "apibind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), ""), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultNamespace, cfg.Namespace)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	require.Len(t, cfg.Dirs, 1)
	assert.True(t, filepath.IsAbs(cfg.Dirs[0]))
	assert.Equal(t, DefaultDocsPort, cfg.GetDocsConfig().Port)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
dirs:
  - hvapi
  - host
namespace: myhv
state_path: index.db
docs:
  port: 9000
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "myhv", cfg.Namespace)
	assert.Equal(t, dir, cfg.ProjectRoot)
	require.Len(t, cfg.Dirs, 2)
	assert.Equal(t, filepath.Join(dir, "hvapi"), cfg.Dirs[0])
	assert.Equal(t, filepath.Join(dir, "index.db"), cfg.StatePath)
	assert.Equal(t, 9000, cfg.GetDocsConfig().Port)
}

func TestFlagsOverrideFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "namespace: fromfile\n")
	t.Setenv("APIBIND_NAMESPACE", "fromenv")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("namespace", "", "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--namespace", "fromflag", "--state", "custom.db"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "fromflag", cfg.Namespace)
	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.StatePath)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "namespace: fromfile\n")
	t.Setenv("APIBIND_NAMESPACE", "fromenv")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Namespace)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"dotted namespace", "namespace: a.b\n", "must not contain"},
		{"empty dirs", "dirs: []\n", "at least one scan directory"},
		{"bad output", "output: csv\n", "unknown output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.yaml)
			_, err := Load(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindProjectRootUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "namespace: up\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, root, findProjectRootUpward(nested))
	assert.Equal(t, "", findProjectRootUpward(t.TempDir()))
}
