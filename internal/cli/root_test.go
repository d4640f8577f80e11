package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvlabs/apibind/pkg/link"
)

// writeProject lays out a consumer tree with a config file, one declaring
// package and one binding package.
func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("apibind.yaml", "dirs:\n  - .\n")
	write("go.mod", "module "+link.ModulePath+"\n\ngo 1.24.0\n")
	write("hvapi/time.go", `package hvapi

// Ticks is a raw hardware tick count.
type Ticks uint64

//apibind:interface
type TimeAPI interface {
	CurrentTicks() Ticks
}
`)
	write("host/impl.go", `package host

import "`+link.ModulePath+`/hvapi"

type hostTime struct{}

//apibind:implement
var _ hvapi.TimeAPI = hostTime{}

func (hostTime) CurrentTicks() hvapi.Ticks { return 42 }
`)
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errW bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errW)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errW.String(), err
}

func TestGenerateThenCheck(t *testing.T) {
	root := writeProject(t)
	cfg := filepath.Join(root, "apibind.yaml")

	// A fresh tree fails check.
	_, _, err := execute(t, "check", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of date")

	out, _, err := execute(t, "generate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Interfaces: 1")

	_, err = os.Stat(filepath.Join(root, "hvapi", "time_api_apibind.go"))
	require.NoError(t, err)

	// After generation check passes.
	out, _, err = execute(t, "check", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestListJSON(t *testing.T) {
	root := writeProject(t)
	cfg := filepath.Join(root, "apibind.yaml")

	out, _, err := execute(t, "list", "--config", cfg, "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "TimeAPI"`)
	assert.Contains(t, out, `"symbol": "hvapi.TimeAPI.CurrentTicks"`)
	assert.Contains(t, out, `"marker": "hostTime"`)
}

func TestIndexCommand(t *testing.T) {
	root := writeProject(t)
	cfg := filepath.Join(root, "apibind.yaml")

	out, _, err := execute(t, "index", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 1 interfaces, 1 operations, 1 bindings")

	_, err = os.Stat(filepath.Join(root, ".apibind", "state.db"))
	require.NoError(t, err)
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")

	out, _, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "initialized")

	content, err := os.ReadFile(filepath.Join(dir, "apibind.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "namespace: "+link.DefaultNamespace)

	// A second init without --force refuses.
	_, _, err = execute(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "apibind "+Version)
}
