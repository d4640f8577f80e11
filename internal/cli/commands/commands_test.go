package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvlabs/apibind/internal/cli/output"
	"github.com/hvlabs/apibind/internal/config"
	"github.com/hvlabs/apibind/pkg/link"
)

// writeProject lays out a declaring package and a binding package under a
// fresh module root.
func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

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

// testCommand returns a command whose context carries a loaded config and a
// renderer, the way the root command's PersistentPreRunE sets them up.
func testCommand(t *testing.T, root string, out, errW *bytes.Buffer) *cobra.Command {
	t.Helper()

	cfg := &config.Config{
		Dirs:         []string{filepath.Join(root, "hvapi"), filepath.Join(root, "host")},
		Namespace:    link.DefaultNamespace,
		StatePath:    filepath.Join(root, "state.db"),
		OutputFormat: "text",
		ProjectRoot:  root,
	}
	r := output.NewRenderer(out, errW, output.ModeText)

	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(errW)
	cmd.SetContext(WithContext(context.Background(), cfg, r))
	return cmd
}

func TestGenerateCheckRoundTrip(t *testing.T) {
	root := writeProject(t)
	var out, errW bytes.Buffer

	// A fresh tree fails check.
	err := runCheck(testCommand(t, root, &out, &errW))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of date")

	out.Reset()
	errW.Reset()
	require.NoError(t, runGenerate(testCommand(t, root, &out, &errW)))
	assert.Contains(t, out.String(), "Interfaces: 1")

	for _, rel := range []string{
		filepath.Join("hvapi", "time_api_apibind.go"),
		filepath.Join("hvapi", "apibind_link.s"),
		filepath.Join("host", "host_time_apibind.go"),
	} {
		_, err := os.Stat(filepath.Join(root, rel))
		require.NoError(t, err, rel)
	}

	out.Reset()
	errW.Reset()
	require.NoError(t, runCheck(testCommand(t, root, &out, &errW)))
	assert.Contains(t, out.String(), "up to date")
}

func TestGenerateReportsDiagnostics(t *testing.T) {
	root := writeProject(t)
	bad := filepath.Join(root, "hvapi", "bad.go")
	require.NoError(t, os.WriteFile(bad, []byte(`package hvapi

//apibind:interface extra
type BrokenAPI interface {
	Op()
}
`), 0o644))

	var out, errW bytes.Buffer
	err := runGenerate(testCommand(t, root, &out, &errW))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declaration(s) failed")
	assert.Contains(t, errW.String(), "does not accept any arguments")
}

func TestIndexWritesStore(t *testing.T) {
	root := writeProject(t)
	var out, errW bytes.Buffer

	require.NoError(t, runIndex(testCommand(t, root, &out, &errW)))
	assert.Contains(t, out.String(), "indexed 1 interfaces, 1 operations, 1 bindings")

	_, err := os.Stat(filepath.Join(root, "state.db"))
	require.NoError(t, err)
}
