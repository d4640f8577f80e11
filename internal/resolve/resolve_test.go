package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hvlabs/apibind/pkg/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, gomod string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(gomod), 0o644))
	sub := filepath.Join(dir, "internal", "hvapi")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	return sub
}

func TestSupportImportSelf(t *testing.T) {
	dir := writeModule(t, "module "+link.ModulePath+"\n\ngo 1.24.0\n")

	res, err := SupportImport(dir)
	require.NoError(t, err)
	assert.True(t, res.Self)
	assert.Equal(t, link.ModulePath+"/pkg/link", res.ImportPath)
}

func TestSupportImportConsumer(t *testing.T) {
	dir := writeModule(t, `module example.com/hypervisor

go 1.24.0

require `+link.ModulePath+` v0.1.0
`)

	res, err := SupportImport(dir)
	require.NoError(t, err)
	assert.False(t, res.Self)
	assert.Equal(t, link.ModulePath+"/pkg/link", res.ImportPath)
}

func TestSupportImportConsumerWithReplace(t *testing.T) {
	dir := writeModule(t, `module example.com/hypervisor

go 1.24.0

require `+link.ModulePath+` v0.1.0

replace `+link.ModulePath+` => ../apibind
`)

	res, err := SupportImport(dir)
	require.NoError(t, err)
	// The import path never changes under replace.
	assert.Equal(t, link.ModulePath+"/pkg/link", res.ImportPath)
}

func TestSupportImportMissingDependency(t *testing.T) {
	dir := writeModule(t, `module example.com/hypervisor

go 1.24.0

require example.com/unrelated v1.0.0
`)

	_, err := SupportImport(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDependency)
	assert.Contains(t, err.Error(), link.ModulePath)
}

func TestSupportImportNoModule(t *testing.T) {
	// No go.mod anywhere under the temp root.
	dir := t.TempDir()
	isolated := filepath.Join(dir, "deep", "tree")
	require.NoError(t, os.MkdirAll(isolated, 0o755))

	_, err := SupportImport(isolated)
	// Either no go.mod is found, or an enclosing module unrelated to the
	// defining one is. Both are failures, never a guess.
	require.Error(t, err)
}
