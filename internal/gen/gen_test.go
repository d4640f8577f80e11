package gen

import (
	"testing"

	"github.com/hvlabs/apibind/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryIface() *core.Interface {
	return &core.Interface{
		Name:      "MemoryAPI",
		Namespace: "hvapi",
		Package:   "hvapi",
		Doc:       []string{"MemoryAPI is the frame allocation boundary."},
		Ops: []core.Operation{
			{
				Name:    "AllocFrame",
				Doc:     []string{"AllocFrame allocates one physical frame."},
				Results: []core.Param{{Type: "PhysAddr"}, {Type: "bool"}},
			},
			{
				Name:   "DeallocFrame",
				Params: []core.Param{{Name: "addr", Type: "PhysAddr"}},
			},
		},
	}
}

const support = "github.com/hvlabs/apibind/pkg/link"

func TestCallers(t *testing.T) {
	files, err := Callers(memoryIface(), support)
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.Equal(t, "memory_api_apibind.go", f.Name)

	src := string(f.Content)
	assert.Contains(t, src, Header)
	assert.Contains(t, src, "package hvapi")
	assert.Contains(t, src, `_ "unsafe"`)
	assert.Contains(t, src, `"github.com/hvlabs/apibind/pkg/link"`)
	assert.Contains(t, src, "const _ = link.FormatVersion")

	// Callers keep the declared name, signature, and doc, and pull the
	// deterministic symbol; no bodies anywhere.
	assert.Contains(t, src, "// AllocFrame allocates one physical frame.")
	assert.Contains(t, src, "//go:linkname AllocFrame hvapi.MemoryAPI.AllocFrame")
	assert.Contains(t, src, "func AllocFrame() (PhysAddr, bool)\n")
	assert.Contains(t, src, "//go:linkname DeallocFrame hvapi.MemoryAPI.DeallocFrame")
	assert.Contains(t, src, "func DeallocFrame(addr PhysAddr)\n")
	assert.NotContains(t, src, "func AllocFrame() (PhysAddr, bool) {")
}

func TestCallersConstraintGrouping(t *testing.T) {
	iface := &core.Interface{
		Name:      "TimeAPI",
		Namespace: "hvapi",
		Package:   "hvapi",
		Ops: []core.Operation{
			{Name: "CurrentTicks", Results: []core.Param{{Type: "Ticks"}}},
			{
				Name:       "ReadCounterFrequency",
				Results:    []core.Param{{Type: "uint64"}},
				Constraint: "amd64 || arm64",
			},
		},
	}

	files, err := Callers(iface, support)
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Ungated group first.
	assert.Equal(t, "time_api_apibind.go", files[0].Name)
	assert.NotContains(t, string(files[0].Content), "ReadCounterFrequency")
	assert.NotContains(t, string(files[0].Content), "//go:build")

	gated := string(files[1].Content)
	assert.Equal(t, "time_api_amd64_arm64_apibind.go", files[1].Name)
	assert.Contains(t, gated, "//go:build amd64 || arm64")
	assert.Contains(t, gated, "ReadCounterFrequency")
	assert.NotContains(t, gated, "CurrentTicks")
}

func TestCallersInheritFileConstraint(t *testing.T) {
	iface := memoryIface()
	iface.Constraint = "linux"
	iface.Ops[1].Constraint = "amd64"

	files, err := Callers(iface, support)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, string(files[0].Content), "//go:build linux")

	// The formatter canonicalizes the combined constraint.
	assert.Contains(t, string(files[1].Content), "//go:build linux && amd64")
}

func TestCallersSignatureImports(t *testing.T) {
	iface := &core.Interface{
		Name:      "TimeAPI",
		Namespace: "hvapi",
		Package:   "hvapi",
		Ops: []core.Operation{
			{
				Name:    "TicksToDuration",
				Params:  []core.Param{{Name: "t", Type: "Ticks"}},
				Results: []core.Param{{Type: "time.Duration"}},
				Imports: []core.Import{{Path: "time"}},
			},
		},
	}

	files, err := Callers(iface, support)
	require.NoError(t, err)
	src := string(files[0].Content)
	assert.Contains(t, src, `"time"`)
	assert.Contains(t, src, "func TicksToDuration(t Ticks) time.Duration")

	// Standard-library imports land in the first group; rendered bytes must
	// survive the formatter unchanged so reruns stay byte-identical.
	assert.Contains(t, src, "\t\"time\"\n\t_ \"unsafe\" // go:linkname\n\n\t\"github.com/hvlabs/apibind/pkg/link\"\n)")
}

func TestBridges(t *testing.T) {
	iface := memoryIface()
	b := &core.Binding{
		Iface:     "MemoryAPI",
		Namespace: "hvapi",
		Marker:    "hostMemory",
		Package:   "hostimpl",
		Methods: map[string]core.Operation{
			"AllocFrame": {
				Name:    "AllocFrame",
				Results: []core.Param{{Type: "PhysAddr"}, {Type: "bool"}},
			},
			"DeallocFrame": {
				Name:   "DeallocFrame",
				Params: []core.Param{{Name: "addr", Type: "PhysAddr"}},
			},
		},
	}

	files, err := Bridges(b, iface, support)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "host_memory_apibind.go", files[0].Name)

	src := string(files[0].Content)
	assert.Contains(t, src, "package hostimpl")
	assert.Contains(t, src, "//go:linkname _apibind_MemoryAPI_AllocFrame hvapi.MemoryAPI.AllocFrame")
	assert.Contains(t, src, "func _apibind_MemoryAPI_AllocFrame() (PhysAddr, bool) {")
	assert.Contains(t, src, "return hostMemory{}.AllocFrame()")
	assert.Contains(t, src, "func _apibind_MemoryAPI_DeallocFrame(addr PhysAddr) {")
	assert.Contains(t, src, "hostMemory{}.DeallocFrame(addr)")
}

func TestBridgesPointerReceiverAndUnnamedParams(t *testing.T) {
	iface := &core.Interface{
		Name:      "VMMAPI",
		Namespace: "hvapi",
		Package:   "hvapi",
		Ops: []core.Operation{
			{
				Name:   "InjectInterrupt",
				Params: []core.Param{{Type: "VMID"}, {Type: "VCPUID"}, {Type: "uint8"}},
			},
		},
	}
	b := &core.Binding{
		Iface:     "VMMAPI",
		Namespace: "hvapi",
		Marker:    "vmmService",
		Addr:      true,
		Package:   "hostimpl",
		Methods: map[string]core.Operation{
			"InjectInterrupt": {
				Name:   "InjectInterrupt",
				Params: []core.Param{{Type: "VMID"}, {Type: "VCPUID"}, {Type: "uint8"}},
			},
		},
	}

	files, err := Bridges(b, iface, support)
	require.NoError(t, err)
	src := string(files[0].Content)
	assert.Contains(t, src, "func _apibind_VMMAPI_InjectInterrupt(a0 VMID, a1 VCPUID, a2 uint8) {")
	assert.Contains(t, src, "(&vmmService{}).InjectInterrupt(a0, a1, a2)")
}

func TestBridgesMissingMethod(t *testing.T) {
	iface := memoryIface()
	b := &core.Binding{
		Iface:     "MemoryAPI",
		Namespace: "hvapi",
		Marker:    "partial",
		Package:   "hostimpl",
		Methods: map[string]core.Operation{
			"AllocFrame": {Name: "AllocFrame", Results: []core.Param{{Type: "PhysAddr"}, {Type: "bool"}}},
		},
	}

	_, err := Bridges(b, iface, support)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not implement DeallocFrame")
}

func TestVariadicForwarding(t *testing.T) {
	iface := &core.Interface{
		Name:      "LogAPI",
		Namespace: "hvapi",
		Package:   "hvapi",
		Ops: []core.Operation{
			{
				Name:     "Logf",
				Params:   []core.Param{{Name: "format", Type: "string"}, {Name: "args", Type: "any"}},
				Variadic: true,
			},
		},
	}

	files, err := Callers(iface, support)
	require.NoError(t, err)
	assert.Contains(t, string(files[0].Content), "func Logf(format string, args ...any)")

	b := &core.Binding{
		Iface:     "LogAPI",
		Namespace: "hvapi",
		Marker:    "hostLog",
		Package:   "hostimpl",
		Methods: map[string]core.Operation{
			"Logf": {
				Name:     "Logf",
				Params:   []core.Param{{Name: "format", Type: "string"}, {Name: "args", Type: "any"}},
				Variadic: true,
			},
		},
	}
	bridges, err := Bridges(b, iface, support)
	require.NoError(t, err)
	assert.Contains(t, string(bridges[0].Content), "hostLog{}.Logf(format, args...)")
}

func TestIdempotence(t *testing.T) {
	iface := memoryIface()
	a, err := Callers(iface, support)
	require.NoError(t, err)
	b, err := Callers(iface, support)
	require.NoError(t, err)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, string(a[i].Content), string(b[i].Content), "byte-identical rerun")
	}
}

func TestStub(t *testing.T) {
	f := Stub()
	assert.Equal(t, "apibind_link.s", f.Name)
	assert.Contains(t, string(f.Content), "Code generated by apibind")
}

func TestSnakeAndSlug(t *testing.T) {
	assert.Equal(t, "memory_api_apibind.go", generatedName("MemoryAPI", ""))
	assert.Equal(t, "host_time_apibind.go", generatedName("hostTime", ""))
	// An all-caps identifier has no case boundary to split on.
	assert.Equal(t, "vmmapi_apibind.go", generatedName("VMMAPI", ""))
	assert.Equal(t, "time_api_amd64_arm64_apibind.go", generatedName("TimeAPI", "amd64 || arm64"))
	assert.Equal(t, "x_linux_amd64_apibind.go", generatedName("x", "linux && amd64"))
}
