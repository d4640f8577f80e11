package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		iface     string
		op        string
		want      string
	}{
		{
			name:      "default namespace",
			namespace: DefaultNamespace,
			iface:     "MemoryAPI",
			op:        "AllocFrame",
			want:      "hvapi.MemoryAPI.AllocFrame",
		},
		{
			name:      "custom namespace",
			namespace: "myproj",
			iface:     "TimeAPI",
			op:        "CurrentTicks",
			want:      "myproj.TimeAPI.CurrentTicks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Symbol(tt.namespace, tt.iface, tt.op))
		})
	}
}

func TestSymbolDeterministic(t *testing.T) {
	// Re-mangling the same triple must yield byte-identical symbols; the
	// caller stub and the implementation bridge are generated in separate
	// runs and meet only at link time.
	a := Symbol(DefaultNamespace, "VMMAPI", "InjectInterrupt")
	b := Symbol(DefaultNamespace, "VMMAPI", "InjectInterrupt")
	assert.Equal(t, a, b)
}

func TestSymbolUniquePerOperation(t *testing.T) {
	seen := map[string]struct{}{}
	for _, iface := range []string{"MemoryAPI", "TimeAPI"} {
		for _, op := range []string{"Alloc", "Free"} {
			s := Symbol(DefaultNamespace, iface, op)
			_, dup := seen[s]
			assert.False(t, dup, "duplicate symbol %s", s)
			seen[s] = struct{}{}
		}
	}
}
