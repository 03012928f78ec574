package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_UniqueAndOrdered(t *testing.T) {
	seen := make(map[string]struct{})
	var prev string
	for i := 0; i < 1000; i++ {
		id, err := NewID()
		require.NoError(t, err)
		require.Len(t, id, 12+16, "12 hex timestamp chars plus 16 hex random chars")

		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = struct{}{}

		// the timestamp prefix keeps ids non-decreasing over time
		if prev != "" && id[:12] < prev[:12] {
			t.Fatalf("timestamp prefix went backwards: %s after %s", id, prev)
		}
		prev = id
	}
}

func TestDocument_Clone(t *testing.T) {
	d := Document{"a": 1, "b": "x"}
	c := d.Clone()
	c["a"] = 2

	assert.Equal(t, 1, d["a"])
	assert.Equal(t, 2, c["a"])
}

func TestDocument_IDMissing(t *testing.T) {
	assert.Empty(t, Document{}.ID())
	assert.Empty(t, Document{"id": 42}.ID(), "non-string id is treated as absent")
}
