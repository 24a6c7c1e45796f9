package schem

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchematicTryAddCollision(t *testing.T) {
	s := NewSchematic()
	require.True(t, s.TryAdd("switch", 0, 0, 1, 0, nil))
	require.False(t, s.TryAdd("switch", 0, 0, 1, 0, nil), "overlapping footprint must be rejected")
	require.Len(t, s.Blocks, 1)
}

func TestSchematicTryAddRespectsFootprint(t *testing.T) {
	s := NewSchematic()
	require.True(t, s.TryAdd("display", 0, 0, 3, 0, nil))
	// (2,2) is within the 3x3 footprint rooted at (0,0)
	require.True(t, s.Occupied(2, 2, 1))
	require.False(t, s.TryAdd("switch", 2, 2, 1, 0, nil))
	// (3,3) lies just outside that footprint
	require.True(t, s.TryAdd("switch", 3, 3, 1, 0, nil))
}

func TestSchematicWriteProducesMagicHeader(t *testing.T) {
	s := NewSchematic()
	s.SetTag("name", "test")
	require.True(t, s.TryAdd("switch", 0, 0, 1, 0, nil))

	payload, err := s.Write()
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, []byte("msch")))
	require.Equal(t, byte(1), payload[len("msch")])
}

func TestSchematicWriteEmptyDoesNotError(t *testing.T) {
	s := NewSchematic()
	_, err := s.Write()
	require.NoError(t, err)
}
