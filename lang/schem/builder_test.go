package schem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddBlockRejectsUnknownType(t *testing.T) {
	b := NewBuilder()
	_, err := b.AddBlock(&Block{Type: "not-a-real-block"})
	require.Error(t, err)
}

func TestAddProcRejectsUnknownType(t *testing.T) {
	b := NewBuilder()
	_, err := b.AddProc(&Proc{Type: "not-a-real-processor", Positioned: true})
	require.Error(t, err)
}

func TestLinkNameStemsFromLastHyphenSegment(t *testing.T) {
	b := NewBuilder()
	name1, err := b.AddBlock(&Block{Type: "sorter"})
	require.NoError(t, err)
	require.Equal(t, "sorter1", name1)

	name2, err := b.AddBlock(&Block{Type: "invert-sorter"})
	require.NoError(t, err)
	require.Equal(t, "sorter2", name2, "invert-sorter and sorter share the sorter stem counter")
}

func TestLinkNameUsesSecondToLastWhenLastIsLarge(t *testing.T) {
	b := NewBuilder()
	name, err := b.AddBlock(&Block{Type: "power-node-large"})
	require.NoError(t, err)
	require.Equal(t, "node1", name)
}

func TestProcLinkNamesAreCallOrder(t *testing.T) {
	b := NewBuilder()
	name1, err := b.AddProc(&Proc{Type: "micro-processor", Positioned: true, X: 50, Y: 50})
	require.NoError(t, err)
	require.Equal(t, "processor1", name1)

	name2, err := b.AddProc(&Proc{Type: "micro-processor", Positioned: true, X: 0, Y: 0})
	require.NoError(t, err)
	require.Equal(t, "processor2", name2)
}

func TestBuildPositionedBlockCollisionIsDroppedNotFatal(t *testing.T) {
	b := NewBuilder()
	b.ProcessorTypeDefault = "micro-processor"
	_, err := b.AddBlock(&Block{Type: "switch", Positioned: true, X: 0, Y: 0})
	require.NoError(t, err)
	_, err = b.AddBlock(&Block{Type: "switch", Positioned: true, X: 0, Y: 0})
	require.NoError(t, err)

	s, err := b.Build()
	require.NoError(t, err)
	require.Len(t, s.Blocks, 1, "the second, colliding block must be dropped silently, not erroring Build")
}

func TestBuildUnpositionedBlocksScanLeftToRight(t *testing.T) {
	b := NewBuilder()
	b.ProcessorTypeDefault = "micro-processor"
	_, err := b.AddBlock(&Block{Type: "switch"})
	require.NoError(t, err)
	_, err = b.AddBlock(&Block{Type: "switch"})
	require.NoError(t, err)

	s, err := b.Build()
	require.NoError(t, err)
	require.Len(t, s.Blocks, 2)
	require.NotEqual(t, s.Blocks[0].X, s.Blocks[1].X)
	require.Equal(t, s.Blocks[0].Y, s.Blocks[1].Y)
}

func TestBuildLinksPositionedProcToBlocks(t *testing.T) {
	b := NewBuilder()
	b.ProcessorTypeDefault = "micro-processor"
	blockName, err := b.AddBlock(&Block{Type: "switch", Positioned: true, X: 5, Y: 5})
	require.NoError(t, err)
	_, err = b.AddProc(&Proc{Code: "", Positioned: true, X: 0, Y: 0, Type: "micro-processor"})
	require.NoError(t, err)

	s, err := b.Build()
	require.NoError(t, err)

	var procBlock *PlacedBlock
	for i := range s.Blocks {
		if s.Blocks[i].Config != nil {
			procBlock = &s.Blocks[i]
		}
	}
	require.NotNil(t, procBlock)
	require.Len(t, procBlock.Config.Links, 1)
	require.Equal(t, blockName, procBlock.Config.Links[0].Name)
	require.Equal(t, int16(5), procBlock.Config.Links[0].DX)
	require.Equal(t, int16(5), procBlock.Config.Links[0].DY)
}

func TestBuildExcludesSelfLinksBetweenProcs(t *testing.T) {
	b := NewBuilder()
	b.ProcessorTypeDefault = "micro-processor"
	_, err := b.AddProc(&Proc{Positioned: true, X: 0, Y: 0, Type: "micro-processor"})
	require.NoError(t, err)
	_, err = b.AddProc(&Proc{Positioned: true, X: 10, Y: 0, Type: "micro-processor"})
	require.NoError(t, err)

	s, err := b.Build()
	require.NoError(t, err)

	for i := range s.Blocks {
		if s.Blocks[i].Config == nil {
			continue
		}
		for _, l := range s.Blocks[i].Config.Links {
			require.NotEqual(t, int16(0), l.DX, "a processor must never link to itself")
		}
	}
}

func TestBuildUnpositionedProcsPackIntoGrowingSquare(t *testing.T) {
	b := NewBuilder()
	b.ProcessorTypeDefault = "micro-processor"
	for i := 0; i < 5; i++ {
		_, err := b.AddProc(&Proc{})
		require.NoError(t, err)
	}

	s, err := b.Build()
	require.NoError(t, err)
	require.Len(t, s.Blocks, 5)

	seen := map[[2]int]bool{}
	for _, blk := range s.Blocks {
		key := [2]int{blk.X, blk.Y}
		require.False(t, seen[key], "no two unpositioned processors should resolve to the same tile")
		seen[key] = true
	}
}
