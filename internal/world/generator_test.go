package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorIsDeterministicForASeed(t *testing.T) {
	g1 := NewGenerator(1234)
	g2 := NewGenerator(1234)

	for _, p := range [][2]int{{0, 0}, {100, -50}, {-200, 200}} {
		assert.Equal(t, g1.SurfaceHeight(p[0], p[1]), g2.SurfaceHeight(p[0], p[1]))
		assert.Equal(t, g1.BlockAt(p[0], 70, p[1]), g2.BlockAt(p[0], 70, p[1]))
	}
}

func TestGeneratorDifferentSeedsCanDiverge(t *testing.T) {
	g1 := NewGenerator(1)
	g2 := NewGenerator(2)

	diverged := false
	for x := 0; x < 64; x++ {
		for z := 0; z < 64; z++ {
			if g1.SurfaceHeight(x, z) != g2.SurfaceHeight(x, z) {
				diverged = true
			}
		}
	}
	assert.True(t, diverged, "two different seeds should not produce an identical height field")
}

func TestGeneratorBlockAtBedrockFloor(t *testing.T) {
	g := NewGenerator(42)
	assert.Equal(t, uint16(7<<4), g.BlockAt(0, 0, 0))
}

func TestGeneratorBlockAtOutOfRangeYIsAir(t *testing.T) {
	g := NewGenerator(42)
	assert.Zero(t, g.BlockAt(0, -1, 0))
	assert.Zero(t, g.BlockAt(0, 256, 0))
}

func TestGeneratorBlockAtAboveSurfaceBelowSeaLevelIsWater(t *testing.T) {
	g := NewGenerator(7)
	surf := g.SurfaceHeight(0, 0)
	if surf >= WaterLevel {
		t.Skip("surface at this seed/column is already above sea level")
	}
	assert.Equal(t, uint16(8<<4), g.BlockAt(0, WaterLevel, 0))
}

func TestGenerateInstallsAChunkWithMatchingPos(t *testing.T) {
	w := NewWorld()
	g := NewGenerator(99)
	pos := ChunkPos{X: 3, Z: -3}

	g.Generate(w, pos)

	require.True(t, w.HasChunk(pos))
	c := w.GetChunk(pos)
	assert.Equal(t, pos, c.Pos)

	// The bedrock floor at y=0 must be present for every column.
	for lx := int32(0); lx < 16; lx++ {
		for lz := int32(0); lz < 16; lz++ {
			assert.Equal(t, uint16(7<<4), c.GetBlock(lx, 0, lz))
		}
	}
}

func TestGenerateIsDeterministicPerPosition(t *testing.T) {
	pos := ChunkPos{X: 5, Z: 5}

	w1 := NewWorld()
	NewGenerator(55).Generate(w1, pos)
	sections1, biomes1 := w1.GetChunk(pos).Clone()

	w2 := NewWorld()
	NewGenerator(55).Generate(w2, pos)
	sections2, biomes2 := w2.GetChunk(pos).Clone()

	assert.Equal(t, biomes1, biomes2)
	for i := range sections1 {
		if sections1[i] == nil || sections2[i] == nil {
			assert.Equal(t, sections1[i], sections2[i])
			continue
		}
		assert.Equal(t, *sections1[i], *sections2[i])
	}
}
