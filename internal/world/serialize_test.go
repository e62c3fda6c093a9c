package world

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeChunkBitmaskMarksOnlyPresentSections(t *testing.T) {
	var sections [SectionHeight]*Section
	sections[0] = &Section{}
	sections[3] = &Section{}
	var biomes [256]byte

	_, bitmask := SerializeChunk(sections, biomes)
	assert.Equal(t, uint16(0x0001|0x0008), bitmask)
}

func TestSerializeChunkSectionDataIsNotInterleaved(t *testing.T) {
	// Regression coverage for the non-interleaved wire layout: all present
	// sections' block data first, then all their lighting, then biomes —
	// never block+light pairs per section, which would desync the client
	// by 2048 bytes per section boundary.
	var sections [SectionHeight]*Section
	sections[0] = &Section{}
	sections[1] = &Section{}
	sections[0][0] = 7 << 4 // bedrock at section 0, local (0,0,0)
	sections[1][0] = 1 << 4 // stone at section 1, local (0,0,0)
	var biomes [256]byte

	data, bitmask := SerializeChunk(sections, biomes)
	require.Equal(t, uint16(0x0003), bitmask)

	const blockDataPerSection = SectionBlockCount * 2
	const lightPerSection = 2048

	expectedSize := 2*blockDataPerSection + 2*lightPerSection + 256
	require.Equal(t, expectedSize, len(data))

	sec1BlockStart := blockDataPerSection
	sec1FirstBlock := binary.LittleEndian.Uint16(data[sec1BlockStart:])
	assert.Equal(t, uint16(1<<4), sec1FirstBlock,
		"section 1 block data must start immediately after section 0's, not after its light")

	lightStart := 2 * blockDataPerSection
	assert.Equal(t, byte(0xFF), data[lightStart], "lighting region must start right after all block data")

	biomeStart := 2*blockDataPerSection + 2*lightPerSection
	assert.Len(t, data[biomeStart:], 256)
}

func TestSerializeChunkAbsentSectionsContributeNothing(t *testing.T) {
	var sections [SectionHeight]*Section
	var biomes [256]byte

	data, bitmask := SerializeChunk(sections, biomes)
	assert.Zero(t, bitmask)
	assert.Len(t, data, 256) // just the biome tail, no section data at all
}

func TestSerializeChunkAtRoundTripsThroughTheStore(t *testing.T) {
	w := NewWorld()
	pos := ChunkPos{2, -2}

	_, _, ok := w.SerializeChunkAt(pos)
	assert.False(t, ok, "an unrealized chunk must report ok=false")

	c := w.CreateChunk(pos)
	c.SetBlock(0, 0, 0, 5)

	data, bitmask, ok := w.SerializeChunkAt(pos)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0001), bitmask)
	assert.Equal(t, uint16(5), binary.LittleEndian.Uint16(data[0:2]))
}
