package world

import (
	"bytes"
	"encoding/binary"
)

// allFF is a reusable 2048-byte full-brightness lighting array; spec.md's
// wire format always sends lighting as all-0xFF (no lighting engine here).
var allFF = func() []byte {
	b := make([]byte, 2048)
	for i := range b {
		b[i] = 0xFF
	}
	return b
}()

// SerializeChunk encodes a chunk's present sections and biome data per
// spec.md §6.3's chunk-bulk payload layout: block data for every present
// section (ascending y), then one 2048-byte lighting region per present
// section, then 256 bytes of biome data. Absent sections contribute
// nothing and are excluded from the bitmask.
func SerializeChunk(sections [SectionHeight]*Section, biomes [256]byte) (data []byte, sectionBitmask uint16) {
	var bitmask uint16
	for i, s := range sections {
		if s != nil {
			bitmask |= 1 << uint(i)
		}
	}

	var buf bytes.Buffer
	for i, s := range sections {
		if bitmask&(1<<uint(i)) == 0 {
			continue
		}
		for _, blockState := range s {
			binary.Write(&buf, binary.LittleEndian, blockState)
		}
	}
	for i := range sections {
		if bitmask&(1<<uint(i)) == 0 {
			continue
		}
		buf.Write(allFF)
	}
	buf.Write(biomes[:])

	return buf.Bytes(), bitmask
}

// SerializeChunkAt clones and serializes the chunk currently stored for
// pos, or reports ok=false if it hasn't been realized.
func (w *World) SerializeChunkAt(pos ChunkPos) (data []byte, sectionBitmask uint16, ok bool) {
	c := w.GetChunk(pos)
	if c == nil {
		return nil, 0, false
	}
	sections, biomes := c.Clone()
	data, sectionBitmask = SerializeChunk(sections, biomes)
	return data, sectionBitmask, true
}
