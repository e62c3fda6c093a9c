package session

import (
	"github.com/hollowcube/stonegate/internal/protocol"
	"github.com/hollowcube/stonegate/internal/world"
)

// maxChunksPerBulk is the per-S26MapChunkBulk frame cap spec.md's streaming
// algorithm names.
const maxChunksPerBulk = 10

// sendChunks ships every realized, not-yet-known chunk in the (2r+1)² square
// centered on (cx,cz), in S26MapChunkBulk frames of at most
// maxChunksPerBulk chunks each.
func (s *Session) sendChunks(cx, cz, r int32) error {
	var pending []world.ChunkPos
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			pos := world.ChunkPos{X: cx + dx, Z: cz + dz}
			if _, known := s.knownChunks[pos]; known {
				continue
			}
			if !s.deps.World.HasChunk(pos) {
				continue
			}
			pending = append(pending, pos)
			s.knownChunks[pos] = struct{}{}
		}
	}

	for start := 0; start < len(pending); start += maxChunksPerBulk {
		end := start + maxChunksPerBulk
		if end > len(pending) {
			end = len(pending)
		}
		group := pending[start:end]

		entries := make([]protocol.ChunkBulkEntry, 0, len(group))
		for _, pos := range group {
			data, bitmask, ok := s.deps.World.SerializeChunkAt(pos)
			if !ok {
				continue
			}
			entries = append(entries, protocol.ChunkBulkEntry{
				X: pos.X, Z: pos.Z, SectionBitmask: bitmask, Data: data,
			})
		}
		if len(entries) == 0 {
			continue
		}
		if err := s.writeRaw(protocol.EncodeMapChunkBulk(true, entries)); err != nil {
			return err
		}
	}
	return nil
}

// updateChunks re-centers the session's chunk window on center: requesting
// and awaiting generation of the surrounding region, shipping newly visible
// chunks, and unloading chunks that fell outside the window.
func (s *Session) updateChunks(center world.ChunkPos, r int32) error {
	if s.hasChunkPos && center == s.currentChunkPos {
		return nil
	}
	s.currentChunkPos = center
	s.hasChunkPos = true

	s.deps.Scheduler.RequestRegion(center.X, center.Z, r)
	s.deps.Scheduler.AwaitRegion(center.X, center.Z, r)

	if err := s.sendChunks(center.X, center.Z, r); err != nil {
		return err
	}

	var stale []world.ChunkPos
	for pos := range s.knownChunks {
		dx := pos.X - center.X
		dz := pos.Z - center.Z
		if dx < -r || dx > r || dz < -r || dz > r {
			stale = append(stale, pos)
		}
	}
	for _, pos := range stale {
		delete(s.knownChunks, pos)
		if err := s.writeRaw(protocol.EncodeChunkUnload(pos.X, pos.Z)); err != nil {
			return err
		}
	}
	return nil
}
