package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowcube/stonegate/internal/protocol"
	"github.com/hollowcube/stonegate/internal/world"
)

func TestSendChunksShipsOnlyRealizedChunks(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	s.deps.World.CreateChunk(world.ChunkPos{X: 0, Z: 0})

	done := make(chan error, 1)
	go func() { done <- s.sendChunks(0, 0, 0) }()

	pkt := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutMapChunkBulk), pkt.Opcode)
	require.NoError(t, <-done)

	_, known := s.knownChunks[world.ChunkPos{X: 0, Z: 0}]
	assert.True(t, known)
}

func TestSendChunksSkipsAlreadyKnown(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	s.deps.World.CreateChunk(world.ChunkPos{X: 0, Z: 0})
	s.knownChunks[world.ChunkPos{X: 0, Z: 0}] = struct{}{}

	require.NoError(t, s.sendChunks(0, 0, 0))
}

func TestUpdateChunksNoOpWhenCenterUnchanged(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	s.currentChunkPos = world.ChunkPos{X: 5, Z: 5}
	s.hasChunkPos = true

	require.NoError(t, s.updateChunks(world.ChunkPos{X: 5, Z: 5}, 2))
}

func TestUpdateChunksUnloadsStaleChunks(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	s.deps.World.CreateChunk(world.ChunkPos{X: 0, Z: 0})
	s.knownChunks[world.ChunkPos{X: 50, Z: 50}] = struct{}{}
	s.currentChunkPos = world.ChunkPos{X: 99, Z: 99}
	s.hasChunkPos = true

	done := make(chan error, 1)
	go func() { done <- s.updateChunks(world.ChunkPos{X: 0, Z: 0}, 0) }()

	bulk := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutMapChunkBulk), bulk.Opcode)
	unload := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutChunkData), unload.Opcode)

	require.NoError(t, <-done)
	_, stillKnown := s.knownChunks[world.ChunkPos{X: 50, Z: 50}]
	assert.False(t, stillKnown)
}
