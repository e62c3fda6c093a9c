package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowcube/stonegate/internal/config"
	"github.com/hollowcube/stonegate/internal/protocol"
)

func TestFaceOffset(t *testing.T) {
	cases := []struct {
		face       byte
		dx, dy, dz int32
	}{
		{0, 0, -1, 0},
		{1, 0, 1, 0},
		{2, 0, 0, -1},
		{3, 0, 0, 1},
		{4, -1, 0, 0},
		{5, 1, 0, 0},
	}
	for _, c := range cases {
		x, y, z := faceOffset(10, 20, 30, c.face)
		assert.Equal(t, 10+c.dx, x)
		assert.Equal(t, 20+c.dy, y)
		assert.Equal(t, 30+c.dz, z)
	}
}

func TestHandleDiggingCreativeBreaksOnStart(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()
	s.player.GameMode = config.Creative
	s.deps.World.SetBlock(1, 2, 3, uint16(1)<<4)

	require.NoError(t, s.handleDigging(protocol.PlayerDigging{Status: protocol.DigStartDigging, X: 1, Y: 2, Z: 3, Face: 1}))

	pkt := drainBroadcast(t, s)
	assert.Equal(t, int32(protocol.OpPlayOutBlockChange), pkt.Opcode)
	assert.Equal(t, uint16(0), s.deps.World.GetBlock(1, 2, 3))
}

func TestHandleDiggingCreativeIgnoresFinish(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()
	s.player.GameMode = config.Creative
	s.deps.World.SetBlock(1, 2, 3, uint16(1)<<4)

	require.NoError(t, s.handleDigging(protocol.PlayerDigging{Status: protocol.DigFinishDigging, X: 1, Y: 2, Z: 3, Face: 1}))
	assert.Equal(t, uint16(1)<<4, s.deps.World.GetBlock(1, 2, 3))
}

func TestHandleDiggingSurvivalDropsItemOnFinish(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()
	s.player.GameMode = config.Survival
	s.deps.World.SetBlock(1, 2, 3, uint16(1)<<4)

	require.NoError(t, s.handleDigging(protocol.PlayerDigging{Status: protocol.DigFinishDigging, X: 1, Y: 2, Z: 3, Face: 1}))

	block := drainBroadcast(t, s)
	assert.Equal(t, int32(protocol.OpPlayOutBlockChange), block.Opcode)
	spawn := drainBroadcast(t, s)
	assert.Equal(t, int32(protocol.OpPlayOutSpawnObject), spawn.Opcode)
	meta := drainBroadcast(t, s)
	assert.Equal(t, int32(protocol.OpPlayOutEntityMeta), meta.Opcode)

	assert.Equal(t, uint16(0), s.deps.World.GetBlock(1, 2, 3))
}

func TestHandleDiggingSurvivalIgnoresStart(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()
	s.player.GameMode = config.Survival
	s.deps.World.SetBlock(1, 2, 3, uint16(1)<<4)

	require.NoError(t, s.handleDigging(protocol.PlayerDigging{Status: protocol.DigStartDigging, X: 1, Y: 2, Z: 3, Face: 1}))
	assert.Equal(t, uint16(1)<<4, s.deps.World.GetBlock(1, 2, 3))
}

func TestHandleBlockPlacementUsesFaceOffset(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	require.NoError(t, s.handleBlockPlacement(protocol.PlayerBlockPlacement{
		X: 0, Y: 0, Z: 0, Face: 1, HeldID: 5, HeldCount: 1, HeldDamage: 2,
	}))
	pkt := drainBroadcast(t, s)
	assert.Equal(t, int32(protocol.OpPlayOutBlockChange), pkt.Opcode)

	assert.Equal(t, uint16(5)<<4|2, s.deps.World.GetBlock(0, 1, 0))
	assert.Equal(t, uint16(0), s.deps.World.GetBlock(0, 0, 0))
}

func TestHandleBlockPlacementReplacesTallGrassInPlace(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()
	s.deps.World.SetBlock(0, 0, 0, uint16(tallGrassBlockID)<<4)

	require.NoError(t, s.handleBlockPlacement(protocol.PlayerBlockPlacement{
		X: 0, Y: 0, Z: 0, Face: 1, HeldID: 5, HeldCount: 1,
	}))
	drainBroadcast(t, s)

	assert.Equal(t, uint16(5)<<4, s.deps.World.GetBlock(0, 0, 0))
}

func TestHandleBlockPlacementIgnoresSpecialFace(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	require.NoError(t, s.handleBlockPlacement(protocol.PlayerBlockPlacement{
		X: 0, Y: 0, Z: 0, Face: protocol.BlockFaceSpecial, HeldID: 5, HeldCount: 1,
	}))
	assert.Equal(t, uint16(0), s.deps.World.GetBlock(0, 1, 0))
}
