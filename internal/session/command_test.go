package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowcube/stonegate/internal/config"
	"github.com/hollowcube/stonegate/internal/protocol"
)

func TestDispatchCommandHelp(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	done := make(chan error, 1)
	go func() { done <- s.dispatchCommand("/help") }()

	pkt := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutChatMessage), pkt.Opcode)
	require.NoError(t, <-done)
}

func TestDispatchCommandUnknown(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	done := make(chan error, 1)
	go func() { done <- s.dispatchCommand("/nonsense") }()

	pkt := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutChatMessage), pkt.Opcode)
	require.NoError(t, <-done)
}

func TestCommandGameModeValid(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	done := make(chan error, 1)
	go func() { done <- s.dispatchCommand("/gm 1") }()

	changeState := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutChangeGameState), changeState.Opcode)
	abilities := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutPlayerAbilities), abilities.Opcode)
	listUpdate := drainBroadcast(t, s)
	assert.Equal(t, int32(protocol.OpPlayOutPlayerListItem), listUpdate.Opcode)

	require.NoError(t, <-done)
	assert.Equal(t, config.Creative, s.player.GameMode)
}

func TestCommandGameModeOutOfRange(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	done := make(chan error, 1)
	go func() { done <- s.dispatchCommand("/gm 9") }()

	pkt := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutChatMessage), pkt.Opcode)
	require.NoError(t, <-done)
	assert.Equal(t, config.Survival, s.player.GameMode)
}

func TestCommandFlySpeed(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	done := make(chan error, 1)
	go func() { done <- s.dispatchCommand("/flyspeed 0.5") }()

	pkt := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutPlayerAbilities), pkt.Opcode)
	require.NoError(t, <-done)
	assert.Equal(t, float32(0.5), s.player.FlySpeed)
}

func TestCommandWalkSpeedBadArg(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	done := make(chan error, 1)
	go func() { done <- s.dispatchCommand("/walkspeed fast") }()

	pkt := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpPlayOutChatMessage), pkt.Opcode)
	require.NoError(t, <-done)
}
