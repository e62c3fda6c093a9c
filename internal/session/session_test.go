package session

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowcube/stonegate/internal/protocol"
	"github.com/hollowcube/stonegate/internal/wire"
	"github.com/hollowcube/stonegate/internal/world"
)

// newLoginTestSession is like newTestSession but starts the session
// unsubscribed and logged out, the state handleLogin expects to run from.
// The spawn chunk is realized up front, since the fake scheduler generates
// nothing and sendChunks only ships chunks present in the world.
func newLoginTestSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	s, remote := newTestSession(t)
	s.deps.World.CreateChunk(world.ChunkPos{X: 0, Z: 0})
	s.deps.Broker.RemoveClient(s.player.EntityID)
	s.subscribed = false
	s.brokerRecv = nil
	return s, remote
}

func TestHandleLoginJoinSequence(t *testing.T) {
	s, conn := newLoginTestSession(t)
	defer conn.Close()

	done := make(chan error, 1)
	go func() { done <- s.handleLogin(protocol.LoginStart{Username: "Notch"}) }()

	compression := drainPacket(t, conn)
	assert.Equal(t, int32(protocol.OpLoginOutCompression), compression.Opcode)
	success := drainPacket(t, conn)
	assert.Equal(t, int32(protocol.OpLoginOutSuccess), success.Opcode)
	joinGame := drainPacket(t, conn)
	assert.Equal(t, int32(protocol.OpPlayOutJoinGame), joinGame.Opcode)
	chunks := drainPacket(t, conn)
	assert.Equal(t, int32(protocol.OpPlayOutMapChunkBulk), chunks.Opcode)
	pos := drainPacket(t, conn)
	assert.Equal(t, int32(protocol.OpPlayOutSetPlayerPosition), pos.Opcode)

	require.NoError(t, <-done)
	assert.Equal(t, "Notch", s.player.Username)
	assert.True(t, s.loggedIn)
	assert.True(t, s.subscribed)
	assert.Equal(t, int32(1), s.deps.OnlineCount.Load())

	// Read only after handleLogin has returned, so the subscription it
	// installs happens-before this read.
	joinChat := drainBroadcast(t, s)
	assert.Equal(t, int32(protocol.OpPlayOutChatMessage), joinChat.Opcode)
	listAdd := drainBroadcast(t, s)
	assert.Equal(t, int32(protocol.OpPlayOutPlayerListItem), listAdd.Opcode)
}

func TestHandleLoginReceivesOwnBroadcast(t *testing.T) {
	// A session subscribes to the broker before announcing its own join,
	// so its join chat and player-list-add loop back to itself exactly
	// like every other subscriber's broadcasts do.
	s, conn := newLoginTestSession(t)
	defer conn.Close()

	done := make(chan error, 1)
	go func() { done <- s.handleLogin(protocol.LoginStart{Username: "Jeb"}) }()

	for i := 0; i < 5; i++ {
		drainPacket(t, conn)
	}
	require.NoError(t, <-done)

	// Read only after handleLogin has returned, so the subscription it
	// installs happens-before this read.
	msg := <-s.brokerRecv
	assert.Equal(t, s.player.EntityID, msg.Sender)
}

func TestStatusRequestReportsOnlineCount(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()
	s.deps.OnlineCount.Inc()

	done := make(chan error, 1)
	go func() { done <- s.handleStatusRequest() }()

	pkt := drainPacket(t, remote)
	assert.Equal(t, int32(protocol.OpStatusOutResponse), pkt.Opcode)
	require.NoError(t, <-done)
}

func TestHandleHandshakeRejectsWrongProtocolVersion(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	pkt := protocol.Build(protocol.OpHandshake, func(w *bytes.Buffer) {
		wire.WriteVarInt(w, 99)
		wire.WriteString(w, "localhost")
		wire.WriteUint16(w, 25565)
		wire.WriteVarInt(w, 1)
	})

	assert.Error(t, s.handleHandshake(pkt))
}

func TestHandleHandshakeAcceptsStatusNextState(t *testing.T) {
	s, remote := newTestSession(t)
	defer remote.Close()

	pkt := protocol.Build(protocol.OpHandshake, func(w *bytes.Buffer) {
		wire.WriteVarInt(w, protocol.ProtocolVersion)
		wire.WriteString(w, "localhost")
		wire.WriteUint16(w, 25565)
		wire.WriteVarInt(w, 1)
	})

	require.NoError(t, s.handleHandshake(pkt))
	assert.Equal(t, protocol.PhaseStatus, s.codec.Phase())
}
