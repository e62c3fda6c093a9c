package session

import (
	"bytes"
	"net"
	"testing"

	"go.uber.org/atomic"

	"github.com/hollowcube/stonegate/internal/broker"
	"github.com/hollowcube/stonegate/internal/config"
	"github.com/hollowcube/stonegate/internal/logging"
	"github.com/hollowcube/stonegate/internal/protocol"
	"github.com/hollowcube/stonegate/internal/world"
)

// fakeScheduler answers RequestRegion/AwaitRegion instantly without ever
// touching a generator, for tests that need a scheduler collaborator but
// not real terrain generation.
type fakeScheduler struct {
	requested []world.ChunkPos
}

func (f *fakeScheduler) RequestRegion(cx, cz, r int32) {
	f.requested = append(f.requested, world.ChunkPos{X: cx, Z: cz})
}

func (f *fakeScheduler) AwaitRegion(cx, cz, r int32) {}

// newTestSession builds a Session wired to an in-memory world and a net.Pipe
// connection, returning the session and the remote end of the pipe so tests
// can read back whatever the session writes.
func newTestSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()

	w := world.NewWorld()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Slots:          20,
			GameMode:       config.Survival,
			Difficulty:     0,
			NetCompression: -1,
			ViewDistance:   3,
		},
		Limits: config.RuntimeLimits{
			WriteTimeout: 0,
		},
	}

	s := New(&Deps{
		World:        w,
		Scheduler:    &fakeScheduler{},
		Generator:    world.NewGenerator(1),
		Broker:       broker.New(),
		Config:       cfg,
		Log:          logging.New("error"),
		OnlineCount:  atomic.NewInt32(0),
		NextEntityID: atomic.NewInt32(0),
	}, local)

	s.player.UUID = offlineUUID("tester")
	s.player.Username = "tester"
	s.codec.SetPhase(protocol.PhasePlay)

	s.brokerRecv = s.deps.Broker.AddClient(s.player.EntityID)
	s.subscribed = true

	return s, remote
}

// drainPacket reads exactly one raw packet off conn using a throwaway
// reader-side codec, for assertions against what a session wrote via
// writeRaw (direct, non-broadcast sends).
func drainPacket(t *testing.T, conn net.Conn) protocol.RawPacket {
	t.Helper()
	c := protocol.NewCodec(conn)
	pkt, err := c.ReadRaw()
	if err != nil {
		t.Fatalf("drainPacket: %v", err)
	}
	return pkt
}

// drainBroadcast reads one message this session received from its own
// broker subscription (set up by newTestSession) and decodes it — the path
// broadcast() takes instead of writing straight to conn.
func drainBroadcast(t *testing.T, s *Session) protocol.RawPacket {
	t.Helper()
	msg := <-s.brokerRecv
	c := protocol.NewCodec(bytes.NewReader(msg.Payload))
	pkt, err := c.ReadRaw()
	if err != nil {
		t.Fatalf("drainBroadcast: %v", err)
	}
	return pkt
}
