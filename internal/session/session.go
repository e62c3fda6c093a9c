// Package session implements the per-connection protocol state machine: one
// Session per TCP connection, carrying it through Handshake, Status or
// Login, and (if it logs in) Play, the way the teacher's pkg/server package
// drove a connection through connHandler/loginHandler/playHandler — except
// here each connection owns its own goroutine and the only shared state it
// touches is the world, the scheduler, and the broker.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	uuid "github.com/satori/go.uuid"
	"go.uber.org/atomic"

	"github.com/hollowcube/stonegate/internal/broker"
	"github.com/hollowcube/stonegate/internal/chatmsg"
	"github.com/hollowcube/stonegate/internal/config"
	"github.com/hollowcube/stonegate/internal/logging"
	"github.com/hollowcube/stonegate/internal/protocol"
	"github.com/hollowcube/stonegate/internal/wire"
	"github.com/hollowcube/stonegate/internal/world"
)

// scheduler is the subset of *generation.Scheduler a session needs: request
// a region's generation and block until it's realized.
type scheduler interface {
	RequestRegion(cx, cz, r int32)
	AwaitRegion(cx, cz, r int32)
}

// Deps bundles the shared, long-lived collaborators every session needs.
// One Deps value is built at startup and handed to every accepted
// connection, mirroring the teacher's single *Server carrying the world,
// player map, and listener.
type Deps struct {
	World     *world.World
	Scheduler scheduler
	Generator *world.Generator
	Broker    *broker.Broker
	Config    *config.Config
	Log       logging.Logger

	OnlineCount  *atomic.Int32
	NextEntityID *atomic.Int32
}

// ItemStack is a single inventory slot's contents.
type ItemStack struct {
	ID     int16
	Count  byte
	Damage int16
}

// inventorySize matches the 1.8 player inventory window, indexed by window
// slot id: 0-4 crafting, 5-8 armor, 9-35 main, 36-44 hotbar. SetCreativeSlot
// writes whichever of the 45 ids it names.
const inventorySize = 45

// Player holds the mutable per-player state a session owns exclusively —
// no other goroutine ever touches it, so it needs no lock.
type Player struct {
	EntityID     int32
	Username     string
	UUID         [16]byte
	GameMode     config.GameMode
	X, Y, Z      float64
	Yaw, Pitch   float32
	OnGround     bool
	FlySpeed     float32
	WalkSpeed    float32
	SelectedSlot int16
	Inventory    [inventorySize]ItemStack
}

// defaultFlySpeed and defaultWalkSpeed match vanilla's defaults, the values
// the teacher's gamemode.go hands to PlayerAbilities for a freshly joined
// player before any /flyspeed or /walkspeed command changes them.
const (
	defaultFlySpeed  = 0.05
	defaultWalkSpeed = 0.1
)

// keepAliveInitialDelay and keepAliveInterval match spec.md §4.7's keep-alive
// cadence: the first one fires 5s after join, then every 10s after that.
const (
	keepAliveInitialDelay = 5 * time.Second
	keepAliveInterval     = 10 * time.Second
)

// inboundResult is what the read-loop goroutine hands back to Run: a
// decoded packet, or the error that ended the read loop (including a plain
// io.EOF on a clean disconnect).
type inboundResult struct {
	pkt protocol.RawPacket
	err error
}

// Session drives one connection through the protocol state machine. All of
// its mutable fields are touched only from the goroutine running Run, with
// the sole exception of brokerRecv, which is safe for concurrent receive by
// design (it's a channel).
type Session struct {
	deps *Deps
	conn net.Conn
	ctx  context.Context
	stop context.CancelFunc

	codec     *protocol.Codec
	log       logging.Logger
	sessionID string

	brokerRecv <-chan broker.Message
	subscribed bool

	player   Player
	loggedIn bool

	knownChunks     map[world.ChunkPos]struct{}
	currentChunkPos world.ChunkPos
	hasChunkPos     bool
}

// New constructs a Session for a freshly accepted connection. The codec's
// reader is wrapped in a rate limiter budgeted from Limits.MaxPacketsPerSecond,
// the inbound counterpart of the teacher's per-connection read deadline.
func New(deps *Deps, conn net.Conn) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	throttled := newThrottledReader(ctx, conn, deps.Config.Limits.MaxPacketsPerSecond)
	sessionID := uuid.NewV4().String()

	return &Session{
		deps:        deps,
		conn:        conn,
		ctx:         ctx,
		stop:        cancel,
		codec:       protocol.NewCodec(throttled),
		log:         deps.Log.WithField("session", sessionID),
		sessionID:   sessionID,
		knownChunks: make(map[world.ChunkPos]struct{}),
	}
}

// Run drives the connection until it disconnects or a fatal protocol error
// occurs. It owns a dedicated read-loop goroutine because codec.ReadRaw
// blocks on the socket and can't itself be one arm of a select; everything
// else (broker fan-out, keep-alive) is selected against from here.
func (s *Session) Run() {
	defer s.cleanup()

	inbound := make(chan inboundResult, 1)
	go s.readLoop(inbound)

	keepAlive := time.NewTimer(keepAliveInitialDelay)
	defer keepAlive.Stop()

	for {
		select {
		case res := <-inbound:
			if res.err != nil {
				if res.err.Error() != "EOF" {
					s.log.WithError(res.err).Debug("connection read ended")
				}
				return
			}
			if err := s.dispatch(res.pkt); err != nil {
				s.log.WithError(err).Warn("dispatch failed")
				return
			}

		case msg, ok := <-s.brokerRecv:
			if !ok {
				s.brokerRecv = nil
				continue
			}
			if err := s.writeRawBytes(msg.Payload); err != nil {
				s.log.WithError(err).Debug("broker delivery failed")
				return
			}

		case <-keepAlive.C:
			if s.loggedIn {
				if err := s.writeRaw(protocol.EncodeKeepAlive(int32(time.Now().UnixNano()))); err != nil {
					return
				}
			}
			keepAlive.Reset(keepAliveInterval)
		}
	}
}

func (s *Session) readLoop(out chan<- inboundResult) {
	for {
		pkt, err := s.codec.ReadRaw()
		out <- inboundResult{pkt: pkt, err: err}
		if err != nil {
			return
		}
	}
}

// dispatch routes one decoded packet by the codec's current phase, the
// Go-idiomatic form of the teacher's per-phase handler methods.
func (s *Session) dispatch(pkt protocol.RawPacket) error {
	switch s.codec.Phase() {
	case protocol.PhaseHandshake:
		return s.handleHandshake(pkt)
	case protocol.PhaseStatus:
		return s.handleStatusPacket(pkt)
	case protocol.PhaseLogin:
		return s.handleLoginPacket(pkt)
	case protocol.PhasePlay:
		return s.dispatchPlay(pkt)
	default:
		return fmt.Errorf("session: unknown phase %s", s.codec.Phase())
	}
}

func (s *Session) handleHandshake(pkt protocol.RawPacket) error {
	h, err := protocol.DecodeHandshake(pkt.Body)
	if err != nil {
		return err
	}
	if h.ProtocolVersion != protocol.ProtocolVersion {
		return fmt.Errorf("session: unsupported protocol version %d", h.ProtocolVersion)
	}
	switch h.NextState {
	case 1:
		s.codec.SetPhase(protocol.PhaseStatus)
	case 2:
		s.codec.SetPhase(protocol.PhaseLogin)
	default:
		return fmt.Errorf("session: unknown handshake next state %d", h.NextState)
	}
	return nil
}

func (s *Session) handleStatusPacket(pkt protocol.RawPacket) error {
	switch pkt.Opcode {
	case protocol.OpStatusRequest:
		return s.handleStatusRequest()
	case protocol.OpStatusPing:
		p, err := protocol.DecodeStatusPing(pkt.Body)
		if err != nil {
			return err
		}
		return s.writeRaw(protocol.EncodeStatusPong(p.Payload))
	default:
		return fmt.Errorf("session: unexpected status opcode 0x%02X", pkt.Opcode)
	}
}

type statusResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int32 `json:"max"`
		Online int32 `json:"online"`
		Sample []any `json:"sample"`
	} `json:"players"`
	Description chatmsg.Message `json:"description"`
}

func (s *Session) handleStatusRequest() error {
	var resp statusResponse
	resp.Version.Name = "1.8.0"
	resp.Version.Protocol = protocol.ProtocolVersion
	resp.Players.Max = s.deps.Config.Server.Slots
	resp.Players.Online = s.deps.OnlineCount.Load()
	resp.Players.Sample = []any{}
	resp.Description = chatmsg.Text(s.deps.Config.Server.Motd)

	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.writeRaw(protocol.EncodeStatusResponse(string(body)))
}

func (s *Session) handleLoginPacket(pkt protocol.RawPacket) error {
	if pkt.Opcode != protocol.OpLoginStart {
		return fmt.Errorf("session: unexpected login opcode 0x%02X", pkt.Opcode)
	}
	ls, err := protocol.DecodeLoginStart(pkt.Body)
	if err != nil {
		return err
	}
	return s.handleLogin(ls)
}

// handleLogin runs the join sequence spec.md §4.7 lays out end to end:
// compression handshake, login success, entering Play, shipping the spawn
// chunk window, placing the player, and only then announcing them — after
// subscribing to the broker, so the player's own join broadcast reaches it
// same as everyone else's.
func (s *Session) handleLogin(ls protocol.LoginStart) error {
	s.player.Username = ls.Username
	s.player.UUID = offlineUUID(ls.Username)
	s.player.EntityID = s.deps.NextEntityID.Inc()
	s.player.GameMode = s.deps.Config.Server.GameMode
	s.player.FlySpeed = defaultFlySpeed
	s.player.WalkSpeed = defaultWalkSpeed

	s.deps.OnlineCount.Inc()
	s.loggedIn = true

	threshold := s.deps.Config.Server.NetCompression
	if err := s.writeRaw(protocol.EncodeLoginCompression(threshold)); err != nil {
		return err
	}
	s.codec.SetCompressionThreshold(threshold)

	uuidStr := wire.FormatUUID(s.player.UUID)
	if err := s.writeRaw(protocol.EncodeLoginSuccess(uuidStr, s.player.Username)); err != nil {
		return err
	}
	s.codec.SetPhase(protocol.PhasePlay)

	if err := s.writeRaw(protocol.EncodeJoinGame(protocol.JoinGameFields{
		EntityID:         s.player.EntityID,
		GameMode:         byte(s.player.GameMode),
		Dimension:        0,
		Difficulty:       s.deps.Config.Server.Difficulty,
		MaxPlayers:       4, // literal per the join-game contract, independent of configured slots
		LevelType:        "default",
		ReducedDebugInfo: false,
	})); err != nil {
		return err
	}

	viewDist := s.deps.Config.Server.ViewDistance
	spawnChunk := world.ChunkPos{X: 0, Z: 0}
	s.deps.Scheduler.RequestRegion(0, 0, viewDist)
	s.deps.Scheduler.AwaitRegion(0, 0, viewDist)
	if err := s.sendChunks(0, 0, viewDist); err != nil {
		return err
	}
	s.currentChunkPos = spawnChunk
	s.hasChunkPos = true

	spawnY := float64(s.deps.Generator.SurfaceHeight(0, 0) + 1)
	s.player.X, s.player.Y, s.player.Z = 0, spawnY, 0
	if err := s.writeRaw(protocol.EncodeSetPlayerPosition(0, spawnY, 0, 0, 0, 0)); err != nil {
		return err
	}

	s.log.WithField("username", s.player.Username).Info("player joined")

	s.brokerRecv = s.deps.Broker.AddClient(s.player.EntityID)
	s.subscribed = true

	if err := s.broadcast(protocol.EncodeChatMessage(chatmsg.JoinAnnouncement(s.player.Username).String(), protocol.ChatPositionSystem)); err != nil {
		return err
	}
	return s.broadcast(protocol.EncodePlayerListAddPlayer(s.player.UUID, s.player.Username, byte(s.player.GameMode)))
}

// cleanup runs once Run's select loop exits for any reason: deregister from
// the broker, tell everyone else the player left, drop the online count,
// and close the connection.
func (s *Session) cleanup() {
	s.stop()

	if s.subscribed {
		s.deps.Broker.RemoveClient(s.player.EntityID)
	}
	if s.loggedIn {
		s.deps.OnlineCount.Dec()
		if err := s.broadcast(protocol.EncodeChatMessage(chatmsg.LeaveAnnouncement(s.player.Username).String(), protocol.ChatPositionSystem)); err != nil {
			s.log.WithError(err).Debug("leave announcement failed")
		}
		s.log.WithField("username", s.player.Username).Info("player left")
	}
	_ = s.conn.Close()
}

// writeRaw encodes and writes a packet through this session's own codec —
// used for everything addressed to this connection alone.
func (s *Session) writeRaw(pkt protocol.RawPacket) error {
	_ = s.conn.SetWriteDeadline(s.writeDeadline())
	return s.codec.WriteRaw(s.conn, pkt)
}

// writeRawBytes writes an already-framed byte slice directly to the socket
// — the path broker-delivered messages take, since they're encoded once by
// whichever session broadcast them rather than re-encoded per subscriber.
func (s *Session) writeRawBytes(b []byte) error {
	_ = s.conn.SetWriteDeadline(s.writeDeadline())
	_, err := s.conn.Write(b)
	return err
}

// writeDeadline reports the deadline to arm before a write: a zero-value
// time.Time clears any deadline, which is what an unconfigured (zero)
// WriteTimeout should mean rather than "expire immediately".
func (s *Session) writeDeadline() time.Time {
	if s.deps.Config.Limits.WriteTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.deps.Config.Limits.WriteTimeout)
}

// broadcast encodes pkt once using the server-wide compression threshold
// and publishes the resulting frame on the broker, so every subscribed
// session — including this one — delivers it with a plain byte-slice write.
func (s *Session) broadcast(pkt protocol.RawPacket) error {
	var buf bytes.Buffer
	enc := protocol.NewCodec(nil)
	enc.SetCompressionThreshold(s.codec.CompressionThreshold())
	if err := enc.WriteRaw(&buf, pkt); err != nil {
		return err
	}
	s.deps.Broker.Send(broker.Message{Sender: s.player.EntityID, Payload: buf.Bytes()})
	return nil
}
