package protocol

import (
	"bytes"
	"fmt"

	"github.com/hollowcube/stonegate/internal/wire"
)

// --- Handshake / Status / Login, inbound ---

type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

func DecodeHandshake(body []byte) (Handshake, error) {
	r := bytes.NewReader(body)
	var h Handshake
	var err error
	if h.ProtocolVersion, err = wire.ReadVarInt(r); err != nil {
		return h, err
	}
	if h.ServerAddress, err = wire.ReadString(r); err != nil {
		return h, err
	}
	if h.ServerPort, err = wire.ReadUint16(r); err != nil {
		return h, err
	}
	if h.NextState, err = wire.ReadVarInt(r); err != nil {
		return h, err
	}
	return h, nil
}

type LoginStart struct {
	Username string
}

func DecodeLoginStart(body []byte) (LoginStart, error) {
	r := bytes.NewReader(body)
	name, err := wire.ReadString(r)
	return LoginStart{Username: name}, err
}

type StatusPing struct {
	Payload int64
}

func DecodeStatusPing(body []byte) (StatusPing, error) {
	r := bytes.NewReader(body)
	v, err := wire.ReadInt64(r)
	return StatusPing{Payload: v}, err
}

func EncodeStatusResponse(json string) RawPacket {
	return Build(OpStatusOutResponse, func(w *bytes.Buffer) {
		wire.WriteString(w, json)
	})
}

func EncodeStatusPong(payload int64) RawPacket {
	return Build(OpStatusOutPong, func(w *bytes.Buffer) {
		wire.WriteInt64(w, payload)
	})
}

func EncodeLoginCompression(threshold int32) RawPacket {
	return Build(OpLoginOutCompression, func(w *bytes.Buffer) {
		wire.WriteVarInt(w, threshold)
	})
}

func EncodeLoginSuccess(uuidStr, username string) RawPacket {
	return Build(OpLoginOutSuccess, func(w *bytes.Buffer) {
		wire.WriteString(w, uuidStr)
		wire.WriteString(w, username)
	})
}

func EncodeLoginDisconnect(jsonReason string) RawPacket {
	return Build(OpLoginOutDisconnect, func(w *bytes.Buffer) {
		wire.WriteString(w, jsonReason)
	})
}

// --- Play, inbound ---

type PlayerDigging struct {
	Status byte
	X, Y, Z int32
	Face   byte
}

// Digging status values.
const (
	DigStartDigging byte = 0
	DigFinishDigging byte = 2
	DigDropItemStack byte = 3
	DigDropItem      byte = 4
)

func DecodePlayerDigging(body []byte) (PlayerDigging, error) {
	r := bytes.NewReader(body)
	var p PlayerDigging
	var err error
	if p.Status, err = wire.ReadByte(r); err != nil {
		return p, err
	}
	if p.X, p.Y, p.Z, err = wire.ReadPosition(r); err != nil {
		return p, err
	}
	if p.Face, err = wire.ReadByte(r); err != nil {
		return p, err
	}
	return p, nil
}

// BlockFaceSpecial is the sentinel face value ("special", no face) sent for
// a use-item action rather than a directional block placement.
const BlockFaceSpecial byte = 255

type PlayerBlockPlacement struct {
	X, Y, Z int32
	Face    byte
	HeldID  int16
	HeldCount byte
	HeldDamage int16
	CursorX, CursorY, CursorZ byte
}

func DecodePlayerBlockPlacement(body []byte) (PlayerBlockPlacement, error) {
	r := bytes.NewReader(body)
	var p PlayerBlockPlacement
	var err error
	if p.X, p.Y, p.Z, err = wire.ReadPosition(r); err != nil {
		return p, err
	}
	if p.Face, err = wire.ReadByte(r); err != nil {
		return p, err
	}
	if p.HeldID, p.HeldCount, p.HeldDamage, err = wire.ReadSlot(r); err != nil {
		return p, err
	}
	if p.CursorX, err = wire.ReadByte(r); err != nil {
		return p, err
	}
	if p.CursorY, err = wire.ReadByte(r); err != nil {
		return p, err
	}
	if p.CursorZ, err = wire.ReadByte(r); err != nil {
		return p, err
	}
	return p, nil
}

type PlayerPos struct {
	X, Y, Z  float64
	OnGround bool
}

func DecodePlayerPos(body []byte) (PlayerPos, error) {
	r := bytes.NewReader(body)
	var p PlayerPos
	var err error
	if p.X, err = wire.ReadFloat64(r); err != nil {
		return p, err
	}
	if p.Y, err = wire.ReadFloat64(r); err != nil {
		return p, err
	}
	if p.Z, err = wire.ReadFloat64(r); err != nil {
		return p, err
	}
	if p.OnGround, err = wire.ReadBool(r); err != nil {
		return p, err
	}
	return p, nil
}

type PlayerRot struct {
	Yaw, Pitch float32
	OnGround   bool
}

func DecodePlayerRot(body []byte) (PlayerRot, error) {
	r := bytes.NewReader(body)
	var p PlayerRot
	var err error
	if p.Yaw, err = wire.ReadFloat32(r); err != nil {
		return p, err
	}
	if p.Pitch, err = wire.ReadFloat32(r); err != nil {
		return p, err
	}
	if p.OnGround, err = wire.ReadBool(r); err != nil {
		return p, err
	}
	return p, nil
}

type PlayerPosRot struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	OnGround   bool
}

func DecodePlayerPosRot(body []byte) (PlayerPosRot, error) {
	r := bytes.NewReader(body)
	var p PlayerPosRot
	var err error
	if p.X, err = wire.ReadFloat64(r); err != nil {
		return p, err
	}
	if p.Y, err = wire.ReadFloat64(r); err != nil {
		return p, err
	}
	if p.Z, err = wire.ReadFloat64(r); err != nil {
		return p, err
	}
	if p.Yaw, err = wire.ReadFloat32(r); err != nil {
		return p, err
	}
	if p.Pitch, err = wire.ReadFloat32(r); err != nil {
		return p, err
	}
	if p.OnGround, err = wire.ReadBool(r); err != nil {
		return p, err
	}
	return p, nil
}

type Player struct {
	OnGround bool
}

func DecodePlayer(body []byte) (Player, error) {
	r := bytes.NewReader(body)
	onGround, err := wire.ReadBool(r)
	return Player{OnGround: onGround}, err
}

type ChatMessage struct {
	Text string
}

func DecodeChatMessage(body []byte) (ChatMessage, error) {
	r := bytes.NewReader(body)
	text, err := wire.ReadString(r)
	return ChatMessage{Text: text}, err
}

type HeldItemChange struct {
	Slot int16
}

func DecodeHeldItemChange(body []byte) (HeldItemChange, error) {
	r := bytes.NewReader(body)
	slot, err := wire.ReadInt16(r)
	return HeldItemChange{Slot: slot}, err
}

type SetCreativeSlot struct {
	SlotID int16
	ItemID int16
	Count  byte
	Damage int16
}

func DecodeSetCreativeSlot(body []byte) (SetCreativeSlot, error) {
	r := bytes.NewReader(body)
	var p SetCreativeSlot
	var err error
	if p.SlotID, err = wire.ReadInt16(r); err != nil {
		return p, err
	}
	if p.ItemID, p.Count, p.Damage, err = wire.ReadSlot(r); err != nil {
		return p, err
	}
	return p, nil
}

// --- Play, outbound ---

func EncodeKeepAlive(id int32) RawPacket {
	return Build(OpPlayOutKeepAlive, func(w *bytes.Buffer) {
		wire.WriteVarInt(w, id)
	})
}

type JoinGameFields struct {
	EntityID         int32
	GameMode         byte
	Dimension        byte
	Difficulty       byte
	MaxPlayers       byte
	LevelType        string
	ReducedDebugInfo bool
}

func EncodeJoinGame(f JoinGameFields) RawPacket {
	return Build(OpPlayOutJoinGame, func(w *bytes.Buffer) {
		wire.WriteInt32(w, f.EntityID)
		wire.WriteByte(w, f.GameMode)
		wire.WriteByte(w, f.Dimension)
		wire.WriteByte(w, f.Difficulty)
		wire.WriteByte(w, f.MaxPlayers)
		wire.WriteString(w, f.LevelType)
		wire.WriteBool(w, f.ReducedDebugInfo)
	})
}

// Chat position: where the client renders the message.
const (
	ChatPositionChat   byte = 0
	ChatPositionSystem byte = 1
)

func EncodeChatMessage(jsonText string, position byte) RawPacket {
	return Build(OpPlayOutChatMessage, func(w *bytes.Buffer) {
		wire.WriteString(w, jsonText)
		wire.WriteByte(w, position)
	})
}

func EncodeSetPlayerPosition(x, y, z float64, yaw, pitch float32, flags byte) RawPacket {
	return Build(OpPlayOutSetPlayerPosition, func(w *bytes.Buffer) {
		wire.WriteFloat64(w, x)
		wire.WriteFloat64(w, y)
		wire.WriteFloat64(w, z)
		wire.WriteFloat32(w, yaw)
		wire.WriteFloat32(w, pitch)
		wire.WriteByte(w, flags)
	})
}

// EncodeSpawnObject encodes a SpawnObject(kind, ...) packet. Used here only
// for dropped-item entities (kind=2), per spec.md's digging contract.
func EncodeSpawnObject(entityID int32, kind byte, x, y, z float64, pitch, yaw byte, data int32) RawPacket {
	return Build(OpPlayOutSpawnObject, func(w *bytes.Buffer) {
		wire.WriteVarInt(w, entityID)
		wire.WriteByte(w, kind)
		wire.WriteInt32(w, int32(x*32))
		wire.WriteInt32(w, int32(y*32))
		wire.WriteInt32(w, int32(z*32))
		wire.WriteByte(w, pitch)
		wire.WriteByte(w, yaw)
		wire.WriteInt32(w, data)
	})
}

// EncodeEntityMetaSlot encodes a single-entry Entity Metadata packet whose
// one entry is a Slot value at the given index — the shape spec.md's
// digging contract needs for the dropped-item stack display.
func EncodeEntityMetaSlot(entityID int32, index byte, itemID int16, count byte, damage int16) RawPacket {
	return Build(OpPlayOutEntityMeta, func(w *bytes.Buffer) {
		wire.WriteVarInt(w, entityID)
		wire.WriteByte(w, (5<<5)|(index&0x1F)) // type 5 = Slot
		wire.WriteSlot(w, itemID, count, damage)
		wire.WriteByte(w, 0x7F) // terminator
	})
}

// EncodeChunkUnload emits the zero-populated "unload chunk" payload for a
// single ChunkData frame (primary bit mask 0, no section data).
func EncodeChunkUnload(cx, cz int32) RawPacket {
	return Build(OpPlayOutChunkData, func(w *bytes.Buffer) {
		wire.WriteInt32(w, cx)
		wire.WriteInt32(w, cz)
		wire.WriteBool(w, true) // ground-up continuous
		wire.WriteUint16(w, 0) // primary bit mask: nothing present
		wire.WriteVarInt(w, 0) // data size
	})
}

func EncodeBlockChange(x, y, z int32, state uint16) RawPacket {
	return Build(OpPlayOutBlockChange, func(w *bytes.Buffer) {
		wire.WritePosition(w, x, y, z)
		wire.WriteVarInt(w, int32(state))
	})
}

// ChunkBulkEntry is one chunk's contribution to a MapChunkBulk frame: its
// coordinate, section bitmask, and already-serialized section/biome data
// (see internal/world's SerializeChunk/SerializeChunkAt, grounded on the
// teacher's chunk serializer).
type ChunkBulkEntry struct {
	X, Z          int32
	SectionBitmask uint16
	Data          []byte
}

// EncodeMapChunkBulk encodes S26: one or more chunk columns in a single
// frame, capped by the session handler at 10 chunks per frame.
func EncodeMapChunkBulk(skylight bool, entries []ChunkBulkEntry) RawPacket {
	return Build(OpPlayOutMapChunkBulk, func(w *bytes.Buffer) {
		wire.WriteBool(w, skylight)
		wire.WriteVarInt(w, int32(len(entries)))
		for _, e := range entries {
			wire.WriteInt32(w, e.X)
			wire.WriteInt32(w, e.Z)
			wire.WriteUint16(w, e.SectionBitmask)
		}
		for _, e := range entries {
			w.Write(e.Data)
		}
	})
}

// Reasons for ChangeGameState.
const (
	ChangeGameStateReasonChangeGameMode byte = 3
)

func EncodeChangeGameState(reason byte, value float32) RawPacket {
	return Build(OpPlayOutChangeGameState, func(w *bytes.Buffer) {
		wire.WriteByte(w, reason)
		wire.WriteFloat32(w, value)
	})
}

// PlayerListItem actions.
const (
	PlayerListAddPlayer      int32 = 0
	PlayerListUpdateGameMode int32 = 1
)

func EncodePlayerListAddPlayer(uuid [16]byte, username string, gameMode byte) RawPacket {
	return Build(OpPlayOutPlayerListItem, func(w *bytes.Buffer) {
		wire.WriteVarInt(w, PlayerListAddPlayer)
		wire.WriteVarInt(w, 1)
		wire.WriteUUID(w, uuid)
		wire.WriteString(w, username)
		wire.WriteVarInt(w, 0) // no properties
		wire.WriteVarInt(w, int32(gameMode))
		wire.WriteVarInt(w, 0) // ping
		wire.WriteBool(w, false) // no display name
	})
}

func EncodePlayerListUpdateGameMode(uuid [16]byte, gameMode byte) RawPacket {
	return Build(OpPlayOutPlayerListItem, func(w *bytes.Buffer) {
		wire.WriteVarInt(w, PlayerListUpdateGameMode)
		wire.WriteVarInt(w, 1)
		wire.WriteUUID(w, uuid)
		wire.WriteVarInt(w, int32(gameMode))
	})
}

// AbilityFlags packs the four per-mode ability bits per the glossary's
// encoding: bit0 god_mode, bit1 is_flying, bit2 allow_flying, bit3 is_creative.
type AbilityFlags struct {
	GodMode     bool
	IsFlying    bool
	AllowFlying bool
	IsCreative  bool
}

func (f AbilityFlags) Byte() byte {
	var b byte
	if f.GodMode {
		b |= 0x01
	}
	if f.IsFlying {
		b |= 0x02
	}
	if f.AllowFlying {
		b |= 0x04
	}
	if f.IsCreative {
		b |= 0x08
	}
	return b
}

func EncodePlayerAbilities(flags AbilityFlags, flySpeed, walkSpeed float32) RawPacket {
	return Build(OpPlayOutPlayerAbilities, func(w *bytes.Buffer) {
		wire.WriteByte(w, flags.Byte())
		wire.WriteFloat32(w, flySpeed)
		wire.WriteFloat32(w, walkSpeed)
	})
}

// unknownOpcode reports an opcode/phase combination with no mapping, as a
// plain error rather than a *DecodeError.
func unknownOpcode(phase Phase, opcode int32) error {
	return fmt.Errorf("protocol: opcode 0x%02X undefined in phase %s", opcode, phase)
}
