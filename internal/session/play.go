package session

import (
	"strings"

	"github.com/hollowcube/stonegate/internal/chatmsg"
	"github.com/hollowcube/stonegate/internal/config"
	"github.com/hollowcube/stonegate/internal/protocol"
	"github.com/hollowcube/stonegate/internal/world"
)

// tallGrassBlockID is the one block id the block-placement contract special
// cases: placing into tall grass replaces it in place rather than offsetting
// from the clicked face.
const tallGrassBlockID = 31

// dispatchPlay handles one decoded Play-phase packet per spec.md §4.7's
// opcode table. Opcodes not named there are ignored.
func (s *Session) dispatchPlay(pkt protocol.RawPacket) error {
	switch pkt.Opcode {
	case protocol.OpPlayKeepAlive:
		return nil

	case protocol.OpPlayChatMessage:
		m, err := protocol.DecodeChatMessage(pkt.Body)
		if err != nil {
			return err
		}
		if strings.HasPrefix(m.Text, "/") {
			return s.dispatchCommand(m.Text)
		}
		return s.broadcast(protocol.EncodeChatMessage(chatmsg.PlayerChat(s.player.Username, m.Text).String(), protocol.ChatPositionChat))

	case protocol.OpPlayPlayer:
		p, err := protocol.DecodePlayer(pkt.Body)
		if err != nil {
			return err
		}
		s.player.OnGround = p.OnGround
		return nil

	case protocol.OpPlayPlayerPos:
		p, err := protocol.DecodePlayerPos(pkt.Body)
		if err != nil {
			return err
		}
		s.player.X, s.player.Y, s.player.Z = p.X, p.Y, p.Z
		s.player.OnGround = p.OnGround
		return s.updateChunks(world.ChunkPosFromBlock(int32(p.X), int32(p.Z)), s.deps.Config.Server.ViewDistance)

	case protocol.OpPlayPlayerRot:
		p, err := protocol.DecodePlayerRot(pkt.Body)
		if err != nil {
			return err
		}
		s.player.Yaw, s.player.Pitch = p.Yaw, p.Pitch
		s.player.OnGround = p.OnGround
		return nil

	case protocol.OpPlayPlayerPosRot:
		p, err := protocol.DecodePlayerPosRot(pkt.Body)
		if err != nil {
			return err
		}
		s.player.X, s.player.Y, s.player.Z = p.X, p.Y, p.Z
		s.player.Yaw, s.player.Pitch = p.Yaw, p.Pitch
		s.player.OnGround = p.OnGround
		return s.updateChunks(world.ChunkPosFromBlock(int32(p.X), int32(p.Z)), s.deps.Config.Server.ViewDistance)

	case protocol.OpPlayPlayerDigging:
		d, err := protocol.DecodePlayerDigging(pkt.Body)
		if err != nil {
			return err
		}
		return s.handleDigging(d)

	case protocol.OpPlayBlockPlacement:
		p, err := protocol.DecodePlayerBlockPlacement(pkt.Body)
		if err != nil {
			return err
		}
		return s.handleBlockPlacement(p)

	case protocol.OpPlayHeldItemChange:
		h, err := protocol.DecodeHeldItemChange(pkt.Body)
		if err != nil {
			return err
		}
		s.player.SelectedSlot = h.Slot
		return nil

	case protocol.OpPlayAnimation:
		return nil

	case protocol.OpPlaySetCreativeSlot:
		c, err := protocol.DecodeSetCreativeSlot(pkt.Body)
		if err != nil {
			return err
		}
		if c.SlotID >= 0 && int(c.SlotID) < len(s.player.Inventory) {
			s.player.Inventory[c.SlotID] = ItemStack{ID: c.ItemID, Count: c.Count, Damage: c.Damage}
		}
		return nil

	default:
		return nil
	}
}

// handleDigging implements spec.md §4.7's PlayerDigging contract: creative
// breaks instantly on StartDigging, survival breaks on FinishDigging, and
// survival additionally spawns a dropped-item entity for the broken block.
func (s *Session) handleDigging(d protocol.PlayerDigging) error {
	creative := s.player.GameMode == config.Creative
	applies := (creative && d.Status == protocol.DigStartDigging) ||
		(!creative && d.Status == protocol.DigFinishDigging)
	if !applies {
		return nil
	}

	current := s.deps.World.GetBlock(d.X, d.Y, d.Z)
	if current == 0 {
		return nil
	}
	s.deps.World.SetBlock(d.X, d.Y, d.Z, 0)
	if err := s.broadcast(protocol.EncodeBlockChange(d.X, d.Y, d.Z, 0)); err != nil {
		return err
	}

	if creative {
		return nil
	}

	dropID := s.deps.NextEntityID.Inc()
	blockID := int16(current >> 4)
	meta := int16(current & 0x0F)
	spawn := protocol.EncodeSpawnObject(dropID, 2, float64(d.X)+0.5, float64(d.Y)+0.5, float64(d.Z)+0.5, 0, 0, 0)
	if err := s.broadcast(spawn); err != nil {
		return err
	}
	meta2 := protocol.EncodeEntityMetaSlot(dropID, 10, blockID, 1, meta)
	return s.broadcast(meta2)
}

// handleBlockPlacement implements spec.md §4.7's PlayerBlockPlacement
// contract: a Special face means "use item", not placement, and is ignored;
// otherwise the target cell is the clicked position itself for tall grass,
// or the face-offset neighbor for anything else.
func (s *Session) handleBlockPlacement(p protocol.PlayerBlockPlacement) error {
	if p.Face == protocol.BlockFaceSpecial {
		return nil
	}
	if p.HeldID < 0 || p.HeldID > 255 {
		return nil
	}

	tx, ty, tz := p.X, p.Y, p.Z
	if s.deps.World.GetBlock(p.X, p.Y, p.Z)>>4 != tallGrassBlockID {
		tx, ty, tz = faceOffset(p.X, p.Y, p.Z, p.Face)
	}

	state := uint16(p.HeldID)<<4 | uint16(p.HeldDamage)&0x0F
	s.deps.World.SetBlock(tx, ty, tz, state)
	return s.broadcast(protocol.EncodeBlockChange(tx, ty, tz, state))
}

// faceOffset steps one block off (x,y,z) in the direction named by a
// PlayerBlockPlacement face value (0=down,1=up,2=north,3=south,4=west,5=east).
func faceOffset(x, y, z int32, face byte) (int32, int32, int32) {
	switch face {
	case 0:
		return x, y - 1, z
	case 1:
		return x, y + 1, z
	case 2:
		return x, y, z - 1
	case 3:
		return x, y, z + 1
	case 4:
		return x - 1, y, z
	case 5:
		return x + 1, y, z
	default:
		return x, y + 1, z
	}
}
