package session

import (
	"github.com/hollowcube/stonegate/internal/config"
	"github.com/hollowcube/stonegate/internal/protocol"
)

// abilitiesFor returns the ability-flag set the glossary's per-game-mode
// table prescribes.
func abilitiesFor(mode config.GameMode) protocol.AbilityFlags {
	switch mode {
	case config.Creative:
		return protocol.AbilityFlags{GodMode: true, AllowFlying: true, IsCreative: true}
	case config.Spectator:
		return protocol.AbilityFlags{GodMode: true, IsFlying: true, AllowFlying: true}
	default: // Survival, Adventure
		return protocol.AbilityFlags{}
	}
}

// sendAbilities emits S39PlayerAbilities reflecting the player's current
// game mode and fly/walk speed fields.
func (s *Session) sendAbilities() error {
	flags := abilitiesFor(s.player.GameMode)
	return s.writeRaw(protocol.EncodePlayerAbilities(flags, s.player.FlySpeed, s.player.WalkSpeed))
}
