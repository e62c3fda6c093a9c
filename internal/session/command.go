package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hollowcube/stonegate/internal/chatmsg"
	"github.com/hollowcube/stonegate/internal/config"
	"github.com/hollowcube/stonegate/internal/protocol"
)

const helpText = "Commands: /help, /gm <0-3>, /flyspeed <f>, /walkspeed <f>"

// dispatchCommand tokenizes a "/"-prefixed chat line and runs the named
// command, per spec.md §4.7.2.
func (s *Session) dispatchCommand(line string) error {
	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "help":
		return s.replyToSelf(helpText)
	case "gm":
		return s.commandGameMode(args)
	case "flyspeed":
		return s.commandSpeed(args, &s.player.FlySpeed)
	case "walkspeed":
		return s.commandSpeed(args, &s.player.WalkSpeed)
	default:
		return s.replyError(fmt.Sprintf("%s: Unknown command.", name))
	}
}

// replyToSelf sends a system-position chat message to this session only.
func (s *Session) replyToSelf(text string) error {
	return s.replyMessage(chatmsg.Text(text))
}

// replyError sends a command-error chat message to this session only.
func (s *Session) replyError(msg string) error {
	return s.replyMessage(chatmsg.CommandError("Error: " + msg))
}

func (s *Session) replyMessage(m chatmsg.Message) error {
	return s.writeRaw(protocol.EncodeChatMessage(m.String(), protocol.ChatPositionSystem))
}

func (s *Session) commandArgError(msg string) error {
	return s.replyError(msg)
}

func (s *Session) commandGameMode(args []string) error {
	if len(args) != 1 {
		return s.commandArgError("gm: expected one argument 0..3")
	}
	n, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil || n > 3 {
		return s.commandArgError("gm: expected one argument 0..3")
	}

	s.player.GameMode = config.GameMode(n)
	if err := s.writeRaw(protocol.EncodeChangeGameState(protocol.ChangeGameStateReasonChangeGameMode, float32(s.player.GameMode))); err != nil {
		return err
	}
	if err := s.sendAbilities(); err != nil {
		return err
	}
	return s.broadcastPlayerListGameMode()
}

func (s *Session) commandSpeed(args []string, field *float32) error {
	if len(args) != 1 {
		return s.commandArgError("expected one float argument")
	}
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return s.commandArgError("expected one float argument")
	}
	*field = float32(v)
	return s.sendAbilities()
}

func (s *Session) broadcastPlayerListGameMode() error {
	pkt := protocol.EncodePlayerListUpdateGameMode(s.player.UUID, byte(s.player.GameMode))
	return s.broadcast(pkt)
}
