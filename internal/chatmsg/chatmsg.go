// Package chatmsg builds the JSON chat component bodies carried by
// S02ChatMessage, adapted from the teacher's pkg/chat package.
package chatmsg

import "encoding/json"

// Message is a Minecraft JSON chat component.
type Message struct {
	Text  string    `json:"text"`
	Color string    `json:"color,omitempty"`
	Extra []Message `json:"extra,omitempty"`
}

// String serializes the message to JSON, the wire form S02ChatMessage
// carries as its body.
func (m Message) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// Text creates a plain, uncolored message.
func Text(text string) Message {
	return Message{Text: text}
}

// Colored creates a colored message using a Minecraft color name
// ("yellow", "red", ...).
func Colored(text, color string) Message {
	return Message{Text: text, Color: color}
}

// PlayerChat formats a player's chat line exactly as spec.md's chat
// broadcast contract requires: "§b<name>§r: <message>".
func PlayerChat(name, message string) Message {
	return Text("§b" + name + "§r: " + message)
}

// CommandError formats a slash-command error reply, "§c"-prefixed per the
// teacher's command.go convention.
func CommandError(text string) Message {
	return Text("§c" + text)
}

// JoinAnnouncement formats the "<name> joined the game" broadcast.
func JoinAnnouncement(name string) Message {
	return Colored(name+" joined the game", "yellow")
}

// LeaveAnnouncement formats the "<name> left the game" broadcast.
func LeaveAnnouncement(name string) Message {
	return Colored(name+" left the game", "yellow")
}
