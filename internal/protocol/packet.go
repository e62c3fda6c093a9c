package protocol

import "bytes"

// ProtocolVersion is the single wire version this server speaks.
const ProtocolVersion = 47

// RawPacket is an opcode paired with its already-encoded body. The codec
// only ever moves RawPackets across the wire; the typed packet catalog in
// packets.go is built on top of it.
type RawPacket struct {
	Opcode int32
	Body   []byte
}

// Build constructs a RawPacket from an opcode and a builder closure, the
// same shape the rest of this codebase uses for every outbound packet.
func Build(opcode int32, fn func(w *bytes.Buffer)) RawPacket {
	var buf bytes.Buffer
	fn(&buf)
	return RawPacket{Opcode: opcode, Body: buf.Bytes()}
}
