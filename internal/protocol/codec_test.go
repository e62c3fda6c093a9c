package protocol

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, threshold int32, pkt RawPacket) RawPacket {
	t.Helper()

	write := NewCodec(nil)
	write.SetCompressionThreshold(threshold)

	var buf bytes.Buffer
	require.NoError(t, write.WriteRaw(&buf, pkt))

	read := NewCodec(&buf)
	read.SetCompressionThreshold(threshold)
	got, err := read.ReadRaw()
	require.NoError(t, err)
	return got
}

func TestReadRawRoundTripsUncompressed(t *testing.T) {
	pkt := Build(0x05, func(w *bytes.Buffer) { w.WriteString("hello") })

	got := roundTrip(t, 0, pkt)
	assert.Equal(t, pkt.Opcode, got.Opcode)
	assert.Equal(t, pkt.Body, got.Body)
}

func TestReadRawRoundTripsCompressedAboveThreshold(t *testing.T) {
	// A body well past the threshold so WriteRaw actually deflates it,
	// instead of taking the below-threshold zero-size-prefix path.
	body := []byte(strings.Repeat("x", 512))
	pkt := RawPacket{Opcode: 0x21, Body: body}

	got := roundTrip(t, 64, pkt)
	assert.Equal(t, pkt.Opcode, got.Opcode)
	assert.Equal(t, pkt.Body, got.Body)
}

func TestReadRawRoundTripsBelowThresholdUncompressed(t *testing.T) {
	// Body shorter than the threshold: WriteRaw must skip deflating it
	// and instead emit the empty-zlib-stream marker (uncompressed size
	// VarInt of 0), which ReadRaw must recognize and pass the body
	// through unchanged rather than trying to inflate it.
	pkt := RawPacket{Opcode: 0x01, Body: []byte("hi")}

	got := roundTrip(t, 1024, pkt)
	assert.Equal(t, pkt.Opcode, got.Opcode)
	assert.Equal(t, pkt.Body, got.Body)
}

func TestReadRawRejectsPacketLengthOverCap(t *testing.T) {
	var frame bytes.Buffer
	// Encode a length-prefix VarInt one past MaxPacketLength — no real
	// body needs to follow since the cap check fires right after the
	// length prefix is read, before any body bytes are consumed.
	writeVarIntTestHelper(&frame, MaxPacketLength+1)
	frame.Write(bytes.Repeat([]byte{0}, 8))

	c := NewCodec(&frame)
	_, err := c.ReadRaw()
	assert.Error(t, err)
}

func TestReadRawAcceptsPacketLengthAtExactCap(t *testing.T) {
	// A frame whose encoded (opcode+body) length is exactly
	// MaxPacketLength must round trip cleanly — only lengths strictly
	// greater than the cap are rejected.
	pkt := RawPacket{Opcode: 0x00, Body: make([]byte, MaxPacketLength-1)}

	got := roundTrip(t, 0, pkt)
	assert.Equal(t, pkt.Opcode, got.Opcode)
	assert.Equal(t, pkt.Body, got.Body)
}

func TestWriteRawRejectsOversizeUncompressedPacket(t *testing.T) {
	c := NewCodec(nil)
	pkt := RawPacket{Opcode: 0x00, Body: make([]byte, MaxPacketLength+1)}

	var buf bytes.Buffer
	err := c.WriteRaw(&buf, pkt)
	assert.Error(t, err)
}

func TestSetPhaseIsIdempotent(t *testing.T) {
	c := NewCodec(nil)
	c.SetPhase(PhasePlay)
	c.SetPhase(PhasePlay)
	assert.Equal(t, PhasePlay, c.Phase())

	c.SetPhase(PhaseStatus)
	assert.Equal(t, PhaseStatus, c.Phase())
}

func TestNewCodecStartsInHandshakePhaseUncompressed(t *testing.T) {
	c := NewCodec(nil)
	assert.Equal(t, PhaseHandshake, c.Phase())
	assert.Equal(t, int32(0), c.CompressionThreshold())
}

// writeVarIntTestHelper avoids importing internal/wire directly in a
// black-box test of the codec's framing, writing the same VarInt shape
// ReadRaw's peekHeaderVarInt expects as a length prefix.
func writeVarIntTestHelper(buf *bytes.Buffer, value int32) {
	uval := uint32(value)
	for {
		if uval&^uint32(0x7F) == 0 {
			buf.WriteByte(byte(uval))
			return
		}
		buf.WriteByte(byte(uval&0x7F) | 0x80)
		uval >>= 7
	}
}
