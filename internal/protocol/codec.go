package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/hollowcube/stonegate/internal/wire"
)

// MaxPacketLength is the frame length ceiling: 2 MiB exactly. A length of
// exactly this value decodes; one byte over is rejected.
const MaxPacketLength = 2 * 1024 * 1024

// DecodeError distinguishes fatal framing errors from conditions the
// session handler can shrug off.
type DecodeError struct {
	msg string
}

func (e *DecodeError) Error() string { return e.msg }

func newDecodeError(format string, args ...any) *DecodeError {
	return &DecodeError{msg: fmt.Sprintf(format, args...)}
}

// Codec holds the per-connection hidden state spec.md calls {phase,
// compression_threshold, decoder_progress}. It must be owned and mutated by
// exactly one goroutine — the session loop driving it — so none of its
// methods take a lock.
type Codec struct {
	r *bufio.Reader

	phase                 Phase
	compressionThreshold  int32
}

// NewCodec wraps a connection's reader side. The writer side is stateless
// beyond phase/threshold and takes an io.Writer per call.
func NewCodec(r io.Reader) *Codec {
	return &Codec{
		r:                    bufio.NewReaderSize(r, 4096),
		phase:                PhaseHandshake,
		compressionThreshold: 0,
	}
}

// Phase returns the codec's current phase.
func (c *Codec) Phase() Phase { return c.phase }

// SetPhase transitions the codec to next. Idempotent: setting the same
// phase twice has the same effect as once. Takes effect immediately — the
// caller is responsible for only calling it between complete packets.
func (c *Codec) SetPhase(next Phase) { c.phase = next }

// SetCompressionThreshold sets the compression threshold. A value of 0
// disables compression. Idempotent under repeated identical calls.
func (c *Codec) SetCompressionThreshold(n int32) { c.compressionThreshold = n }

// CompressionThreshold returns the current threshold.
func (c *Codec) CompressionThreshold() int32 { return c.compressionThreshold }

// peekHeaderVarInt reads the frame length prefix without disturbing
// anything past it: it grows its peek window one byte at a time until a
// complete VarInt is visible, then discards exactly that many bytes.
func (c *Codec) peekHeaderVarInt() (int32, error) {
	for n := 1; n <= wire.MaxVarIntBytes; n++ {
		buf, err := c.r.Peek(n)
		if len(buf) == n {
			if v, consumed, ok, perr := wire.PeekVarInt(buf); perr != nil {
				return 0, newDecodeError("malformed VarInt length prefix: %v", perr)
			} else if ok {
				if _, derr := c.r.Discard(consumed); derr != nil {
					return 0, derr
				}
				return v, nil
			}
			continue
		}
		if err != nil {
			return 0, err
		}
	}
	return 0, newDecodeError("VarInt length prefix exceeds %d bytes", wire.MaxVarIntBytes)
}

// ReadRaw blocks until one full frame is available, decompresses it if
// necessary, and returns the opcode plus body. io.EOF (or a wrapped EOF)
// signals a clean end of stream; any other error is fatal for the session.
func (c *Codec) ReadRaw() (RawPacket, error) {
	length, err := c.peekHeaderVarInt()
	if err != nil {
		return RawPacket{}, err
	}
	if length < 0 || length > MaxPacketLength {
		return RawPacket{}, newDecodeError("packet length %d exceeds %d byte cap", length, MaxPacketLength)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return RawPacket{}, err
	}

	body := payload
	if c.compressionThreshold > 0 {
		br := bytes.NewReader(payload)
		uncompressedSize, err := wire.ReadVarInt(br)
		if err != nil {
			return RawPacket{}, newDecodeError("malformed uncompressed-size VarInt: %v", err)
		}
		rest := payload[len(payload)-br.Len():]
		if uncompressedSize == 0 {
			body = rest
		} else {
			zr, err := zlib.NewReader(bytes.NewReader(rest))
			if err != nil {
				return RawPacket{}, newDecodeError("invalid zlib stream: %v", err)
			}
			defer zr.Close()
			decompressed := make([]byte, uncompressedSize)
			if _, err := io.ReadFull(zr, decompressed); err != nil {
				return RawPacket{}, newDecodeError("zlib decompress failed: %v", err)
			}
			body = decompressed
		}
	}

	pr := bytes.NewReader(body)
	opcode, err := wire.ReadVarInt(pr)
	if err != nil {
		return RawPacket{}, newDecodeError("malformed opcode VarInt: %v", err)
	}
	rest := body[len(body)-pr.Len():]
	return RawPacket{Opcode: opcode, Body: rest}, nil
}

// WriteRaw encodes p per the current compression threshold and writes the
// full frame to w.
func (c *Codec) WriteRaw(w io.Writer, p RawPacket) error {
	var packetBuf bytes.Buffer
	if err := wire.WriteVarInt(&packetBuf, p.Opcode); err != nil {
		return err
	}
	packetBuf.Write(p.Body)
	packetBytes := packetBuf.Bytes()

	var frame bytes.Buffer

	if c.compressionThreshold <= 0 {
		if len(packetBytes) > MaxPacketLength {
			return newDecodeError("encoded packet %d bytes exceeds %d byte cap", len(packetBytes), MaxPacketLength)
		}
		if err := wire.WriteVarInt(&frame, int32(len(packetBytes))); err != nil {
			return err
		}
		frame.Write(packetBytes)
		_, err := w.Write(frame.Bytes())
		return err
	}

	if int32(len(packetBytes)) > c.compressionThreshold {
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(packetBytes); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		var sizePrefix bytes.Buffer
		if err := wire.WriteVarInt(&sizePrefix, int32(len(packetBytes))); err != nil {
			return err
		}
		total := sizePrefix.Len() + compressed.Len()
		if total > MaxPacketLength {
			return newDecodeError("encoded packet %d bytes exceeds %d byte cap", total, MaxPacketLength)
		}
		if err := wire.WriteVarInt(&frame, int32(total)); err != nil {
			return err
		}
		frame.Write(sizePrefix.Bytes())
		frame.Write(compressed.Bytes())
	} else {
		var body bytes.Buffer
		if err := wire.WriteVarInt(&body, 0); err != nil {
			return err
		}
		body.Write(packetBytes)
		if body.Len() > MaxPacketLength {
			return newDecodeError("encoded packet %d bytes exceeds %d byte cap", body.Len(), MaxPacketLength)
		}
		if err := wire.WriteVarInt(&frame, int32(body.Len())); err != nil {
			return err
		}
		frame.Write(body.Bytes())
	}

	_, err := w.Write(frame.Bytes())
	return err
}
