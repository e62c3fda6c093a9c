// Package wire implements the scalar wire forms of protocol version 47:
// big-endian fixed-width integers and floats, VarInt/VarLong, length-prefixed
// strings, packed block positions, and the fixed-point angle byte.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MaxVarIntBytes bounds a 32-bit VarInt. The protocol subset this server
// parses never needs more than 4 bytes (28 bits), but a 5th continuation
// byte is accepted and rejected only past that, matching the wire format's
// nominal 5-byte ceiling.
const MaxVarIntBytes = 5

// ErrVarIntTooBig is returned when a VarInt's continuation bit is still set
// past MaxVarIntBytes bytes.
var ErrVarIntTooBig = fmt.Errorf("wire: VarInt exceeds %d bytes", MaxVarIntBytes)

// PeekVarInt inspects buf for a complete VarInt without consuming it.
// It returns the decoded value, the number of bytes it occupies, and
// whether a complete VarInt was found. A malformed (too-long) VarInt
// reports ok=false with err set; a merely-incomplete one reports
// ok=false, err=nil.
func PeekVarInt(buf []byte) (value int32, n int, ok bool, err error) {
	var result int32
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		result |= int32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return result, i + 1, true, nil
		}
		if i+1 >= MaxVarIntBytes {
			return 0, 0, false, ErrVarIntTooBig
		}
	}
	return 0, 0, false, nil
}

// ReadVarInt reads a VarInt from r.
func ReadVarInt(r io.Reader) (int32, error) {
	var result int32
	var buf [1]byte
	for i := 0; i < MaxVarIntBytes; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		b := buf[0]
		result |= int32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return result, nil
		}
	}
	return 0, ErrVarIntTooBig
}

// PutVarInt encodes value into buf (which must have room for at least 5
// bytes) and returns the number of bytes written.
func PutVarInt(buf []byte, value int32) int {
	uval := uint32(value)
	n := 0
	for {
		if uval&^uint32(0x7F) == 0 {
			buf[n] = byte(uval)
			return n + 1
		}
		buf[n] = byte(uval&0x7F) | 0x80
		n++
		uval >>= 7
	}
}

// VarIntSize reports the encoded length of value in bytes.
func VarIntSize(value int32) int {
	uval := uint32(value)
	size := 1
	for uval&^uint32(0x7F) != 0 {
		uval >>= 7
		size++
	}
	return size
}

// WriteVarInt writes a VarInt to w.
func WriteVarInt(w io.Writer, value int32) error {
	var buf [5]byte
	n := PutVarInt(buf[:], value)
	_, err := w.Write(buf[:n])
	return err
}

// ReadString reads a VarInt-length-prefixed UTF-8 string. The protocol caps
// string payloads at 32767 UTF-16 code units, i.e. up to 4 bytes each.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > 32767*4 {
		return "", fmt.Errorf("wire: string length %d out of range", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteString writes a VarInt-length-prefixed UTF-8 string.
func WriteString(w io.Writer, s string) error {
	b := []byte(s)
	if err := WriteVarInt(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func ReadBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func WriteBool(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func ReadByte(r io.Reader) (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return buf[0], err
}

func WriteByte(w io.Writer, v byte) error {
	_, err := w.Write([]byte{v})
	return err
}

func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadInt16(r io.Reader) (int16, error) {
	v, err := ReadUint16(r)
	return int16(v), err
}

func WriteInt16(w io.Writer, v int16) error {
	return WriteUint16(w, uint16(v))
}

func ReadInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func WriteInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func WriteInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadFloat32(r io.Reader) (float32, error) {
	v, err := ReadInt32(r)
	return math.Float32frombits(uint32(v)), err
}

func WriteFloat32(w io.Writer, v float32) error {
	return WriteInt32(w, int32(math.Float32bits(v)))
}

func ReadFloat64(r io.Reader) (float64, error) {
	v, err := ReadInt64(r)
	return math.Float64frombits(uint64(v)), err
}

func WriteFloat64(w io.Writer, v float64) error {
	return WriteInt64(w, int64(math.Float64bits(v)))
}

// ReadAngle reads a fixed-point rotation byte and scales it back to radians.
func ReadAngle(r io.Reader) (float64, error) {
	b, err := ReadByte(r)
	if err != nil {
		return 0, err
	}
	return float64(b) / 256.0 * 2 * math.Pi, nil
}

// WriteAngle scales a radian float to a single byte covering [0, 2π).
func WriteAngle(w io.Writer, radians float64) error {
	scaled := math.Mod(radians/(2*math.Pi)*255, 256)
	if scaled < 0 {
		scaled += 256
	}
	return WriteByte(w, byte(scaled))
}

func ReadUUID(r io.Reader) ([16]byte, error) {
	var id [16]byte
	_, err := io.ReadFull(r, id[:])
	return id, err
}

func WriteUUID(w io.Writer, id [16]byte) error {
	_, err := w.Write(id[:])
	return err
}

// FormatUUID renders a raw 16-byte UUID in its canonical hyphenated form.
func FormatUUID(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		id[0:4], id[4:6], id[6:8], id[8:10], id[10:16])
}

// ReadPosition reads a BlockPos packed as (x:26)(y:12)(z:26) MSB-first into
// a 64-bit container, applying two's-complement sign extension per field.
func ReadPosition(r io.Reader) (x, y, z int32, err error) {
	v, err := ReadInt64(r)
	if err != nil {
		return 0, 0, 0, err
	}
	x = int32(v >> 38)
	y = int32((v << 26) >> 52)
	z = int32(v << 38 >> 38)
	return x, y, z, nil
}

// WritePosition packs a BlockPos into its 64-bit wire container.
func WritePosition(w io.Writer, x, y, z int32) error {
	v := (int64(x&0x3FFFFFF) << 38) | (int64(y&0xFFF) << 26) | int64(z&0x3FFFFFF)
	return WriteInt64(w, v)
}

// ReadSlot reads an ItemStack: i16 id, and if id != -1, u8 count, u16
// damage, u8 nbt_start (always 0 in this server — no NBT is ever sent).
func ReadSlot(r io.Reader) (id int16, count byte, damage int16, err error) {
	id, err = ReadInt16(r)
	if err != nil {
		return 0, 0, 0, err
	}
	if id == -1 {
		return -1, 0, 0, nil
	}
	count, err = ReadByte(r)
	if err != nil {
		return 0, 0, 0, err
	}
	damage, err = ReadInt16(r)
	if err != nil {
		return 0, 0, 0, err
	}
	if _, err = ReadByte(r); err != nil { // nbt_start / "no NBT" marker
		return 0, 0, 0, err
	}
	return id, count, damage, nil
}

// WriteSlot writes an ItemStack. Pass id=-1 for an empty slot.
func WriteSlot(w io.Writer, id int16, count byte, damage int16) error {
	if err := WriteInt16(w, id); err != nil {
		return err
	}
	if id == -1 {
		return nil
	}
	if err := WriteByte(w, count); err != nil {
		return err
	}
	if err := WriteInt16(w, damage); err != nil {
		return err
	}
	return WriteByte(w, 0x00)
}
