package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarIntRoundTrip(t *testing.T) {
	tests := []struct {
		value    int32
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2097151, []byte{0xFF, 0xFF, 0x7F}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, tt.value))
		assert.Equal(t, tt.expected, buf.Bytes())
		assert.Equal(t, len(tt.expected), VarIntSize(tt.value))

		got, err := ReadVarInt(bytes.NewReader(tt.expected))
		require.NoError(t, err)
		assert.Equal(t, tt.value, got)

		val, n, ok, err := PeekVarInt(tt.expected)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, tt.value, val)
		assert.Equal(t, len(tt.expected), n)
	}
}

func TestPeekVarIntIncompleteReportsNotOk(t *testing.T) {
	// 0x80 has its continuation bit set with nothing following — a valid
	// prefix of a longer VarInt, not yet complete.
	val, n, ok, err := PeekVarInt([]byte{0x80})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, val)
	assert.Zero(t, n)
}

func TestPeekVarIntRejectsFifthContinuationByte(t *testing.T) {
	// Five bytes, every one with the continuation bit set: never
	// terminates within MaxVarIntBytes.
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80}
	_, _, ok, err := PeekVarInt(buf)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrVarIntTooBig)
}

func TestReadVarIntRejectsFifthContinuationByte(t *testing.T) {
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80}
	_, err := ReadVarInt(bytes.NewReader(buf))
	assert.ErrorIs(t, err, ErrVarIntTooBig)
}

func TestStringRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"Hello",
		"Hello, World!",
		"日本語テスト",
	}

	for _, s := range tests {
		var buf bytes.Buffer
		require.NoError(t, WriteString(&buf, s))

		got, err := ReadString(&buf)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestReadStringRejectsOversizeLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarInt(&buf, 32767*4+1))

	_, err := ReadString(&buf)
	assert.Error(t, err)
}

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		var buf bytes.Buffer
		require.NoError(t, WriteBool(&buf, v))
		got, err := ReadBool(&buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFixedWidthIntRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInt16(&buf, -1234))
	i16, err := ReadInt16(&buf)
	require.NoError(t, err)
	assert.Equal(t, int16(-1234), i16)

	buf.Reset()
	require.NoError(t, WriteInt32(&buf, -123456789))
	i32, err := ReadInt32(&buf)
	require.NoError(t, err)
	assert.Equal(t, int32(-123456789), i32)

	buf.Reset()
	require.NoError(t, WriteInt64(&buf, -123456789012345))
	i64, err := ReadInt64(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(-123456789012345), i64)
}

func TestFloatRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFloat32(&buf, 3.14159))
	f32, err := ReadFloat32(&buf)
	require.NoError(t, err)
	assert.InDelta(t, float32(3.14159), f32, 0.00001)

	buf.Reset()
	require.NoError(t, WriteFloat64(&buf, -2.71828182845))
	f64, err := ReadFloat64(&buf)
	require.NoError(t, err)
	assert.InDelta(t, -2.71828182845, f64, 0.0000000001)
}

func TestAngleRoundTripWithinOneQuantizationStep(t *testing.T) {
	// The angle byte only has 256 (well, 255 per WriteAngle's own scale)
	// distinguishable values around a full turn, so a round trip is
	// lossy by design — it should stay within a couple of quantization
	// steps of the original, never drift further.
	const twoPi = 2 * 3.141592653589793
	const quantizationStep = twoPi / 255.0

	for step := 0; step < 256; step++ {
		radians := float64(step) / 256.0 * twoPi
		var buf bytes.Buffer
		require.NoError(t, WriteAngle(&buf, radians))
		got, err := ReadAngle(&buf)
		require.NoError(t, err)
		assert.InDelta(t, radians, got, 2*quantizationStep)
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	id := [16]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10}

	var buf bytes.Buffer
	require.NoError(t, WriteUUID(&buf, id))
	got, err := ReadUUID(&buf)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	assert.Equal(t, "01020304-0506-0708-090a-0b0c0d0e0f10", FormatUUID(id))
}

func TestPositionRoundTripIncludingNegatives(t *testing.T) {
	tests := []struct{ x, y, z int32 }{
		{0, 0, 0},
		{1, 2, 3},
		{-1, -2, -3},
		{33554431, 2047, -33554432},
		{-33554432, -2048, 33554431},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		require.NoError(t, WritePosition(&buf, tt.x, tt.y, tt.z))
		x, y, z, err := ReadPosition(&buf)
		require.NoError(t, err)
		assert.Equal(t, tt.x, x)
		assert.Equal(t, tt.y, y)
		assert.Equal(t, tt.z, z)
	}
}

func TestSlotRoundTripEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSlot(&buf, -1, 0, 0))

	id, count, damage, err := ReadSlot(&buf)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), id)
	assert.Zero(t, count)
	assert.Zero(t, damage)
}

func TestSlotRoundTripPresent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSlot(&buf, 42, 5, 3))

	id, count, damage, err := ReadSlot(&buf)
	require.NoError(t, err)
	assert.Equal(t, int16(42), id)
	assert.Equal(t, byte(5), count)
	assert.Equal(t, int16(3), damage)
}
