package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfflineUUIDDeterministic(t *testing.T) {
	a := offlineUUID("Notch")
	b := offlineUUID("Notch")
	assert.Equal(t, a, b)
}

func TestOfflineUUIDDiffersByUsername(t *testing.T) {
	assert.NotEqual(t, offlineUUID("Notch"), offlineUUID("Jeb"))
}

func TestOfflineUUIDVersionAndVariant(t *testing.T) {
	id := offlineUUID("Notch")
	assert.Equal(t, byte(0x30), id[6]&0xF0, "version nibble must be 3")
	assert.Equal(t, byte(0x80), id[8]&0xC0, "variant bits must be RFC 4122")
}
