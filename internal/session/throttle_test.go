package session

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThrottledReaderBypassesWhenDisabled(t *testing.T) {
	src := bytes.NewReader([]byte("hello"))
	r := newThrottledReader(context.Background(), src, 0)
	assert.Same(t, src, r)
}

func TestNewThrottledReaderBypassesWhenNegative(t *testing.T) {
	src := bytes.NewReader([]byte("hello"))
	r := newThrottledReader(context.Background(), src, -5)
	assert.Same(t, src, r)
}

func TestThrottledReaderReadsAllBytes(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 1000)
	src := bytes.NewReader(payload)
	r := newThrottledReader(context.Background(), src, 200)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestThrottledReaderRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload := bytes.Repeat([]byte("x"), maxReadBurstSize*4)
	src := bytes.NewReader(payload)
	r := newThrottledReader(ctx, src, 1)

	buf := make([]byte, len(payload))
	_, err := r.Read(buf)
	assert.Error(t, err)
}
