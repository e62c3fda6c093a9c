package generation

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowcube/stonegate/internal/world"
)

type countingGenerator struct {
	calls atomic.Int32
}

func (g *countingGenerator) Generate(w *world.World, pos world.ChunkPos) {
	g.calls.Add(1)
	w.InsertChunk(world.NewChunk(pos))
}

func TestRequestRegionGeneratesEveryMissingChunk(t *testing.T) {
	w := world.NewWorld()
	gen := &countingGenerator{}
	s := NewScheduler(w, gen, 4)

	s.RequestRegion(0, 0, 1)
	s.AwaitRegion(0, 0, 1)

	for x := int32(-1); x <= 1; x++ {
		for z := int32(-1); z <= 1; z++ {
			assert.True(t, w.HasChunk(world.ChunkPos{X: x, Z: z}))
		}
	}
	assert.Equal(t, int32(9), gen.calls.Load())
}

func TestRequestRegionTwiceDeduplicates(t *testing.T) {
	w := world.NewWorld()
	gen := &countingGenerator{}
	s := NewScheduler(w, gen, 2)

	s.RequestRegion(5, 5, 0)
	s.RequestRegion(5, 5, 0)
	s.AwaitRegion(5, 5, 0)

	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestAwaitRegionReturnsImmediatelyWhenAlreadyPresent(t *testing.T) {
	w := world.NewWorld()
	gen := &countingGenerator{}
	s := NewScheduler(w, gen, 1)

	w.InsertChunk(world.NewChunk(world.ChunkPos{X: 0, Z: 0}))

	done := make(chan struct{})
	go func() {
		s.AwaitRegion(0, 0, 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitRegion blocked on an already-present chunk")
	}
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestAwaitRegionWaitsForConcurrentRequests(t *testing.T) {
	w := world.NewWorld()
	gen := &countingGenerator{}
	s := NewScheduler(w, gen, 8)

	s.RequestRegion(100, 100, 2)

	done := make(chan struct{})
	go func() {
		s.AwaitRegion(100, 100, 2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("AwaitRegion never observed completion")
	}

	for x := int32(98); x <= 102; x++ {
		for z := int32(98); z <= 102; z++ {
			require.True(t, w.HasChunk(world.ChunkPos{X: x, Z: z}))
		}
	}
}

func TestStopDrainsInFlightWorkBeforeReturning(t *testing.T) {
	w := world.NewWorld()
	gen := &countingGenerator{}
	s := NewScheduler(w, gen, 4)

	s.RequestRegion(0, 0, 1)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop never returned")
	}

	// Every chunk requested before Stop was called must have finished
	// generating, even though Stop raced the in-flight requests.
	for x := int32(-1); x <= 1; x++ {
		for z := int32(-1); z <= 1; z++ {
			assert.True(t, w.HasChunk(world.ChunkPos{X: x, Z: z}))
		}
	}
}

func TestStopIsIdempotentWithNoPendingWork(t *testing.T) {
	w := world.NewWorld()
	gen := &countingGenerator{}
	s := NewScheduler(w, gen, 1)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked with no pending work")
	}
}
