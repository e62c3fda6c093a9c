// Package generation schedules terrain production off the I/O threads.
package generation

import (
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/hollowcube/stonegate/internal/world"
)

// generator is the subset of *world.Generator the scheduler depends on.
type generator interface {
	Generate(w *world.World, pos world.ChunkPos)
}

// Scheduler produces chunks for arbitrary square regions on demand,
// deduplicating concurrent requests and broadcasting completions. Requests
// enqueue and return immediately; only Await blocks.
type Scheduler struct {
	world *world.World
	gen   generator

	pool    *pool.Pool
	queue   *posQueue
	threads int

	pending sync.Map // world.ChunkPos -> struct{}

	subMu     sync.Mutex
	subs      map[int]chan world.ChunkPos
	nextSubID int

	dispatchDone chan struct{}
}

// subscriberCapacityPerWorker is the per-worker share of a subscriber's
// completion-broadcast buffer, sized at workers*8 per the region-await
// protocol: enough slack that a subscriber waiting on a handful of chunks
// is never starved by a burst of unrelated completions before it drains.
const subscriberCapacityPerWorker = 8

// NewScheduler starts a scheduler backed by threads concurrent generation
// workers (a conc pool.Pool, so a panicking generation task never takes
// down the dispatcher).
func NewScheduler(w *world.World, gen generator, threads int) *Scheduler {
	if threads < 1 {
		threads = 1
	}
	s := &Scheduler{
		world:        w,
		gen:          gen,
		pool:         pool.New().WithMaxGoroutines(threads),
		queue:        newPosQueue(),
		threads:      threads,
		subs:         make(map[int]chan world.ChunkPos),
		dispatchDone: make(chan struct{}),
	}
	go s.dispatchLoop()
	return s
}

// dispatchLoop pulls positions off the unbounded queue and hands each to
// the bounded worker pool. pool.Go blocks this single goroutine (not the
// callers of RequestRegion) once all workers are busy, which is exactly
// the "block on queue" worker-loop the region-request protocol describes,
// implemented on top of conc's semaphore instead of a hand-rolled one.
// It exits once Stop closes the queue, after draining the pool so no
// generation task is left running.
func (s *Scheduler) dispatchLoop() {
	defer close(s.dispatchDone)
	for {
		pos, ok := s.queue.pop()
		if !ok {
			s.pool.Wait()
			return
		}
		s.pool.Go(func() {
			s.gen.Generate(s.world, pos)
			s.pending.Delete(pos)
			s.publish(pos)
		})
	}
}

// Stop closes the work queue and waits for the dispatch loop to hand off
// every already-queued position and drain the worker pool, so no
// generation goroutine outlives server shutdown. Every position queued
// before Stop is called is generated before it returns; RequestRegion calls
// that race Stop may still enqueue, and such a position can be left
// unprocessed.
func (s *Scheduler) Stop() {
	s.queue.close()
	<-s.dispatchDone
}

// RequestRegion enqueues every position in [cx-r, cx+r] x [cz-r, cz+r] that
// is neither already pending nor already present in the world. The
// pending-insert and the enqueue happen atomically with respect to other
// requesters: LoadOrStore either claims the position for this call or
// reports that another call already claimed it, so a position is never
// queued twice. Never blocks.
func (s *Scheduler) RequestRegion(cx, cz, r int32) {
	for x := cx - r; x <= cx+r; x++ {
		for z := cz - r; z <= cz+r; z++ {
			pos := world.ChunkPos{X: x, Z: z}
			if s.world.HasChunk(pos) {
				continue
			}
			if _, alreadyPending := s.pending.LoadOrStore(pos, struct{}{}); alreadyPending {
				continue
			}
			s.queue.push(pos)
		}
	}
}

// AwaitRegion blocks until every position in [cx-r, cx+r] x [cz-r, cz+r] is
// present in the world. It subscribes to the completion broadcast before
// re-checking the world, so a chunk that finishes generating between the
// initial scan and the subscribe is still observed — either by the
// re-check or by arriving on the channel — instead of being missed.
func (s *Scheduler) AwaitRegion(cx, cz, r int32) {
	missing := make(map[world.ChunkPos]struct{})
	for x := cx - r; x <= cx+r; x++ {
		for z := cz - r; z <= cz+r; z++ {
			pos := world.ChunkPos{X: x, Z: z}
			if !s.world.HasChunk(pos) {
				missing[pos] = struct{}{}
			}
		}
	}
	if len(missing) == 0 {
		return
	}

	ch, unsubscribe := s.subscribe()
	defer unsubscribe()

	for pos := range missing {
		if s.world.HasChunk(pos) {
			delete(missing, pos)
		}
	}

	for len(missing) > 0 {
		pos := <-ch
		delete(missing, pos)
	}
}

func (s *Scheduler) subscribe() (<-chan world.ChunkPos, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan world.ChunkPos, subscriberCapacityPerWorker*s.threads)
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// publish fans a completion out to every current subscriber. The broadcast
// is lossy by design (per the region-await protocol): a full subscriber
// channel means that subscriber is already behind, so the send is dropped
// rather than blocking the worker that just finished generating.
func (s *Scheduler) publish(pos world.ChunkPos) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- pos:
		default:
		}
	}
}

// posQueue is an unbounded, condition-variable-backed FIFO queue of
// ChunkPos. Push never blocks; Pop blocks until an item is available or
// the queue is closed.
type posQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []world.ChunkPos
	closed bool
}

func newPosQueue() *posQueue {
	q := &posQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *posQueue) push(pos world.ChunkPos) {
	q.mu.Lock()
	q.items = append(q.items, pos)
	q.mu.Unlock()
	q.cond.Signal()
}

// pop blocks until an item is available, returning ok=false once the queue
// has been closed and drained instead of blocking forever.
func (q *posQueue) pop() (world.ChunkPos, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return world.ChunkPos{}, false
	}
	pos := q.items[0]
	q.items = q.items[1:]
	return pos, true
}

func (q *posQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
