// Package broker implements the single-writer, many-receivers broadcast
// bus sessions use to deliver packets to each other without taking a lock
// on every socket. It replaces the teacher's pattern of every broadcast
// helper locking the player map and writing to each connection directly.
package broker

import "sync"

// queueCapacity is the bounded per-subscriber mailbox size. The
// multiplexer backpressures (blocks) rather than drops when a mailbox is
// full — the session handler reading it is expected to drain promptly.
const queueCapacity = 128

// Message is a unit of work fanned out to every subscriber: Sender is the
// entity id of the session that broadcast it (join/part announcements
// included), Payload is the already-encoded packet bytes to deliver.
type Message struct {
	Sender  int32
	Payload []byte
}

// subscriber pairs a mailbox with its own lock, so closing it on removal
// can never race a concurrent send into it — the two take the same lock
// instead of relying on the broker-wide subscriber-list lock for that.
type subscriber struct {
	ch     chan Message
	mu     sync.Mutex
	closed bool
}

func (s *subscriber) send(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.ch <- msg
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Broker owns the fan-in channel and the subscriber registry. One
// multiplexer goroutine reads the fan-in channel and clones each message
// out to every subscriber's mailbox.
type Broker struct {
	in chan Message

	mu   sync.RWMutex
	subs map[int32]*subscriber
}

// New starts a broker's multiplexer goroutine and returns the broker.
func New() *Broker {
	b := &Broker{
		in:   make(chan Message, queueCapacity),
		subs: make(map[int32]*subscriber),
	}
	go b.run()
	return b
}

// run never holds the subscriber-list lock across a send: it snapshots the
// current subscriber set under RLock, releases it, then sends, so AddClient
// is never held up by a send. Sends go to one subscriber after another: a
// stalled subscriber's full mailbox blocks this loop inside that
// subscriber's send, and delivery to every other subscriber waits until it
// drains.
func (b *Broker) run() {
	for msg := range b.in {
		b.mu.RLock()
		subs := make([]*subscriber, 0, len(b.subs))
		for _, sub := range b.subs {
			subs = append(subs, sub)
		}
		b.mu.RUnlock()

		for _, sub := range subs {
			sub.send(msg)
		}
	}
}

// Send enqueues a message on the fan-in channel. Blocks if the fan-in
// channel itself is full, which only happens under sustained broker-wide
// overload.
func (b *Broker) Send(msg Message) {
	b.in <- msg
}

// AddClient registers a new subscriber keyed by entity id and returns its
// receive handle. Re-registering an id that's already present replaces its
// mailbox.
func (b *Broker) AddClient(id int32) <-chan Message {
	sub := &subscriber{ch: make(chan Message, queueCapacity)}
	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()
	return sub.ch
}

// RemoveClient drops a subscriber's registration. Safe to call more than
// once for the same id.
func (b *Broker) RemoveClient(id int32) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()

	if ok {
		sub.close()
	}
}
