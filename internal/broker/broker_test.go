package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddClientReceivesBroadcasts(t *testing.T) {
	b := New()
	rx := b.AddClient(1)

	b.Send(Message{Sender: 0, Payload: []byte("hello")})

	select {
	case msg := <-rx:
		assert.Equal(t, []byte("hello"), msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the broadcast")
	}
}

func TestFanOutReachesEverySubscriber(t *testing.T) {
	b := New()
	rx1 := b.AddClient(1)
	rx2 := b.AddClient(2)

	b.Send(Message{Payload: []byte("x")})

	for _, rx := range []<-chan Message{rx1, rx2} {
		select {
		case <-rx:
		case <-time.After(time.Second):
			t.Fatal("a subscriber missed the broadcast")
		}
	}
}

func TestRemoveClientStopsDelivery(t *testing.T) {
	b := New()
	rx := b.AddClient(1)
	b.RemoveClient(1)

	_, open := <-rx
	require.False(t, open, "removed subscriber's channel should be closed")
}

func TestRemoveClientTwiceIsSafe(t *testing.T) {
	b := New()
	b.AddClient(1)
	b.RemoveClient(1)
	b.RemoveClient(1)
}

func TestPerSubscriberOrderingPreserved(t *testing.T) {
	b := New()
	rx := b.AddClient(1)

	b.Send(Message{Payload: []byte("first")})
	b.Send(Message{Payload: []byte("second")})

	first := <-rx
	second := <-rx
	assert.Equal(t, []byte("first"), first.Payload)
	assert.Equal(t, []byte("second"), second.Payload)
}
