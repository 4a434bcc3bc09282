package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestSendToUserOnlyReachesThatUser(t *testing.T) {
	hub := runHub(t)
	alice, bob := uuid.New(), uuid.New()

	a := &Client{ID: "a", UserID: alice, Send: make(chan []byte, 1)}
	b := &Client{ID: "b", UserID: bob, Send: make(chan []byte, 1)}
	hub.RegisterClient(a)
	hub.RegisterClient(b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, hub.SendToUser(alice, []byte(`{"kind":"x"}`)))
	assert.Equal(t, `{"kind":"x"}`, string(<-a.Send))
	assert.Len(t, b.Send, 0)
}

func TestSendToUserSkipsFullBuffer(t *testing.T) {
	hub := runHub(t)
	user := uuid.New()

	c := &Client{ID: "c", UserID: user, Send: make(chan []byte, 1)}
	hub.RegisterClient(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, hub.SendToUser(user, []byte("1")))
	assert.Equal(t, 0, hub.SendToUser(user, []byte("2")))
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := runHub(t)
	c := &Client{ID: "c", UserID: uuid.New(), Send: make(chan []byte, 1)}
	hub.RegisterClient(c)
	hub.UnregisterClient(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("7f1c1f0e-8a4e-4c55-9c3b-0d7f3f6c2a11")
	assert.Equal(t, "notifications:7f1c1f0e-8a4e-4c55-9c3b-0d7f3f6c2a11", Channel(id))
}
