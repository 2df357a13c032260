package observer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nyxwell/transmute/internal/logging"
	"github.com/nyxwell/transmute/pkg/transmute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterAndUnregisterTracksClientCount(t *testing.T) {
	hub := NewHub(logging.NewNop())
	c := NewClient("client-1", nil, hub, "")

	hub.Register(c)
	waitFor(t, time.Second, func() bool { return hub.ClientCount() == 1 })

	hub.Unregister(c)
	waitFor(t, time.Second, func() bool { return hub.ClientCount() == 0 })
}

func TestHubBroadcastToExecutionScopesToSubscribedClient(t *testing.T) {
	hub := NewHub(logging.NewNop())
	scoped := NewClient("scoped", nil, hub, "exec-1")
	unscoped := NewClient("unscoped", nil, hub, "")
	other := NewClient("other", nil, hub, "exec-2")

	hub.Register(scoped)
	hub.Register(unscoped)
	hub.Register(other)
	waitFor(t, time.Second, func() bool { return hub.ClientCount() == 3 })

	hub.BroadcastToExecution("exec-1", []byte("payload"))

	select {
	case msg := <-scoped.send:
		assert.Equal(t, "payload", string(msg))
	case <-time.After(time.Second):
		t.Fatal("scoped client did not receive the message")
	}
	select {
	case msg := <-unscoped.send:
		assert.Equal(t, "payload", string(msg))
	case <-time.After(time.Second):
		t.Fatal("unscoped client did not receive the message")
	}
	select {
	case <-other.send:
		t.Fatal("client scoped to a different execution should not receive the message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWebSocketObserverOnEventMarshalsExpectedPayload(t *testing.T) {
	hub := NewHub(logging.NewNop())
	client := NewClient("client-1", nil, hub, "")
	hub.Register(client)
	waitFor(t, time.Second, func() bool { return hub.ClientCount() == 1 })

	obs := NewWebSocketObserver(hub)
	require.NoError(t, obs.OnEvent(context.Background(), transmute.Event{
		Type: transmute.EventEdgeSucceeded, ExecutionID: "exec-1", EdgeName: "AtoB",
	}))

	select {
	case raw := <-client.send:
		var msg wireMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "event", msg.Type)
		require.NotNil(t, msg.Event)
		assert.Equal(t, "AtoB", msg.Event.EdgeName)
		assert.Equal(t, "exec-1", msg.Event.ExecutionID)
	case <-time.After(time.Second):
		t.Fatal("client did not receive the broadcast event")
	}
}
