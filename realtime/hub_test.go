package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(rooms ...string) *Client {
	return &Client{
		Send:  make(chan []byte, 8),
		Rooms: rooms,
	}
}

func registerAndWait(t *testing.T, hub *Hub, client *Client, room string) {
	t.Helper()
	client.Hub = hub
	hub.Register <- client

	deadline := time.After(time.Second)
	for hub.RoomClientCount(room) == 0 {
		select {
		case <-deadline:
			t.Fatalf("client was not registered in room %s", room)
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestHub_NotifyUserReachesOnlyItsRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := newTestClient(UserRoom(1))
	bob := newTestClient(UserRoom(2))
	registerAndWait(t, hub, alice, UserRoom(1))
	registerAndWait(t, hub, bob, UserRoom(2))

	hub.NotifyUser(1, Event{Type: EventWalletTransaction, Payload: map[string]int{"amount": 50}})

	select {
	case raw := <-alice.Send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, EventWalletTransaction, event.Type)
	case <-time.After(time.Second):
		t.Fatal("alice did not receive the event")
	}

	select {
	case <-bob.Send:
		t.Fatal("bob must not receive someone else's event")
	default:
	}
}

func TestHub_AdminRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	admin := newTestClient(UserRoom(1), AdminRoom)
	registerAndWait(t, hub, admin, AdminRoom)

	hub.NotifyAdmins(Event{Type: EventNewDepositRequest})

	select {
	case raw := <-admin.Send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, EventNewDepositRequest, event.Type)
	case <-time.After(time.Second):
		t.Fatal("admin did not receive the event")
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(UserRoom(1))
	registerAndWait(t, hub, client, UserRoom(1))

	hub.Unregister <- client

	deadline := time.After(time.Second)
	for hub.RoomClientCount(UserRoom(1)) != 0 {
		select {
		case <-deadline:
			t.Fatal("client was not unregistered")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	_, open := <-client.Send
	assert.False(t, open, "канал клиента должен быть закрыт после Unregister")
}
