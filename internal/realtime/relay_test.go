package realtime_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mindcare/backend/internal/models"
	"mindcare/backend/internal/realtime"
)

// roomWithParticipants registers the given clients and joins them all to
// APT_1, then drains the registration noise from their channels.
func roomWithParticipants(t *testing.T, store *MockStore, hub *realtime.Hub, clients ...*MockClient) {
	t.Helper()
	store.On("AddOnlineUser", mock.Anything).Return(nil)
	store.On("GetAppointmentByID", "APT_1").Return(apt1(), nil)

	for _, c := range clients {
		hub.RegisterCh <- c
	}
	time.Sleep(settle)
	for _, c := range clients {
		join(hub, c, "APT_1")
	}
	time.Sleep(settle)
	for _, c := range clients {
		c.drain()
	}
}

func send(hub *realtime.Hub, c realtime.Client, p models.SendMessagePayload) {
	hub.EventCh <- realtime.InboundEvent{Client: c, Frame: models.NewEvent(models.EventSendMessage, p)}
}

func TestRelay_BroadcastIncludesSenderTabs(t *testing.T) {
	store := new(MockStore)
	hub := newTestHub(store)

	tabA1 := newMockClient("conn_A1", "user_A", models.RolePatient)
	tabA2 := newMockClient("conn_A2", "user_A", models.RolePatient)
	clientB := newMockClient("conn_B1", "user_B", models.RoleCounselor)
	outsider := newMockClient("conn_C1", "user_C", models.RolePatient)

	roomWithParticipants(t, store, hub, tabA1, tabA2, clientB)
	hub.RegisterCh <- outsider
	time.Sleep(settle)
	outsider.drain()

	store.On("InsertMessage", mock.AnythingOfType("*models.ChatMessage")).Return(nil)

	send(hub, tabA1, models.SendMessagePayload{
		AppointmentID: "APT_1",
		SenderID:      "user_A",
		Content:       "hello",
		MessageType:   models.MessageTypeText,
	})
	time.Sleep(settle)

	store.AssertCalled(t, "InsertMessage", mock.AnythingOfType("*models.ChatMessage"))

	// Every room member gets exactly one copy, the sender's own tabs
	// included; a connection that never joined gets nothing.
	for _, c := range []*MockClient{tabA1, tabA2, clientB} {
		received := eventsNamed(c.drain(), models.EventReceive)
		if assert.Len(t, received, 1, "connection %s", c.ConnID()) {
			var msg models.ChatMessage
			assert.NoError(t, json.Unmarshal(received[0].Data, &msg))
			assert.Equal(t, "hello", msg.Content)
			assert.Equal(t, "user_A", msg.SenderID)
			assert.NotZero(t, msg.ID, "broadcast carries the server-assigned id")
			assert.False(t, msg.CreatedAt.IsZero())
		}
	}
	assert.Empty(t, eventsNamed(outsider.drain(), models.EventReceive))
}

func TestRelay_EmptyContentRejected(t *testing.T) {
	store := new(MockStore)
	hub := newTestHub(store)

	clientA := newMockClient("conn_A1", "user_A", models.RolePatient)
	clientB := newMockClient("conn_B1", "user_B", models.RoleCounselor)
	roomWithParticipants(t, store, hub, clientA, clientB)

	send(hub, clientA, models.SendMessagePayload{
		AppointmentID: "APT_1",
		SenderID:      "user_A",
		Content:       "   \n\t ",
	})
	time.Sleep(settle)

	store.AssertNotCalled(t, "InsertMessage", mock.Anything)
	assert.Len(t, eventsNamed(clientA.drain(), models.EventError), 1)
	assert.Empty(t, eventsNamed(clientB.drain(), models.EventReceive))
}

func TestRelay_SpoofedSenderRejected(t *testing.T) {
	store := new(MockStore)
	hub := newTestHub(store)

	clientA := newMockClient("conn_A1", "user_A", models.RolePatient)
	clientB := newMockClient("conn_B1", "user_B", models.RoleCounselor)
	roomWithParticipants(t, store, hub, clientA, clientB)

	send(hub, clientA, models.SendMessagePayload{
		AppointmentID: "APT_1",
		SenderID:      "user_B", // not the authenticated user
		Content:       "hello",
	})
	time.Sleep(settle)

	store.AssertNotCalled(t, "InsertMessage", mock.Anything)
	assert.Len(t, eventsNamed(clientA.drain(), models.EventError), 1)
	assert.Empty(t, eventsNamed(clientB.drain(), models.EventReceive))
}

func TestRelay_PersistenceFailureStopsBroadcast(t *testing.T) {
	store := new(MockStore)
	hub := newTestHub(store)

	clientA := newMockClient("conn_A1", "user_A", models.RolePatient)
	clientB := newMockClient("conn_B1", "user_B", models.RoleCounselor)
	roomWithParticipants(t, store, hub, clientA, clientB)

	store.On("InsertMessage", mock.Anything).Return(errors.New("store unavailable"))

	send(hub, clientA, models.SendMessagePayload{
		AppointmentID: "APT_1",
		SenderID:      "user_A",
		Content:       "hello",
	})
	time.Sleep(settle)

	// The failure is surfaced to the sender only; nothing is broadcast.
	assert.Len(t, eventsNamed(clientA.drain(), models.EventError), 1)
	assert.Empty(t, eventsNamed(clientB.drain(), models.EventReceive))
	assert.Empty(t, eventsNamed(clientB.drain(), models.EventError))
}

func TestRelay_SendRequiresJoin(t *testing.T) {
	store := new(MockStore)
	store.On("AddOnlineUser", mock.Anything).Return(nil)
	hub := newTestHub(store)

	clientA := newMockClient("conn_A1", "user_A", models.RolePatient)
	hub.RegisterCh <- clientA
	time.Sleep(settle)
	clientA.drain()

	send(hub, clientA, models.SendMessagePayload{
		AppointmentID: "APT_3",
		SenderID:      "user_A",
		Content:       "hello",
	})
	time.Sleep(settle)

	store.AssertNotCalled(t, "InsertMessage", mock.Anything)
	assert.Len(t, eventsNamed(clientA.drain(), models.EventError), 1)
}

func TestRelay_TypingIsRelayedNotPersisted(t *testing.T) {
	store := new(MockStore)
	hub := newTestHub(store)

	clientA := newMockClient("conn_A1", "user_A", models.RolePatient)
	clientB := newMockClient("conn_B1", "user_B", models.RoleCounselor)
	roomWithParticipants(t, store, hub, clientA, clientB)

	send(hub, clientA, models.SendMessagePayload{
		AppointmentID: "APT_1",
		SenderID:      "user_A",
		MessageType:   models.MessageTypeTyping,
	})
	time.Sleep(settle)

	store.AssertNotCalled(t, "InsertMessage", mock.Anything)
	typing := eventsNamed(clientB.drain(), models.EventReceive)
	if assert.Len(t, typing, 1) {
		var msg models.ChatMessage
		assert.NoError(t, json.Unmarshal(typing[0].Data, &msg))
		assert.Equal(t, models.MessageTypeTyping, msg.MessageType)
		assert.Zero(t, msg.ID)
	}
	// The sender's own connection does not echo typing.
	assert.Empty(t, eventsNamed(clientA.drain(), models.EventReceive))
}

func TestReadReceipts_MarkReadNotifiesSenders(t *testing.T) {
	store := new(MockStore)
	hub := newTestHub(store)

	clientA := newMockClient("conn_A1", "user_A", models.RolePatient)
	clientB := newMockClient("conn_B1", "user_B", models.RoleCounselor)
	roomWithParticipants(t, store, hub, clientA, clientB)

	store.On("MarkMessagesRead", "APT_1", "user_B").Return(nil)

	hub.EventCh <- realtime.InboundEvent{
		Client: clientB,
		Frame:  models.NewEvent(models.EventMarkRead, models.MarkReadPayload{AppointmentID: "APT_1"}),
	}
	time.Sleep(settle)

	store.AssertCalled(t, "MarkMessagesRead", "APT_1", "user_B")

	receipts := eventsNamed(clientA.drain(), models.EventMessagesRead)
	if assert.Len(t, receipts, 1) {
		var p models.MessagesReadPayload
		assert.NoError(t, json.Unmarshal(receipts[0].Data, &p))
		assert.Equal(t, "APT_1", p.AppointmentID)
		assert.Equal(t, "user_B", p.ReaderID)
		assert.False(t, p.At.IsZero())
	}
	// The reader itself does not receive its own receipt.
	assert.Empty(t, eventsNamed(clientB.drain(), models.EventMessagesRead))
}

func TestReadReceipts_StoreFailureSurfacedToCaller(t *testing.T) {
	store := new(MockStore)
	hub := newTestHub(store)

	clientA := newMockClient("conn_A1", "user_A", models.RolePatient)
	clientB := newMockClient("conn_B1", "user_B", models.RoleCounselor)
	roomWithParticipants(t, store, hub, clientA, clientB)

	store.On("MarkMessagesRead", "APT_1", "user_B").Return(errors.New("store unavailable"))

	hub.EventCh <- realtime.InboundEvent{
		Client: clientB,
		Frame:  models.NewEvent(models.EventMarkRead, models.MarkReadPayload{AppointmentID: "APT_1"}),
	}
	time.Sleep(settle)

	assert.Len(t, eventsNamed(clientB.drain(), models.EventError), 1)
	assert.Empty(t, eventsNamed(clientA.drain(), models.EventMessagesRead))
}
