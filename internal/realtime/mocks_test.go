package realtime_test

import (
	"time"

	"github.com/stretchr/testify/mock"

	"mindcare/backend/internal/models"
)

// MockStore is a testify/mock implementation of the storage.Store interface.
type MockStore struct {
	mock.Mock
	nextID uint
}

func (m *MockStore) InsertMessage(msg *models.ChatMessage) error {
	args := m.Called(msg)
	if args.Error(0) == nil {
		// Simulate the server-assigned identity the relay waits for.
		m.nextID++
		msg.ID = m.nextID
		msg.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockStore) MarkMessagesRead(appointmentID, readerID string) error {
	args := m.Called(appointmentID, readerID)
	return args.Error(0)
}

func (m *MockStore) GetChatHistory(appointmentID string) ([]models.ChatMessage, error) {
	args := m.Called(appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockStore) GetAppointmentByID(id string) (*models.Appointment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockStore) CloseStaleAppointments(before time.Time) (int64, error) {
	args := m.Called(before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) SaveNotification(n *models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockStore) GetUnreadNotifications(userID string, role models.Role) ([]models.Notification, error) {
	args := m.Called(userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockStore) MarkNotificationRead(id uint, userID string) error {
	args := m.Called(id, userID)
	return args.Error(0)
}

func (m *MockStore) DeleteNotification(id uint, userID string) error {
	args := m.Called(id, userID)
	return args.Error(0)
}

func (m *MockStore) PublishNotification(n models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockStore) AddOnlineUser(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStore) RemoveOnlineUser(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStore) GetOnlineUsers() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockClient is a transport-free test double for the realtime.Client
// interface. Its send channel is buffered so the hub never blocks in tests.
type MockClient struct {
	connID string
	userID string
	role   models.Role
	send   chan models.Event
}

func newMockClient(connID, userID string, role models.Role) *MockClient {
	return &MockClient{
		connID: connID,
		userID: userID,
		role:   role,
		send:   make(chan models.Event, 32),
	}
}

func (c *MockClient) ConnID() string                   { return c.connID }
func (c *MockClient) UserID() string                   { return c.userID }
func (c *MockClient) Role() models.Role                { return c.role }
func (c *MockClient) SendChannel() chan<- models.Event { return c.send }
func (c *MockClient) Run()                             {}
func (c *MockClient) Close()                           { close(c.send) }

// drain collects everything currently queued for the client.
func (c *MockClient) drain() []models.Event {
	var events []models.Event
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// eventsNamed filters a drained slice by event name.
func eventsNamed(events []models.Event, name string) []models.Event {
	var out []models.Event
	for _, ev := range events {
		if ev.Event == name {
			out = append(out, ev)
		}
	}
	return out
}
