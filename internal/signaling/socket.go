package signaling

import (
	"encoding/json"
	"sync"
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Socket is one live signaling connection. Identity fields are set by the
// authentication gate before the socket is handed to the Coordinator;
// assignedRole and roomID are set only on a successful join and cleared on
// leave/disconnect. Both are mutated exclusively under the Coordinator's
// mutex.
type Socket struct {
	ID       string
	UserID   int64
	UserRole string

	assignedRole Role
	roomID       string

	send      chan []byte
	conn      Conn
	closeOnce sync.Once
}

// NewSocket builds a socket over conn with a send buffer of bufSize messages.
func NewSocket(id string, userID int64, userRole string, conn Conn, bufSize int) *Socket {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Socket{
		ID:       id,
		UserID:   userID,
		UserRole: userRole,
		send:     make(chan []byte, bufSize),
		conn:     conn,
	}
}

// Emit queues an event envelope for delivery. The send is non-blocking: a
// socket whose buffer is full loses the message rather than stalling the
// sender's handler, matching best-effort signaling semantics.
func (s *Socket) Emit(event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	s.enqueue(Envelope{Event: event, Data: raw})
}

// Ack queues an acknowledgment envelope for a client-supplied ack id.
func (s *Socket) Ack(ackID string, data any) {
	if ackID == "" {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	s.enqueue(Envelope{Event: EventAck, AckID: ackID, Data: raw})
}

func (s *Socket) enqueue(env Envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case s.send <- msg:
	default:
		// Buffer full; drop to avoid blocking.
	}
}

// CloseSend closes the send channel exactly once, terminating the write
// pump. Safe to call from both the leave and disconnect paths.
func (s *Socket) CloseSend() {
	s.closeOnce.Do(func() { close(s.send) })
}

// Outbox exposes the send channel to the write pump and to tests.
func (s *Socket) Outbox() <-chan []byte {
	return s.send
}

// Close closes the underlying transport connection.
func (s *Socket) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
