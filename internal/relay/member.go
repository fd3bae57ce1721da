package relay

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Conn is the part of a websocket connection the relay needs.
// *websocket.Conn from gofiber satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Member is one admitted connection. Outbound frames are queued on a
// bounded buffer and written by the member's own writer goroutine.
type Member struct {
	ID       string
	Identity string

	conn         Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	pingInterval time.Duration
}

// MemberOptions tunes the outbound side of a member.
type MemberOptions struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// NewMember wraps conn. identity is used for logging only.
func NewMember(conn Conn, identity string, opts MemberOptions) *Member {
	if opts.SendBuffer < 1 {
		opts.SendBuffer = 1
	}
	return &Member{
		ID:           uuid.New().String(),
		Identity:     identity,
		conn:         conn,
		send:         make(chan []byte, opts.SendBuffer),
		done:         make(chan struct{}),
		writeTimeout: opts.WriteTimeout,
		pingInterval: opts.PingInterval,
	}
}

// enqueue never blocks. It returns false when the member is closed or its
// buffer is full.
func (m *Member) enqueue(data []byte) bool {
	select {
	case <-m.done:
		return false
	default:
	}
	select {
	case m.send <- data:
		return true
	default:
		return false
	}
}

// Done is closed once the member has been shut down.
func (m *Member) Done() <-chan struct{} {
	return m.done
}

func (m *Member) close() {
	m.closeOnce.Do(func() {
		close(m.done)
		_ = m.conn.Close()
	})
}

func (m *Member) write(messageType int, data []byte) error {
	if m.writeTimeout > 0 {
		if err := m.conn.SetWriteDeadline(time.Now().Add(m.writeTimeout)); err != nil {
			return err
		}
	}
	return m.conn.WriteMessage(messageType, data)
}

// writeLoop drains the send buffer until the member is closed. onFail runs
// once if a write or ping fails.
func (m *Member) writeLoop(onFail func(error)) {
	var tick <-chan time.Time
	if m.pingInterval > 0 {
		ticker := time.NewTicker(m.pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-m.done:
			return
		case data := <-m.send:
			if err := m.write(websocket.TextMessage, data); err != nil {
				onFail(err)
				return
			}
		case <-tick:
			if err := m.write(websocket.PingMessage, nil); err != nil {
				onFail(err)
				return
			}
		}
	}
}
