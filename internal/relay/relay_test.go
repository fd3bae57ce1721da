package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspace/mindspace-backend/internal/logging"
)

type stubConn struct {
	inbound   chan []byte
	blockCh   chan struct{}
	closedCh  chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written [][]byte
}

func newStubConn(blockWrites bool) *stubConn {
	blockCh := make(chan struct{})
	if !blockWrites {
		close(blockCh)
	}
	return &stubConn{
		inbound:  make(chan []byte, 16),
		blockCh:  blockCh,
		closedCh: make(chan struct{}),
	}
}

func (s *stubConn) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-s.inbound:
		if !ok {
			return 0, nil, errors.New("peer went away")
		}
		return websocket.TextMessage, data, nil
	case <-s.closedCh:
		return 0, nil, errors.New("closed")
	}
}

func (s *stubConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-s.closedCh:
		return errors.New("closed")
	case <-s.blockCh:
	}
	if messageType != websocket.TextMessage {
		return nil
	}
	s.mu.Lock()
	s.written = append(s.written, append([]byte(nil), data...))
	s.mu.Unlock()
	return nil
}

func (s *stubConn) SetWriteDeadline(time.Time) error {
	return nil
}

func (s *stubConn) Close() error {
	s.closeOnce.Do(func() { close(s.closedCh) })
	return nil
}

func (s *stubConn) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.written))
	for i, w := range s.written {
		out[i] = string(w)
	}
	return out
}

func (s *stubConn) isClosed() bool {
	select {
	case <-s.closedCh:
		return true
	default:
		return false
	}
}

func newTestRelay(buffer int) (*Relay, *LocalGroup) {
	group := NewLocalGroup("video_conference", logging.Discard())
	return New(group, Options{SendBuffer: buffer}, logging.Discard()), group
}

func serveAll(t *testing.T, r *Relay, conns ...*stubConn) {
	t.Helper()
	for i, c := range conns {
		go r.Serve(context.Background(), c, string(rune('a'+i)))
	}
	require.Eventually(t, func() bool {
		return r.Group().Count() == len(conns)
	}, time.Second, 5*time.Millisecond)
}

func TestRelay_FanOutIncludesSender(t *testing.T) {
	r, _ := newTestRelay(8)
	a, b, c := newStubConn(false), newStubConn(false), newStubConn(false)
	serveAll(t, r, a, b, c)

	frame := `{"type":"chat","text":"hello everyone"}`
	a.inbound <- []byte(frame)

	for _, conn := range []*stubConn{a, b, c} {
		conn := conn
		require.Eventually(t, func() bool {
			return len(conn.messages()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, frame, conn.messages()[0])
	}
}

func TestRelay_SignalingAndChatShareDelivery(t *testing.T) {
	r, _ := newTestRelay(8)
	a, b := newStubConn(false), newStubConn(false)
	serveAll(t, r, a, b)

	frames := []string{
		`{"type":"offer","sdp":"v=0"}`,
		`{"type":"answer","sdp":"v=0"}`,
		`{"type":"ice-candidate","candidate":{"sdpMid":"0"}}`,
		`{"type":"chat-message","text":"hi"}`,
	}
	for _, f := range frames {
		a.inbound <- []byte(f)
	}

	require.Eventually(t, func() bool {
		return len(b.messages()) == len(frames)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, frames, b.messages())
	assert.Equal(t, frames, a.messages())
}

func TestRelay_MalformedFramesAreDropped(t *testing.T) {
	r, group := newTestRelay(8)
	a, b := newStubConn(false), newStubConn(false)
	serveAll(t, r, a, b)

	a.inbound <- []byte(`not json`)
	a.inbound <- []byte(`{"text":"no type"}`)
	a.inbound <- []byte(`{"type":""}`)
	a.inbound <- []byte(`{"type":7}`)
	a.inbound <- []byte(`["type","offer"]`)
	a.inbound <- []byte(`{"type":"chat","text":"after"}`)

	require.Eventually(t, func() bool {
		return len(b.messages()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{`{"type":"chat","text":"after"}`}, b.messages())
	assert.Equal(t, 2, group.Count())
	assert.False(t, a.isClosed())
}

func TestRelay_DisconnectLeavesGroup(t *testing.T) {
	r, group := newTestRelay(8)
	a, b, c := newStubConn(false), newStubConn(false), newStubConn(false)
	serveAll(t, r, a, b, c)

	close(b.inbound)
	require.Eventually(t, func() bool {
		return group.Count() == 2
	}, time.Second, 5*time.Millisecond)

	a.inbound <- []byte(`{"type":"chat","text":"still here"}`)
	require.Eventually(t, func() bool {
		return len(c.messages()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, b.messages())
}

func TestLocalGroup_SlowMemberIsEvicted(t *testing.T) {
	group := NewLocalGroup("video_conference", logging.Discard())

	fastConn := newStubConn(false)
	fast := NewMember(fastConn, "fast", MemberOptions{SendBuffer: 8})
	go fast.writeLoop(func(error) { group.Leave(fast) })

	// Nothing drains the slow member's buffer.
	slowConn := newStubConn(true)
	slow := NewMember(slowConn, "slow", MemberOptions{SendBuffer: 1})

	group.Join(fast)
	group.Join(slow)

	require.NoError(t, group.Broadcast(context.Background(), []byte("one")))
	assert.Equal(t, 2, group.Count())

	require.NoError(t, group.Broadcast(context.Background(), []byte("two")))
	assert.Equal(t, 1, group.Count())
	assert.True(t, slowConn.isClosed())

	require.NoError(t, group.Broadcast(context.Background(), []byte("three")))
	require.Eventually(t, func() bool {
		return len(fastConn.messages()) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one", "two", "three"}, fastConn.messages())
	group.Leave(fast)
}

func TestRelay_FailedWriteEvictsMember(t *testing.T) {
	r, group := newTestRelay(8)
	a, b := newStubConn(false), newStubConn(false)
	serveAll(t, r, a, b)

	// A closed peer fails its next write.
	b.closeOnce.Do(func() { close(b.closedCh) })
	a.inbound <- []byte(`{"type":"chat","text":"ping"}`)

	require.Eventually(t, func() bool {
		return group.Count() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestLocalGroup_LeaveIsIdempotent(t *testing.T) {
	group := NewLocalGroup("video_conference", logging.Discard())
	conn := newStubConn(false)
	m := NewMember(conn, "a", MemberOptions{SendBuffer: 1})

	group.Join(m)
	require.Equal(t, 1, group.Count())

	group.Leave(m)
	group.Leave(m)
	assert.Equal(t, 0, group.Count())
	assert.True(t, conn.isClosed())
	assert.False(t, m.enqueue([]byte("late")))
}

func TestLocalGroup_CloseAll(t *testing.T) {
	group := NewLocalGroup("video_conference", logging.Discard())
	conns := []*stubConn{newStubConn(false), newStubConn(false)}
	for _, c := range conns {
		group.Join(NewMember(c, "x", MemberOptions{SendBuffer: 1}))
	}

	group.CloseAll()
	assert.Equal(t, 0, group.Count())
	for _, c := range conns {
		assert.True(t, c.isClosed())
	}
}
