package relay

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspace/mindspace-backend/internal/logging"
)

func TestRedisGroup_DeliversAcrossGroups(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	testCrossGroupDelivery(t, client, "video_conference")
}

// Runs against a real server when one is available.
func TestRedisGroup_DeliversAcrossGroupsLive(t *testing.T) {
	addr := os.Getenv("MINDSPACE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MINDSPACE_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	testCrossGroupDelivery(t, client, "test-"+time.Now().Format("150405.000000"))
}

func TestRedisGroup_BroadcastFailsWithoutServer(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	group := NewRedisGroup("video_conference", client, logging.Discard())
	server.Close()

	err := group.Broadcast(context.Background(), []byte(`{"type":"chat"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay:video_conference")
}

// testCrossGroupDelivery joins one member to each of two groups sharing a
// channel and checks a broadcast on one reaches both.
func testCrossGroupDelivery(t *testing.T, client *redis.Client, name string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := NewRedisGroup(name, client, logging.Discard())
	second := NewRedisGroup(name, client, logging.Discard())

	stopped := make(chan error, 2)
	for _, g := range []*RedisGroup{first, second} {
		ready := make(chan struct{})
		go func(g *RedisGroup) { stopped <- g.Run(ctx, ready) }(g)
		select {
		case <-ready:
		case <-time.After(5 * time.Second):
			t.Fatal("subscription not confirmed")
		}
	}

	connA := newStubConn(false)
	memberA := NewMember(connA, "a", MemberOptions{SendBuffer: 4})
	go memberA.writeLoop(func(error) {})
	first.Join(memberA)

	connB := newStubConn(false)
	memberB := NewMember(connB, "b", MemberOptions{SendBuffer: 4})
	go memberB.writeLoop(func(error) {})
	second.Join(memberB)

	frame := `{"type":"offer","sdp":"v=0"}`
	require.NoError(t, first.Broadcast(ctx, []byte(frame)))

	for _, c := range []*stubConn{connA, connB} {
		c := c
		require.Eventually(t, func() bool {
			return len(c.messages()) == 1
		}, 5*time.Second, 10*time.Millisecond)
		assert.Equal(t, frame, c.messages()[0])
	}

	first.CloseAll()
	second.CloseAll()

	cancel()
	for i := 0; i < 2; i++ {
		select {
		case err := <-stopped:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	}
}
