package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) (*miniredis.Miniredis, *Notifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewNotifier(rdb)
}

type received struct {
	mu     sync.Mutex
	events map[string][]Event
}

func (r *received) add(channel string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string][]Event{}
	}
	r.events[channel] = append(r.events[channel], ev)
}

func (r *received) count(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[channel])
}

func TestNilNotifierIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.Publish(context.Background(), Event{Type: EventVideoLiked, VideoID: 1}))
	assert.NoError(t, n.Subscribe(context.Background(), func(string, Event) {}))
	n.PublishAsync(Event{Type: EventVideoLiked})

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.Publish(context.Background(), Event{}))
}

func TestChannels(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "events:user:1", UserChannel(1))
	assert.Equal(t, "events:video:100", VideoChannel(100))
}

func TestPublishRoutesByTarget(t *testing.T) {
	_, n := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got received
	require.NoError(t, n.Subscribe(ctx, got.add))

	require.NoError(t, n.Publish(context.Background(), Event{Type: EventVideoLiked, ActorID: 2, VideoID: 7, UserID: 1}))
	require.NoError(t, n.Publish(context.Background(), Event{Type: EventVideoCreated, ActorID: 1}))

	assert.Eventually(t, func() bool {
		return got.count("events:video:7") == 1 &&
			got.count("events:user:1") == 1 &&
			got.count(BroadcastChannel) == 1
	}, time.Second, 10*time.Millisecond)

	got.mu.Lock()
	ev := got.events["events:video:7"][0]
	got.mu.Unlock()
	assert.Equal(t, EventVideoLiked, ev.Type)
	assert.Equal(t, uint(2), ev.ActorID)
	assert.False(t, ev.CreatedAt.IsZero())
}

func TestPublishAsync(t *testing.T) {
	_, n := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got received
	require.NoError(t, n.Subscribe(ctx, got.add))

	n.PublishAsync(Event{Type: EventUserFollowed, ActorID: 3, UserID: 4})
	assert.Eventually(t, func() bool {
		return got.count("events:user:4") == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSubscribeStopsOnCancel(t *testing.T) {
	_, n := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())

	var got received
	require.NoError(t, n.Subscribe(ctx, got.add))

	require.NoError(t, n.Publish(context.Background(), Event{Type: EventVideoLiked, VideoID: 1}))
	assert.Eventually(t, func() bool {
		return got.count("events:video:1") == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, n.Publish(context.Background(), Event{Type: EventVideoLiked, VideoID: 1}))
	assert.Never(t, func() bool {
		return got.count("events:video:1") > 1
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestSubscriberRecoversFromPanic(t *testing.T) {
	_, n := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got received
	require.NoError(t, n.Subscribe(ctx, func(channel string, ev Event) {
		if ev.Type == "boom" {
			panic("handler failure")
		}
		got.add(channel, ev)
	}))

	require.NoError(t, n.Publish(context.Background(), Event{Type: "boom"}))
	require.NoError(t, n.Publish(context.Background(), Event{Type: EventVideoCreated}))

	assert.Eventually(t, func() bool {
		return got.count(BroadcastChannel) == 1
	}, time.Second, 10*time.Millisecond)
}
