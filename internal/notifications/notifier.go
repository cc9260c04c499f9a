// Package notifications publishes engagement events into Redis pub/sub
// channels and lets other processes subscribe to them.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"reelhub/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Event types published by the API.
const (
	EventVideoCreated     = "video_created"
	EventVideoDeleted     = "video_deleted"
	EventVideoLiked       = "video_liked"
	EventVideoUnliked     = "video_unliked"
	EventVideoDisliked    = "video_disliked"
	EventVideoUndisliked  = "video_undisliked"
	EventCommentCreated   = "comment_created"
	EventCommentLiked     = "comment_liked"
	EventUserFollowed     = "user_followed"
	EventUserUnfollowed   = "user_unfollowed"
	BroadcastChannel      = "events:broadcast"
	userChannelPattern    = "events:user:*"
	videoChannelPattern   = "events:video:*"
	defaultPublishTimeout = 2 * time.Second
)

// Event is the JSON envelope written to every channel.
type Event struct {
	Type      string         `json:"type"`
	ActorID   uint           `json:"actorId,omitempty"`
	VideoID   uint           `json:"videoId,omitempty"`
	UserID    uint           `json:"userId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Notifier provides helpers to publish events into Redis channels.
// A Notifier with a nil client drops every event.
type Notifier struct {
	rdb *redis.Client
	now func() time.Time
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, now: time.Now}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "events:user:" + strconv.FormatUint(uint64(userID), 10)
}

// VideoChannel derives the Redis channel name for a video.
func VideoChannel(videoID uint) string {
	return "events:video:" + strconv.FormatUint(uint64(videoID), 10)
}

// Publish sends ev to the video channel (when VideoID is set), the user
// channel (when UserID is set), and otherwise to the broadcast channel.
func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = n.now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}

	var channels []string
	if ev.VideoID != 0 {
		channels = append(channels, VideoChannel(ev.VideoID))
	}
	if ev.UserID != 0 {
		channels = append(channels, UserChannel(ev.UserID))
	}
	if len(channels) == 0 {
		channels = append(channels, BroadcastChannel)
	}

	pipe := n.rdb.Pipeline()
	for _, ch := range channels {
		pipe.Publish(ctx, ch, body)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}

// PublishAsync publishes ev on a detached context and logs failures.
// Request handlers use it so event delivery never delays a response.
func (n *Notifier) PublishAsync(ev Event) {
	if n == nil || n.rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
		defer cancel()
		if err := n.Publish(ctx, ev); err != nil {
			middleware.Logger.Warn("event publish failed",
				slog.String("type", ev.Type), slog.String("error", err.Error()))
		}
	}()
}

// Subscribe listens on every user, video and broadcast channel and calls
// onEvent for each decoded event until ctx is cancelled.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(channel string, ev Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern, videoChannelPattern, BroadcastChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe events: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("dropping malformed event",
						slog.String("channel", msg.Channel), slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(msg.Channel, ev)
				}()
			}
		}
	}()

	return nil
}
