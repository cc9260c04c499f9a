package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reelhub/internal/featureflags"
	"reelhub/internal/middleware"
	"reelhub/internal/observability"
	"reelhub/internal/repository"

	"github.com/redis/go-redis/v9"
)

const defaultViewDedupWindow = 30 * time.Minute

// ViewCounter records video reads. Every read counts unless the view_dedup
// flag is on for the viewer, in which case repeat reads inside the window
// are skipped. Anonymous reads always count.
type ViewCounter struct {
	videoRepo repository.VideoRepository
	rdb       *redis.Client
	flags     *featureflags.Manager
	window    time.Duration
}

func NewViewCounter(videoRepo repository.VideoRepository, rdb *redis.Client, flags *featureflags.Manager, window time.Duration) *ViewCounter {
	if window <= 0 {
		window = defaultViewDedupWindow
	}
	return &ViewCounter{videoRepo: videoRepo, rdb: rdb, flags: flags, window: window}
}

func viewSeenKey(videoID, viewerID uint) string {
	return fmt.Sprintf("views:seen:%d:%d", videoID, viewerID)
}

// Record increments the view counter of videoID unless the read is a
// deduplicated repeat. It reports whether the view was counted.
func (v *ViewCounter) Record(ctx context.Context, videoID, viewerID uint) (bool, error) {
	if v.shouldDedup(viewerID) {
		first, err := v.rdb.SetNX(ctx, viewSeenKey(videoID, viewerID), 1, v.window).Result()
		switch {
		case err != nil:
			// Redis trouble never hides a view.
			middleware.Logger.Warn("view dedup check failed",
				slog.Uint64("video_id", uint64(videoID)),
				slog.String("error", err.Error()))
		case !first:
			observability.VideoViews.WithLabelValues("deduplicated").Inc()
			return false, nil
		}
	}

	if err := v.videoRepo.IncrementViews(ctx, videoID); err != nil {
		return false, err
	}
	observability.VideoViews.WithLabelValues("counted").Inc()
	return true, nil
}

func (v *ViewCounter) shouldDedup(viewerID uint) bool {
	return viewerID != 0 && v.rdb != nil && v.flags.Enabled(featureflags.ViewDedup, viewerID)
}
