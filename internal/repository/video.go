package repository

import (
	"context"
	"slices"
	"strings"

	"reelhub/internal/models"

	"gorm.io/gorm"
)

// VideoOrder selects the ORDER BY of a video listing.
type VideoOrder int

const (
	// OrderNewest sorts by created_at desc, id desc.
	OrderNewest VideoOrder = iota
	// OrderRecommended sorts by views, then likes, then recency.
	OrderRecommended
)

// VideoQuery filters a video listing. Zero values mean "no filter".
type VideoQuery struct {
	PublicOnly bool
	VideoType  models.VideoType
	Category   models.Category
	Text       string
	CreatorID  uint
	Order      VideoOrder
}

// VideoRepository defines persistence operations for videos.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uint) (*models.Video, error)
	GetView(ctx context.Context, id, viewerID uint) (*models.VideoView, error)
	List(ctx context.Context, q VideoQuery, page models.PageRequest, viewerID uint) ([]models.VideoView, int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	IncrementViews(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository returns a VideoRepository backed by db.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// videoColumns selects a video with its derived counts.
const videoColumns = "videos.*, " +
	"(SELECT COUNT(*) FROM video_reactions WHERE video_reactions.video_id = videos.id AND video_reactions.kind = 'like') AS like_count, " +
	"(SELECT COUNT(*) FROM video_reactions WHERE video_reactions.video_id = videos.id AND video_reactions.kind = 'dislike') AS dislike_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.video_id = videos.id) AS comment_count"

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID loads the stored row without relationship sets.
func (r *videoRepository) GetByID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		return nil, notFoundOr(err, "Video", id)
	}
	return &video, nil
}

// GetView loads one video with creator and relationship sets attached.
func (r *videoRepository) GetView(ctx context.Context, id, viewerID uint) (*models.VideoView, error) {
	ctx, end := startSpan(ctx, "GetView", "videos")
	var view *models.VideoView
	err := snapshot(ctx, r.db, func(tx *gorm.DB) error {
		var video models.Video
		if err := tx.Select(videoColumns).First(&video, id).Error; err != nil {
			return err
		}
		views, err := hydrateVideos(tx, []models.Video{video}, viewerID)
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	if err != nil {
		err = notFoundOr(err, "Video", id)
	}
	end(err)
	return view, err
}

// List returns one page of videos matching q and the total number of matches.
// Both come from the same snapshot on PostgreSQL.
func (r *videoRepository) List(ctx context.Context, q VideoQuery, page models.PageRequest, viewerID uint) ([]models.VideoView, int64, error) {
	ctx, end := startSpan(ctx, "List", "videos")
	var (
		out   []models.VideoView
		total int64
	)
	err := snapshot(ctx, r.db, func(tx *gorm.DB) error {
		if err := applyVideoFilters(tx.Model(&models.Video{}), q).Count(&total).Error; err != nil {
			return err
		}

		var videos []models.Video
		rows := applyVideoFilters(tx.Model(&models.Video{}), q).Select(videoColumns)
		if err := applyVideoOrder(rows, q.Order).
			Limit(page.Limit).
			Offset(page.Offset()).
			Find(&videos).Error; err != nil {
			return err
		}

		var err error
		out, err = hydrateVideos(tx, videos, viewerID)
		return err
	})
	if err != nil {
		err = models.NewInternalError(err)
		end(err)
		return nil, 0, err
	}
	end(nil)
	return out, total, nil
}

func applyVideoFilters(db *gorm.DB, q VideoQuery) *gorm.DB {
	if q.PublicOnly {
		db = db.Where("videos.is_public = ?", true)
	}
	if q.VideoType != "" {
		db = db.Where("videos.video_type = ?", q.VideoType)
	}
	if q.Category != "" {
		db = db.Where("videos.category = ?", q.Category)
	}
	if q.CreatorID != 0 {
		db = db.Where("videos.creator_id = ?", q.CreatorID)
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		if isPostgres(db) {
			db = db.Where("to_tsvector('simple', videos.title || ' ' || videos.description) @@ plainto_tsquery('simple', ?)", text)
		} else {
			like := "%" + escapeLike(strings.ToLower(text)) + "%"
			db = db.Where(`(LOWER(videos.title) LIKE ? ESCAPE '\' OR LOWER(videos.description) LIKE ? ESCAPE '\')`, like, like)
		}
	}
	return db
}

func applyVideoOrder(db *gorm.DB, order VideoOrder) *gorm.DB {
	switch order {
	case OrderRecommended:
		return db.Order("videos.views DESC").
			Order("like_count DESC").
			Order("videos.created_at DESC").
			Order("videos.id DESC")
	default:
		return db.Order("videos.created_at DESC").Order("videos.id DESC")
	}
}

// UpdateFields writes only the given columns, so concurrent counter
// updates on the same row are preserved.
func (r *videoRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video", id)
	}
	return nil
}

// IncrementViews adds one view with a single atomic UPDATE.
func (r *videoRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video", id)
	}
	return nil
}

// Delete removes the video, its reactions, its comments and their reactions
// in one transaction.
func (r *videoRepository) Delete(ctx context.Context, id uint) error {
	ctx, end := startSpan(ctx, "Delete", "videos")
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("video_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.VideoReaction{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Video{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		err = notFoundOr(err, "Video", id)
	}
	end(err)
	return err
}

type reactionRow struct {
	VideoID uint
	UserID  uint
	Kind    models.ReactionKind
}

type commentRef struct {
	ID      uint
	VideoID uint
}

// hydrateVideos attaches creators and relationship sets to videos with three
// batched queries. Counts are taken from the attached sets.
func hydrateVideos(db *gorm.DB, videos []models.Video, viewerID uint) ([]models.VideoView, error) {
	out := make([]models.VideoView, len(videos))
	if len(videos) == 0 {
		return out, nil
	}

	ids := make([]uint, len(videos))
	creatorIDs := make([]uint, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
		creatorIDs[i] = v.CreatorID
	}

	creators, err := loadSummaries(db, creatorIDs)
	if err != nil {
		return nil, err
	}

	var reactions []reactionRow
	if err := db.Model(&models.VideoReaction{}).
		Select("video_id", "user_id", "kind").
		Where("video_id IN ?", ids).
		Order("id").
		Find(&reactions).Error; err != nil {
		return nil, err
	}

	var comments []commentRef
	if err := db.Model(&models.Comment{}).
		Select("id", "video_id").
		Where("video_id IN ?", ids).
		Order("created_at, id").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	likes := make(map[uint][]uint, len(videos))
	dislikes := make(map[uint][]uint, len(videos))
	for _, rr := range reactions {
		if rr.Kind == models.ReactionLike {
			likes[rr.VideoID] = append(likes[rr.VideoID], rr.UserID)
		} else {
			dislikes[rr.VideoID] = append(dislikes[rr.VideoID], rr.UserID)
		}
	}
	commentIDs := make(map[uint][]uint, len(videos))
	for _, c := range comments {
		commentIDs[c.VideoID] = append(commentIDs[c.VideoID], c.ID)
	}

	for i, v := range videos {
		view := models.VideoView{
			Video:    v,
			Creator:  creators[v.CreatorID],
			Likes:    emptyIfNil(likes[v.ID]),
			Dislikes: emptyIfNil(dislikes[v.ID]),
			Comments: emptyIfNil(commentIDs[v.ID]),
		}
		if view.Tags == nil {
			view.Tags = []string{}
		}
		view.LikeCount = int64(len(view.Likes))
		view.DislikeCount = int64(len(view.Dislikes))
		view.CommentCount = int64(len(view.Comments))
		if viewerID != 0 {
			view.IsLiked = boolPtr(slices.Contains(view.Likes, viewerID))
			view.IsDisliked = boolPtr(slices.Contains(view.Dislikes, viewerID))
		}
		out[i] = view
	}
	return out, nil
}
