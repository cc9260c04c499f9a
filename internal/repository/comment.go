package repository

import (
	"context"
	"slices"

	"reelhub/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetView(ctx context.Context, id, viewerID uint) (*models.CommentView, error)
	ListByVideo(ctx context.Context, videoID uint, page models.PageRequest, viewerID uint) ([]models.CommentView, int64, error)
	ListReplies(ctx context.Context, parentID uint, page models.PageRequest, viewerID uint) ([]models.CommentView, int64, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	SoftDelete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) GetView(ctx context.Context, id, viewerID uint) (*models.CommentView, error) {
	var view *models.CommentView
	err := snapshot(ctx, r.db, func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}
		views, err := hydrateComments(tx, []models.Comment{comment}, viewerID)
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return view, nil
}

// ListByVideo returns top-level comments on a video, newest first.
func (r *commentRepository) ListByVideo(ctx context.Context, videoID uint, page models.PageRequest, viewerID uint) ([]models.CommentView, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("video_id = ? AND parent_id IS NULL", videoID)
	}, page, viewerID)
}

// ListReplies returns direct replies to a comment, newest first.
func (r *commentRepository) ListReplies(ctx context.Context, parentID uint, page models.PageRequest, viewerID uint) ([]models.CommentView, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("parent_id = ?", parentID)
	}, page, viewerID)
}

func (r *commentRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB, page models.PageRequest, viewerID uint) ([]models.CommentView, int64, error) {
	ctx, end := startSpan(ctx, "List", "comments")
	var (
		out   []models.CommentView
		total int64
	)
	err := snapshot(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).Scopes(scope).Count(&total).Error; err != nil {
			return err
		}
		var comments []models.Comment
		if err := tx.Model(&models.Comment{}).Scopes(scope).
			Order("created_at DESC").Order("id DESC").
			Limit(page.Limit).
			Offset(page.Offset()).
			Find(&comments).Error; err != nil {
			return err
		}
		var err error
		out, err = hydrateComments(tx, comments, viewerID)
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

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"content": content, "is_edited": true})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

// SoftDelete hides a comment's content while keeping its replies attached.
func (r *commentRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

type commentReactionRow struct {
	CommentID uint
	UserID    uint
	Kind      models.ReactionKind
}

type replyRef struct {
	ID       uint
	ParentID uint
}

func hydrateComments(db *gorm.DB, comments []models.Comment, viewerID uint) ([]models.CommentView, error) {
	out := make([]models.CommentView, len(comments))
	if len(comments) == 0 {
		return out, nil
	}

	ids := make([]uint, len(comments))
	authorIDs := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		authorIDs[i] = c.AuthorID
	}

	authors, err := loadSummaries(db, authorIDs)
	if err != nil {
		return nil, err
	}

	var reactions []commentReactionRow
	if err := db.Model(&models.CommentReaction{}).
		Select("comment_id", "user_id", "kind").
		Where("comment_id IN ?", ids).
		Order("id").
		Find(&reactions).Error; err != nil {
		return nil, err
	}

	var replies []replyRef
	if err := db.Model(&models.Comment{}).
		Select("id", "parent_id").
		Where("parent_id IN ?", ids).
		Order("created_at, id").
		Find(&replies).Error; err != nil {
		return nil, err
	}

	likes := make(map[uint][]uint, len(comments))
	dislikes := make(map[uint][]uint, len(comments))
	for _, rr := range reactions {
		if rr.Kind == models.ReactionLike {
			likes[rr.CommentID] = append(likes[rr.CommentID], rr.UserID)
		} else {
			dislikes[rr.CommentID] = append(dislikes[rr.CommentID], rr.UserID)
		}
	}
	replyIDs := make(map[uint][]uint, len(comments))
	for _, rep := range replies {
		replyIDs[rep.ParentID] = append(replyIDs[rep.ParentID], rep.ID)
	}

	for i, c := range comments {
		if c.IsDeleted {
			c.Content = models.DeletedCommentContent
		}
		view := models.CommentView{
			Comment:  c,
			Author:   authors[c.AuthorID],
			Replies:  emptyIfNil(replyIDs[c.ID]),
			Likes:    emptyIfNil(likes[c.ID]),
			Dislikes: emptyIfNil(dislikes[c.ID]),
		}
		view.LikeCount = int64(len(view.Likes))
		view.DislikeCount = int64(len(view.Dislikes))
		view.ReplyCount = int64(len(view.Replies))
		if viewerID != 0 {
			view.IsLiked = boolPtr(slices.Contains(view.Likes, viewerID))
		}
		out[i] = view
	}
	return out, nil
}
