package repository

import (
	"context"

	"reelhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository toggles likes and dislikes on videos and comments.
// A user holds at most one reaction per target, so a like replaces a dislike.
type ReactionRepository interface {
	ToggleVideo(ctx context.Context, userID, videoID uint, kind models.ReactionKind) (models.ToggleResult, error)
	ToggleComment(ctx context.Context, userID, commentID uint, kind models.ReactionKind) (models.ToggleResult, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository returns a ReactionRepository backed by db.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

type reactionTarget struct {
	column string
	model  func(userID, targetID uint, kind models.ReactionKind) any
}

var (
	videoTarget = reactionTarget{
		column: "video_id",
		model: func(userID, targetID uint, kind models.ReactionKind) any {
			return &models.VideoReaction{UserID: userID, VideoID: targetID, Kind: kind}
		},
	}
	commentTarget = reactionTarget{
		column: "comment_id",
		model: func(userID, targetID uint, kind models.ReactionKind) any {
			return &models.CommentReaction{UserID: userID, CommentID: targetID, Kind: kind}
		},
	}
)

func (r *reactionRepository) ToggleVideo(ctx context.Context, userID, videoID uint, kind models.ReactionKind) (models.ToggleResult, error) {
	return r.toggle(ctx, videoTarget, userID, videoID, kind)
}

func (r *reactionRepository) ToggleComment(ctx context.Context, userID, commentID uint, kind models.ReactionKind) (models.ToggleResult, error) {
	return r.toggle(ctx, commentTarget, userID, commentID, kind)
}

// toggle removes the caller's reaction of this kind if present, otherwise
// upserts it (replacing a reaction of the other kind). The count is read in
// the same transaction, so the result matches the committed state.
func (r *reactionRepository) toggle(ctx context.Context, target reactionTarget, userID, targetID uint, kind models.ReactionKind) (models.ToggleResult, error) {
	ctx, end := startSpan(ctx, "Toggle", target.column)
	var result models.ToggleResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := target.model(userID, targetID, kind)

		res := tx.Where("user_id = ? AND "+target.column+" = ? AND kind = ?", userID, targetID, kind).
			Delete(target.model(0, 0, "")) // empty value selects the table only
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: target.column}},
				DoUpdates: clause.Assignments(map[string]any{"kind": kind}),
			}).Create(model).Error; err != nil {
				return err
			}
			result.Active = true
		}

		return tx.Model(target.model(0, 0, "")).
			Where(target.column+" = ? AND kind = ?", targetID, kind).
			Count(&result.Count).Error
	})
	if err != nil {
		err = models.NewInternalError(err)
	}
	end(err)
	return result, err
}
