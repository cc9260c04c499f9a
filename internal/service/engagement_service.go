package service

import (
	"context"

	"reelhub/internal/models"
	"reelhub/internal/observability"
	"reelhub/internal/repository"
)

// EngagementService toggles likes and dislikes. Each toggle is a single
// transaction on the reaction table, so concurrent toggles never leave the
// video's and the user's view of the relationship out of sync.
type EngagementService struct {
	videoRepo    repository.VideoRepository
	commentRepo  repository.CommentRepository
	reactionRepo repository.ReactionRepository
}

func NewEngagementService(
	videoRepo repository.VideoRepository,
	commentRepo repository.CommentRepository,
	reactionRepo repository.ReactionRepository,
) *EngagementService {
	return &EngagementService{
		videoRepo:    videoRepo,
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
	}
}

// ToggleLike likes the video for userID, or removes an existing like.
// A like replaces a dislike by the same user.
func (s *EngagementService) ToggleLike(ctx context.Context, videoID, userID uint) (models.ToggleResult, error) {
	res, err := s.toggleVideo(ctx, videoID, userID, models.ReactionLike)
	if err != nil {
		return res, err
	}
	res.Message = pick(res.Active, "Video liked", "Video unliked")
	return res, nil
}

// ToggleDislike is the dislike counterpart of ToggleLike.
func (s *EngagementService) ToggleDislike(ctx context.Context, videoID, userID uint) (models.ToggleResult, error) {
	res, err := s.toggleVideo(ctx, videoID, userID, models.ReactionDislike)
	if err != nil {
		return res, err
	}
	res.Message = pick(res.Active, "Video disliked", "Video undisliked")
	return res, nil
}

// ToggleCommentLike likes or unlikes a comment. Deleted comments and
// comments on videos the caller cannot see are reported as missing.
func (s *EngagementService) ToggleCommentLike(ctx context.Context, commentID, userID uint) (models.ToggleResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "EngagementService", "ToggleCommentLike")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	var comment *models.Comment
	comment, err = s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return models.ToggleResult{}, err
	}
	if comment.IsDeleted {
		err = models.NewNotFoundError("Comment", commentID)
		return models.ToggleResult{}, err
	}
	if _, err = visibleVideo(ctx, s.videoRepo, comment.VideoID, userID); err != nil {
		return models.ToggleResult{}, err
	}

	var res models.ToggleResult
	res, err = s.reactionRepo.ToggleComment(ctx, userID, commentID, models.ReactionLike)
	if err != nil {
		return res, err
	}
	observability.ReactionToggles.WithLabelValues("comment", string(models.ReactionLike), observability.ToggleState(res.Active)).Inc()
	res.Message = pick(res.Active, "Comment liked", "Comment unliked")
	return res, nil
}

func (s *EngagementService) toggleVideo(ctx context.Context, videoID, userID uint, kind models.ReactionKind) (models.ToggleResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "EngagementService", "Toggle"+string(kind))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if _, err = visibleVideo(ctx, s.videoRepo, videoID, userID); err != nil {
		return models.ToggleResult{}, err
	}

	var res models.ToggleResult
	res, err = s.reactionRepo.ToggleVideo(ctx, userID, videoID, kind)
	if err != nil {
		return res, err
	}
	observability.ReactionToggles.WithLabelValues("video", string(kind), observability.ToggleState(res.Active)).Inc()
	return res, nil
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
