package service

import (
	"context"
	"strings"

	"reelhub/internal/models"
	"reelhub/internal/repository"
	"reelhub/internal/validation"
)

const CommentPageLimit = 20

type CommentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
}

type CreateCommentInput struct {
	UserID   uint   `json:"-"`
	VideoID  uint   `json:"-"`
	ParentID *uint  `json:"parentId"`
	Content  string `json:"content" validate:"required,max=1000"`
}

type UpdateCommentInput struct {
	UserID    uint   `json:"-"`
	CommentID uint   `json:"-"`
	Content   string `json:"content" validate:"required,max=1000"`
}

func NewCommentService(commentRepo repository.CommentRepository, videoRepo repository.VideoRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, videoRepo: videoRepo}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentView, error) {
	if _, err := visibleVideo(ctx, s.videoRepo, in.VideoID, in.UserID); err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.liveComment(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.VideoID != in.VideoID {
			return nil, models.NewValidationError("Parent comment belongs to a different video")
		}
	}

	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: in.UserID,
		VideoID:  in.VideoID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetView(ctx, comment.ID, in.UserID)
}

// ListByVideo pages through a video's top-level comments, newest first.
func (s *CommentService) ListByVideo(ctx context.Context, videoID uint, page models.PageRequest, viewerID uint) (*models.CommentPage, error) {
	if _, err := visibleVideo(ctx, s.videoRepo, videoID, viewerID); err != nil {
		return nil, err
	}
	page = models.NewPageRequest(page.Page, page.Limit, CommentPageLimit)
	comments, total, err := s.commentRepo.ListByVideo(ctx, videoID, page, viewerID)
	if err != nil {
		return nil, err
	}
	return commentPage(comments, total, page), nil
}

// ListReplies pages through the direct replies to a comment.
func (s *CommentService) ListReplies(ctx context.Context, commentID uint, page models.PageRequest, viewerID uint) (*models.CommentPage, error) {
	parent, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := visibleVideo(ctx, s.videoRepo, parent.VideoID, viewerID); err != nil {
		return nil, err
	}
	page = models.NewPageRequest(page.Page, page.Limit, CommentPageLimit)
	replies, total, err := s.commentRepo.ListReplies(ctx, commentID, page, viewerID)
	if err != nil {
		return nil, err
	}
	return commentPage(replies, total, page), nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.CommentView, error) {
	comment, err := s.liveComment(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("Not authorized to update this comment")
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.commentRepo.UpdateContent(ctx, in.CommentID, in.Content); err != nil {
		return nil, err
	}
	return s.commentRepo.GetView(ctx, in.CommentID, in.UserID)
}

// DeleteComment soft-deletes a comment. The author and the video's creator
// may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.liveComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		video, err := s.videoRepo.GetByID(ctx, comment.VideoID)
		if err != nil {
			return err
		}
		if video.CreatorID != userID {
			return models.NewForbiddenError("Not authorized to delete this comment")
		}
	}
	return s.commentRepo.SoftDelete(ctx, commentID)
}

func (s *CommentService) liveComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return comment, nil
}

func commentPage(comments []models.CommentView, total int64, page models.PageRequest) *models.CommentPage {
	if comments == nil {
		comments = []models.CommentView{}
	}
	return &models.CommentPage{
		Comments:      comments,
		CurrentPage:   page.Page,
		TotalPages:    page.TotalPages(total),
		TotalComments: total,
		HasMore:       page.HasMore(total),
	}
}
