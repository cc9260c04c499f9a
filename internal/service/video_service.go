package service

import (
	"context"
	"strings"

	"reelhub/internal/models"
	"reelhub/internal/repository"
	"reelhub/internal/validation"
)

// VideoService owns the create, update, delete and read-one lifecycle.
type VideoService struct {
	videoRepo   repository.VideoRepository
	followRepo  repository.FollowRepository
	commentRepo repository.CommentRepository
	views       *ViewCounter
}

type CreateVideoInput struct {
	Title        string `json:"title" validate:"required,max=100"`
	Description  string `json:"description" validate:"max=500"`
	VideoURL     string `json:"videoUrl" validate:"required,url"`
	ThumbnailURL string `json:"thumbnailUrl" validate:"omitempty,url"`
	Duration     int    `json:"duration" validate:"gte=0"`
	Category     string `json:"category" validate:"omitempty,category"`
	Tags         string `json:"tags" validate:"max=500"`
	VideoType    string `json:"videoType" validate:"omitempty,videotype"`
	IsPublic     *bool  `json:"isPublic"`
	IsMonetized  bool   `json:"isMonetized"`
	Location     string `json:"location" validate:"max=100"`
	Language     string `json:"language" validate:"max=16"`
}

// UpdateVideoInput carries only the fields the owner wants changed.
// creatorId and videoType are not updatable.
type UpdateVideoInput struct {
	Title        *string `json:"title" validate:"omitnil,min=1,max=100"`
	Description  *string `json:"description" validate:"omitnil,max=500"`
	ThumbnailURL *string `json:"thumbnailUrl" validate:"omitnil,url"`
	Category     *string `json:"category" validate:"omitnil,category"`
	Tags         *string `json:"tags" validate:"omitnil,max=500"`
	IsPublic     *bool   `json:"isPublic"`
	IsMonetized  *bool   `json:"isMonetized"`
	Location     *string `json:"location" validate:"omitnil,max=100"`
	Language     *string `json:"language" validate:"omitnil,max=16"`
}

func NewVideoService(
	videoRepo repository.VideoRepository,
	followRepo repository.FollowRepository,
	commentRepo repository.CommentRepository,
	views *ViewCounter,
) *VideoService {
	return &VideoService{
		videoRepo:   videoRepo,
		followRepo:  followRepo,
		commentRepo: commentRepo,
		views:       views,
	}
}

// SplitTags turns a comma-separated tag string into a trimmed list with
// empty entries dropped. The result is never nil.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (s *VideoService) Create(ctx context.Context, creatorID uint, in CreateVideoInput) (*models.VideoView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	video := &models.Video{
		Title:        in.Title,
		Description:  in.Description,
		VideoURL:     in.VideoURL,
		ThumbnailURL: in.ThumbnailURL,
		Duration:     in.Duration,
		Category:     models.CategoryOther,
		Tags:         SplitTags(in.Tags),
		IsPublic:     true,
		IsMonetized:  in.IsMonetized,
		CreatorID:    creatorID,
		VideoType:    models.VideoTypeShort,
		Location:     strings.TrimSpace(in.Location),
		Language:     strings.TrimSpace(in.Language),
	}
	if in.Category != "" {
		video.Category = models.Category(in.Category)
	}
	if in.VideoType != "" {
		video.VideoType = models.VideoType(in.VideoType)
	}
	if in.IsPublic != nil {
		video.IsPublic = *in.IsPublic
	}
	if video.Language == "" {
		video.Language = models.DefaultLanguage
	}

	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, err
	}
	return s.videoRepo.GetView(ctx, video.ID, creatorID)
}

// Update applies a partial update. Ownership is checked before the payload
// is validated, so a non-owner always gets FORBIDDEN.
func (s *VideoService) Update(ctx context.Context, videoID, callerID uint, in UpdateVideoInput) (*models.VideoView, error) {
	if _, err := s.ownedVideo(ctx, videoID, callerID, "update"); err != nil {
		return nil, err
	}

	trimPtr(in.Title)
	trimPtr(in.Description)
	trimPtr(in.ThumbnailURL)
	trimPtr(in.Location)
	trimPtr(in.Language)
	clearThumbnail := takeEmpty(&in.ThumbnailURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if clearThumbnail {
		fields["thumbnail_url"] = ""
	}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.ThumbnailURL != nil {
		fields["thumbnail_url"] = *in.ThumbnailURL
	}
	if in.Category != nil {
		fields["category"] = models.Category(*in.Category)
	}
	if in.Tags != nil {
		fields["tags"] = models.TagList(SplitTags(*in.Tags))
	}
	if in.IsPublic != nil {
		fields["is_public"] = *in.IsPublic
	}
	if in.IsMonetized != nil {
		fields["is_monetized"] = *in.IsMonetized
	}
	if in.Location != nil {
		fields["location"] = *in.Location
	}
	if in.Language != nil {
		lang := *in.Language
		if lang == "" {
			lang = models.DefaultLanguage
		}
		fields["language"] = lang
	}

	if err := s.videoRepo.UpdateFields(ctx, videoID, fields); err != nil {
		return nil, err
	}
	return s.videoRepo.GetView(ctx, videoID, callerID)
}

// Delete removes the video together with its reactions and comments.
func (s *VideoService) Delete(ctx context.Context, videoID, callerID uint) error {
	if _, err := s.ownedVideo(ctx, videoID, callerID, "delete"); err != nil {
		return err
	}
	return s.videoRepo.Delete(ctx, videoID)
}

// Get counts a view and returns the video with its creator's followers and
// the first page of top-level comments. The returned views include this read.
func (s *VideoService) Get(ctx context.Context, videoID, viewerID uint) (*models.VideoDetail, error) {
	if _, err := visibleVideo(ctx, s.videoRepo, videoID, viewerID); err != nil {
		return nil, err
	}
	if _, err := s.views.Record(ctx, videoID, viewerID); err != nil {
		return nil, err
	}

	view, err := s.videoRepo.GetView(ctx, videoID, viewerID)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.FollowerIDs(ctx, view.CreatorID)
	if err != nil {
		return nil, err
	}
	comments, _, err := s.commentRepo.ListByVideo(ctx, videoID, models.NewPageRequest(1, models.MaxPageLimit, models.MaxPageLimit), viewerID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.CommentView{}
	}

	return &models.VideoDetail{
		VideoView: *view,
		Creator: models.CreatorDetail{
			CreatorSummary: view.Creator,
			Followers:      followers,
			FollowerCount:  len(followers),
		},
		Comments: comments,
	}, nil
}

func (s *VideoService) ownedVideo(ctx context.Context, videoID, callerID uint, action string) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.CreatorID != callerID {
		return nil, models.NewForbiddenError("Not authorized to " + action + " this video")
	}
	return video, nil
}

// visibleVideo loads a video the viewer may see. Private videos are
// reported as missing to everyone but their creator.
func visibleVideo(ctx context.Context, videos repository.VideoRepository, videoID, viewerID uint) (*models.Video, error) {
	video, err := videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublic && video.CreatorID != viewerID {
		return nil, models.NewNotFoundError("Video", videoID)
	}
	return video, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// takeEmpty nils out *p when it points at "" and reports whether it did.
func takeEmpty(p **string) bool {
	if *p != nil && **p == "" {
		*p = nil
		return true
	}
	return false
}
