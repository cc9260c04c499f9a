package service

import (
	"context"
	"strings"

	"reelhub/internal/models"
	"reelhub/internal/observability"
	"reelhub/internal/repository"
	"reelhub/internal/validation"
)

// Default page sizes per feed.
const (
	RecommendedFeedLimit = 10
	ShortFeedLimit       = 20
	LongFeedLimit        = 10
	SearchFeedLimit      = 10
	CreatorFeedLimit     = 20
)

// FeedService serves the paginated video feeds.
type FeedService struct {
	videoRepo repository.VideoRepository
	userRepo  repository.UserRepository
}

// SearchFilter narrows the search feed. Empty fields do not filter.
type SearchFilter struct {
	Query     string `json:"q" validate:"max=100"`
	Category  string `json:"category" validate:"omitempty,category"`
	VideoType string `json:"videoType" validate:"omitempty,videotype"`
}

func NewFeedService(videoRepo repository.VideoRepository, userRepo repository.UserRepository) *FeedService {
	return &FeedService{videoRepo: videoRepo, userRepo: userRepo}
}

// Recommended ranks every public video by views, then likes, then recency.
func (s *FeedService) Recommended(ctx context.Context, page models.PageRequest, viewerID uint) (*models.VideoPage, error) {
	return s.page(ctx, "recommended", repository.VideoQuery{
		PublicOnly: true,
		Order:      repository.OrderRecommended,
	}, models.NewPageRequest(page.Page, page.Limit, RecommendedFeedLimit), viewerID)
}

func (s *FeedService) Short(ctx context.Context, page models.PageRequest, viewerID uint) (*models.VideoPage, error) {
	return s.page(ctx, "short", repository.VideoQuery{
		PublicOnly: true,
		VideoType:  models.VideoTypeShort,
	}, models.NewPageRequest(page.Page, page.Limit, ShortFeedLimit), viewerID)
}

func (s *FeedService) Long(ctx context.Context, page models.PageRequest, viewerID uint) (*models.VideoPage, error) {
	return s.page(ctx, "long", repository.VideoQuery{
		PublicOnly: true,
		VideoType:  models.VideoTypeLong,
	}, models.NewPageRequest(page.Page, page.Limit, LongFeedLimit), viewerID)
}

// Search matches public videos against the filter, newest first.
func (s *FeedService) Search(ctx context.Context, filter SearchFilter, page models.PageRequest, viewerID uint) (*models.VideoPage, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.VideoType = strings.TrimSpace(filter.VideoType)
	if err := validation.Struct(filter); err != nil {
		return nil, err
	}

	return s.page(ctx, "search", repository.VideoQuery{
		PublicOnly: true,
		Text:       filter.Query,
		Category:   models.Category(filter.Category),
		VideoType:  models.VideoType(filter.VideoType),
	}, models.NewPageRequest(page.Page, page.Limit, SearchFeedLimit), viewerID)
}

// ByCreator lists one user's videos. Private videos are included only when
// the viewer is that user.
func (s *FeedService) ByCreator(ctx context.Context, creatorID uint, page models.PageRequest, viewerID uint) (*models.VideoPage, error) {
	if _, err := s.userRepo.GetIdentity(ctx, creatorID); err != nil {
		return nil, err
	}
	return s.page(ctx, "creator", repository.VideoQuery{
		PublicOnly: viewerID != creatorID,
		CreatorID:  creatorID,
	}, models.NewPageRequest(page.Page, page.Limit, CreatorFeedLimit), viewerID)
}

func (s *FeedService) page(ctx context.Context, feed string, q repository.VideoQuery, page models.PageRequest, viewerID uint) (*models.VideoPage, error) {
	ctx, span := observability.StartServiceSpan(ctx, "FeedService", feed)
	videos, total, err := s.videoRepo.List(ctx, q, page, viewerID)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	observability.FeedRequests.WithLabelValues(feed).Inc()

	if videos == nil {
		videos = []models.VideoView{}
	}
	return &models.VideoPage{
		Videos:      videos,
		CurrentPage: page.Page,
		TotalPages:  page.TotalPages(total),
		TotalVideos: total,
		HasMore:     page.HasMore(total),
	}, nil
}
