package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Category classifies a video for browsing and search.
type Category string

const (
	CategoryEntertainment Category = "entertainment"
	CategoryEducation     Category = "education"
	CategorySports        Category = "sports"
	CategoryMusic         Category = "music"
	CategoryComedy        Category = "comedy"
	CategoryLifestyle     Category = "lifestyle"
	CategoryNews          Category = "news"
	CategoryOther         Category = "other"
)

// Categories lists every accepted category.
var Categories = []Category{
	CategoryEntertainment,
	CategoryEducation,
	CategorySports,
	CategoryMusic,
	CategoryComedy,
	CategoryLifestyle,
	CategoryNews,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// VideoType separates the short-form and long-form feeds.
type VideoType string

const (
	VideoTypeShort VideoType = "short"
	VideoTypeLong  VideoType = "long"
)

// Valid reports whether t is a known video type.
func (t VideoType) Valid() bool {
	return t == VideoTypeShort || t == VideoTypeLong
}

// DefaultLanguage is applied when a video is created without one.
const DefaultLanguage = "zh-CN"

// Video is a media record owned by its creator. The media itself lives
// behind VideoURL; this service never touches the bytes.
type Video struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:100;not null" json:"title"`
	Description  string    `gorm:"size:500;not null" json:"description"`
	VideoURL     string    `gorm:"not null" json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     int       `gorm:"not null;default:0" json:"duration"`
	Views        int64     `gorm:"not null;default:0;index" json:"views"`
	Shares       int64     `gorm:"not null;default:0" json:"shares"`
	Category     Category  `gorm:"size:32;not null;index" json:"category"`
	Tags         TagList   `gorm:"type:text" json:"tags"`
	IsPublic     bool      `gorm:"not null;index" json:"isPublic"`
	IsMonetized  bool      `gorm:"not null" json:"isMonetized"`
	CreatorID    uint      `gorm:"not null;index" json:"creatorId"`
	VideoType    VideoType `gorm:"size:8;not null;index" json:"videoType"`
	Location     string    `json:"location"`
	Language     string    `gorm:"size:16;not null" json:"language"`
	// Counts are not persisted; computed at query time
	LikeCount    int64     `gorm:"->;-:migration" json:"likeCount"`
	DislikeCount int64     `gorm:"->;-:migration" json:"dislikeCount"`
	CommentCount int64     `gorm:"->;-:migration" json:"commentCount"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TagList is stored as a JSON array in a text column.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = TagList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan TagList: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*t = TagList{}
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("scan TagList: %w", err)
	}
	*t = tags
	return nil
}

// ReactionKind is the direction of a reaction on a video or comment.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// VideoReaction is one user's like or dislike on a video.
// The (UserID, VideoID) pair is unique, so a user holds at most one reaction.
type VideoReaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_video_reactions_pair" json:"userId"`
	VideoID   uint         `gorm:"not null;uniqueIndex:idx_video_reactions_pair;index" json:"videoId"`
	Kind      ReactionKind `gorm:"size:8;not null" json:"kind"`
	CreatedAt time.Time    `json:"createdAt"`
}

// VideoView is a video with its creator and relationship sets attached.
type VideoView struct {
	Video
	Creator  CreatorSummary `json:"creator"`
	Likes    []uint         `json:"likes"`
	Dislikes []uint         `json:"dislikes"`
	Comments []uint         `json:"comments"`
	// Personalization fields, nil for anonymous viewers
	IsLiked    *bool `json:"isLiked,omitempty"`
	IsDisliked *bool `json:"isDisliked,omitempty"`
}

// CreatorDetail extends the creator summary on the single-video page.
type CreatorDetail struct {
	CreatorSummary
	Followers     []uint `json:"followers"`
	FollowerCount int    `json:"followerCount"`
}

// VideoDetail is the single-video payload: populated creator and comments.
type VideoDetail struct {
	VideoView
	Creator  CreatorDetail `json:"creator"`
	Comments []CommentView `json:"comments"`
}

// VideoPage is one page of a feed.
type VideoPage struct {
	Videos      []VideoView `json:"videos"`
	CurrentPage int         `json:"currentPage"`
	TotalPages  int         `json:"totalPages"`
	TotalVideos int64       `json:"totalVideos"`
	HasMore     bool        `json:"hasMore"`
}
