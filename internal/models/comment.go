package models

import "time"

// DeletedCommentContent replaces the body of a soft-deleted comment.
const DeletedCommentContent = "[deleted]"

// Comment is a user's remark on a video, optionally replying to another comment.
type Comment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Content   string `gorm:"size:1000;not null" json:"content"`
	AuthorID  uint   `gorm:"not null;index" json:"authorId"`
	VideoID   uint   `gorm:"not null;index" json:"videoId"`
	ParentID  *uint  `gorm:"index" json:"parentId,omitempty"`
	IsEdited  bool   `gorm:"not null;default:false" json:"isEdited"`
	IsDeleted bool   `gorm:"not null;default:false" json:"isDeleted"`
	// Counts are not persisted; computed at query time
	LikeCount    int64     `gorm:"->;-:migration" json:"likeCount"`
	DislikeCount int64     `gorm:"->;-:migration" json:"dislikeCount"`
	ReplyCount   int64     `gorm:"->;-:migration" json:"replyCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CommentReaction is one user's like or dislike on a comment.
type CommentReaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_comment_reactions_pair" json:"userId"`
	CommentID uint         `gorm:"not null;uniqueIndex:idx_comment_reactions_pair;index" json:"commentId"`
	Kind      ReactionKind `gorm:"size:8;not null" json:"kind"`
	CreatedAt time.Time    `json:"createdAt"`
}

// CommentView is a comment with its author and relationship sets attached.
type CommentView struct {
	Comment
	Author   CreatorSummary `json:"author"`
	Replies  []uint         `json:"replies"`
	Likes    []uint         `json:"likes"`
	Dislikes []uint         `json:"dislikes"`
	IsLiked  *bool          `json:"isLiked,omitempty"`
}

// CommentPage is one page of comments.
type CommentPage struct {
	Comments      []CommentView `json:"comments"`
	CurrentPage   int           `json:"currentPage"`
	TotalPages    int           `json:"totalPages"`
	TotalComments int64         `json:"totalComments"`
	HasMore       bool          `json:"hasMore"`
}
