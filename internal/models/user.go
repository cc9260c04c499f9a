// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// User represents an account on the platform.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email      string         `gorm:"uniqueIndex;not null" json:"email"`
	Password   string         `gorm:"not null" json:"-"`
	Avatar     string         `json:"avatar"`
	Bio        string         `gorm:"size:200" json:"bio"`
	IsVerified bool           `gorm:"not null;default:false" json:"isVerified"`
	Role       Role           `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Identity is the minimal authenticated principal attached to a request.
type Identity struct {
	ID   uint `json:"id"`
	Role Role `json:"role"`
}

// Identity returns the principal for u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role}
}

// Summary returns the public fields denormalized onto videos and comments.
func (u *User) Summary() CreatorSummary {
	return CreatorSummary{
		ID:         u.ID,
		Username:   u.Username,
		Avatar:     u.Avatar,
		IsVerified: u.IsVerified,
	}
}

// CreatorSummary is the public slice of a user attached to other entities.
type CreatorSummary struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	IsVerified bool   `json:"isVerified"`
}

// UserProfile is a user with its relationship sets projected at read time.
type UserProfile struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	Avatar         string    `json:"avatar"`
	Bio            string    `json:"bio"`
	IsVerified     bool      `json:"isVerified"`
	Role           Role      `json:"role"`
	Followers      []uint    `json:"followers"`
	Following      []uint    `json:"following"`
	Videos         []uint    `json:"videos"`
	Likes          []uint    `json:"likes"`
	FollowerCount  int       `json:"followerCount"`
	FollowingCount int       `json:"followingCount"`
	VideoCount     int       `json:"videoCount"`
	IsFollowing    *bool     `json:"isFollowing,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Follow records that FollowerID follows FollowingID.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follows_pair" json:"followerId"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}
