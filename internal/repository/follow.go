package repository

import (
	"context"

	"reelhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository manages the follows membership table.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID uint) (int64, error)
	Unfollow(ctx context.Context, followerID, followingID uint) (int64, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a FollowRepository backed by db.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow inserts the pair if absent and returns the target's follower count.
func (r *followRepository) Follow(ctx context.Context, followerID, followingID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.Follow{FollowerID: followerID, FollowingID: followingID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&models.Follow{}).Where("following_id = ?", followingID).Count(&count).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Unfollow deletes the pair if present and returns the target's follower count.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Follow{}).Where("following_id = ?", followingID).Count(&count).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := followerIDs(r.db.WithContext(ctx), userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return emptyIfNil(ids), nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func followerIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Order("id").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func followingIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("id").
		Pluck("following_id", &ids).Error
	return ids, err
}
