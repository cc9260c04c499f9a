package repository

import (
	"context"
	"errors"
	"slices"

	"reelhub/internal/cache"
	"reelhub/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetIdentity(ctx context.Context, id uint) (models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Summaries(ctx context.Context, ids []uint) (map[uint]models.CreatorSummary, error)
	GetProfile(ctx context.Context, id, viewerID uint) (*models.UserProfile, error)
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewUserRepository returns a new UserRepository implementation.
// c may be nil, in which case every read goes to the database.
func NewUserRepository(db *gorm.DB, c *cache.Cache) UserRepository {
	return &userRepository{db: db, cache: c}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := cache.Aside(ctx, r.cache, cache.UserKey(id), cache.UserTTL, func(ctx context.Context) (models.User, error) {
		var u models.User
		if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
			return u, notFoundOr(err, "User", id)
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetIdentity loads the minimal principal used by the auth guard.
func (r *userRepository) GetIdentity(ctx context.Context, id uint) (models.Identity, error) {
	return cache.Aside(ctx, r.cache, cache.IdentityKey(id), cache.IdentityTTL, func(ctx context.Context) (models.Identity, error) {
		var ident models.Identity
		err := r.db.WithContext(ctx).
			Model(&models.User{}).
			Select("id", "role").
			Where("id = ?", id).
			Take(&ident).Error
		if err != nil {
			return ident, notFoundOr(err, "User", id)
		}
		return ident, nil
	})
}

// GetByEmail returns nil, nil when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateFields writes only the given columns.
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return models.NewConflictError("Username or email already taken", res.Error)
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.cache.InvalidateUser(ctx, id)
	return nil
}

// Summaries returns the public fields of every user in ids, keyed by id.
// Soft-deleted users are included so old content keeps its attribution.
func (r *userRepository) Summaries(ctx context.Context, ids []uint) (map[uint]models.CreatorSummary, error) {
	return loadSummaries(r.db.WithContext(ctx), ids)
}

func loadSummaries(db *gorm.DB, ids []uint) (map[uint]models.CreatorSummary, error) {
	out := make(map[uint]models.CreatorSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.CreatorSummary
	if err := db.Unscoped().
		Model(&models.User{}).
		Select("id", "username", "avatar", "is_verified").
		Where("id IN ?", uniqueIDs(ids)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// GetProfile composes a user with follower, following, video and like sets.
// Private videos appear only when the viewer is their owner.
func (r *userRepository) GetProfile(ctx context.Context, id, viewerID uint) (*models.UserProfile, error) {
	ctx, end := startSpan(ctx, "GetProfile", "users")
	var profile *models.UserProfile
	err := snapshot(ctx, r.db, func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}

		followers, err := followerIDs(tx, id)
		if err != nil {
			return err
		}
		following, err := followingIDs(tx, id)
		if err != nil {
			return err
		}

		var videos []uint
		videoQuery := tx.Model(&models.Video{}).Where("creator_id = ?", id)
		if viewerID != id {
			videoQuery = videoQuery.Where("is_public = ?", true)
		}
		if err := videoQuery.Order("created_at DESC, id DESC").Pluck("id", &videos).Error; err != nil {
			return err
		}

		var likes []uint
		if err := tx.Model(&models.VideoReaction{}).
			Joins("JOIN videos ON videos.id = video_reactions.video_id").
			Where("video_reactions.user_id = ? AND video_reactions.kind = ?", id, models.ReactionLike).
			Where("videos.is_public = ? OR videos.creator_id = ?", true, viewerID).
			Order("video_reactions.id").
			Pluck("video_reactions.video_id", &likes).Error; err != nil {
			return err
		}

		profile = &models.UserProfile{
			ID:             user.ID,
			Username:       user.Username,
			Avatar:         user.Avatar,
			Bio:            user.Bio,
			IsVerified:     user.IsVerified,
			Role:           user.Role,
			Followers:      emptyIfNil(followers),
			Following:      emptyIfNil(following),
			Videos:         emptyIfNil(videos),
			Likes:          emptyIfNil(likes),
			FollowerCount:  len(followers),
			FollowingCount: len(following),
			VideoCount:     len(videos),
			CreatedAt:      user.CreatedAt,
			UpdatedAt:      user.UpdatedAt,
		}
		if viewerID == id {
			profile.Email = user.Email
		}
		if viewerID != 0 && viewerID != id {
			profile.IsFollowing = boolPtr(slices.Contains(followers, viewerID))
		}
		return nil
	})
	if err != nil {
		err = notFoundOr(err, "User", id)
	}
	end(err)
	return profile, err
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
