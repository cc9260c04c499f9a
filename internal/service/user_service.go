package service

import (
	"context"
	"fmt"
	"strings"

	"reelhub/internal/models"
	"reelhub/internal/repository"
	"reelhub/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID uint, username string) (string, error)
}

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	tokens     TokenIssuer
	bcryptCost int
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,max=254,mailbox"`
	Password string `json:"password" validate:"required,password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput carries only the fields being changed.
type UpdateProfileInput struct {
	Username *string `json:"username" validate:"omitnil,username"`
	Email    *string `json:"email" validate:"omitnil,max=254,mailbox"`
	Bio      *string `json:"bio" validate:"omitnil,max=200"`
	Avatar   *string `json:"avatar" validate:"omitnil,url"`
	Password *string `json:"password" validate:"omitnil,password"`
}

// AuthResult is returned by register and login: the token next to the
// caller's own profile.
type AuthResult struct {
	Token string `json:"token"`
	*models.UserProfile
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository, tokens TokenIssuer) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.authResult(ctx, user)
}

// Login checks credentials. Unknown email and wrong password produce the
// same error.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return s.authResult(ctx, user)
}

// GetProfile returns id's profile as seen by viewerID (0 for anonymous).
func (s *UserService) GetProfile(ctx context.Context, id, viewerID uint) (*models.UserProfile, error) {
	return s.userRepo.GetProfile(ctx, id, viewerID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.UserProfile, error) {
	trimPtr(in.Username)
	trimPtr(in.Bio)
	trimPtr(in.Avatar)
	clearAvatar := takeEmpty(&in.Avatar)
	if in.Email != nil {
		email := validation.NormalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if clearAvatar {
		fields["avatar"] = ""
	}
	if in.Username != nil {
		fields["username"] = *in.Username
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetProfile(ctx, userID, userID)
}

// Follow makes followerID follow targetID. Following twice is a no-op.
func (s *UserService) Follow(ctx context.Context, followerID, targetID uint) (models.ToggleResult, error) {
	if err := s.checkFollowTarget(ctx, followerID, targetID); err != nil {
		return models.ToggleResult{}, err
	}
	count, err := s.followRepo.Follow(ctx, followerID, targetID)
	if err != nil {
		return models.ToggleResult{}, err
	}
	return models.ToggleResult{Message: "User followed", Count: count, Active: true}, nil
}

// Unfollow removes the follow if present.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID uint) (models.ToggleResult, error) {
	if err := s.checkFollowTarget(ctx, followerID, targetID); err != nil {
		return models.ToggleResult{}, err
	}
	count, err := s.followRepo.Unfollow(ctx, followerID, targetID)
	if err != nil {
		return models.ToggleResult{}, err
	}
	return models.ToggleResult{Message: "User unfollowed", Count: count, Active: false}, nil
}

func (s *UserService) checkFollowTarget(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	_, err := s.userRepo.GetIdentity(ctx, targetID)
	return err
}

func (s *UserService) authResult(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	profile, err := s.userRepo.GetProfile(ctx, user.ID, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserProfile: profile}, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}
	return string(hash), nil
}
