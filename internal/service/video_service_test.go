package service

import (
	"context"
	"strings"
	"testing"

	"reelhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a, b ,c", []string{"a", "b", "c"}},
		{" , ,", []string{}},
		{"solo", []string{"solo"}},
		{"x,,y", []string{"x", "y"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitTags(tt.in), "input %q", tt.in)
	}
}

func TestVideoService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "creator")

	v := env.upload(t, creator, CreateVideoInput{Title: "  first  ", Tags: "a, b ,c"})
	assert.Equal(t, "first", v.Title)
	assert.Equal(t, []string{"a", "b", "c"}, []string(v.Tags))
	assert.Equal(t, models.CategoryOther, v.Category)
	assert.Equal(t, models.VideoTypeShort, v.VideoType)
	assert.Equal(t, models.DefaultLanguage, v.Language)
	assert.True(t, v.IsPublic)
	assert.Equal(t, creator, v.CreatorID)
	assert.Equal(t, "creator", v.Creator.Username)
	assert.Equal(t, []uint{}, v.Likes)
	assert.Zero(t, v.LikeCount)

	stored, err := env.videoRepo.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, []string(stored.Tags))
}

func TestVideoService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	creator := env.register(t, "creator")
	ctx := context.Background()

	valid := CreateVideoInput{Title: "ok", VideoURL: "https://cdn.example.com/a.mp4"}
	tests := []struct {
		name   string
		mutate func(*CreateVideoInput)
	}{
		{"missing title", func(in *CreateVideoInput) { in.Title = "   " }},
		{"long title", func(in *CreateVideoInput) { in.Title = strings.Repeat("t", 101) }},
		{"long description", func(in *CreateVideoInput) { in.Description = strings.Repeat("d", 501) }},
		{"bad category", func(in *CreateVideoInput) { in.Category = "cooking" }},
		{"bad type", func(in *CreateVideoInput) { in.VideoType = "medium" }},
		{"missing url", func(in *CreateVideoInput) { in.VideoURL = "" }},
		{"bad url", func(in *CreateVideoInput) { in.VideoURL = "not a url" }},
		{"negative duration", func(in *CreateVideoInput) { in.Duration = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := env.videos.Create(ctx, creator, in)
			assertCode(t, models.CodeValidation, err)
		})
	}
}

func TestVideoService_UpdateIsPartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.register(t, "creator")
	v := env.upload(t, creator, CreateVideoInput{Title: "before", Description: "keep", Category: "music", Tags: "x"})

	updated, err := env.videos.Update(ctx, v.ID, creator, UpdateVideoInput{
		Title:    strp("after"),
		Tags:     strp("y, z"),
		IsPublic: boolp(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "keep", updated.Description)
	assert.Equal(t, models.CategoryMusic, updated.Category)
	assert.Equal(t, []string{"y", "z"}, []string(updated.Tags))
	assert.False(t, updated.IsPublic)
	assert.Equal(t, models.VideoTypeShort, updated.VideoType)

	_, err = env.videos.Update(ctx, v.ID, creator, UpdateVideoInput{Title: strp("")})
	assertCode(t, models.CodeValidation, err)

	_, err = env.videos.Update(ctx, v.ID, creator, UpdateVideoInput{Category: strp("cooking")})
	assertCode(t, models.CodeValidation, err)
}

func TestVideoService_UpdateThumbnail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.register(t, "creator")
	v := env.upload(t, creator, CreateVideoInput{ThumbnailURL: "https://img.example.com/t.jpg"})

	updated, err := env.videos.Update(ctx, v.ID, creator, UpdateVideoInput{ThumbnailURL: strp("  ")})
	require.NoError(t, err)
	assert.Empty(t, updated.ThumbnailURL)

	updated, err = env.videos.Update(ctx, v.ID, creator, UpdateVideoInput{ThumbnailURL: strp("https://img.example.com/u.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/u.jpg", updated.ThumbnailURL)

	_, err = env.videos.Update(ctx, v.ID, creator, UpdateVideoInput{ThumbnailURL: strp("not a url")})
	assertCode(t, models.CodeValidation, err)
}

func TestVideoService_NonOwnerIsForbiddenRegardlessOfPayload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner")
	intruder := env.register(t, "intruder")
	v := env.upload(t, owner, CreateVideoInput{})

	payloads := []UpdateVideoInput{
		{},
		{Title: strp("valid")},
		{Title: strp(strings.Repeat("x", 500))},
		{Category: strp("not-a-category")},
	}
	for _, in := range payloads {
		_, err := env.videos.Update(ctx, v.ID, intruder, in)
		assertCode(t, models.CodeForbidden, err)
	}
	assertCode(t, models.CodeForbidden, env.videos.Delete(ctx, v.ID, intruder))

	_, err := env.videos.Update(ctx, 9999, intruder, UpdateVideoInput{})
	assertCode(t, models.CodeNotFound, err)
}

func TestVideoService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner")
	fan := env.register(t, "fan")
	v := env.upload(t, owner, CreateVideoInput{})

	_, err := env.engagement.ToggleLike(ctx, v.ID, fan)
	require.NoError(t, err)
	_, err = env.comments.CreateComment(ctx, CreateCommentInput{UserID: fan, VideoID: v.ID, Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, env.videos.Delete(ctx, v.ID, owner))
	_, err = env.videos.Get(ctx, v.ID, owner)
	assertCode(t, models.CodeNotFound, err)

	profile, err := env.users.GetProfile(ctx, owner, owner)
	require.NoError(t, err)
	assert.Empty(t, profile.Videos)

	fanProfile, err := env.users.GetProfile(ctx, fan, fan)
	require.NoError(t, err)
	assert.Empty(t, fanProfile.Likes)
}

func TestVideoService_GetCountsEveryRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner")
	viewer := env.register(t, "viewer")
	v := env.upload(t, owner, CreateVideoInput{})

	first, err := env.videos.Get(ctx, v.ID, viewer)
	require.NoError(t, err)
	second, err := env.videos.Get(ctx, v.ID, viewer)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Views)
	assert.Equal(t, first.Views+1, second.Views)

	_, err = env.videos.Get(ctx, v.ID, 0)
	require.NoError(t, err)
	stored, err := env.videoRepo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Views)
}

func TestVideoService_GetDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner")
	fan := env.register(t, "fan")
	v := env.upload(t, owner, CreateVideoInput{})

	_, err := env.users.Follow(ctx, fan, owner)
	require.NoError(t, err)
	top, err := env.comments.CreateComment(ctx, CreateCommentInput{UserID: fan, VideoID: v.ID, Content: "top"})
	require.NoError(t, err)
	_, err = env.comments.CreateComment(ctx, CreateCommentInput{UserID: owner, VideoID: v.ID, ParentID: &top.ID, Content: "reply"})
	require.NoError(t, err)

	detail, err := env.videos.Get(ctx, v.ID, fan)
	require.NoError(t, err)
	assert.Equal(t, "owner", detail.Creator.Username)
	assert.Equal(t, []uint{fan}, detail.Creator.Followers)
	assert.Equal(t, 1, detail.Creator.FollowerCount)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "fan", detail.Comments[0].Author.Username)
	assert.Equal(t, int64(2), detail.CommentCount)
}

func TestVideoService_PrivateVideoHiddenFromOthers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner")
	other := env.register(t, "other")
	v := env.upload(t, owner, CreateVideoInput{IsPublic: boolp(false)})

	_, err := env.videos.Get(ctx, v.ID, other)
	assertCode(t, models.CodeNotFound, err)
	_, err = env.videos.Get(ctx, v.ID, 0)
	assertCode(t, models.CodeNotFound, err)

	detail, err := env.videos.Get(ctx, v.ID, owner)
	require.NoError(t, err)
	assert.False(t, detail.IsPublic)

	stored, err := env.videoRepo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Views)
}
