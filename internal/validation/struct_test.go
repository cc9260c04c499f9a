package validation

import (
	"errors"
	"testing"

	"reelhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type videoForm struct {
	Title     string  `json:"title" validate:"required,max=100"`
	VideoURL  string  `json:"videoUrl" validate:"required,url"`
	Category  string  `json:"category" validate:"omitempty,category"`
	VideoType string  `json:"videoType" validate:"omitempty,videotype"`
	Duration  int     `json:"duration" validate:"gte=0"`
	Bio       *string `json:"bio" validate:"omitempty,max=5"`
}

type accountForm struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required,password"`
}

func appErr(t *testing.T, err error) *models.AppError {
	t.Helper()
	var ae *models.AppError
	require.True(t, errors.As(err, &ae), "expected AppError, got %v", err)
	assert.Equal(t, models.CodeValidation, ae.Code)
	return ae
}

func TestStructValid(t *testing.T) {
	t.Parallel()
	err := Struct(videoForm{Title: "t", VideoURL: "https://cdn.example.com/v.mp4", Category: "music", VideoType: "long"})
	assert.NoError(t, err)

	err = Struct(accountForm{Username: "ann_1", Email: "ann@example.com", Password: "password1"})
	assert.NoError(t, err)
}

func TestStructMessages(t *testing.T) {
	t.Parallel()
	long := "abcdefgh"
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"required", videoForm{VideoURL: "https://x.io/a"}, "title is required"},
		{"max", videoForm{Title: string(make([]byte, 101)), VideoURL: "https://x.io/a"}, "title must be at most 100 characters"},
		{"url", videoForm{Title: "t", VideoURL: "not a url"}, "videoUrl must be a valid URL"},
		{"category", videoForm{Title: "t", VideoURL: "https://x.io/a", Category: "cats"}, "category must be one of: entertainment, education, sports, music, comedy, lifestyle, news, other"},
		{"videotype", videoForm{Title: "t", VideoURL: "https://x.io/a", VideoType: "medium"}, "videoType must be one of: short, long"},
		{"gte", videoForm{Title: "t", VideoURL: "https://x.io/a", Duration: -1}, "duration must be greater than or equal to 0"},
		{"pointer max", videoForm{Title: "t", VideoURL: "https://x.io/a", Bio: &long}, "bio must be at most 5 characters"},
		{"username", accountForm{Username: "a", Email: "ann@example.com", Password: "password1"}, "username must be at least 3 characters long"},
		{"email", accountForm{Username: "ann", Email: "nope", Password: "password1"}, "invalid email format"},
		{"password", accountForm{Username: "ann", Email: "ann@example.com", Password: "short1"}, "password must be at least 8 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := appErr(t, Struct(tt.in))
			assert.Equal(t, tt.want, ae.Message)
		})
	}
}

func TestStructNonStruct(t *testing.T) {
	t.Parallel()
	var ae *models.AppError
	require.True(t, errors.As(Struct("just a string"), &ae))
	assert.Equal(t, models.CodeInternal, ae.Code)
}

func TestStructOptionalPointerCannotBeEmpty(t *testing.T) {
	t.Parallel()
	type patch struct {
		Title *string `json:"title" validate:"omitnil,min=1,max=100"`
	}

	assert.NoError(t, Struct(patch{}))

	empty := ""
	assert.Equal(t, "title cannot be empty", appErr(t, Struct(patch{Title: &empty})).Message)

	ok := "fine"
	assert.NoError(t, Struct(patch{Title: &ok}))
}
