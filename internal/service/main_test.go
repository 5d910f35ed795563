package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/ureca-react-blog/Backend/internal/models"

	"github.com/stretchr/testify/require"
)

// userRepoStub implements repository.UserRepository with overridable functions.
type userRepoStub struct {
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	createFn        func(ctx context.Context, user *models.User) error
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

// memoryUserRepo returns a stub backed by a map, good enough for happy paths.
func memoryUserRepo() *userRepoStub {
	users := map[string]*models.User{}
	return &userRepoStub{
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return users[username], nil
		},
		createFn: func(_ context.Context, user *models.User) error {
			if _, ok := users[user.Username]; ok {
				return models.NewConflictError("User already exists")
			}
			user.ID = "id-" + user.Username
			users[user.Username] = user
			return nil
		},
	}
}

// postRepoStub implements repository.PostRepository with overridable functions.
type postRepoStub struct {
	createFn     func(ctx context.Context, post *models.Post) error
	listLatestFn func(ctx context.Context, limit int) ([]models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}

func (s *postRepoStub) ListLatest(ctx context.Context, limit int) ([]models.Post, error) {
	return s.listLatestFn(ctx, limit)
}

// newFileHeader builds a *multipart.FileHeader the way Fiber hands one to a handler.
func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File["files"], 1)
	return form.File["files"][0]
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, models.ErrorCode(err), "unexpected error: %v", err)
}
