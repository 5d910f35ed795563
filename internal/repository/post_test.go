package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/ureca-react-blog/Backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.Post{
			Title:     fmt.Sprintf("post %d", i),
			Author:    "alice",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	posts, err := repo.ListLatest(ctx, 3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "post 4", posts[0].Title)
	assert.Equal(t, "post 3", posts[1].Title)
	assert.Equal(t, "post 2", posts[2].Title)
	for _, p := range posts {
		assert.NotEmpty(t, p.ID)
		assert.Nil(t, p.Cover)
	}
}

func TestPostRepository_ListLatest_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	posts, err := repo.ListLatest(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_CreateKeepsCover(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	cover := "uploads/1700000000000-42.png"
	require.NoError(t, repo.Create(ctx, &models.Post{Title: "with cover", Cover: &cover, Author: "alice"}))

	posts, err := repo.ListLatest(ctx, 3)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].Cover)
	assert.Equal(t, cover, *posts[0].Cover)
}

func TestPostRepository_CreateFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	require.NoError(t, db.Migrator().DropTable(&models.Post{}))

	err := repo.Create(context.Background(), &models.Post{Title: "lost"})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeInternal))
}

func TestPostRepository_ListLatest_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" ORDER BY created_at DESC`)).
		WillReturnError(errors.New("connection timeout"))

	posts, err := repo.ListLatest(context.Background(), 3)
	assert.Nil(t, posts)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}
