package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ureca-react-blog/Backend/internal/config"
	"github.com/ureca-react-blog/Backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storedCoverPattern = regexp.MustCompile(`^uploads/\d+-\d+\.png$`)

func countPosts(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.Post{}).Count(&n).Error)
	return n
}

func TestPostWrite_WithoutSession(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, multipartRequest(t, map[string]string{"title": "T"}, "", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "로그인 필요 "}, decodeMap(t, body))
	assert.Zero(t, countPosts(t, env))
}

func TestPostWrite_InvalidToken(t *testing.T) {
	bad := &http.Cookie{Name: "token", Value: "garbage"}

	t.Run("default", func(t *testing.T) {
		env := newTestEnv(t, nil)
		resp, body := env.do(t, multipartRequest(t, map[string]string{"title": "T"}, "", nil, bad))
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, map[string]any{"error": "게시글 작성 실패"}, decodeMap(t, body))
		assert.Zero(t, countPosts(t, env))
	})

	t.Run("strict", func(t *testing.T) {
		env := newTestEnv(t, nil, func(c *config.Config) { c.StrictAuthStatus = true })
		resp, body := env.do(t, multipartRequest(t, map[string]string{"title": "T"}, "", nil, bad))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, models.CodeUnauthorized, decodeMap(t, body)["code"])

		resp, _ = env.do(t, multipartRequest(t, map[string]string{"title": "T"}, "", nil))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPostWrite_WithCover(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t, "alice", "pw")

	fields := map[string]string{
		"title":   "Hello",
		"summary": "first post",
		"content": "<p>body</p>",
		"author":  "mallory",
	}
	resp, body := env.do(t, multipartRequest(t, fields, "photo.png", []byte("png-bytes"), cookie))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, map[string]any{"message": "게시글 작성 완료"}, decodeMap(t, body))

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	assert.Equal(t, "alice", post.Author, "author comes from the session, not the form")
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "first post", post.Summary)
	assert.Equal(t, "<p>body</p>", post.Content)
	require.NotNil(t, post.Cover)
	assert.Regexp(t, storedCoverPattern, *post.Cover)

	name := strings.TrimPrefix(*post.Cover, "uploads/")
	data, err := os.ReadFile(filepath.Join(env.cfg.UploadDir, name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	resp, body = env.get(t, "/uploads/"+name)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
}

func TestPostWrite_WithoutCover(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t, "alice", "pw")

	resp, _ := env.do(t, multipartRequest(t, map[string]string{"title": "No cover"}, "", nil, cookie))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	assert.Nil(t, post.Cover)

	_, body := env.get(t, "/postList")
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Contains(t, listed[0], "cover")
	assert.Nil(t, listed[0]["cover"])
}

func TestPostWrite_SameFilenameStoredTwice(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t, "alice", "pw")

	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, multipartRequest(t, map[string]string{"title": fmt.Sprint(i)}, "photo.png", []byte("x"), cookie))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	var posts []models.Post
	require.NoError(t, env.db.Find(&posts).Error)
	require.Len(t, posts, 2)
	require.NotNil(t, posts[0].Cover)
	require.NotNil(t, posts[1].Cover)
	assert.NotEqual(t, *posts[0].Cover, *posts[1].Cover)

	entries, err := os.ReadDir(env.cfg.UploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPostWrite_InsertFailureRemovesUpload(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t, "alice", "pw")
	require.NoError(t, env.db.Migrator().DropTable(&models.Post{}))

	resp, body := env.do(t, multipartRequest(t, map[string]string{"title": "T"}, "photo.png", []byte("x"), cookie))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "게시글 작성 실패"}, decodeMap(t, body))

	entries, err := os.ReadDir(env.cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPostList(t *testing.T) {
	env := newTestEnv(t, nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		post := &models.Post{
			Title:     fmt.Sprintf("post-%d", i),
			Author:    "alice",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, env.db.Create(post).Error)
	}

	resp, body := env.get(t, "/postList")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var posts []map[string]any
	require.NoError(t, json.Unmarshal(body, &posts))
	require.Len(t, posts, 3)
	assert.Equal(t, "post-4", posts[0]["title"])
	assert.Equal(t, "post-3", posts[1]["title"])
	assert.Equal(t, "post-2", posts[2]["title"])

	for _, key := range []string{"_id", "title", "summary", "content", "cover", "author", "createdAt", "updatedAt"} {
		assert.Contains(t, posts[0], key)
	}
}

func TestPostList_Empty(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.get(t, "/postList")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(body))
}

func TestPostList_StorageFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.db.Migrator().DropTable(&models.Post{}))

	resp, body := env.get(t, "/postList")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "게시글 목록 조회 실패"}, decodeMap(t, body))
}

func TestServeUpload_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(env.cfg.UploadDir), "secret.txt"), []byte("s"), 0o600))

	for _, path := range []string{
		"/uploads/missing.png",
		"/uploads/..%2Fsecret.txt",
		"/uploads/..secret.txt",
	} {
		t.Run(path, func(t *testing.T) {
			resp, body := env.get(t, path)
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
			assert.NotEqual(t, "s", string(body))
		})
	}
}

func TestPostWrite_UnsafeExtensionStillServed(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t, "alice", "pw")

	resp, _ := env.do(t, multipartRequest(t, map[string]string{"title": "T"}, `photo.p\ng`, []byte("odd"), cookie))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	require.NotNil(t, post.Cover)
	assert.Regexp(t, regexp.MustCompile(`^uploads/\d+-\d+$`), *post.Cover)

	resp, body := env.get(t, "/"+*post.Cover)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "odd", string(body))
}

func TestPostWrite_EmptyBody(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t, "alice", "pw")

	req := httptest.NewRequest(http.MethodPost, "/postWrite", nil)
	req.AddCookie(cookie)
	resp, body := env.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	assert.Equal(t, "alice", post.Author)
	assert.Empty(t, post.Title)
	assert.Nil(t, post.Cover)
}
