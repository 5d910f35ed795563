package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ureca-react-blog/Backend/internal/config"
	"github.com/ureca-react-blog/Backend/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:            "3000",
		FrontendURL:     "http://localhost:5173",
		Env:             "test",
		BcryptCost:      bcrypt.MinCost,
		JWTSecret:       "test-secret-that-is-long-enough-123",
		JWTExpiration:   "1h",
		CookieMaxAge:    "24h",
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 10,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// Every pooled connection to ":memory:" would otherwise get its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// newTestEnv builds a full app on an in-memory database. mutate runs before
// the config is validated.
func newTestEnv(t *testing.T, rdb *redis.Client, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	for _, m := range mutate {
		m(cfg)
	}
	require.NoError(t, cfg.Validate())

	db := setupTestDB(t)
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return &testEnv{srv: srv, app: srv.NewApp(), db: db, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any, cookies ...*http.Cookie) (*http.Response, []byte) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(t, req)
}

func (e *testEnv) get(t *testing.T, path string, cookies ...*http.Cookie) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(t, req)
}

// login registers username and returns the session cookie from a successful login.
func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	resp, _ := e.postJSON(t, "/register", map[string]string{"username": username, "password": password})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = e.postJSON(t, "/login", map[string]string{"username": username, "password": password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookie := findCookie(resp, tokenCookie)
	require.NotNil(t, cookie, "login must set the token cookie")
	return cookie
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// multipartRequest builds a POST /postWrite request. An empty filename sends no file part.
func multipartRequest(t *testing.T, fields map[string]string, filename string, content []byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("files", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/postWrite", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func decodeMap(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m), "body: %s", body)
	return m
}
