package server

import (
	"errors"
	"os"

	"github.com/ureca-react-blog/Backend/internal/middleware"
	"github.com/ureca-react-blog/Backend/internal/models"
	"github.com/ureca-react-blog/Backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postForm holds the text fields of a post. There is no author field: the
// author always comes from the session.
type postForm struct {
	Title   string `json:"title" form:"title"`
	Summary string `json:"summary" form:"summary"`
	Content string `json:"content" form:"content"`
}

// PostWrite handles POST /postWrite
// @Summary Create post
// @Description Create a post with an optional cover file. The author is the session user.
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param title formData string false "Title"
// @Param summary formData string false "Summary"
// @Param content formData string false "Content (HTML)"
// @Param files formData file false "Cover file"
// @Success 200 {object} object{message=string} "Created, or {error} when there is no session and STRICT_AUTH_STATUS is off"
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} models.ErrorResponse "Only with STRICT_AUTH_STATUS"
// @Failure 500 {object} object{error=string}
// @Router /postWrite [post]
func (s *Server) PostWrite(c *fiber.Ctx) error {
	if c.Cookies(tokenCookie) == "" {
		return s.respondUnauthenticated(c, msgPostWriteNoAuth)
	}
	claims, ok := s.authenticate(c)
	if !ok {
		if s.config.StrictAuthStatus {
			return s.respondUnauthenticated(c, msgLoginRequired)
		}
		middleware.Logger.WarnContext(c.UserContext(), "post write with invalid session token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgPostFailed})
	}

	var form postForm
	// A request without a recognised content type is an empty form.
	if err := c.BodyParser(&form); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidRequest})
	}

	in := service.CreatePostInput{
		Title:   form.Title,
		Summary: form.Summary,
		Content: form.Content,
		Author:  claims.Username,
	}
	// No file is fine; so is a body that is not multipart at all.
	if fh, err := c.FormFile("files"); err == nil {
		in.Cover = fh
	}

	if _, err := s.postService.Create(c.UserContext(), in); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "post write failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgPostFailed})
	}

	return c.JSON(fiber.Map{"message": msgPostCreated})
}

// PostList handles GET /postList
// @Summary Latest posts
// @Description The three newest posts, newest first
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Failure 500 {object} object{error=string}
// @Router /postList [get]
func (s *Server) PostList(c *fiber.Ctx) error {
	posts, err := s.postService.ListLatest(c.UserContext())
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "post list failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgPostListFailed})
	}
	return c.JSON(posts)
}

// ServeUpload handles GET /uploads/:filename
// @Summary Uploaded file
// @Tags posts
// @Produce octet-stream
// @Param filename path string true "Stored filename"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /uploads/{filename} [get]
func (s *Server) ServeUpload(c *fiber.Ctx) error {
	name := c.Params("filename")
	path, ok := s.uploads.Resolve(name)
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("File", name))
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("File", name))
	}
	return c.SendFile(path)
}
