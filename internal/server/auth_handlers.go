package server

import (
	"time"

	"github.com/ureca-react-blog/Backend/internal/middleware"
	"github.com/ureca-react-blog/Backend/internal/models"
	"github.com/ureca-react-blog/Backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const tokenCookie = "token"

// Client-facing messages.
const (
	msgUserExists      = "이미 존재하는 사용자입니다"
	msgServerError     = "서버 오류가 발생했습니다"
	msgUnknownUser     = "사용자가 존재하지 않습니다"
	msgWrongPassword   = "비밀번호가 일치하지 않습니다"
	msgLoginFailed     = "서버에 연결할 수 없습니다"
	msgLoginRequired   = "로그인 필요"
	msgLoggedOut       = "로그아웃 되었습니다"
	msgInvalidRequest  = "잘못된 요청입니다"
	msgPostCreated     = "게시글 작성 완료"
	msgPostFailed      = "게시글 작성 실패"
	msgPostListFailed  = "게시글 목록 조회 실패"
	msgPostWriteNoAuth = "로그인 필요 "
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /register
// @Summary Register
// @Description Create a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentials true "Credentials"
// @Success 201 {object} object{username=string,_id=string}
// @Failure 400 {object} object{message=string}
// @Failure 500 {object} object{message=string}
// @Router /register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgInvalidRequest})
	}

	user, err := s.authService.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		switch models.ErrorCode(err) {
		case models.CodeConflict:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msgUserExists})
		case models.CodeValidation:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		middleware.Logger.ErrorContext(c.UserContext(), "register failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": msgServerError})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"username": user.Username,
		"_id":      user.ID,
	})
}

// Login handles POST /login
// @Summary Login
// @Description Verify credentials and set the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentials true "Credentials"
// @Success 200 {object} object{id=string,username=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidRequest})
	}

	res, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		switch models.ErrorCode(err) {
		case service.CodeUnknownUser:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnknownUser})
		case service.CodeWrongPassword:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgWrongPassword})
		}
		middleware.Logger.ErrorContext(c.UserContext(), "login failed", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgLoginFailed})
	}

	c.Cookie(s.sessionCookie(res.Token, s.config.CookieMaxDur))
	return c.JSON(fiber.Map{
		"id":       res.User.ID,
		"username": res.User.Username,
	})
}

// Profile handles GET /profile
// @Summary Current session
// @Description Decoded claims of the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} service.Claims "Claims, or {error} when no valid session and STRICT_AUTH_STATUS is off"
// @Failure 401 {object} models.ErrorResponse "Only with STRICT_AUTH_STATUS"
// @Router /profile [get]
func (s *Server) Profile(c *fiber.Ctx) error {
	claims, ok := s.authenticate(c)
	if !ok {
		return s.respondUnauthenticated(c, msgLoginRequired)
	}
	return c.JSON(claims)
}

// Logout handles POST /logout
// @Summary Logout
// @Description Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), c.Cookies(tokenCookie)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "token revocation failed", "error", err.Error())
	}

	// A negative MaxAge is written as Max-Age=0.
	cookie := s.sessionCookie("", 0)
	cookie.MaxAge = -1
	cookie.Expires = fasthttp.CookieExpireDelete
	c.Cookie(cookie)
	return c.JSON(fiber.Map{"message": msgLoggedOut})
}

// sessionCookie builds the token cookie. A zero maxAge leaves Max-Age unset.
func (s *Server) sessionCookie(value string, maxAge time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     tokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// authenticate verifies the session cookie and tags the request with the username.
func (s *Server) authenticate(c *fiber.Ctx) (*service.Claims, bool) {
	token := c.Cookies(tokenCookie)
	if token == "" {
		return nil, false
	}
	claims, err := s.authService.Authenticate(c.UserContext(), token)
	if err != nil {
		return nil, false
	}
	c.Locals("username", claims.Username)
	c.SetUserContext(middleware.WithUsername(c.UserContext(), claims.Username))
	return claims, true
}

// respondUnauthenticated answers a request without a usable session: 200 with an
// error body by default, or 401 when STRICT_AUTH_STATUS is on.
func (s *Server) respondUnauthenticated(c *fiber.Ctx, message string) error {
	if s.config.StrictAuthStatus {
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msgLoginRequired))
	}
	return c.JSON(fiber.Map{"error": message})
}
