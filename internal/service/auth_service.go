// Package service holds the business logic between the HTTP handlers and the repositories.
package service

import (
	"context"
	"errors"

	"github.com/ureca-react-blog/Backend/internal/models"
	"github.com/ureca-react-blog/Backend/internal/observability"
	"github.com/ureca-react-blog/Backend/internal/repository"
	"github.com/ureca-react-blog/Backend/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Login failures carry distinct codes so handlers can keep the two client messages apart.
const (
	CodeUnknownUser   = "UNKNOWN_USER"
	CodeWrongPassword = "WRONG_PASSWORD"
)

type AuthService struct {
	users      repository.UserRepository
	tokens     *TokenIssuer
	bcryptCost int
}

// LoginResult is a successful login: the stored user plus the signed session token.
type LoginResult struct {
	User   *models.User
	Token  string
	Claims *Claims
}

func NewAuthService(users repository.UserRepository, tokens *TokenIssuer, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register validates the credentials, hashes the password and stores a new user.
func (s *AuthService) Register(ctx context.Context, username, password string) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService", "Register")
	defer func() {
		observability.EndSpan(span, err)
		observability.AuthEvents.WithLabelValues("register", outcome(err)).Inc()
	}()

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user = &models.User{
		Username: username,
		Password: string(hash),
	}
	// A concurrent registration surfaces here as a conflict from the unique index.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password against the stored hash and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (result *LoginResult, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService", "Login")
	defer func() {
		observability.EndSpan(span, err)
		observability.AuthEvents.WithLabelValues("login", outcome(err)).Inc()
	}()

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &models.AppError{Code: CodeUnknownUser, Message: "User does not exist"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, &models.AppError{Code: CodeWrongPassword, Message: "Password does not match"}
		}
		return nil, models.NewInternalError(err)
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &LoginResult{User: user, Token: token, Claims: claims}, nil
}

// Authenticate resolves a session token to its claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	return s.tokens.Verify(ctx, token)
}

// Logout revokes the token when revocation is enabled. Invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" || !s.tokens.RevocationEnabled() {
		return nil
	}
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil
	}
	err = s.tokens.Revoke(ctx, claims)
	observability.AuthEvents.WithLabelValues("revoke", outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if code := models.ErrorCode(err); code != "" {
		return code
	}
	return models.CodeInternal
}
