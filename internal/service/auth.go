package service

import (
	"context"
	"errors"
	"net/mail"
	"sync"

	"github.com/survivalcast/survivalcast-go/internal/crypto"
	"github.com/survivalcast/survivalcast-go/internal/model"
	"github.com/survivalcast/survivalcast-go/internal/repository"
)

const TokenTypeBearer = "bearer"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email is not a valid address")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooLong    = crypto.ErrPasswordTooLong
	ErrEmailTaken         = errors.New("email already registered")
)

// UserStore persists user credentials.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthService handles signup, login and bearer-token authentication.
type AuthService struct {
	users  UserStore
	tokens *crypto.TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *crypto.TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Signup registers a new user. It does not log the user in.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) error {
	if err := validateSignup(req); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrEmailTaken
		}
		return err
	}

	return nil
}

// Login checks the credentials and issues an access token. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same bcrypt time as a real check.
			crypto.VerifyPassword(req.Password, s.timingHash())
			return model.TokenResponse{}, ErrInvalidCredentials
		}
		return model.TokenResponse{}, err
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return model.TokenResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
	}, nil
}

// Authenticate verifies a bearer token and returns the subject's email. The
// subject must still exist in the user store.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		return "", ErrUnauthorized
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}

	return email, nil
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = crypto.HashPassword("timing-equalization")
	})
	return s.dummyHash
}

func validateSignup(req model.SignupRequest) error {
	if req.Email == "" {
		return ErrEmailRequired
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return ErrEmailInvalid
	}
	if req.Password == "" {
		return ErrPasswordRequired
	}
	if len(req.Password) > crypto.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
