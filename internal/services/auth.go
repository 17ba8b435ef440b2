package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskify/server/internal/models"
	"taskify/server/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
}

type AuthServiceImpl struct {
	users      repositories.UserRepository
	tokens     *TokenManager
	bcryptCost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(users repositories.UserRepository, tokens *TokenManager, bcryptCost int) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*models.User, error) {
	username, err := validateSignup(username, password)
	if err != nil {
		return nil, err
	}

	_, err = s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, ErrUsernameTaken
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	username, err := validateLogin(username, password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// keep the unknown-user path as slow as a wrong password
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthServiceImpl) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("taskify-dummy-password"), s.bcryptCost)
	})
	return s.dummyHash
}
