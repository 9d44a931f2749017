// Package users handles registration and authentication of accounts.
package users

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valutatrade/valutahub/internal/domain"
	"github.com/valutatrade/valutahub/internal/storage"
	"go.uber.org/zap"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUserNotFound is returned on login with an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongPassword is returned on login with a bad password.
	ErrWrongPassword = errors.New("wrong password")
	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.Errorf("password must be at least %d characters", domain.MinPasswordLength)
	// ErrEmptyUsername is returned when the username is blank.
	ErrEmptyUsername = errors.New("username must not be empty")
)

// Manager registers and authenticates users. Registration eagerly creates
// an empty portfolio so every existing user always has one.
type Manager struct {
	users      *storage.UserStore
	portfolios *storage.PortfolioStore
	logger     *zap.Logger
}

// NewManager creates a user Manager.
func NewManager(users *storage.UserStore, portfolios *storage.PortfolioStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{users: users, portfolios: portfolios, logger: logger}
}

// Register creates a new account with a unique username and an empty
// portfolio.
func (m *Manager) Register(username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, ErrEmptyUsername
	}
	if len(password) < domain.MinPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	if _, exists, err := m.users.ByUsername(username); err != nil {
		return domain.User{}, err
	} else if exists {
		return domain.User{}, ErrUsernameTaken
	}

	id, err := m.users.NextID()
	if err != nil {
		return domain.User{}, err
	}
	salt, err := domain.NewSalt()
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:             id,
		Username:       username,
		HashedPassword: domain.HashPassword(password, salt),
		Salt:           salt,
		RegisteredAt:   time.Now().UTC(),
	}

	if err := m.users.Save(user); err != nil {
		return domain.User{}, err
	}
	if err := m.portfolios.Save(domain.NewPortfolio(user.ID)); err != nil {
		return domain.User{}, err
	}

	m.logger.Info("user registered",
		zap.Int("user_id", user.ID),
		zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks credentials and returns the matching user.
func (m *Manager) Authenticate(username, password string) (domain.User, error) {
	user, exists, err := m.users.ByUsername(strings.TrimSpace(username))
	if err != nil {
		return domain.User{}, err
	}
	if !exists {
		return domain.User{}, ErrUserNotFound
	}
	if !user.VerifyPassword(password) {
		m.logger.Warn("login failed", zap.String("username", username))
		return domain.User{}, ErrWrongPassword
	}

	m.logger.Info("user logged in",
		zap.Int("user_id", user.ID),
		zap.String("username", user.Username))
	return user, nil
}

// ByID fetches a user by id.
func (m *Manager) ByID(id int) (domain.User, bool, error) {
	return m.users.ByID(id)
}
