// Package account implements account registration and authentication.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"filmdex/account/internal/repository"
	"filmdex/account/pkg/model"
)

var (
	// ErrNotFound is returned for unknown users.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when registering an email twice.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials is returned for a wrong email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput is returned for requests that fail validation.
	ErrInvalidInput = errors.New("invalid input")
)

type userRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
}

// Controller handles account operations.
type Controller struct {
	repo   userRepository
	logger *zap.Logger
}

// New creates an account controller.
func New(repo userRepository, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, logger: logger}
}

// Register creates a new user with a bcrypt password hash.
func (c *Controller) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	c.logger.Info("Registered user", zap.String("userID", user.ID))
	return user, nil
}

// Authenticate verifies an email/password pair and returns the user.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (c *Controller) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := c.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns a user by id.
func (c *Controller) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
