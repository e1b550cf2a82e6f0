package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for new accounts.
const PasswordCost = 12

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo UserRepository
	cost int
	now  func() time.Time
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, cost: PasswordCost, now: time.Now}
}

// WithPasswordCost overrides the bcrypt cost, mostly to keep tests fast.
func (s *UserService) WithPasswordCost(cost int) *UserService {
	s.cost = cost
	return s
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates a local account. A taken email yields a ConflictError.
func (s *UserService) Register(ctx context.Context, email, password string) (types.User, error) {
	email = NormalizeEmail(email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, &ConflictError{Message: "email already registered"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return types.User{}, NewValidationError("password", "must be at most 72 bytes")
	} else if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        email,
		PasswordHash: string(hashed),
		AuthProvider: types.AuthProviderLocal,
	})
	if errors.Is(err, store.ErrConflict) {
		return types.User{}, &ConflictError{Message: "email already registered"}
	}
	return user, err
}

// Login checks credentials and stamps the login time. Unknown emails and
// wrong passwords both return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if user.PasswordHash == "" {
		return types.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return types.User{}, err
	}
	user.LastLogin = &now
	return user, nil
}
