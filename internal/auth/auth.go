// Package auth handles email/password accounts and the userId session cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

// BcryptCost is the work factor used for password hashes.
const BcryptCost = 10

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Validation and credential errors.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore is the part of the store auth needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*database.User, error)
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	GetUserByID(ctx context.Context, id string) (*database.User, error)
	GetProfile(ctx context.Context, userID string) (*database.Profile, error)
	GetUserStats(ctx context.Context, userID string) (*database.UserStats, error)
}

// User is the public view of an account.
type User struct {
	ID             string         `json:"id"`
	Email          string         `json:"email,omitempty"`
	Name           string         `json:"name,omitempty"`
	TelegramLinked bool           `json:"telegramLinked"`
	Profile        *model.Profile `json:"profile,omitempty"`
	Stats          *model.Stats   `json:"stats,omitempty"`
}

// Service implements signup, login and session lookup.
type Service struct {
	store UserStore
	log   *slog.Logger
}

// NewService creates the auth service.
func NewService(store UserStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, log: log.With("component", "auth")}
}

// ValidateSignup checks the email format and password length.
func ValidateSignup(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingCredentials
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Signup creates an account and returns its public view.
func (s *Service) Signup(ctx context.Context, email, password, name string) (*User, error) {
	if err := ValidateSignup(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, email, string(hash), strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.InfoContext(ctx, "User signed up", "user_id", u.ID)
	return publicUser(u), nil
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !u.Password.Valid || u.Password.String == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password.String), []byte(password)); err != nil {
		s.log.DebugContext(ctx, "Password mismatch", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}
	return publicUser(u), nil
}

// CurrentUser loads the account behind a session cookie with its profile
// and stats. database.ErrNotFound means the cookie is stale.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*User, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := publicUser(u)

	if p, err := s.store.GetProfile(ctx, userID); err == nil {
		m := p.ToModel()
		view.Profile = &m
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if st, err := s.store.GetUserStats(ctx, userID); err == nil {
		m := st.ToModel()
		view.Stats = &m
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return view, nil
}

func publicUser(u *database.User) *User {
	return &User{
		ID:             u.ID,
		Email:          u.Email.String,
		Name:           u.Name.String,
		TelegramLinked: u.TelegramID.Valid,
	}
}
