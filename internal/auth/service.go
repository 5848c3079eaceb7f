package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/farmledger/farmledger/internal/shared"
)

// Sessions issues and revokes bearer tokens.
type Sessions interface {
	Create(ctx context.Context, userID string) (shared.Session, error)
	Lookup(ctx context.Context, token string) (shared.Session, error)
	Delete(ctx context.Context, token string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	sessions Sessions
	logger   *slog.Logger
	cost     int
	now      func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, sessions Sessions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, sessions: sessions, logger: logger, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithHashCost lowers the bcrypt cost for tests.
func (s *Service) WithHashCost(cost int) {
	s.cost = cost
}

// Register creates an account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		DeviceToken:  strings.TrimSpace(req.DeviceToken),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return &user, nil
}

// Authenticate validates credentials and opens a session.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email, phone := strings.ToLower(strings.TrimSpace(req.Email)), strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return nil, fmt.Errorf("email or phone is required: %w", shared.ErrValidation)
	}
	user, err := s.repo.FindByLogin(ctx, email, phone)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return &LoginResult{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: *user}, nil
}

// Resolve returns the owner ID behind a bearer token.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	sess, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return "", err
	}
	return sess.UserID, nil
}

// Logout revokes a token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Me loads the account of the authenticated owner.
func (s *Service) Me(ctx context.Context, ownerID string) (*User, error) {
	return s.repo.FindByID(ctx, ownerID)
}
