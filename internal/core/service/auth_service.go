package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/chamomile/taskboard/internal/api/metrics"
	"github.com/chamomile/taskboard/internal/core/domain"
	"github.com/chamomile/taskboard/internal/core/ports"
	"github.com/chamomile/taskboard/internal/token"
)

const minPasswordLen = 8

// Deliberately loose: anything that looks like local@host.tld.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService implements registration, login, and account deletion.
type AuthService struct {
	users  ports.UserRepository
	tasks  ports.TaskRepository
	issuer *token.Issuer
	logger zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tasks ports.TaskRepository, issuer *token.Issuer, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tasks: tasks, issuer: issuer, logger: logger}
}

// Register validates the credentials, hashes the password, and creates the
// account. The plaintext password is never stored or logged.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return nil, domain.ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, domain.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.UsersRegisteredTotal.Inc()
	s.logger.Info().Int64("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login verifies the credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	tkn, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{Token: tkn, User: user}, nil
}

// DeleteAccount removes the user and all of their tasks. The task cascade runs
// first so a crash in between cannot leave orphan tasks behind a live account.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.tasks.DeleteByOwner(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", userID).Msg("account deleted")
	return nil
}
