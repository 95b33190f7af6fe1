package ports

import (
	"context"

	"github.com/chamomile/taskboard/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	// Create inserts the user and returns it with its allocated id.
	// Returns domain.ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// Delete removes the user and cascades to every task they own.
	Delete(ctx context.Context, id int64) error
}

// LoginResult bundles everything a successful login returns.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthService implements registration, login, and account deletion.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	DeleteAccount(ctx context.Context, userID int64) error
}
