package ports

import (
	"context"

	"todoapi/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// TokenIssuer signs and verifies bearer tokens carrying a user id.
type TokenIssuer interface {
	Issue(user domain.User) (domain.AuthToken, error)
	Verify(token string) (int64, error)
}

type AuthService interface {
	Register(ctx context.Context, in domain.RegisterInput) (domain.AuthToken, error)
	Login(ctx context.Context, in domain.LoginInput) (domain.AuthToken, error)
	CurrentUser(ctx context.Context, userID int64) (*domain.User, error)
}
