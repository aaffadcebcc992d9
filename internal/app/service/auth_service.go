package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
	now    func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(users ports.UserRepository, tokens ports.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, now: time.Now}
}

// Register stores a new active user with a bcrypt hash and returns a token for it.
// Username and email are stored lower-cased.
func (s *AuthService) Register(ctx context.Context, in domain.RegisterInput) (domain.AuthToken, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateRegistration(in); err != nil {
		return domain.AuthToken{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AuthToken{}, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    s.now().UTC(),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.AuthToken{}, err
	}

	zap.L().Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return s.tokens.Issue(*user)
}

func (s *AuthService) Login(ctx context.Context, in domain.LoginInput) (domain.AuthToken, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" || in.Password == "" {
		return domain.AuthToken{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.AuthToken{}, domain.ErrInvalidCredentials
		}
		return domain.AuthToken{}, err
	}
	if !user.IsActive {
		return domain.AuthToken{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return domain.AuthToken{}, domain.ErrInvalidCredentials
	}

	return s.tokens.Issue(*user)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

const (
	maxEmailLength   = 255
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

func validateRegistration(in domain.RegisterInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required.Error("Username is required."),
			validation.RuneLength(3, 50).Error("Username must be between 3 and 50 characters.")),
		validation.Field(&in.Email, validation.Required.Error("Email is required."),
			validation.RuneLength(0, maxEmailLength).Error("Email cannot exceed 255 characters."),
			is.EmailFormat.Error("Email is not valid.")),
		validation.Field(&in.Password, validation.Required.Error("Password is required."),
			validation.RuneLength(6, maxPasswordBytes).Error("Password must be between 6 and 72 characters."),
			validation.Length(0, maxPasswordBytes).Error("Password cannot exceed 72 bytes.")),
	)
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	violations := make([]string, 0, len(fieldErrs))
	for _, field := range []string{"Username", "Email", "Password"} {
		if fieldErr, ok := fieldErrs[field]; ok {
			violations = append(violations, fieldErr.Error())
		}
	}
	return &domain.ValidationError{Errors: violations}
}
