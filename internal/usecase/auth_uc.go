package usecase

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

type AuthUseCase interface {
	// Register creates an account. Role may be "user" or "developer"; admin is
	// never self-assignable.
	Register(ctx context.Context, username, email, password, role string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	// UpdateProfile applies the allowed subset of fields (username/email/avatar).
	UpdateProfile(ctx context.Context, userID string, username, email, avatar string) (*model.User, error)
	// Purchases lists the caller's owned product ids.
	Purchases(ctx context.Context, userID string) ([]string, error)
}

type authUC struct {
	users repository.UserRepository
}

func NewAuthUseCase(users repository.UserRepository) *authUC {
	return &authUC{users: users}
}

func (u *authUC) Register(ctx context.Context, username, email, password, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if len(username) < 3 || len(password) < 6 || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	if role == "" {
		role = string(model.RoleUser)
	}
	r, err := model.ParseRole(role)
	if err != nil || r == model.RoleAdmin {
		return nil, domain.ErrInvalidArgument
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := model.NewUser("", username, email, string(hash), r)
	if err != nil {
		return nil, err
	}
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := u.users.FindByEmail(ctx, repository.NoTX, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (u *authUC) Me(ctx context.Context, userID string) (*model.User, error) {
	return u.users.FindByID(ctx, repository.NoTX, userID)
}

func (u *authUC) UpdateProfile(ctx context.Context, userID string, username, email, avatar string) (*model.User, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if username != "" {
		if len(strings.TrimSpace(username)) < 3 {
			return nil, domain.ErrInvalidArgument
		}
		user.Username = strings.TrimSpace(username)
	}
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if !strings.Contains(email, "@") {
			return nil, domain.ErrInvalidArgument
		}
		user.Email = email
	}
	if avatar != "" {
		user.Avatar = avatar
	}
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUC) Purchases(ctx context.Context, userID string) ([]string, error) {
	return u.users.ListPurchases(ctx, repository.NoTX, userID)
}
