package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"dentix/api/internal/ids"
	"dentix/api/internal/models"
	"dentix/api/internal/repository"
	"dentix/api/internal/security"
)

var (
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password. Collapsing the two keeps login responses from confirming
	// which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmailTaken = errors.New("email already registered")
)

// TokenPair is the result of every successful auth flow. The access token
// is stateless and self-expiring; the refresh token's validity lives on the
// user record.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users   UserStore
	roles   RoleStore
	issuer  *security.Issuer
	refresh *RefreshManager
	log     zerolog.Logger
}

func NewAuthService(users UserStore, roles RoleStore, issuer *security.Issuer, refresh *RefreshManager, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		roles:   roles,
		issuer:  issuer,
		refresh: refresh,
		log:     log,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, TokenPair, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return models.User{}, TokenPair{}, fmt.Errorf("email and password required")
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return models.User{}, TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, TokenPair{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		DisplayName:  input.DisplayName,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, TokenPair{}, err
	}
	if err := s.roles.Assign(ctx, user.ID, models.RoleUser); err != nil {
		return models.User{}, TokenPair{}, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, pair, nil
}

// Login verifies credentials and returns a fresh token pair. The returned
// refresh token replaces whatever the user held before.
func (s *AuthService) Login(ctx context.Context, email string, password string) (TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	s.log.Debug().Str("user_id", user.ID).Msg("login succeeded")
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair, rotating
// the stored token. A token can win this exchange at most once.
func (s *AuthService) Refresh(ctx context.Context, userID string, presented string) (TokenPair, error) {
	user, err := s.refresh.Validate(ctx, userID, presented)
	if err != nil {
		return TokenPair{}, err
	}

	newRefresh, err := s.refresh.Rotate(ctx, userID, presented)
	if err != nil {
		return TokenPair{}, err
	}

	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	accessToken, err := s.issuer.Issue(user, roles)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user models.User) (TokenPair, error) {
	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	accessToken, err := s.issuer.Issue(user, roles)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
