package service

import (
	"context"
	"fmt"

	"github.com/vector-admin/backend/internal/db"
	"github.com/vector-admin/backend/internal/model"
)

// AuthStore is the slice of the identity store the auth service needs.
type AuthStore interface {
	CreateUser(ctx context.Context, email, passwordHash string, role model.Role) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	repo   AuthStore
	tokens *TokenIssuer
}

func NewAuthService(repo AuthStore, tokens *TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Login verifies the credentials and mints a fresh token pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrUnauthorized
	}
	return s.issuePair(user.Email, user.Role)
}

// Refresh validates a refresh token and mints a new pair. The role embedded
// at issuance travels into the new pair unchanged; Resolve is where the live
// role is read back.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	subject, role, err := s.tokens.Validate(refreshToken, TokenKindRefresh)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return s.issuePair(subject, role)
}

func (s *AuthService) issuePair(subject string, role model.Role) (*model.TokenResponse, error) {
	access, err := s.tokens.IssueAccess(subject, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(subject, role)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Resolve maps a bearer access token to the current user row. Authorization
// downstream uses the row's role, not the token claim, so a role change
// applies on the next request rather than at token expiry. Every failure,
// including store errors, collapses to ErrUnauthorized.
func (s *AuthService) Resolve(ctx context.Context, rawToken string) (*model.User, error) {
	subject, _, err := s.tokens.Validate(rawToken, TokenKindAccess)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.repo.GetUserByEmail(ctx, subject)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Authorize permits the user when its role is in the required set. An empty
// set denies everything.
func (s *AuthService) Authorize(user *model.User, roles ...model.Role) error {
	for _, role := range roles {
		if user.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// EnsureAdmin seeds the bootstrap ADMIN account when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return err
	}

	if err := validatePassword(password); err != nil {
		return fmt.Errorf("%w: ADMIN_PASSWORD does not meet the password policy", ErrMisconfigured)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.repo.CreateUser(ctx, email, hash, model.RoleAdmin)
	return err
}
