package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-catalog-api/internal/model"
	"go-catalog-api/internal/rbac"
	"go-catalog-api/internal/token"
	"go-catalog-api/pkg/apierror"
)

const bcryptCost = 12

// UserStore is the credential store contract the auth flows depend on.
type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) error
	Save(ctx context.Context, u model.User) error
}

// TokenStore is the ledger of issued non-access tokens.
type TokenStore interface {
	Record(ctx context.Context, tokenString string, userID string, purpose token.Purpose, expiresAt time.Time) error
	FindLive(ctx context.Context, tokenString string, purpose token.Purpose, userID string) (model.TokenRecord, error)
	DeleteOne(ctx context.Context, tokenString string, purpose token.Purpose) error
	DeleteAllForPurpose(ctx context.Context, userID string, purpose token.Purpose) error
}

// EmailSender dispatches purpose-scoped tokens to users.
type EmailSender interface {
	SendResetPasswordEmail(ctx context.Context, to string, resetToken string) error
	SendVerificationEmail(ctx context.Context, to string, verifyToken string) error
}

type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
	VerifyTTL     time.Duration
}

type AuthService struct {
	users  UserStore
	tokens TokenStore
	email  EmailSender

	accessSecret []byte
	// refreshSecret also signs reset-password and verify-email tokens:
	// every non-access purpose shares this secret class, only access tokens
	// get their own key.
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetTTL      time.Duration
	verifyTTL     time.Duration
}

func NewAuthService(cfg AuthConfig, users UserStore, tokens TokenStore, email EmailSender) *AuthService {
	return &AuthService{
		users:         users,
		tokens:        tokens,
		email:         email,
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		resetTTL:      cfg.ResetTTL,
		verifyTTL:     cfg.VerifyTTL,
	}
}

// Register creates a user and issues a first token pair. A duplicate email is
// reported as a plain bad request, not a conflict.
func (s *AuthService) Register(ctx context.Context, name string, email string, password string) (model.User, model.TokenPair, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return model.User{}, model.TokenPair{}, apierror.BadRequest("name, email and password are required", "")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	if exists {
		return model.User{}, model.TokenPair{}, apierror.BadRequest("email already taken", email)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         rbac.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	pair, err := s.GenerateAuthTokens(ctx, user)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	return user, pair, nil
}

// Login verifies email+password. Unknown email and wrong password produce
// the identical error so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.User, model.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return model.User{}, model.TokenPair{}, invalidCredentials()
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.User{}, model.TokenPair{}, invalidCredentials()
	}

	pair, err := s.GenerateAuthTokens(ctx, user)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	return user, pair, nil
}

// GenerateAuthTokens issues a fresh access+refresh pair and records the
// refresh token in the ledger. There is no transactional coupling between
// signing and persisting; if the ledger write fails the issuance failed.
func (s *AuthService) GenerateAuthTokens(ctx context.Context, user model.User) (model.TokenPair, error) {
	access, err := token.Issue(user.ID, s.accessTTL, token.PurposeAccess, s.accessSecret)
	if err != nil {
		return model.TokenPair{}, err
	}

	refresh, err := token.Issue(user.ID, s.refreshTTL, token.PurposeRefresh, s.refreshSecret)
	if err != nil {
		return model.TokenPair{}, err
	}

	expiresAt := time.Now().UTC().Add(s.refreshTTL)
	if err := s.tokens.Record(ctx, refresh, user.ID, token.PurposeRefresh, expiresAt); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokens.DeleteOne(ctx, refreshToken, token.PurposeRefresh)
	if errors.Is(err, model.ErrTokenNotFound) {
		return apierror.NotFound("refresh token not found", "")
	}
	return err
}

// Refresh exchanges a live refresh token for a brand-new pair. The codec
// check runs before any ledger lookup, and the prior ledger entry is left
// in place, so the same refresh token remains exchangeable until it expires
// or the user logs out.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := token.Verify(refreshToken, s.refreshSecret)
	if err != nil {
		return model.TokenPair{}, err
	}

	if _, err := s.tokens.FindLive(ctx, refreshToken, token.PurposeRefresh, claims.UserID); err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return model.TokenPair{}, apierror.NotFound("refresh token not found", "")
		}
		return model.TokenPair{}, err
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.GenerateAuthTokens(ctx, user)
}

// GetUserByID loads a user, translating absence into the boundary error.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, apierror.NotFound("user not found", "")
		}
		return model.User{}, err
	}
	return user, nil
}

// ForgotPassword issues a single-use reset token and hands it to the email
// sender. Unlike login, a missing account is disclosed here.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return apierror.NotFound("user not found", "")
		}
		return err
	}

	resetToken, err := token.Issue(user.ID, s.resetTTL, token.PurposeResetPassword, s.refreshSecret)
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.resetTTL)
	if err := s.tokens.Record(ctx, resetToken, user.ID, token.PurposeResetPassword, expiresAt); err != nil {
		return err
	}

	return s.email.SendResetPasswordEmail(ctx, user.Email, resetToken)
}

// ResetPassword consumes a reset token: the password is re-hashed and every
// outstanding reset token for the user is purged.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken string, newPassword string) error {
	if newPassword == "" {
		return apierror.BadRequest("password is required", "")
	}

	claims, err := token.Verify(resetToken, s.refreshSecret)
	if err != nil {
		return err
	}

	if _, err := s.tokens.FindLive(ctx, resetToken, token.PurposeResetPassword, claims.UserID); err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return apierror.NotFound("token not found", "")
		}
		return err
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	return s.tokens.DeleteAllForPurpose(ctx, user.ID, token.PurposeResetPassword)
}

// SendVerificationEmail issues a verify-email token for the given address.
func (s *AuthService) SendVerificationEmail(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return apierror.NotFound("user not found", "")
		}
		return err
	}

	verifyToken, err := token.Issue(user.ID, s.verifyTTL, token.PurposeVerifyEmail, s.refreshSecret)
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.verifyTTL)
	if err := s.tokens.Record(ctx, verifyToken, user.ID, token.PurposeVerifyEmail, expiresAt); err != nil {
		return err
	}

	return s.email.SendVerificationEmail(ctx, user.Email, verifyToken)
}

// VerifyEmail consumes a verify-email token and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, verifyToken string) error {
	claims, err := token.Verify(verifyToken, s.refreshSecret)
	if err != nil {
		return err
	}

	if _, err := s.tokens.FindLive(ctx, verifyToken, token.PurposeVerifyEmail, claims.UserID); err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return apierror.NotFound("token not found", "")
		}
		return err
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	user.IsEmailVerified = true
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	return s.tokens.DeleteAllForPurpose(ctx, user.ID, token.PurposeVerifyEmail)
}

// VerifyAccess authenticates a bearer access token and loads the principal.
// A valid signature over a vanished user is indistinguishable from an
// invalid token.
func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := token.Verify(accessToken, s.accessSecret)
	if err != nil {
		return model.User{}, model.ErrUnauthorized
	}

	if claims.Purpose != token.PurposeAccess {
		return model.User{}, model.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return model.User{}, model.ErrUnauthorized
	}

	return user, nil
}

// hashPassword is the explicit transform applied before persisting; there is
// no implicit pre-save hook anywhere in the persistence layer.
func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidCredentials() *apierror.APIError {
	return apierror.BadRequest("incorrect email or password", "")
}
