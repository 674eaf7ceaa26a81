package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/common/security"
	"codeprep_backend/internal/common/validation"
	"codeprep_backend/internal/domain/model"
	"codeprep_backend/internal/domain/repository"
	"codeprep_backend/internal/platform/mail"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthPolicy carries the knobs the account state machine leaves external:
// the lockout threshold and window, token lifetimes, and whether email
// verification gates login (the hardened flow; disabling it falls back to
// issuing a session token straight from signup).
type AuthPolicy struct {
	RequireVerification bool
	MaxLoginAttempts    int
	LockDuration        time.Duration
	VerifyTokenTTL      time.Duration
	ResetTokenTTL       time.Duration
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenIssuer
	mailer   mail.Mailer
	policy   AuthPolicy
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenIssuer, mailer mail.Mailer, policy AuthPolicy, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		policy:   policy,
		logger:   logger,
	}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	User                *model.User `json:"user"`
	Token               string      `json:"token,omitempty"`
	VerificationPending bool        `json:"verification_pending"`
	MailDispatched      bool        `json:"mail_dispatched"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Signup creates the account. In the verification-enforcing flow it
// stores a hashed one-time token and mails the raw value; a mail failure
// is surfaced via MailDispatched but never rolls the account back.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}
	if ok, reason := validation.StrongPassword(req.Password); !ok {
		return nil, common.NewValidationError("password", reason)
	}

	user := &model.User{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Email: req.Email,
	}
	user.Normalize()

	if _, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil {
		return nil, fmt.Errorf("user already exists: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashed

	var rawToken string
	if s.policy.RequireVerification {
		rawToken, err = security.NewRawToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate verification token: %w", err)
		}
		expires := time.Now().Add(s.policy.VerifyTokenTTL)
		user.VerificationTokenHash = security.HashToken(rawToken)
		user.VerificationTokenExpires = &expires
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique index may still catch a concurrent signup.
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user signed up", zap.String("user_id", user.ID))

	if !s.policy.RequireVerification {
		// Degraded fallback flow: no verification gate, session issued
		// immediately.
		token, err := s.tokens.Issue(user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		return &SignupResponse{User: user.Sanitized(), Token: token}, nil
	}

	resp := &SignupResponse{User: user.Sanitized(), VerificationPending: true}
	body := fmt.Sprintf("Welcome! Verify your email with this token (valid for %s): %s", s.policy.VerifyTokenTTL, rawToken)
	if err := s.mailer.Send(user.Email, "Verify your email", body); err != nil {
		s.logger.Warn("verification mail dispatch failed", zap.String("user_id", user.ID), zap.Error(err))
		return resp, nil
	}
	resp.MailDispatched = true
	return resp, nil
}

// Login authenticates and issues a session token. A missing account and a
// wrong password collapse to the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, common.ErrAccountLocked
	}

	if !security.CheckPasswordHash(req.Password, user.Password) {
		user.LoginAttempts++
		if s.policy.MaxLoginAttempts > 0 && user.LoginAttempts >= s.policy.MaxLoginAttempts {
			until := now.Add(s.policy.LockDuration)
			user.AccountLockedUntil = &until
			user.LoginAttempts = 0
			s.logger.Info("account locked after repeated failures", zap.String("user_id", user.ID))
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Warn("failed to record login attempt", zap.String("user_id", user.ID), zap.Error(err))
		}
		return nil, common.ErrUnauthorized
	}

	if s.policy.RequireVerification && !user.EmailVerified {
		return nil, common.ErrEmailNotVerified
	}

	user.LoginAttempts = 0
	user.AccountLockedUntil = nil
	user.LastLogin = &now
	user.RecordIP(req.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user on login: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user.Sanitized(), Token: token}, nil
}

// Logout is a stateless acknowledgment; token invalidation is a
// client-side concern.
func (s *AuthService) Logout(ctx context.Context) error {
	return nil
}

// VerifyEmail consumes a one-time verification token: lookup by hash,
// expiry check, then the token fields are cleared for good.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) (*model.User, error) {
	if rawToken == "" {
		return nil, common.ErrTokenInvalid
	}
	user, err := s.userRepo.FindByVerificationTokenHash(ctx, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	if user.VerificationTokenExpires == nil || time.Now().After(*user.VerificationTokenExpires) {
		return nil, common.ErrTokenInvalid
	}

	user.ClearVerification()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}
	s.logger.Info("email verified", zap.String("user_id", user.ID))
	return user.Sanitized(), nil
}

// ForgotPassword stores a hashed one-time reset token and mails the raw
// value. The caller decides whether to hide ErrNotFound from the client.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	rawToken, err := security.NewRawToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expires := time.Now().Add(s.policy.ResetTokenTTL)
	user.ResetTokenHash = security.HashToken(rawToken)
	user.ResetTokenExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	body := fmt.Sprintf("Reset your password with this token (valid for %s): %s", s.policy.ResetTokenTTL, rawToken)
	if err := s.mailer.Send(user.Email, "Password reset", body); err != nil {
		// The token stays valid; the failure is surfaced, not hidden.
		s.logger.Warn("reset mail dispatch failed", zap.String("user_id", user.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", common.ErrMailDispatch, err)
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the password hash.
// Lockout counters are cleared so the owner can log straight in.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return common.ErrTokenInvalid
	}
	if ok, reason := validation.StrongPassword(newPassword); !ok {
		return common.NewValidationError("password", reason)
	}

	user, err := s.userRepo.FindByResetTokenHash(ctx, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}
	if user.ResetTokenExpires == nil || time.Now().After(*user.ResetTokenExpires) {
		return common.ErrTokenInvalid
	}

	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashed
	user.ResetTokenHash = ""
	user.ResetTokenExpires = nil
	user.LoginAttempts = 0
	user.AccountLockedUntil = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
