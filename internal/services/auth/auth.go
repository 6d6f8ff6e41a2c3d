// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package auth sequences the multi-step credential flows: registration,
// two-step login, email verification, password reset and consent signing.
// The orchestrator itself is stateless between steps; all state lives in
// the stores, so a pending 2FA login is reconstructed from the existence
// of an unused code row alone.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/sellerdesk/authcore/internal/models"
	"github.com/sellerdesk/authcore/internal/repository"
	"github.com/sellerdesk/authcore/internal/services/consent"
	"github.com/sellerdesk/authcore/internal/services/devicetrust"
	"github.com/sellerdesk/authcore/internal/services/mailer"
	"github.com/sellerdesk/authcore/internal/services/otp"
	"github.com/sellerdesk/authcore/internal/services/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	emailVerificationTTL = 15 * time.Minute
	twoFactorTTL         = 10 * time.Minute
	passwordResetTTL     = 15 * time.Minute
)

// dummyHash is used for constant-time login to prevent timing attacks.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Service is the auth orchestrator.
type Service struct {
	repo              *repository.Repository
	codes             *otp.Service
	devices           *devicetrust.Service
	consent           *consent.Service
	tokens            *token.Service
	mailer            mailer.Sender
	passwordValidator *PasswordValidator
	bcryptCost        int
}

// NewService wires the orchestrator. The store handle is injected through
// the repository; the orchestrator keeps no connection state of its own.
func NewService(repo *repository.Repository, tokens *token.Service, sender mailer.Sender, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:              repo,
		codes:             otp.NewService(repo),
		devices:           devicetrust.NewService(repo),
		consent:           consent.NewService(repo),
		tokens:            tokens,
		mailer:            sender,
		passwordValidator: DefaultPasswordValidator(),
		bcryptCost:        bcryptCost,
	}
}

// PasswordValidator returns the password validator for use in handlers.
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.passwordValidator
}

// Consent returns the consent ledger service.
func (s *Service) Consent() *consent.Service {
	return s.consent
}

// RegisterParams holds the parameters for user registration.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
}

// Register creates a new unverified user account, issues an email
// verification code and dispatches it. Mail failure is logged and never
// rolls back the registration; the user can request a resend.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, ErrInvalidEmail
	}

	validation := s.passwordValidator.Validate(params.Password, params.Email)
	if !validation.Valid {
		return nil, &PasswordValidationError{Errors: validation.Errors}
	}

	exists, err := s.repo.EmailExists(ctx, params.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        params.Email,
		PasswordHash: string(passwordHash),
		DisplayName:  params.DisplayName,
		IsVerified:   false,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.issueAndDispatch(ctx, user, models.PurposeEmailVerification, emailVerificationTTL); err != nil {
		return nil, err
	}

	slog.Info("register_success", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// LoginResult is the outcome of a login step. Exactly one of Token or
// TwoFactorRequired is meaningful.
type LoginResult struct {
	User              *models.User
	Token             string
	TwoFactorRequired bool
}

// Login is step one of the two-step login. Unknown user and wrong password
// collapse into ErrInvalidCredentials with a constant-time dummy compare.
// A matching trusted device skips 2FA and issues the session immediately;
// otherwise a 2fa_login code is mailed and no token is issued yet.
func (s *Service) Login(ctx context.Context, email, password, deviceFingerprint string) (*LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "account_disabled")
		return nil, ErrAccountDisabled
	}

	// Device-trust fast path: a known fingerprint skips 2FA entirely.
	if deviceFingerprint != "" && s.devices.Lookup(ctx, user.ID, deviceFingerprint) {
		sessionToken, err := s.tokens.Issue(user.ID, user.Email)
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		slog.Info("login_success", "user_id", user.ID, "via", "trusted_device")
		return &LoginResult{User: user, Token: sessionToken}, nil
	}

	if err := s.issueAndDispatch(ctx, user, models.PurposeTwoFactorLogin, twoFactorTTL); err != nil {
		return nil, err
	}

	slog.Info("login_pending_2fa", "user_id", user.ID)
	return &LoginResult{User: user, TwoFactorRequired: true}, nil
}

// TwoFactorParams holds the parameters for the second login step.
type TwoFactorParams struct {
	UserID      int64
	Code        string
	TrustDevice bool
	Fingerprint string
	IPAddress   string
	UserAgent   string
}

// VerifyTwoFactor is step two of the login. The code is consumed before
// the session is issued, so a replayed code can never succeed twice. The
// optional device-trust upsert is a best-effort side channel: its failure
// is logged and never fails the login.
func (s *Service) VerifyTwoFactor(ctx context.Context, params TwoFactorParams) (*LoginResult, error) {
	user, err := s.repo.GetUserByID(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, otp.ErrInvalidCode
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.codes.Consume(ctx, user.ID, models.PurposeTwoFactorLogin, params.Code); err != nil {
		return nil, err
	}

	sessionToken, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if params.TrustDevice && params.Fingerprint != "" {
		meta := devicetrust.Meta{IPAddress: params.IPAddress, UserAgent: params.UserAgent}
		if err := s.devices.Trust(ctx, user.ID, params.Fingerprint, meta); err != nil {
			// Device trust is a convenience, not a security boundary.
			slog.Warn("device_trust_upsert_failed", "user_id", user.ID, "error", err)
		}
	}

	slog.Info("login_success", "user_id", user.ID, "via", "2fa")
	return &LoginResult{User: user, Token: sessionToken}, nil
}

// VerifyEmail consumes an email_verification code and marks the account
// verified in one transaction.
func (s *Service) VerifyEmail(ctx context.Context, userID int64, code string) error {
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := otp.NewService(tx).Consume(ctx, userID, models.PurposeEmailVerification, code); err != nil {
			return err
		}
		if err := tx.MarkUserVerified(ctx, userID); err != nil {
			return fmt.Errorf("mark verified: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("email_verified", "user_id", userID)
	return nil
}

// RequestPasswordReset issues and mails a password_reset code when the
// email is known. It reports success either way so callers cannot use it
// to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Info("password_reset_unknown_email", "email", email)
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	return s.issueAndDispatch(ctx, user, models.PurposePasswordReset, passwordResetTTL)
}

// ResendVerification issues a fresh email_verification code for a known,
// still-unverified account. Like the reset request it always reports
// success to the caller.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}
	if user.IsVerified {
		return nil
	}

	return s.issueAndDispatch(ctx, user, models.PurposeEmailVerification, emailVerificationTTL)
}

// ResetPassword consumes a password_reset code and replaces the password
// hash as a single atomic unit. Either both happen or neither does.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	validation := s.passwordValidator.Validate(newPassword, email)
	if !validation.Valid {
		return &PasswordValidationError{Errors: validation.Errors}
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return otp.ErrInvalidCode
		}
		return fmt.Errorf("get user: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := otp.NewService(tx).Consume(ctx, user.ID, models.PurposePasswordReset, code); err != nil {
			return err
		}
		if err := tx.UpdateUserPassword(ctx, user.ID, string(passwordHash)); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("password_reset", "user_id", user.ID)
	return nil
}

// SignConsent records the user's legal-agreement signature.
func (s *Service) SignConsent(ctx context.Context, userID int64, payload, ipAddress, contractVersion string) error {
	return s.consent.Sign(ctx, userID, payload, ipAddress, contractVersion)
}

// ConsentStatus returns the user's consent state with read repair.
func (s *Service) ConsentStatus(ctx context.Context, userID int64) (*consent.Status, error) {
	return s.consent.Status(ctx, userID)
}

// issueAndDispatch issues a code and mails it. Dispatch is synchronous but
// isolated: a mail failure is logged and never rolls back the issued code,
// since the user can request a resend. A failure to issue the code itself
// is a store failure and does propagate.
func (s *Service) issueAndDispatch(ctx context.Context, user *models.User, purpose models.CodePurpose, ttl time.Duration) error {
	code, err := s.codes.Issue(ctx, user.ID, purpose, ttl)
	if err != nil {
		return fmt.Errorf("issue %s code: %w", purpose, err)
	}

	if err := s.mailer.SendCode(ctx, user.Email, code, purpose, ttl); err != nil {
		slog.Error("code_mail_failed", "user_id", user.ID, "purpose", purpose, "error", err)
	}
	return nil
}
