package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/pkg/auth"
	"github.com/velorashop/storefront-backend/pkg/config"
	"github.com/velorashop/storefront-backend/pkg/db"
	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/enums"
	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
	"github.com/velorashop/storefront-backend/pkg/logger"
	"github.com/velorashop/storefront-backend/pkg/mailer"
	"github.com/velorashop/storefront-backend/pkg/security"
)

// UserStore is the account persistence surface the auth flows need.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

// OTPStore holds short-lived verification codes keyed by user id.
type OTPStore interface {
	StoreOTP(ctx context.Context, userID, code string, ttl time.Duration) error
	GetOTP(ctx context.Context, userID string) (string, error)
	DeleteOTP(ctx context.Context, userID string) error
}

// Service exposes account signup, verification and login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (UserDTO, error)
	VerifyOTP(ctx context.Context, input VerifyOTPInput) (UserDTO, error)
	ResendOTP(ctx context.Context, input ResendOTPInput) error
	Login(ctx context.Context, input LoginInput) (SessionDTO, error)
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Users    UserStore
	OTP      OTPStore
	Mail     mailer.Sender
	JWT      config.JWTConfig
	Password config.PasswordConfig
	OTPCfg   config.OTPConfig
	Logg     *logger.Logger
	Now      func() time.Time
}

type service struct {
	users    UserStore
	otp      OTPStore
	mail     mailer.Sender
	jwt      config.JWTConfig
	password config.PasswordConfig
	otpCfg   config.OTPConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user store is required")
	}
	if params.OTP == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "otp store is required")
	}
	if params.Mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mail sender is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:    params.Users,
		otp:      params.OTP,
		mail:     params.Mail,
		jwt:      params.JWT,
		password: params.Password,
		otpCfg:   params.OTPCfg,
		logg:     params.Logg,
		now:      now,
	}, nil
}

// Register creates an unverified account and emails a one-time verification
// code.
func (s *service) Register(ctx context.Context, input RegisterInput) (UserDTO, error) {
	email := normalizeEmail(input.Email)

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         enums.MemberRoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an account with this email already exists")
		}
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}

	if err := s.issueOTP(ctx, user); err != nil {
		// The account exists; the client can request a fresh code.
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"user_id": user.ID.String(),
				"error":   err.Error(),
			})
			s.logg.Warn(logCtx, "auth.otp_delivery_failed")
		}
	}
	return toUserDTO(*user), nil
}

// VerifyOTP checks the emailed code and marks the account verified. Verifying
// an already-verified account is a no-op.
func (s *service) VerifyOTP(ctx context.Context, input VerifyOTPInput) (UserDTO, error) {
	user, err := s.findByEmail(ctx, input.Email)
	if err != nil {
		return UserDTO{}, err
	}
	if user.IsVerified {
		return toUserDTO(*user), nil
	}

	stored, err := s.otp.GetOTP(ctx, user.ID.String())
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification code")
		}
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification code")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(input.Code))) != 1 {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification code")
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark account verified")
	}
	if err := s.otp.DeleteOTP(ctx, user.ID.String()); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"user_id": user.ID.String()})
		s.logg.Warn(logCtx, "auth.otp_cleanup_failed")
	}

	user.IsVerified = true
	return toUserDTO(*user), nil
}

// ResendOTP issues a fresh verification code for an unverified account.
func (s *service) ResendOTP(ctx context.Context, input ResendOTPInput) error {
	user, err := s.findByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return pkgerrors.New(pkgerrors.CodeValidation, "account is already verified")
	}
	if err := s.issueOTP(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send verification code")
	}
	return nil
}

// Login checks the credentials and mints an access token for verified
// accounts. Unknown emails and wrong passwords are indistinguishable.
func (s *service) Login(ctx context.Context, input LoginInput) (SessionDTO, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	if !user.IsVerified {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is not verified")
	}

	now := s.now()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return SessionDTO{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
		User:      toUserDTO(*user),
	}, nil
}

func (s *service) findByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return user, nil
}

func (s *service) issueOTP(ctx context.Context, user *models.User) error {
	code, err := generateOTP(s.otpCfg.Digits)
	if err != nil {
		return err
	}
	if err := s.otp.StoreOTP(ctx, user.ID.String(), code, s.otpCfg.TTL); err != nil {
		return err
	}
	return s.mail.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Your Velora verification code",
		Body:    fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in %s.\n\nThe Velora team", user.FullName, code, s.otpCfg.TTL),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTP(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		digits = 6
	}
	var sb strings.Builder
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate otp digit: %w", err)
		}
		sb.WriteString(n.String())
	}
	return sb.String(), nil
}
