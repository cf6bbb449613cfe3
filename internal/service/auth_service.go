package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
)

// AuthService coordinates registration, login, token issuance and refresh.
// Issued tokens are not persisted; verification is stateless. The optional
// refresh store only guards against replaying a rotated refresh token.
type AuthService struct {
	users        repository.UserRepository
	resets       repository.PasswordResetRepository
	refreshStore repository.RefreshTokenStore
	codec        *auth.Codec
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	issuer       string
	audience     string
	accessTTL    time.Duration
	refreshTTL   time.Duration
	resetTTL     time.Duration
	bcryptCost   int
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	RefreshStore      repository.RefreshTokenStore
	Codec             *auth.Codec
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:        deps.UserRepo,
		resets:       deps.PasswordResetRepo,
		refreshStore: deps.RefreshStore,
		codec:        deps.Codec,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		issuer:       cfg.Auth.Issuer,
		audience:     cfg.Auth.Audience,
		accessTTL:    cfg.Auth.AccessTokenTTL(),
		refreshTTL:   cfg.Auth.RefreshTokenTTL(),
		resetTTL:     time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		bcryptCost:   cfg.Auth.BcryptCost,
	}
}

// Register creates a new account with role USER, active by default.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*domain.User, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeErr(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeErr(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		UserID:  user.ID,
		Email:   user.Email,
		Payload: events.UserRegisteredPayload{Role: user.Role},
	})
	return user, nil
}

// Authenticate verifies credentials and account status. Unknown email and
// wrong password both return ErrInvalidCredentials; an inactive account is
// reported separately once the password has been verified.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.publishLoginFailed(ctx, email, "unknown_email")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, storeErr(err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		s.publishLoginFailed(ctx, email, "wrong_password")
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.publishLoginFailed(ctx, email, "inactive_account")
		return nil, domain.ErrInactiveAccount
	}

	s.publish(ctx, events.Event{Type: events.EventLoginSucceeded, UserID: user.ID, Email: user.Email})
	return user, nil
}

// IssueTokens mints an access/refresh pair for the user. The access token
// carries role, permissions and profile enrichment; the refresh token
// carries neither. The two tokens never share a jti.
func (s *AuthService) IssueTokens(ctx context.Context, user *domain.User) (domain.TokenPair, error) {
	now := time.Now()

	accessClaims, err := auth.AccessClaims(user, s.issuer, s.audience, now, s.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	accessToken, err := s.codec.Encode(accessClaims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refreshClaims, err := auth.RefreshClaims(user, s.issuer, s.audience, now, s.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refreshToken, err := s.codec.Encode(refreshClaims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

// Login authenticates and issues tokens in one step.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, user)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// ResolveCurrentUser decodes an access token and re-fetches the subject
// from the store. The is_active flag is re-checked live: token claims are
// trusted for enrichment at issuance, never for account status at
// enforcement time.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, accessToken string) (*domain.User, *auth.Claims, error) {
	claims, err := s.codec.DecodeExpecting(accessToken, domain.TokenTypeAccess)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrUserNotFound
		}
		return nil, nil, storeErr(err)
	}
	if !user.IsActive {
		return nil, nil, domain.ErrInactiveAccount
	}
	return user, claims, nil
}

// Refresh rotates a refresh token into a fresh pair. Permissions on the new
// access token are recomputed from the user's current role, not copied from
// the old token. When a refresh store is configured, each refresh token may
// be redeemed once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, domain.TokenPair, error) {
	claims, err := s.codec.DecodeExpecting(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	if s.refreshStore != nil {
		first, redeemErr := s.refreshStore.Redeem(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
		if redeemErr != nil {
			// Degrade to the stateless model rather than failing logins on a
			// cache outage.
			s.logger.Warn("refresh store unavailable, skipping replay check", zap.Error(redeemErr))
		} else if !first {
			s.logger.Warn("refresh token replay rejected", zap.String("sub", claims.Subject))
			return nil, domain.TokenPair{}, auth.ErrTokenReplayed
		}
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.TokenPair{}, domain.ErrUserNotFound
		}
		return nil, domain.TokenPair{}, storeErr(err)
	}
	if !user.IsActive {
		return nil, domain.TokenPair{}, domain.ErrInactiveAccount
	}

	pair, err := s.IssueTokens(ctx, user)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventTokenRefreshed,
		UserID:  user.ID,
		Email:   user.Email,
		Payload: events.TokenRefreshedPayload{RedeemedJTI: claims.ID},
	})
	return user, pair, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return storeErr(err)
	}
	if !auth.VerifyPassword(user.PasswordHash, currentPassword) {
		return domain.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return storeErr(err)
	}

	s.publish(ctx, events.Event{Type: events.EventPasswordChanged, UserID: user.ID, Email: user.Email})
	return nil
}

// RequestPasswordReset persists a reset token for the account. The token is
// returned to the caller for delivery; unknown emails yield ErrUserNotFound
// which handlers flatten to a generic acknowledgement.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr(err)
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, storeErr(err)
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrResetTokenInvalid
		}
		return storeErr(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return domain.ErrResetTokenInvalid
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return storeErr(err)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return storeErr(err)
	}

	s.publish(ctx, events.Event{Type: events.EventPasswordChanged, UserID: user.ID, Email: user.Email})
	return s.resets.MarkUsed(ctx, token.ID)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func (s *AuthService) publishLoginFailed(ctx context.Context, email, reason string) {
	s.publish(ctx, events.Event{
		Type:    events.EventLoginFailed,
		Email:   email,
		Payload: events.LoginFailedPayload{Reason: reason},
	})
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
