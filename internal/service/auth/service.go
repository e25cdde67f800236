// internal/service/auth/service.go
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"portal-auth-service/internal/domain/auth"
	"portal-auth-service/internal/domain/customer"
	xerrors "portal-auth-service/internal/pkg/errors"
	"portal-auth-service/internal/pkg/jwt"
	"portal-auth-service/internal/pkg/otp"
	"portal-auth-service/internal/repository"
	"portal-auth-service/internal/revocation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RateLimiter throttles OTP traffic per phone number. A nil limiter
// disables throttling.
type RateLimiter interface {
	AllowSend(ctx context.Context, phone string) (bool, error)
	AllowVerify(ctx context.Context, phone string) (bool, error)
	ResetVerify(ctx context.Context, phone string) error
}

// SessionManager drives the OTP login state machine: code issuance,
// verification, token minting, refresh rotation and logout.
type SessionManager struct {
	identities  repository.IdentityRepo
	profiles    repository.ProfileRepo
	sessions    repository.SessionRepo
	logins      repository.LoginRepo
	blacklist   revocation.Blacklist
	codec       *jwt.Codec
	rateLimiter RateLimiter
	otpTTL      time.Duration
	logger      *zap.Logger
}

func NewSessionManager(
	identities repository.IdentityRepo,
	profiles repository.ProfileRepo,
	sessions repository.SessionRepo,
	logins repository.LoginRepo,
	blacklist revocation.Blacklist,
	codec *jwt.Codec,
	rateLimiter RateLimiter,
	otpTTL time.Duration,
	logger *zap.Logger,
) *SessionManager {
	if otpTTL <= 0 {
		otpTTL = otp.DefaultTTL
	}
	return &SessionManager{
		identities:  identities,
		profiles:    profiles,
		sessions:    sessions,
		logins:      logins,
		blacklist:   blacklist,
		codec:       codec,
		rateLimiter: rateLimiter,
		otpTTL:      otpTTL,
		logger:      logger,
	}
}

// RefreshTTL exposes the refresh token lifetime for cookie expiry.
func (s *SessionManager) RefreshTTL() time.Duration {
	return s.codec.RefreshTTL()
}

// ========== OTP issuance ==========

// SendOTP issues a fresh login code for the phone number, creating the
// identity and its profile on first contact. Any previously issued code is
// invalidated by the overwrite. The code is echoed in the response; SMS
// delivery is out of scope.
func (s *SessionManager) SendOTP(ctx context.Context, req *auth.SendOTPRequest) (*auth.SendOTPResponse, error) {
	if s.rateLimiter != nil {
		allowed, err := s.rateLimiter.AllowSend(ctx, req.PhoneNumber)
		if err != nil {
			s.logger.Error("otp send rate limit check failed", zap.Error(err))
		} else if !allowed {
			return nil, xerrors.ErrRateLimited
		}
	}

	userExists := true
	identity, err := s.identities.FindByPhone(ctx, req.PhoneNumber)
	if xerrors.Is(err, xerrors.ErrIdentityNotFound) {
		identity, userExists, err = s.registerIdentity(ctx, req.PhoneNumber)
	}
	if err != nil {
		return nil, err
	}

	// Account state is checked before any code is generated; a blocked
	// account never receives a fresh code.
	if err := checkAccountState(identity); err != nil {
		return nil, err
	}

	code, err := otp.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash otp: %w", err)
	}

	now := time.Now().UTC()
	if err := s.identities.SetOTP(ctx, identity.ID, string(codeHash), now, now.Add(s.otpTTL)); err != nil {
		return nil, err
	}

	s.logger.Info("otp issued",
		zap.Int64("identity_id", identity.ID),
		zap.Bool("user_exists", userExists),
	)

	return &auth.SendOTPResponse{
		Message:    "OTP sent successfully",
		OTP:        code,
		ExpiresIn:  fmt.Sprintf("%d minutes", int(s.otpTTL.Minutes())),
		UserExists: userExists,
	}, nil
}

// registerIdentity creates the identity and its profile on first contact.
// Two first-contact requests can race past the lookup; the loser hits the
// phone unique constraint and falls back to the row the winner created.
// The second return value reports whether the identity already existed.
func (s *SessionManager) registerIdentity(ctx context.Context, phone string) (*auth.Identity, bool, error) {
	identity := &auth.Identity{
		PhoneNumber: phone,
		State:       auth.StateActive,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			existing, ferr := s.identities.FindByPhone(ctx, phone)
			return existing, true, ferr
		}
		return nil, false, err
	}

	profile := &customer.Profile{
		IdentityID:  identity.ID,
		MobilePhone: sql.NullString{String: phone, Valid: true},
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, false, err
	}
	return identity, false, nil
}

// ========== OTP verification ==========

// VerifyOTP exchanges a code for an access/refresh token pair. The stored
// code is consumed under a conditional update, so of any number of
// concurrent verifications with the same code exactly one succeeds. On an
// identity's first successful login customer_name and email are required
// and persisted; the requirement is enforced before the code is consumed
// so a retry with the same code can still succeed.
func (s *SessionManager) VerifyOTP(ctx context.Context, req *auth.VerifyOTPRequest) (*auth.LoginResult, error) {
	if s.rateLimiter != nil {
		allowed, err := s.rateLimiter.AllowVerify(ctx, req.PhoneNumber)
		if err != nil {
			s.logger.Error("otp verify rate limit check failed", zap.Error(err))
		} else if !allowed {
			return nil, xerrors.ErrRateLimited
		}
	}

	identity, err := s.identities.FindByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if err := checkAccountState(identity); err != nil {
		return nil, err
	}

	if !identity.TempPwdHash.Valid || identity.TempPwdHash.String == "" {
		return nil, xerrors.ErrInvalidCode
	}
	if !identity.TempPwdExpiry.Valid || !identity.TempPwdExpiry.Time.After(time.Now()) {
		return nil, xerrors.ErrCodeExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.TempPwdHash.String), []byte(req.OTP)) != nil {
		if err := s.identities.IncrementFailedLogin(ctx, identity.ID); err != nil {
			s.logger.Error("failed to record failed login", zap.Error(err),
				zap.Int64("identity_id", identity.ID))
		}
		return nil, xerrors.ErrInvalidCode
	}

	firstLogin := !identity.CustomerName.Valid || identity.CustomerName.String == ""
	if firstLogin && (req.CustomerName == "" || req.Email == "") {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "customer_name and email are required on first login")
	}

	customerName, email := identity.CustomerName.String, identity.Email.String
	if firstLogin {
		customerName, email = req.CustomerName, req.Email
	}

	// Tokens are minted before the consume; signing is pure and has no
	// state to roll back. The consume and the session insert then commit
	// as one unit, so a failed insert leaves the code usable for a retry.
	accessToken, _, err := s.codec.IssueAccess(identity.ID, identity.PhoneNumber, customerName, email)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.codec.IssueRefresh(identity.ID, identity.PhoneNumber)
	if err != nil {
		return nil, err
	}

	session := &auth.Session{
		IdentityID:       identity.ID,
		RefreshTokenHash: hashToken(refreshToken),
		ExpiresAt:        time.Now().UTC().Add(s.codec.RefreshTTL()),
		DeviceInfo:       nullString(req.Client.Device),
		IPAddress:        nullString(req.Client.IPAddress),
		UserAgent:        nullString(req.Client.UserAgent),
	}

	consumed, err := s.logins.ConsumeOTPAndCreateSession(ctx, identity.ID, identity.TempPwdHash.String, session)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// Lost the race, or the code was replaced under us.
		return nil, xerrors.ErrInvalidCode
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.ResetVerify(ctx, req.PhoneNumber); err != nil {
			s.logger.Warn("failed to reset verify counter", zap.Error(err))
		}
	}

	if firstLogin {
		if err := s.identities.UpdateBasicInfo(ctx, identity.ID, req.CustomerName, req.Email); err != nil {
			s.logger.Error("failed to store basic info", zap.Error(err),
				zap.Int64("identity_id", identity.ID))
		}
		if _, err := s.profiles.Patch(ctx, identity.ID, &customer.ProfilePatch{
			FullName: &req.CustomerName,
			Email:    &req.Email,
		}); err != nil {
			s.logger.Error("failed to sync profile basic info", zap.Error(err),
				zap.Int64("identity_id", identity.ID))
		}
	}

	s.logger.Info("login successful",
		zap.Int64("identity_id", identity.ID),
		zap.Bool("first_login", firstLogin),
	)

	return &auth.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		HasBasicInfo: customerName != "" && email != "",
		Message:      "Login successful",
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func checkAccountState(identity *auth.Identity) error {
	if identity.State == auth.StateBlocked {
		return xerrors.ErrAccountBlocked
	}
	if identity.LoginDisabled || identity.State == auth.StateInactive {
		return xerrors.ErrAccountDisabled
	}
	return nil
}
