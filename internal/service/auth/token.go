// internal/service/auth/token.go
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"portal-auth-service/internal/domain/auth"
	xerrors "portal-auth-service/internal/pkg/errors"
	"portal-auth-service/internal/pkg/jwt"

	"go.uber.org/zap"
)

// hashToken returns the hex SHA-256 of a refresh token. Session rows never
// hold the raw token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ========== Refresh rotation ==========

// Refresh rotates a refresh token: the presented token is verified, its
// session located by hash, and the stored hash swapped for a new one under
// a conditional update. A replayed token finds the hash already rotated
// and gets ErrSessionNotFound.
func (s *SessionManager) Refresh(ctx context.Context, refreshToken string) (*auth.RefreshResult, error) {
	if refreshToken == "" {
		return nil, xerrors.ErrNoToken
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.FindActiveByTokenHash(ctx, hashToken(refreshToken), claims.IdentityID)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.FindByID(ctx, claims.IdentityID)
	if err != nil {
		return nil, err
	}
	if err := checkAccountState(identity); err != nil {
		return nil, err
	}

	newRefresh, _, err := s.codec.IssueRefresh(identity.ID, identity.PhoneNumber)
	if err != nil {
		return nil, err
	}

	rotated, err := s.sessions.Rotate(ctx, session.ID,
		session.RefreshTokenHash, hashToken(newRefresh),
		time.Now().UTC().Add(s.codec.RefreshTTL()))
	if err != nil {
		return nil, err
	}
	if !rotated {
		return nil, xerrors.ErrSessionNotFound
	}

	accessToken, _, err := s.codec.IssueAccess(identity.ID, identity.PhoneNumber,
		identity.CustomerName.String, identity.Email.String)
	if err != nil {
		return nil, err
	}

	return &auth.RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

// ========== Logout ==========

// Logout invalidates the presented credentials: the access token's JTI is
// blacklisted until its natural expiry and the refresh session revoked.
// The flow is permissive by design; expired or malformed tokens are
// dropped silently and only the complete absence of credentials is an
// error.
func (s *SessionManager) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" && refreshToken == "" {
		return xerrors.ErrNoToken
	}

	if accessToken != "" {
		s.revokeAccessToken(ctx, accessToken, "logout")
	}

	if refreshToken != "" {
		identityID, ok := jwt.SubjectOf(refreshToken)
		if ok {
			session, err := s.sessions.FindActiveByTokenHash(ctx, hashToken(refreshToken), identityID)
			if err == nil {
				if err := s.sessions.Revoke(ctx, session.ID, "logout"); err != nil {
					s.logger.Warn("failed to revoke session on logout", zap.Error(err))
				}
			} else if !xerrors.Is(err, xerrors.ErrSessionNotFound) {
				s.logger.Warn("failed to look up session on logout", zap.Error(err))
			}
		}
	}

	return nil
}

// LogoutAll blacklists the current access token and revokes every live
// session the identity holds, signing the caller out on all devices.
func (s *SessionManager) LogoutAll(ctx context.Context, identityID int64, accessToken string) (int64, error) {
	if accessToken != "" {
		s.revokeAccessToken(ctx, accessToken, "logout_all")
	}

	revoked, err := s.sessions.RevokeAllForIdentity(ctx, identityID, "logout_all")
	if err != nil {
		return 0, err
	}

	s.logger.Info("all sessions revoked",
		zap.Int64("identity_id", identityID),
		zap.Int64("sessions", revoked),
	)
	return revoked, nil
}

// revokeAccessToken blacklists a token's JTI without verifying the
// signature; the token may be seconds from expiry and revocation must
// still land.
func (s *SessionManager) revokeAccessToken(ctx context.Context, token, reason string) {
	jti, ok := jwt.ExtractJTI(token)
	if !ok {
		return
	}
	expiry, ok := jwt.ExpiryOf(token)
	if !ok {
		return
	}
	identityID, _ := jwt.SubjectOf(token)

	if err := s.blacklist.Revoke(ctx, jti, identityID, expiry, reason); err != nil {
		s.logger.Error("failed to blacklist token", zap.Error(err), zap.String("jti", jti))
	}
}

// ========== Gate support ==========

// ValidateAccessToken performs the full gate check: signature and expiry,
// blacklist membership, and account state of the subject.
func (s *SessionManager) ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.codec.VerifyAccess(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, xerrors.ErrTokenRevoked
	}

	identity, err := s.identities.FindByID(ctx, claims.IdentityID)
	if err != nil {
		return nil, err
	}
	if err := checkAccountState(identity); err != nil {
		return nil, err
	}

	return claims, nil
}

// ========== Cleanup ==========

// Cleanup purges expired revocation records from the blacklist and the
// session log and reports how many rows each sweep removed.
func (s *SessionManager) Cleanup(ctx context.Context) (*auth.CleanupResult, error) {
	removedBlacklist, err := s.blacklist.PurgeExpired(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to purge blacklist: %w", err)
	}

	removedSessions, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to purge sessions: %w", err)
	}

	s.logger.Info("token cleanup complete",
		zap.Int64("removed_blacklist", removedBlacklist),
		zap.Int64("removed_sessions", removedSessions),
	)

	return &auth.CleanupResult{
		RemovedBlacklist: removedBlacklist,
		RemovedSessions:  removedSessions,
	}, nil
}
