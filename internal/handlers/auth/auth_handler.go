// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"
	"time"

	"portal-auth-service/internal/config"
	"portal-auth-service/internal/domain/auth"
	"portal-auth-service/internal/middleware"
	xerrors "portal-auth-service/internal/pkg/errors"
	"portal-auth-service/internal/pkg/response"
	authService "portal-auth-service/internal/service/auth"
	customerService "portal-auth-service/internal/service/customer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	sessions  *authService.SessionManager
	customers *customerService.CustomerService
	cfg       config.AppConfig
	logger    *zap.Logger
}

func NewAuthHandler(
	sessions *authService.SessionManager,
	customers *customerService.CustomerService,
	cfg config.AppConfig,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		sessions:  sessions,
		customers: customers,
		cfg:       cfg,
		logger:    logger,
	}
}

// ========== OTP ==========

// SendOTP handles the login-code request (public endpoint).
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req auth.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "phone_number is required", err)
		return
	}

	resp, err := h.sessions.SendOTP(c.Request.Context(), &req)
	if err != nil {
		if !xerrors.IsAuthOutcome(err) {
			h.logger.Error("send otp failed", zap.Error(err))
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp.Message, resp)
}

// VerifyOTP exchanges a code for tokens. The access token rides the JSON
// body; the refresh token is set as an HTTP-only cookie scoped to the auth
// routes.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req auth.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "phone_number and otp are required", err)
		return
	}

	req.Client = auth.DeviceInfo{
		Device:    c.GetHeader("X-Device-Info"),
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}

	result, err := h.sessions.VerifyOTP(c.Request.Context(), &req)
	if err != nil {
		if !xerrors.IsAuthOutcome(err) && !xerrors.Is(err, xerrors.ErrInvalidInput) {
			h.logger.Error("verify otp failed", zap.Error(err))
		}
		response.FromError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.Success(c, http.StatusOK, result.Message, result)
}

// ========== Refresh ==========

// Refresh rotates the refresh cookie and returns a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(h.cfg.RefreshCookieName)
	if err != nil || refreshToken == "" {
		response.FromError(c, xerrors.ErrNoToken)
		return
	}

	result, err := h.sessions.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if !xerrors.IsAuthOutcome(err) {
			h.logger.Error("refresh failed", zap.Error(err))
		}
		h.clearRefreshCookie(c)
		response.FromError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.Success(c, http.StatusOK, "token refreshed", result)
}

// ========== Logout ==========

// Logout invalidates the presented credentials and clears the refresh
// cookie. The endpoint is permissive; stale tokens still log out cleanly.
func (h *AuthHandler) Logout(c *gin.Context) {
	accessToken := middleware.ExtractToken(c)
	refreshToken, _ := c.Cookie(h.cfg.RefreshCookieName)

	if err := h.sessions.Logout(c.Request.Context(), accessToken, refreshToken); err != nil {
		response.FromError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.Success(c, http.StatusOK, "logged out", gin.H{
		"logoutTime": time.Now().UTC().Format(time.RFC3339),
	})
}

// LogoutAll signs the caller out of every device.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	revoked, err := h.sessions.LogoutAll(c.Request.Context(), identityID, middleware.GetAccessToken(c))
	if err != nil {
		h.logger.Error("logout all failed", zap.Error(err), zap.Int64("identity_id", identityID))
		response.FromError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.Success(c, http.StatusOK, "logged out on all devices", gin.H{
		"sessionsRevoked": revoked,
		"logoutTime":      time.Now().UTC().Format(time.RFC3339),
	})
}

// ========== Maintenance ==========

// CleanupTokens triggers an immediate purge of expired revocation records.
// The scheduler runs the same sweep periodically.
func (h *AuthHandler) CleanupTokens(c *gin.Context) {
	result, err := h.sessions.Cleanup(c.Request.Context())
	if err != nil {
		h.logger.Error("token cleanup failed", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "cleanup complete", result)
}

// GetProfile returns the caller's identity and profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	account, err := h.customers.GetAccount(c.Request.Context(), identityID)
	if err != nil {
		if !xerrors.IsAuthOutcome(err) {
			h.logger.Error("get profile failed", zap.Error(err), zap.Int64("identity_id", identityID))
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile", account)
}

// ========== Cookie plumbing ==========

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	h.writeRefreshCookie(c, token, int(h.sessions.RefreshTTL().Seconds()))
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	h.writeRefreshCookie(c, "", -1)
}

func (h *AuthHandler) writeRefreshCookie(c *gin.Context, token string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.cfg.IsProduction() {
		sameSite = http.SameSiteStrictMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(h.cfg.RefreshCookieName, token, maxAge, h.cfg.RefreshCookiePath,
		"", h.cfg.IsProduction(), true)
}
