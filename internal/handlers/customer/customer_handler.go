// internal/handlers/customer/customer_handler.go
package customer

import (
	"net/http"

	"portal-auth-service/internal/domain/customer"
	"portal-auth-service/internal/middleware"
	xerrors "portal-auth-service/internal/pkg/errors"
	"portal-auth-service/internal/pkg/response"
	customerService "portal-auth-service/internal/service/customer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customers *customerService.CustomerService
	logger    *zap.Logger
}

func NewCustomerHandler(customers *customerService.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		logger:    logger,
	}
}

// GetMe returns the caller's profile.
func (h *CustomerHandler) GetMe(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	profile, err := h.customers.GetProfile(c.Request.Context(), identityID)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			h.logger.Error("get profile failed", zap.Error(err), zap.Int64("identity_id", identityID))
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile", profile)
}

// PatchMe applies a partial profile update. Only fields present in the
// body are touched.
func (h *CustomerHandler) PatchMe(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	var patch customer.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	profile, err := h.customers.PatchProfile(c.Request.Context(), identityID, &patch)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrInvalidInput) && !xerrors.Is(err, xerrors.ErrNotFound) {
			h.logger.Error("patch profile failed", zap.Error(err), zap.Int64("identity_id", identityID))
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile updated", profile)
}
