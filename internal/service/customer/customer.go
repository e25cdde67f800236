// internal/service/customer/customer.go
package customer

import (
	"context"

	"portal-auth-service/internal/domain/auth"
	"portal-auth-service/internal/domain/customer"
	xerrors "portal-auth-service/internal/pkg/errors"
	"portal-auth-service/internal/repository"

	"go.uber.org/zap"
)

// CustomerService serves profile reads and partial updates for the
// authenticated identity.
type CustomerService struct {
	identities repository.IdentityRepo
	profiles   repository.ProfileRepo
	logger     *zap.Logger
}

func NewCustomerService(
	identities repository.IdentityRepo,
	profiles repository.ProfileRepo,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		identities: identities,
		profiles:   profiles,
		logger:     logger,
	}
}

// AccountView joins the identity with its profile for the profile endpoint.
type AccountView struct {
	Identity *auth.Identity    `json:"identity"`
	Profile  *customer.Profile `json:"profile"`
}

// GetAccount returns the identity and profile for the given id.
func (s *CustomerService) GetAccount(ctx context.Context, identityID int64) (*AccountView, error) {
	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByIdentityID(ctx, identityID)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	return &AccountView{Identity: identity, Profile: profile}, nil
}

// GetProfile returns the profile linked to an identity and stamps its
// activity date.
func (s *CustomerService) GetProfile(ctx context.Context, identityID int64) (*customer.Profile, error) {
	profile, err := s.profiles.GetByIdentityID(ctx, identityID)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.TouchActivity(ctx, identityID); err != nil {
		s.logger.Warn("failed to touch profile activity", zap.Error(err),
			zap.Int64("identity_id", identityID))
	}
	return profile, nil
}

// PatchProfile applies the non-nil fields of the patch and returns the
// updated profile. An empty patch is rejected.
func (s *CustomerService) PatchProfile(ctx context.Context, identityID int64, patch *customer.ProfilePatch) (*customer.Profile, error) {
	if patch == nil || patch.IsEmpty() {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "no fields to update")
	}

	profile, err := s.profiles.Patch(ctx, identityID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", zap.Int64("identity_id", identityID))
	return profile, nil
}
