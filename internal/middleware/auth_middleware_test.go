package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "portal-auth-service/internal/domain/auth"
	xerrors "portal-auth-service/internal/pkg/errors"
	"portal-auth-service/internal/pkg/jwt"
	"portal-auth-service/internal/revocation"
	"portal-auth-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// identityStore is the minimal identity repo the gate path touches.
type identityStore struct {
	identities map[int64]*domain.Identity
}

func (s *identityStore) FindByPhone(ctx context.Context, phone string) (*domain.Identity, error) {
	for _, identity := range s.identities {
		if identity.PhoneNumber == phone {
			return identity, nil
		}
	}
	return nil, xerrors.ErrIdentityNotFound
}

func (s *identityStore) FindByID(ctx context.Context, id int64) (*domain.Identity, error) {
	identity, ok := s.identities[id]
	if !ok {
		return nil, xerrors.ErrIdentityNotFound
	}
	return identity, nil
}

func (s *identityStore) Create(ctx context.Context, identity *domain.Identity) error { return nil }
func (s *identityStore) SetOTP(ctx context.Context, id int64, codeHash string, issuedAt, expiresAt time.Time) error {
	return nil
}
func (s *identityStore) IncrementFailedLogin(ctx context.Context, id int64) error { return nil }
func (s *identityStore) UpdateBasicInfo(ctx context.Context, id int64, customerName, email string) error {
	return nil
}

type gateEnv struct {
	router    *gin.Engine
	codec     *jwt.Codec
	store     *identityStore
	blacklist *revocation.MemoryBlacklist
}

func newGateEnv(t *testing.T) *gateEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &identityStore{identities: map[int64]*domain.Identity{
		1: {
			ID:          1,
			PhoneNumber: "+254700000001",
			State:       domain.StateActive,
			Email:       sql.NullString{String: "jane@example.com", Valid: true},
		},
	}}
	blacklist := revocation.NewMemoryBlacklist("")
	codec := jwt.NewCodec(jwt.Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		Issuer:        "portal-auth-test",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})

	sessions := auth.NewSessionManager(store, nil, nil, nil, blacklist, codec, nil, time.Minute, zap.NewNop())
	mw := NewAuthMiddleware(sessions)

	router := gin.New()
	router.GET("/protected", mw.Auth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"identity_id": MustGetIdentityID(c), "jti": MustGetJTI(c)})
	})
	router.GET("/optional", mw.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authenticated": IsAuthenticated(c)})
	})

	return &gateEnv{router: router, codec: codec, store: store, blacklist: blacklist}
}

func (e *gateEnv) request(t *testing.T, path string, header func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != nil {
		header(req)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *gateEnv) issueAccess(t *testing.T) (string, string) {
	t.Helper()
	token, jti, err := e.codec.IssueAccess(1, "+254700000001", "", "jane@example.com")
	require.NoError(t, err)
	return token, jti
}

func TestAuth_missingToken(t *testing.T) {
	env := newGateEnv(t)
	w := env.request(t, "/protected", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_malformedToken(t *testing.T) {
	env := newGateEnv(t)
	w := env.request(t, "/protected", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_validToken(t *testing.T) {
	env := newGateEnv(t)
	token, _ := env.issueAccess(t)

	w := env.request(t, "/protected", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"identity_id":1`)
}

func TestAuth_legacyHeaderFallback(t *testing.T) {
	env := newGateEnv(t)
	token, _ := env.issueAccess(t)

	w := env.request(t, "/protected", func(r *http.Request) {
		r.Header.Set("x-access-token", token)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_refreshTokenRejected(t *testing.T) {
	env := newGateEnv(t)
	token, _, err := env.codec.IssueRefresh(1, "+254700000001")
	require.NoError(t, err)

	w := env.request(t, "/protected", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_revokedToken(t *testing.T) {
	env := newGateEnv(t)
	token, jti := env.issueAccess(t)
	require.NoError(t, env.blacklist.Revoke(context.Background(), jti, 1, time.Now().Add(time.Hour), "logout"))

	w := env.request(t, "/protected", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_blockedAccount(t *testing.T) {
	env := newGateEnv(t)
	token, _ := env.issueAccess(t)
	env.store.identities[1].State = domain.StateBlocked

	w := env.request(t, "/protected", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_disabledAccount(t *testing.T) {
	env := newGateEnv(t)
	token, _ := env.issueAccess(t)
	env.store.identities[1].LoginDisabled = true

	w := env.request(t, "/protected", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOptionalAuth_proceedsWithoutToken(t *testing.T) {
	env := newGateEnv(t)
	w := env.request(t, "/optional", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestOptionalAuth_proceedsWithBadToken(t *testing.T) {
	env := newGateEnv(t)
	w := env.request(t, "/optional", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestOptionalAuth_attachesIdentity(t *testing.T) {
	env := newGateEnv(t)
	token, _ := env.issueAccess(t)

	w := env.request(t, "/optional", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}
