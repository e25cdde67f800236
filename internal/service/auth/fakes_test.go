package auth

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"portal-auth-service/internal/domain/auth"
	"portal-auth-service/internal/domain/customer"
	xerrors "portal-auth-service/internal/pkg/errors"
)

// In-memory repository fakes. All mutation happens under a mutex so the
// concurrency tests exercise the same exactly-one-wins guarantees the SQL
// conditional updates give.

type fakeIdentityRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*auth.Identity

	// missFindOnce makes the next FindByPhone miss even when the row
	// exists, opening the first-contact race window deterministically.
	missFindOnce bool
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{byID: make(map[int64]*auth.Identity)}
}

func (r *fakeIdentityRepo) FindByPhone(ctx context.Context, phone string) (*auth.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missFindOnce {
		r.missFindOnce = false
		return nil, xerrors.ErrIdentityNotFound
	}
	for _, identity := range r.byID {
		if identity.PhoneNumber == phone {
			clone := *identity
			return &clone, nil
		}
	}
	return nil, xerrors.ErrIdentityNotFound
}

func (r *fakeIdentityRepo) FindByID(ctx context.Context, id int64) (*auth.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byID[id]
	if !ok {
		return nil, xerrors.ErrIdentityNotFound
	}
	clone := *identity
	return &clone, nil
}

func (r *fakeIdentityRepo) Create(ctx context.Context, identity *auth.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.PhoneNumber == identity.PhoneNumber {
			return xerrors.ErrDuplicateEntry
		}
	}
	r.nextID++
	identity.ID = r.nextID
	identity.CreatedAt = time.Now()
	identity.UpdatedAt = identity.CreatedAt
	clone := *identity
	r.byID[identity.ID] = &clone
	return nil
}

func (r *fakeIdentityRepo) SetOTP(ctx context.Context, id int64, codeHash string, issuedAt, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byID[id]
	if !ok {
		return xerrors.ErrIdentityNotFound
	}
	identity.TempPwdHash = sql.NullString{String: codeHash, Valid: true}
	identity.TempPwdIssued = sql.NullTime{Time: issuedAt, Valid: true}
	identity.TempPwdExpiry = sql.NullTime{Time: expiresAt, Valid: true}
	return nil
}

func (r *fakeIdentityRepo) IncrementFailedLogin(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if identity, ok := r.byID[id]; ok {
		identity.FailedLoginCount++
		identity.FailedLoginTotal++
	}
	return nil
}

func (r *fakeIdentityRepo) UpdateBasicInfo(ctx context.Context, id int64, customerName, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byID[id]
	if !ok {
		return xerrors.ErrIdentityNotFound
	}
	identity.CustomerName = sql.NullString{String: customerName, Valid: true}
	identity.Email = sql.NullString{String: email, Valid: true}
	return nil
}

// setState flips account state directly for guard tests.
func (r *fakeIdentityRepo) setState(id int64, state string, disabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if identity, ok := r.byID[id]; ok {
		identity.State = state
		identity.LoginDisabled = disabled
	}
}

func (r *fakeIdentityRepo) get(id int64) auth.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.byID[id]
}

type fakeProfileRepo struct {
	mu         sync.Mutex
	nextID     int64
	byIdentity map[int64]*customer.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byIdentity: make(map[int64]*customer.Profile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *customer.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	profile.ID = r.nextID
	clone := *profile
	r.byIdentity[profile.IdentityID] = &clone
	return nil
}

func (r *fakeProfileRepo) GetByIdentityID(ctx context.Context, identityID int64) (*customer.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.byIdentity[identityID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	clone := *profile
	return &clone, nil
}

func (r *fakeProfileRepo) Patch(ctx context.Context, identityID int64, patch *customer.ProfilePatch) (*customer.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.byIdentity[identityID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	if patch.FullName != nil {
		profile.FullName = sql.NullString{String: *patch.FullName, Valid: true}
	}
	if patch.Email != nil {
		profile.Email = sql.NullString{String: *patch.Email, Valid: true}
	}
	if patch.Address != nil {
		profile.Address = sql.NullString{String: *patch.Address, Valid: true}
	}
	if patch.City != nil {
		profile.City = sql.NullString{String: *patch.City, Valid: true}
	}
	profile.LastActivityDate = sql.NullTime{Time: time.Now(), Valid: true}
	clone := *profile
	return &clone, nil
}

func (r *fakeProfileRepo) TouchActivity(ctx context.Context, identityID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile, ok := r.byIdentity[identityID]; ok {
		profile.LastActivityDate = sql.NullTime{Time: time.Now(), Valid: true}
	}
	return nil
}

type fakeSessionRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*auth.Session

	failCreate error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byID: make(map[int64]*auth.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	r.nextID++
	session.ID = r.nextID
	session.IsActive = true
	session.CreatedAt = time.Now()
	clone := *session
	r.byID[session.ID] = &clone
	return nil
}

func (r *fakeSessionRepo) FindActiveByTokenHash(ctx context.Context, tokenHash string, identityID int64) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.byID {
		if session.RefreshTokenHash == tokenHash && session.IdentityID == identityID &&
			session.IsActive && session.ExpiresAt.After(time.Now()) {
			clone := *session
			return &clone, nil
		}
	}
	return nil, xerrors.ErrSessionNotFound
}

func (r *fakeSessionRepo) Rotate(ctx context.Context, sessionID int64, oldHash, newHash string, newExpiry time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byID[sessionID]
	if !ok || session.RefreshTokenHash != oldHash || !session.IsActive || !session.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	session.RefreshTokenHash = newHash
	session.ExpiresAt = newExpiry
	session.LastUsedAt = sql.NullTime{Time: time.Now(), Valid: true}
	return true, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, sessionID int64, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.byID[sessionID]; ok && session.IsActive {
		session.IsActive = false
		session.RevokedAt = sql.NullTime{Time: time.Now(), Valid: true}
		session.RevokedReason = sql.NullString{String: reason, Valid: true}
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllForIdentity(ctx context.Context, identityID int64, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var revoked int64
	for _, session := range r.byID {
		if session.IdentityID == identityID && session.IsActive {
			session.IsActive = false
			session.RevokedAt = sql.NullTime{Time: time.Now(), Valid: true}
			session.RevokedReason = sql.NullString{String: reason, Valid: true}
			revoked++
		}
	}
	return revoked, nil
}

func (r *fakeSessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, session := range r.byID {
		if !session.ExpiresAt.After(time.Now()) {
			delete(r.byID, id)
			removed++
		}
	}
	return removed, nil
}

// fakeLoginRepo mirrors the transactional consume-and-create: the code is
// only cleared after the session write succeeds, so a failed write leaves
// the identity untouched, matching the SQL rollback.
type fakeLoginRepo struct {
	identities *fakeIdentityRepo
	sessions   *fakeSessionRepo
}

func (r *fakeLoginRepo) ConsumeOTPAndCreateSession(ctx context.Context, identityID int64, codeHash string, session *auth.Session) (bool, error) {
	r.identities.mu.Lock()
	defer r.identities.mu.Unlock()

	identity, ok := r.identities.byID[identityID]
	if !ok || !identity.TempPwdHash.Valid || identity.TempPwdHash.String != codeHash {
		return false, nil
	}
	if !identity.TempPwdExpiry.Valid || !identity.TempPwdExpiry.Time.After(time.Now()) {
		return false, nil
	}

	if err := r.sessions.Create(ctx, session); err != nil {
		return false, err
	}

	identity.TempPwdHash = sql.NullString{}
	identity.TempPwdIssued = sql.NullTime{}
	identity.TempPwdExpiry = sql.NullTime{}
	identity.LoginCount++
	identity.FailedLoginCount = 0
	identity.LastLogin = sql.NullTime{Time: time.Now(), Valid: true}
	return true, nil
}

func (r *fakeSessionRepo) activeCount(identityID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, session := range r.byID {
		if session.IdentityID == identityID && session.IsActive {
			count++
		}
	}
	return count
}
