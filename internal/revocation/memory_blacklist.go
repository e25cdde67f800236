// internal/revocation/memory_blacklist.go
package revocation

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"
)

type memoryEntry struct {
	JTI           string    `json:"jti"`
	IdentityID    int64     `json:"identity_id"`
	ExpiresAt     time.Time `json:"expires_at"`
	Reason        string    `json:"reason"`
	BlacklistedAt time.Time `json:"blacklisted_at"`
}

type snapshot struct {
	BlacklistedTokens []memoryEntry `json:"blacklisted_tokens"`
	LastUpdated       time.Time     `json:"last_updated"`
}

// MemoryBlacklist keeps revoked JTIs in process memory behind its own lock.
// It is constructed once at startup and injected wherever revocation checks
// happen; the optional snapshot file is a durability nicety whose writes are
// serialized separately from the lookup path.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	snapMu   sync.Mutex
	snapPath string
}

// NewMemoryBlacklist creates an in-process blacklist. snapPath may be empty
// to disable persistence; when set, any existing snapshot is loaded and
// unexpired entries restored.
func NewMemoryBlacklist(snapPath string) *MemoryBlacklist {
	b := &MemoryBlacklist{
		entries:  make(map[string]memoryEntry),
		snapPath: snapPath,
	}
	b.loadSnapshot()
	return b
}

func (b *MemoryBlacklist) Revoke(ctx context.Context, jti string, identityID int64, expiresAt time.Time, reason string) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}

	b.mu.Lock()
	b.entries[jti] = memoryEntry{
		JTI:           jti,
		IdentityID:    identityID,
		ExpiresAt:     expiresAt,
		Reason:        reason,
		BlacklistedAt: time.Now().UTC(),
	}
	b.mu.Unlock()

	b.saveSnapshot()
	return nil
}

func (b *MemoryBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	b.mu.RLock()
	entry, ok := b.entries[jti]
	b.mu.RUnlock()

	// Entries past expiry are ignored even before the purge runs.
	return ok && entry.ExpiresAt.After(time.Now()), nil
}

func (b *MemoryBlacklist) PurgeExpired(ctx context.Context) (int64, error) {
	now := time.Now()

	b.mu.Lock()
	var removed int64
	for jti, entry := range b.entries {
		if !entry.ExpiresAt.After(now) {
			delete(b.entries, jti)
			removed++
		}
	}
	b.mu.Unlock()

	if removed > 0 {
		b.saveSnapshot()
	}
	return removed, nil
}

// Len returns the number of entries currently held, expired or not.
func (b *MemoryBlacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func (b *MemoryBlacklist) loadSnapshot() {
	if b.snapPath == "" {
		return
	}
	data, err := os.ReadFile(b.snapPath)
	if err != nil {
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return
	}
	now := time.Now()
	b.mu.Lock()
	for _, entry := range snap.BlacklistedTokens {
		if entry.ExpiresAt.After(now) {
			b.entries[entry.JTI] = entry
		}
	}
	b.mu.Unlock()
}

func (b *MemoryBlacklist) saveSnapshot() {
	if b.snapPath == "" {
		return
	}

	// snapMu is taken before the entries are read so the last write to the
	// file always reflects the newest state; building the snapshot first
	// would let two writers race and persist the older one last.
	b.snapMu.Lock()
	defer b.snapMu.Unlock()

	b.mu.RLock()
	snap := snapshot{
		BlacklistedTokens: make([]memoryEntry, 0, len(b.entries)),
		LastUpdated:       time.Now().UTC(),
	}
	for _, entry := range b.entries {
		snap.BlacklistedTokens = append(snap.BlacklistedTokens, entry)
	}
	b.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(b.snapPath, data, 0o600)
}
