package auth

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist 保存已登出令牌的 jti，直到令牌本身过期。
type TokenBlacklist interface {
	// Add revokes jti until tokenExpiry. Tokens that have already expired are not stored.
	Add(ctx context.Context, jti string, tokenExpiry time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// MemoryBlacklist is an in-process TokenBlacklist for a single instance running without Redis.
// Entries are dropped once the token they revoke would have expired.
type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryBlacklist) Add(_ context.Context, jti string, tokenExpiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.pruneLocked(now)
	if !tokenExpiry.After(now) {
		return nil
	}
	m.revoked[jti] = tokenExpiry
	return nil
}

func (m *MemoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[jti]
	return ok && exp.After(m.now()), nil
}

// Len returns the number of live entries.
func (m *MemoryBlacklist) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(m.now())
	return len(m.revoked)
}

func (m *MemoryBlacklist) pruneLocked(now time.Time) {
	for jti, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, jti)
		}
	}
}
