package auth

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewMemoryBlacklist()
	b.now = func() time.Time { return now }

	if err := b.Add(ctx, "live", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := b.Add(ctx, "expired", now.Add(-time.Second)); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name string
		jti  string
		at   time.Time
		want bool
	}{
		{"revoked token", "live", now, true},
		{"expired token is not stored", "expired", now, false},
		{"unknown token", "other", now, false},
		{"revocation ends with the token", "live", now.Add(time.Hour), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b.now = func() time.Time { return tc.at }
			got, err := b.IsBlacklisted(ctx, tc.jti)
			if err != nil || got != tc.want {
				t.Errorf("IsBlacklisted(%q) = %v, %v; want %v", tc.jti, got, err, tc.want)
			}
		})
	}
	if n := b.Len(); n != 0 {
		t.Errorf("Len after expiry = %d, want 0", n)
	}
}
