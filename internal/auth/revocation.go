package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Revocations remembers logged-out token IDs until the tokens would have
// expired anyway.
type Revocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewRevocations() *Revocations {
	return &Revocations{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// hashTokenID keeps raw token IDs out of memory dumps.
func hashTokenID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// Revoke marks id as revoked until expiresAt.
func (r *Revocations) Revoke(id string, expiresAt time.Time) {
	if id == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[hashTokenID(id)] = expiresAt
	r.pruneLocked()
}

func (r *Revocations) IsRevoked(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.revoked[hashTokenID(id)]
	if !ok {
		return false
	}
	if !r.now().Before(exp) {
		delete(r.revoked, hashTokenID(id))
		return false
	}
	return true
}

// Len reports how many revocations are still tracked.
func (r *Revocations) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	return len(r.revoked)
}

func (r *Revocations) pruneLocked() {
	now := r.now()
	for k, exp := range r.revoked {
		if !now.Before(exp) {
			delete(r.revoked, k)
		}
	}
}
