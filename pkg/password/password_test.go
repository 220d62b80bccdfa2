package password_test

import (
	"errors"
	"strings"
	"testing"

	"alumni-portal/pkg/password"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.HashWithCost("correct horse", password.MinCost)
	if err != nil {
		t.Fatalf("HashWithCost failed: %v", err)
	}

	if !password.Verify("correct horse", hash) {
		t.Error("expected matching password to verify")
	}
	if password.Verify("wrong horse", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	if _, err := password.HashWithCost("", password.MinCost); !errors.Is(err, password.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestHashRejectsOverlong(t *testing.T) {
	if _, err := password.HashWithCost(strings.Repeat("a", password.MaxLength), password.MinCost); err != nil {
		t.Errorf("expected %d bytes to be accepted, got %v", password.MaxLength, err)
	}
	if _, err := password.HashWithCost(strings.Repeat("a", password.MaxLength+1), password.MinCost); !errors.Is(err, password.ErrTooLong) {
		t.Errorf("expected ErrTooLong, got %v", err)
	}
}

func TestHashRejectsBadCost(t *testing.T) {
	if _, err := password.HashWithCost("secret", password.MinCost-1); !errors.Is(err, password.ErrCost) {
		t.Error("expected error for cost below minimum")
	}
	if _, err := password.HashWithCost("secret", password.MaxCost+1); err == nil {
		t.Error("expected error for cost above maximum")
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := password.HashWithCost("secret", password.MinCost)
	if err != nil {
		t.Fatalf("HashWithCost failed: %v", err)
	}

	needs, err := password.NeedsRehash(hash, password.MinCost+1)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if !needs {
		t.Error("expected low-cost hash to need rehash")
	}

	needs, err = password.NeedsRehash(hash, password.MinCost)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if needs {
		t.Error("expected hash at target cost to be current")
	}

	if _, err := password.NeedsRehash("not-a-hash", password.MinCost); err == nil {
		t.Error("expected error for malformed hash")
	}
}
