package services

import (
	"context"
	"testing"
	"time"
)

func TestTokenBlacklistRevokeIsIdempotent(t *testing.T) {
	blacklist := NewTokenBlacklist(newFakeCache(), time.Hour)

	revoked, err := blacklist.IsRevoked(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("fresh jti reported as revoked")
	}

	if err := blacklist.Revoke(context.Background(), "jti-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	// The second revoke hits the already-set key and must still succeed.
	if err := blacklist.Revoke(context.Background(), "jti-1"); err != nil {
		t.Fatalf("repeat Revoke: %v", err)
	}

	revoked, err = blacklist.IsRevoked(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Error("revoked jti not reported as revoked")
	}

	revoked, err = blacklist.IsRevoked(context.Background(), "jti-2")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Error("unrelated jti reported as revoked")
	}
}
