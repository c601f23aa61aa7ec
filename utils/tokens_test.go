package utils

import (
	"testing"
	"time"
)

func TestNewTokenManager(t *testing.T) {
	if _, err := NewTokenManager(""); err == nil {
		t.Fatal("expected an error for an empty signing key")
	}
	if _, err := NewTokenManager("secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	manager, err := NewTokenManager("secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := manager.NewJWT("u1", time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	userID, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected user u1, got %q", userID)
	}
}

func TestParseRejects(t *testing.T) {
	manager, _ := NewTokenManager("secret")

	t.Run("wrong key", func(t *testing.T) {
		other, _ := NewTokenManager("different")
		token, err := other.NewJWT("u1", time.Minute)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		if _, err := manager.Parse(token); err == nil {
			t.Fatal("expected an error for a token signed with another key")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := manager.NewJWT("u1", -time.Minute)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		if _, err := manager.Parse(token); err == nil {
			t.Fatal("expected an error for an expired token")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := manager.Parse("not-a-token"); err == nil {
			t.Fatal("expected an error for a malformed token")
		}
	})
}
