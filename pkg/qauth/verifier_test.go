package qauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quatton/jobsched/pkg/kv"
	"golang.org/x/crypto/bcrypt"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return string(h)
}

// countingStore counts lookups to observe the cache.
type countingStore struct {
	Store
	lookups int
}

func (c *countingStore) Lookup(ctx context.Context, username string) (*Account, error) {
	c.lookups++
	return c.Store.Lookup(ctx, username)
}

func TestParseStaticStore(t *testing.T) {
	s, err := ParseStaticStore("alice:" + hash(t, "a") + ", bob:" + hash(t, "b") + ",")
	if err != nil {
		t.Fatalf("ParseStaticStore failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 accounts, got %d", s.Len())
	}
	if _, err := s.Lookup(context.Background(), "carol"); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("Expected ErrUnknownUser, got %v", err)
	}

	for _, bad := range []string{"alice", "alice:plain", ":$2a$xyz", "a:" + hash(t, "x") + ",a:" + hash(t, "y")} {
		if _, err := ParseStaticStore(bad); err == nil {
			t.Errorf("Expected an error for %q", bad)
		}
	}
}

func TestVerifier_Verify(t *testing.T) {
	store, err := ParseStaticStore("alice:" + hash(t, "secret"))
	if err != nil {
		t.Fatalf("ParseStaticStore failed: %v", err)
	}
	v := NewVerifier(store, nil, 0, nil)
	ctx := context.Background()

	if err := v.Verify(ctx, "alice", "secret"); err != nil {
		t.Errorf("Expected valid credentials, got %v", err)
	}
	for _, tc := range []struct{ user, pass string }{
		{"alice", "wrong"},
		{"bob", "secret"},
		{"", ""},
	} {
		if err := v.Verify(ctx, tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Verify(%q, %q): expected ErrInvalidCredentials, got %v", tc.user, tc.pass, err)
		}
	}
}

func TestVerifier_Cache(t *testing.T) {
	static, _ := ParseStaticStore("alice:" + hash(t, "secret"))
	store := &countingStore{Store: static}
	cache := kv.NewMemoryStore()
	v := NewVerifier(store, cache, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := v.Verify(ctx, "alice", "secret"); err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
	}
	if store.lookups != 1 {
		t.Errorf("Expected one store lookup, got %d", store.lookups)
	}

	if err := v.Verify(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected a wrong password to miss the cache, got %v", err)
	}
	if store.lookups != 2 {
		t.Errorf("Expected a second lookup for the wrong password, got %d", store.lookups)
	}
}

func TestVerifier_DisabledAccount(t *testing.T) {
	store := &fixedStore{acct: &Account{Username: "alice", PasswordHash: hash(t, "secret"), Disabled: true}}
	v := NewVerifier(store, nil, 0, nil)
	if err := v.Verify(context.Background(), "alice", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected disabled account to be rejected, got %v", err)
	}
}

type fixedStore struct {
	acct *Account
}

func (f *fixedStore) Lookup(context.Context, string) (*Account, error) {
	return f.acct, nil
}
