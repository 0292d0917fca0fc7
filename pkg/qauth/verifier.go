package qauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/quatton/jobsched/pkg/kv"
)

const cachePrefix = "auth:basic:"

// Verifier checks credentials against a Store. Successful checks are
// remembered in a kv.Store for the configured TTL so repeated requests skip
// the bcrypt comparison.
type Verifier struct {
	store  Store
	cache  kv.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewVerifier builds a Verifier. A nil cache or a zero TTL disables caching.
func NewVerifier(store Store, cache kv.Store, ttl time.Duration, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{store: store, cache: cache, ttl: ttl, logger: logger}
}

// Verify returns ErrInvalidCredentials unless password matches username's
// stored hash.
func (v *Verifier) Verify(ctx context.Context, username, password string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	key := cacheKey(username, password)
	if v.caching() {
		if _, err := v.cache.Get(ctx, key); err == nil {
			return nil
		} else if !errors.Is(err, kv.ErrNotFound) {
			v.logger.Warn("credential cache unavailable", "error", err)
		}
	}

	acct, err := v.store.Lookup(ctx, username)
	switch {
	case errors.Is(err, ErrUnknownUser):
		return ErrInvalidCredentials
	case err != nil:
		return err
	}
	if acct.Disabled || !checkPassword(acct.PasswordHash, password) {
		return ErrInvalidCredentials
	}

	if v.caching() {
		if err := v.cache.Set(ctx, key, []byte(username), v.ttl); err != nil {
			v.logger.Warn("failed to cache credential", "error", err)
		}
	}
	return nil
}

func (v *Verifier) caching() bool {
	return v.cache != nil && v.ttl > 0
}

// cacheKey never stores the password itself.
func cacheKey(username, password string) string {
	sum := sha256.Sum256([]byte(username + "\x00" + password))
	return cachePrefix + hex.EncodeToString(sum[:])
}
