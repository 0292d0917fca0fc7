package qauth

import (
	"context"
	"fmt"
	"strings"
)

// StaticStore holds accounts parsed from configuration.
type StaticStore struct {
	accounts map[string]Account
}

// ParseStaticStore reads "user:bcrypt-hash" entries separated by commas.
func ParseStaticStore(spec string) (*StaticStore, error) {
	s := &StaticStore{accounts: make(map[string]Account)}
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		user, hash, ok := strings.Cut(entry, ":")
		if !ok || user == "" || hash == "" {
			return nil, fmt.Errorf("invalid credential entry %q: want user:bcrypt-hash", entry)
		}
		if !strings.HasPrefix(hash, "$2") {
			return nil, fmt.Errorf("credential for %q is not a bcrypt hash", user)
		}
		if _, dup := s.accounts[user]; dup {
			return nil, fmt.Errorf("duplicate credential for %q", user)
		}
		s.accounts[user] = Account{Username: user, PasswordHash: hash}
	}
	return s, nil
}

func (s *StaticStore) Lookup(_ context.Context, username string) (*Account, error) {
	a, ok := s.accounts[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	return &a, nil
}

// Len returns the number of accounts.
func (s *StaticStore) Len() int {
	return len(s.accounts)
}
