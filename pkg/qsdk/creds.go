package qsdk

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const keyringService = "jobsched"

// ErrNoCredentials is returned when nothing is stored for a server.
var ErrNoCredentials = errors.New("no stored credentials")

// normalizeKey converts a baseURL into a stable key name for keyring storage
// so that https://example.com/ and https://example.com share an entry.
func normalizeKey(baseURL string) string {
	s := strings.TrimSpace(baseURL)
	s = strings.TrimRight(s, "/")
	s = strings.ToLower(s)
	return s
}

func credentialKey(baseURL, username string) string {
	return username + "@" + normalizeKey(baseURL)
}

// SavePassword stores the password for username at baseURL in the OS keyring.
func SavePassword(baseURL, username, password string) error {
	return keyring.Set(keyringService, credentialKey(baseURL, username), password)
}

// LoadPassword returns ErrNoCredentials when the keyring has no entry.
func LoadPassword(baseURL, username string) (string, error) {
	pw, err := keyring.Get(keyringService, credentialKey(baseURL, username))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoCredentials
	}
	return pw, err
}

// DeletePassword removes the entry. A missing entry is not an error.
func DeletePassword(baseURL, username string) error {
	err := keyring.Delete(keyringService, credentialKey(baseURL, username))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
