// Package auth provides a high-level API for persisting and retrieving user credentials from the system keyring.
package auth

import (
	"github.com/zalando/go-keyring"
)

const (
	service = "reelnotes"
	user    = "service-token"
)

// SetToken persists the video-notes service API token to the system keyring.
func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

// GetToken retrieves the video-notes service API token from the system keyring.
func GetToken() (string, error) {
	return keyring.Get(service, user)
}

// DeleteToken removes the video-notes service API token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(service, user)
}
