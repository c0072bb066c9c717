package linkedin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"postline/internal/domain"
)

const credentialsFile = "credentials.json"

// Credentials are the stored OAuth2 tokens for the publishing account.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	PersonURN   string    `json:"person_urn"`
}

// Expired reports whether the access token is past its expiry.
func (c Credentials) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func credentialsPath(workspace string) string {
	return filepath.Join(workspace, credentialsFile)
}

// LoadCredentials reads stored credentials from the workspace. A missing
// file means the user has not authenticated.
func LoadCredentials(workspace string) (Credentials, error) {
	data, err := os.ReadFile(credentialsPath(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, domain.Errorf(domain.KindNotAuthenticated, "not authenticated: run auth login first")
		}
		return Credentials{}, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, domain.WrapError(domain.KindStorageCorrupted, err, "credentials file is corrupted")
	}
	return creds, nil
}

// SaveCredentials writes credentials with owner-only permissions.
func SaveCredentials(workspace string, creds Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return err
	}
	return os.WriteFile(credentialsPath(workspace), data, 0o600)
}

// DeleteCredentials removes stored credentials if present.
func DeleteCredentials(workspace string) error {
	err := os.Remove(credentialsPath(workspace))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
