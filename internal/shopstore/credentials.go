package shopstore

import (
	"encoding/json"

	"github.com/dkstudio/shopsync/pkg/errors"
)

// Credentials is the live credential record for one provider. Exactly one
// record per provider exists at a time; a refresh overwrites it in place
// and no history is kept.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

// Credentials returns the stored credential record for a provider.
// The second result is false when no record exists.
func (s *Store) Credentials(provider string) (Credentials, bool, error) {
	v, ok, err := s.Get(provider)
	if err != nil || !ok {
		return Credentials{}, false, err
	}

	// The cache holds the decoded JSON document, so the record comes back
	// as a generic map. Round-trip through json to get the typed struct.
	raw, err := json.Marshal(v)
	if err != nil {
		return Credentials{}, false, errors.WrapParse("json", s.path, err)
	}
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, false, errors.WrapParse("json", s.path, err)
	}
	return creds, true, nil
}

// SetCredentials replaces the credential record for a provider in one
// durable write. Stored as a plain map so the document stays readable by
// other tooling.
func (s *Store) SetCredentials(provider string, creds Credentials) error {
	return s.Set(provider, map[string]any{
		"access_token":  creds.AccessToken,
		"refresh_token": creds.RefreshToken,
		"user_id":       creds.UserID,
	})
}
