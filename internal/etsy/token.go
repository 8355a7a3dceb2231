package etsy

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dkstudio/shopsync/internal/shopstore"
	"github.com/dkstudio/shopsync/pkg/errors"
)

// RefreshToken exchanges the stored refresh token for a fresh access/refresh
// pair at the provider's token endpoint and persists the new credential
// record before returning. The derived user id is the text before the
// access token's first dot; the provider embeds it there, so no separate
// identity call is needed.
func (c *Client) RefreshToken(ctx context.Context) error {
	creds, ok, err := c.store.Credentials(Provider)
	if err != nil {
		return err
	}
	if !ok || creds.RefreshToken == "" {
		return &errors.AuthenticationError{
			Provider: Provider,
			Message:  "no refresh token in store; run the auth flow first",
			Err:      errors.ErrNoCredentials,
		}
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"client_id":     c.apiKey,
			"refresh_token": creds.RefreshToken,
		}).
		Post(c.tokenURL)
	if err != nil {
		return errors.WrapIO("request", "POST "+c.tokenURL, err)
	}

	if resp.IsError() {
		return providerErrorFromBody(resp.Body(), "/public/oauth/token", resp.StatusCode())
	}

	var token struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return errors.WrapParse("json", "/public/oauth/token", err)
	}
	if token.AccessToken == "" {
		return &errors.AuthenticationError{
			Provider: Provider,
			Message:  "token endpoint returned no access token",
		}
	}

	return c.store.SetCredentials(Provider, shopstore.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		UserID:       UserIDFromToken(token.AccessToken),
	})
}

// UserIDFromToken derives the numeric user id from the access token's
// literal structure: everything before the first delimiter.
func UserIDFromToken(accessToken string) string {
	id, _, _ := strings.Cut(accessToken, ".")
	return id
}
