// Package etsy implements the marketplace API client. It speaks JSON over
// HTTPS to the Etsy v3 API, attaching the application API key and the
// stored bearer token to every request, and transparently performs exactly
// one refresh-and-retry cycle when the provider reports the expired-token
// error shape. Any other provider rejection surfaces as a typed
// ProviderError that callers must treat as non-retryable.
package etsy

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dkstudio/shopsync/internal/shopstore"
	"github.com/dkstudio/shopsync/pkg/errors"
)

// Provider is the credential-record key inside the token store.
const Provider = "etsy"

// Defaults for the live API endpoints.
const (
	DefaultBaseURL  = "https://openapi.etsy.com/v3"
	DefaultTokenURL = "https://api.etsy.com/v3/public/oauth/token"
)

// Client is the API client. All calls are synchronous; the refresh-and-retry
// cycle is an explicit two-phase call, never re-entrant.
type Client struct {
	rest     *resty.Client
	store    *shopstore.Store
	apiKey   string
	baseURL  string
	tokenURL string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the resource endpoint root. Used by tests to point
// the client at a local double.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(c *Client) { c.tokenURL = u }
}

// WithTimeout overrides the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.rest.SetTimeout(d) }
}

// New creates a client that reads credentials from store and signs requests
// with the given application API key.
func New(store *shopstore.Store, apiKey string, opts ...Option) *Client {
	c := &Client{
		rest:     resty.New().SetTimeout(30 * time.Second),
		store:    store,
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		tokenURL: DefaultTokenURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is a decoded JSON response body.
type Result = map[string]any

// Get performs a GET against a resource path.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (Result, error) {
	return c.call(ctx, "GET", path, query, nil, nil)
}

// Post performs a POST with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, query map[string]string, body any) (Result, error) {
	return c.call(ctx, "POST", path, query, body, nil)
}

// Put performs a PUT with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, query map[string]string, body any) (Result, error) {
	return c.call(ctx, "PUT", path, query, body, nil)
}

// Delete performs a DELETE against a resource path.
func (c *Client) Delete(ctx context.Context, path string, query map[string]string) (Result, error) {
	return c.call(ctx, "DELETE", path, query, nil, nil)
}

// multipart describes a file payload for an upload request.
type multipart struct {
	field       string
	filename    string
	contentType string
	data        []byte
	form        map[string]string
}

// call is the two-phase request cycle: attempt, classify the failure,
// refresh if and only if the provider reported the expired-token shape,
// then attempt exactly once more. The structure makes the single-retry
// guarantee obvious; there is no recursion.
func (c *Client) call(ctx context.Context, method, path string, query map[string]string, body any, mp *multipart) (Result, error) {
	result, err := c.attempt(ctx, method, path, query, body, mp)
	if err == nil {
		return result, nil
	}
	if !errors.IsTokenExpired(err) {
		return nil, err
	}

	if err := c.RefreshToken(ctx); err != nil {
		return nil, err
	}
	return c.attempt(ctx, method, path, query, body, mp)
}

// attempt issues the request once with the currently stored access token.
func (c *Client) attempt(ctx context.Context, method, path string, query map[string]string, body any, mp *multipart) (Result, error) {
	creds, ok, err := c.store.Credentials(Provider)
	if err != nil {
		return nil, err
	}
	if !ok || creds.AccessToken == "" {
		return nil, &errors.AuthenticationError{
			Provider: Provider,
			Message:  "no access token in store; run the auth flow first",
			Err:      errors.ErrNoCredentials,
		}
	}

	req := c.rest.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetAuthToken(creds.AccessToken)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if mp != nil {
		req.SetMultipartField(mp.field, mp.filename, mp.contentType, bytes.NewReader(mp.data))
		if len(mp.form) > 0 {
			req.SetFormData(mp.form)
		}
	}

	resp, err := req.Execute(method, c.baseURL+path)
	if err != nil {
		return nil, errors.WrapIO("request", method+" "+path, err)
	}

	return decodeResponse(resp, path)
}

// decodeResponse turns an HTTP response into a Result or a typed error.
// Provider rejections always carry the {error, error_description} shape.
func decodeResponse(resp *resty.Response, path string) (Result, error) {
	raw := resp.Body()

	if resp.IsError() {
		return nil, providerErrorFromBody(raw, path, resp.StatusCode())
	}

	if len(raw) == 0 {
		// 204 from deletes
		return Result{}, nil
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return result, nil
}

// providerErrorFromBody extracts the provider's error code and description.
// Bodies that don't parse still become provider errors so the status code
// is never lost.
func providerErrorFromBody(raw []byte, path string, status int) error {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return errors.NewProviderError("http_error", string(raw), path, status)
	}
	return errors.NewProviderError(body.Error, body.ErrorDescription, path, status)
}
