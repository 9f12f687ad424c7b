package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"cern-sync/core/httpclient"
)

// tokenAudience is the API audience requested for AuthZ access tokens.
const tokenAudience = "authorization-service-api"

// AuthError reports a failure to obtain an access token. It is fatal to the
// sync run using the token-gated path.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to obtain authz token: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TokenProvider obtains bearer tokens from the Keycloak client-credentials
// endpoint. Tokens are not cached: callers fetch one per sync run.
type TokenProvider struct {
	cfg    Config
	client *httpclient.Client
}

// NewTokenProvider creates a token provider using the given retrying client.
func NewTokenProvider(cfg Config, client *httpclient.Client) *TokenProvider {
	return &TokenProvider{cfg: cfg, client: client}
}

// FetchToken performs the client-credentials POST and returns the access
// token. The request goes through the retry wrapper; once that budget is
// exhausted the failure surfaces as an *AuthError.
func (p *TokenProvider) FetchToken(ctx context.Context) (string, error) {
	tokenURL := p.cfg.KeycloakBaseURL + "/auth/realms/cern/api-access/token"
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"audience":      {tokenAudience},
	}

	data, err := p.client.PostForm(ctx, tokenURL, form, nil)
	if err != nil {
		return "", &AuthError{Err: err}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", &AuthError{Err: fmt.Errorf("invalid token response: %w", err)}
	}
	if payload.AccessToken == "" {
		return "", &AuthError{Err: fmt.Errorf("token response contains no access_token")}
	}
	return payload.AccessToken, nil
}
