package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// AcquireToken exchanges the client credential for an application-only
// bearer token. Any failure is an *AuthError; nothing is retried.
func (c *Client) AcquireToken(ctx context.Context) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("grant_type", c.grantType)
	form.Set("device_id", c.deviceID)

	req, err := c.newRequest(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: summarize(resp)}
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &AuthError{Message: "malformed token response", Err: err}
	}
	if body.AccessToken == "" {
		return nil, &AuthError{Message: "token response has no access_token"}
	}

	token := &oauth2.Token{
		AccessToken: body.AccessToken,
		TokenType:   body.TokenType,
	}
	if body.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	return token.WithExtra(map[string]any{"scope": body.Scope}), nil
}
