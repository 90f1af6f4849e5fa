package deribit

import "context"

type authParams struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Scope        string `json:"scope"`
}

type authResult struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// Authenticate exchanges client credentials for an access token via
// public/auth and stores it for subsequent private calls. Without a token no
// private operation is possible, so callers treat a failure here as fatal.
func (c *Client) Authenticate(ctx context.Context, clientID, clientSecret string) (string, error) {
	params := authParams{
		GrantType:    "client_credentials",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        "trade:read_write",
	}

	var result authResult
	if err := c.call(ctx, "public/auth", params, &result); err != nil {
		return "", err
	}

	c.token.Store(&result.AccessToken)
	c.logger.Info("authenticated")
	return result.AccessToken, nil
}
