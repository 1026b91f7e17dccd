package core

import (
	"encoding/base64"
	"net/http"
)

// Authenticator sets the Authorization header of an outgoing request.
type Authenticator interface {
	setAuthHeader(headers http.Header)
	equal(other Authenticator) bool
}

// BasicAuthenticator sends pre-encoded basic credentials.
type BasicAuthenticator struct {
	Username    string
	Password    string
	encodedAuth string
}

func newBasicAuthenticator(auth *BasicAuth) *BasicAuthenticator {
	return &BasicAuthenticator{
		Username:    auth.Username,
		Password:    auth.Password,
		encodedAuth: base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password)),
	}
}

func (auth *BasicAuthenticator) setAuthHeader(headers http.Header) {
	headers.Set(HeaderAuthorization, AuthTypeBasic+" "+auth.encodedAuth)
}

func (auth *BasicAuthenticator) equal(other Authenticator) bool {
	otherAuth, ok := other.(*BasicAuthenticator)
	if !ok {
		return false
	}
	return auth.Username == otherAuth.Username && auth.Password == otherAuth.Password
}

// ApiTokenAuthenticator sends a static bearer token. It never overrides an
// Authorization header supplied through call or config headers.
type ApiTokenAuthenticator struct {
	Token string
}

func (auth *ApiTokenAuthenticator) setAuthHeader(headers http.Header) {
	if headers.Get(HeaderAuthorization) != "" {
		return
	}
	headers.Set(HeaderAuthorization, AuthTypeBearer+" "+auth.Token)
}

func (auth *ApiTokenAuthenticator) equal(other Authenticator) bool {
	otherAuth, ok := other.(*ApiTokenAuthenticator)
	return ok && auth.Token == otherAuth.Token
}

// clientAuthenticator is built once per client from its config.
// Priority: BasicAuth > ApiToken.
func clientAuthenticator(config *Config) Authenticator {
	switch {
	case config.Username != "" && config.Password != "":
		return newBasicAuthenticator(&BasicAuth{Username: config.Username, Password: config.Password})
	case config.ApiToken != "":
		return &ApiTokenAuthenticator{Token: config.ApiToken}
	}
	return nil
}

// authenticatorFor returns the authenticator for one call. Per-call
// credentials win over the client authenticator; the cached client
// authenticator is reused when the credentials match it.
func (c *Client) authenticatorFor(auth *BasicAuth) Authenticator {
	if auth == nil {
		return c.auth
	}
	candidate := newBasicAuthenticator(auth)
	if c.auth != nil && c.auth.equal(candidate) {
		return c.auth
	}
	return candidate
}
