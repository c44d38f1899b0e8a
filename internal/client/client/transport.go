package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

const (
	authorizationHeader = "Authorization"
	requestIDHeader     = "X-Request-ID"
)

var errTokenRead = errors.New("read access token")

// authTransport stamps every outgoing request with a request id and, when
// the token source has one, the bearer token. The token is read per request
// so a login or logout takes effect on the next call.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip must not modify the caller's request.
	r := req.Clone(req.Context())

	if r.Header.Get(requestIDHeader) == "" {
		r.Header.Set(requestIDHeader, uuid.NewString())
	}

	if t.tokens != nil {
		token, err := t.tokens.AccessToken(r.Context())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errTokenRead, err)
		}
		if token != "" {
			r.Header.Set(authorizationHeader, "Bearer "+token)
		}
	}

	return t.base.RoundTrip(r)
}
