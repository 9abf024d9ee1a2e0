package muxhandlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/vitalvas/kestrel/mux"
)

// ErrNoAuthSource is returned when BasicAuthConfig has neither ValidateFunc
// nor Credentials configured.
var ErrNoAuthSource = errors.New("basic auth: at least one of ValidateFunc or Credentials must be set")

// BasicAuthConfig configures the Basic Auth wrapper behaviour.
//
// Reference: https://www.rfc-editor.org/rfc/rfc7617
type BasicAuthConfig struct {
	// Realm is the authentication realm sent in the WWW-Authenticate header.
	// Defaults to "Restricted" when empty.
	Realm string

	// ValidateFunc is called to validate credentials dynamically.
	// Takes priority over Credentials when both are set.
	ValidateFunc func(username, password string) bool

	// Credentials is a static map of username -> password pairs, compared
	// in constant time.
	Credentials map[string]string
}

// BasicAuthWrapper returns a wrapper that implements HTTP Basic
// Authentication per RFC 7617. Requests without valid credentials are
// answered with 401 and never reach the inner chain. The authenticated user
// is stored in ContextData under "user".
//
// It returns ErrNoAuthSource if both ValidateFunc and Credentials are nil/empty.
func BasicAuthWrapper(cfg BasicAuthConfig) (mux.WrapperFunc, error) {
	if cfg.ValidateFunc == nil && len(cfg.Credentials) == 0 {
		return nil, ErrNoAuthSource
	}

	realm := cfg.Realm
	if realm == "" {
		realm = "Restricted"
	}

	wwwAuthenticate := fmt.Sprintf("Basic realm=%q", realm)

	validate := cfg.ValidateFunc
	credentials := cfg.Credentials

	unauthorized := mux.Fail(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized)).
		WithHeader("WWW-Authenticate", wwwAuthenticate)

	return func(req *mux.Request, next mux.NextFunc) (mux.Response, error) {
		username, password, ok := req.Raw().BasicAuth()
		if !ok {
			return unauthorized, nil
		}

		if validate != nil {
			if !validate(username, password) {
				return unauthorized, nil
			}
		} else {
			expectedPassword, exists := credentials[username]
			// Compare even for unknown users so timing does not reveal
			// which usernames exist.
			passwordMatch := constantTimeEqual(password, expectedPassword)
			if !exists || !passwordMatch {
				return unauthorized, nil
			}
		}

		req.Set("user", username)
		return next()
	}, nil
}

// constantTimeEqual compares two strings in constant time by first hashing
// them with SHA-256, which also hides their lengths.
func constantTimeEqual(a, b string) bool {
	aHash := sha256.Sum256([]byte(a))
	bHash := sha256.Sum256([]byte(b))

	return subtle.ConstantTimeCompare(aHash[:], bHash[:]) == 1
}
