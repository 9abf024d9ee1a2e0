package muxhandlers

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/vitalvas/kestrel/mux"
)

// ErrWildcardCredentials is returned when AllowedOrigins contains "*" and
// AllowCredentials is true. Use AllowOriginFunc for dynamic origin checks
// with credentials.
var ErrWildcardCredentials = errors.New("wildcard origin \"*\" cannot be used with AllowCredentials; use AllowOriginFunc instead")

// ErrInvalidOriginPattern is returned when an AllowedOrigins entry has more
// than one wildcard.
var ErrInvalidOriginPattern = errors.New("cors: origin pattern contains multiple wildcards")

// CORSConfig configures the CORS wrapper behaviour.
//
// References:
//   - CORS protocol: https://fetch.spec.whatwg.org/#http-cors-protocol
//   - Web Origin:    https://www.rfc-editor.org/rfc/rfc6454
//   - HTTP Vary:     https://www.rfc-editor.org/rfc/rfc9110#field.vary
type CORSConfig struct {
	// AllowedOrigins is a list of exact origin strings, "*" for wildcard,
	// or subdomain wildcard patterns like "https://*.example.com".
	AllowedOrigins []string

	// AllowOriginFunc is an optional dynamic callback invoked when the
	// origin does not match any entry in AllowedOrigins. Return true to allow.
	AllowOriginFunc func(origin string) bool

	// AllowedMethods overrides the set of methods advertised in preflight
	// and actual responses. When empty the wrapper discovers the methods
	// registered on the router for the request path.
	AllowedMethods []string

	// AllowedHeaders lists the headers the client may send in the actual
	// request. When empty the wrapper reflects the
	// Access-Control-Request-Headers value. Use "*" to reflect all requested
	// headers.
	AllowedHeaders []string

	// ExposeHeaders lists the headers the browser may expose to client code.
	ExposeHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials: true.
	AllowCredentials bool

	// MaxAge is the duration in seconds a preflight result may be cached.
	// Positive values are sent as-is, negative values emit "0", zero omits
	// the header.
	MaxAge int

	// OptionsStatusCode overrides the status of preflight responses.
	// Defaults to 204 No Content.
	OptionsStatusCode int
}

// wildcardPattern represents a subdomain wildcard pattern split at the "*".
type wildcardPattern struct {
	prefix string
	suffix string
}

func (c *CORSConfig) hasWildcardOrigin() bool {
	return slices.Contains(c.AllowedOrigins, "*")
}

// parseOrigins normalizes AllowedOrigins to lowercase and splits them into
// exact matches and wildcard patterns.
func parseOrigins(origins []string) ([]string, []wildcardPattern, error) {
	var exact []string
	var patterns []wildcardPattern

	for _, o := range origins {
		if o == "*" {
			exact = append(exact, o)
			continue
		}

		lower := strings.ToLower(o)

		prefix, suffix, found := strings.Cut(lower, "*")
		if !found {
			exact = append(exact, lower)
			continue
		}
		if strings.Contains(suffix, "*") {
			return nil, nil, errors.Join(ErrInvalidOriginPattern, errors.New(o))
		}

		patterns = append(patterns, wildcardPattern{prefix: prefix, suffix: suffix})
	}

	return exact, patterns, nil
}

// matchOrigin reports whether originLower matches any exact origin or
// wildcard pattern.
func matchOrigin(originLower string, exactOrigins []string, patterns []wildcardPattern) bool {
	for _, o := range exactOrigins {
		if o == "*" || o == originLower {
			return true
		}
	}

	for _, wp := range patterns {
		if len(originLower) >= len(wp.prefix)+len(wp.suffix) &&
			strings.HasPrefix(originLower, wp.prefix) &&
			strings.HasSuffix(originLower, wp.suffix) {
			return true
		}
	}

	return false
}

// CORSWrapper returns a wrapper that implements the CORS protocol per the
// Fetch Standard. Register it on the router with Wrap: global wrappers also
// run for unmatched requests, so preflight requests are answered even for
// paths without an OPTIONS route.
//
// It returns an error if the configuration is invalid (e.g. wildcard origin
// combined with AllowCredentials).
func CORSWrapper(r *mux.Router, cfg CORSConfig) (mux.WrapperFunc, error) {
	if cfg.hasWildcardOrigin() && cfg.AllowCredentials {
		return nil, ErrWildcardCredentials
	}

	exactOrigins, wildcardPatterns, err := parseOrigins(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	isAllowed := func(rawOrigin string) bool {
		if matchOrigin(strings.ToLower(rawOrigin), exactOrigins, wildcardPatterns) {
			return true
		}
		return cfg.AllowOriginFunc != nil && cfg.AllowOriginFunc(rawOrigin)
	}

	hasSpecificOrigins := !cfg.hasWildcardOrigin() &&
		(len(exactOrigins) > 0 || len(wildcardPatterns) > 0 || cfg.AllowOriginFunc != nil)

	headersWildcard := slices.Contains(cfg.AllowedHeaders, "*")

	preflightStatus := cfg.OptionsStatusCode
	if preflightStatus == 0 {
		preflightStatus = http.StatusNoContent
	}

	methodsFor := func(path string) []string {
		if len(cfg.AllowedMethods) > 0 {
			return cfg.AllowedMethods
		}
		return r.AllowedMethods(path)
	}

	return func(req *mux.Request, next mux.NextFunc) (mux.Response, error) {
		origin := req.Header("Origin")

		if origin == "" || !isAllowed(origin) {
			resp, err := next()
			if origin == "" && hasSpecificOrigins {
				vary := http.Header{"Vary": {"Origin"}}
				if err != nil {
					return resp, mux.WithErrorHeaders(err, vary)
				}
				resp = resp.WithHeaders(vary)
			}
			return resp, err
		}

		h := make(http.Header)
		if cfg.hasWildcardOrigin() && !cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if methods := methodsFor(req.Path); len(methods) > 0 {
			h.Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
		}

		if req.Method == http.MethodOptions && req.Header("Access-Control-Request-Method") != "" {
			requested := req.Header("Access-Control-Request-Headers")
			switch {
			case headersWildcard && requested != "":
				h.Set("Access-Control-Allow-Headers", requested)
			case !headersWildcard && len(cfg.AllowedHeaders) > 0:
				h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ","))
			case requested != "":
				h.Set("Access-Control-Allow-Headers", requested)
			}

			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			} else if cfg.MaxAge < 0 {
				h.Set("Access-Control-Max-Age", "0")
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")

			return mux.Response{StatusCode: preflightStatus}.WithHeaders(h), nil
		}

		if len(cfg.ExposeHeaders) > 0 {
			h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ","))
		}

		resp, err := next()
		if err != nil {
			return resp, mux.WithErrorHeaders(err, h)
		}
		return resp.WithHeaders(h), nil
	}, nil
}
