package muxhandlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vitalvas/kestrel/mux"
)

// ErrInvalidFrameOption is returned when SecurityHeadersConfig.FrameOption is
// not one of the valid values: "DENY", "SAMEORIGIN", or empty string.
var ErrInvalidFrameOption = errors.New("security headers: frame option must be DENY, SAMEORIGIN, or empty")

// SecurityHeadersConfig configures the Security Headers wrapper behaviour.
type SecurityHeadersConfig struct {
	// DisableContentTypeNosniff disables the X-Content-Type-Options: nosniff
	// header. The header is set by default (when false).
	DisableContentTypeNosniff bool

	// FrameOption sets the X-Frame-Options header value.
	// Valid values are "DENY", "SAMEORIGIN", or empty string to skip.
	// Defaults to "DENY".
	FrameOption string

	// ReferrerPolicy sets the Referrer-Policy header value.
	// Defaults to "strict-origin-when-cross-origin".
	ReferrerPolicy string

	// HSTSMaxAge sets the max-age directive for the Strict-Transport-Security
	// header in seconds. When zero, the header is not set.
	HSTSMaxAge int

	// HSTSIncludeSubDomains appends the includeSubDomains directive to the
	// Strict-Transport-Security header. Only effective when HSTSMaxAge > 0.
	HSTSIncludeSubDomains bool

	// HSTSPreload appends the preload directive to the
	// Strict-Transport-Security header. Only effective when HSTSMaxAge > 0.
	HSTSPreload bool

	// CrossOriginOpenerPolicy sets the Cross-Origin-Opener-Policy header.
	// When empty, the header is not set.
	CrossOriginOpenerPolicy string

	// ContentSecurityPolicy sets the Content-Security-Policy header.
	// When empty, the header is not set.
	ContentSecurityPolicy string

	// PermissionsPolicy sets the Permissions-Policy header.
	// When empty, the header is not set.
	PermissionsPolicy string
}

// SecurityHeadersWrapper returns a wrapper that adds common security
// headers to every response, including error responses produced by
// handlers with mux.Fail.
//
// It returns ErrInvalidFrameOption if FrameOption is set to a value other than
// "DENY", "SAMEORIGIN", or empty string.
func SecurityHeadersWrapper(cfg SecurityHeadersConfig) (mux.WrapperFunc, error) {
	if cfg.FrameOption != "" && cfg.FrameOption != "DENY" && cfg.FrameOption != "SAMEORIGIN" {
		return nil, ErrInvalidFrameOption
	}

	if cfg.FrameOption == "" {
		cfg.FrameOption = "DENY"
	}

	if cfg.ReferrerPolicy == "" {
		cfg.ReferrerPolicy = "strict-origin-when-cross-origin"
	}

	h := make(http.Header)

	if !cfg.DisableContentTypeNosniff {
		h.Set("X-Content-Type-Options", "nosniff")
	}

	h.Set("X-Frame-Options", cfg.FrameOption)
	h.Set("Referrer-Policy", cfg.ReferrerPolicy)

	if cfg.HSTSMaxAge > 0 {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		h.Set("Strict-Transport-Security", hsts)
	}

	if cfg.CrossOriginOpenerPolicy != "" {
		h.Set("Cross-Origin-Opener-Policy", cfg.CrossOriginOpenerPolicy)
	}

	if cfg.ContentSecurityPolicy != "" {
		h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
	}

	if cfg.PermissionsPolicy != "" {
		h.Set("Permissions-Policy", cfg.PermissionsPolicy)
	}

	return func(_ *mux.Request, next mux.NextFunc) (mux.Response, error) {
		resp, err := next()
		if err != nil {
			return resp, mux.WithErrorHeaders(err, h)
		}
		return resp.WithHeaders(h), nil
	}, nil
}
