package muxhandlers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/vitalvas/kestrel/mux"
)

// ErrNoAllowedTypes is returned when ContentTypeCheckConfig.AllowedTypes is
// empty.
var ErrNoAllowedTypes = errors.New("content type check: at least one allowed content type is required")

// ContentTypeCheckConfig configures the Content-Type Check wrapper behaviour.
type ContentTypeCheckConfig struct {
	// AllowedTypes is the set of acceptable Content-Type values.
	// Matching is case-insensitive and ignores parameters
	// (e.g. "application/json" matches "application/json; charset=utf-8").
	AllowedTypes []string

	// Methods is the set of HTTP methods that require Content-Type
	// validation. When nil, defaults to POST, PUT, PATCH.
	Methods []string
}

var defaultCheckedMethods = []string{
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
}

// ContentTypeCheckWrapper returns a wrapper answering 415 Unsupported Media
// Type when a request with a checked method has a missing or disallowed
// Content-Type.
//
// Wrappers run after the body has been decoded, so a media type the decoder
// does not understand has already failed with 400 by then.
//
// It returns ErrNoAllowedTypes if AllowedTypes is empty.
func ContentTypeCheckWrapper(cfg ContentTypeCheckConfig) (mux.WrapperFunc, error) {
	if len(cfg.AllowedTypes) == 0 {
		return nil, ErrNoAllowedTypes
	}

	methods := cfg.Methods
	if methods == nil {
		methods = defaultCheckedMethods
	}

	methodSet := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		methodSet[m] = struct{}{}
	}

	allowedSet := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowedSet[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	unsupported := mux.Fail(http.StatusUnsupportedMediaType, http.StatusText(http.StatusUnsupportedMediaType))

	return func(req *mux.Request, next mux.NextFunc) (mux.Response, error) {
		if _, check := methodSet[req.Method]; !check {
			return next()
		}

		mediaType, _, err := mime.ParseMediaType(req.Header("Content-Type"))
		if err != nil {
			return unsupported, nil
		}

		if _, ok := allowedSet[strings.ToLower(mediaType)]; !ok {
			return unsupported, nil
		}

		return next()
	}, nil
}
