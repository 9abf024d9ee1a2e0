package muxhandlers

import (
	"net/http"
	"os"

	"github.com/vitalvas/kestrel/mux"
)

// ServerConfig configures the Server wrapper behaviour.
type ServerConfig struct {
	// Hostname is the value written to the X-Server-Hostname response
	// header. Resolution order: Hostname field, then HostnameEnv
	// environment variable, then os.Hostname.
	Hostname string

	// HostnameEnv is a list of environment variable names checked in
	// order (e.g. ["POD_NAME", "HOSTNAME"]). The first non-empty
	// value is used.
	HostnameEnv []string
}

// ServerWrapper returns a wrapper that sets the X-Server-Hostname response
// header. The hostname is resolved once when the wrapper is created. It
// returns an error if the hostname cannot be determined.
func ServerWrapper(cfg ServerConfig) (mux.WrapperFunc, error) {
	hostname := cfg.Hostname

	if hostname == "" {
		for _, env := range cfg.HostnameEnv {
			if v, ok := os.LookupEnv(env); ok && v != "" {
				hostname = v
				break
			}
		}
	}

	if hostname == "" {
		h, err := os.Hostname()
		if err != nil {
			return nil, err
		}

		hostname = h
	}

	return func(_ *mux.Request, next mux.NextFunc) (mux.Response, error) {
		resp, err := next()
		if err != nil {
			return resp, mux.WithErrorHeaders(err, http.Header{"X-Server-Hostname": {hostname}})
		}
		return resp.WithHeader("X-Server-Hostname", hostname), nil
	}, nil
}
