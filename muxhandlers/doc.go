// Package muxhandlers provides wrappers for the mux router.
//
// Every wrapper follows the same shape: a Config struct and a constructor
// returning a mux.WrapperFunc, plus an error when the configuration is
// invalid.
//
//	cors, err := muxhandlers.CORSWrapper(r, muxhandlers.CORSConfig{
//	    AllowedOrigins:   []string{"https://example.com"},
//	    AllowCredentials: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Wrap(muxhandlers.RequestIDWrapper(muxhandlers.RequestIDConfig{}), cors)
//
// Wrappers registered with Router.Wrap also run for requests that match no
// route, which lets CORS answer preflight requests and lets metrics and the
// access log see 404 and 405 responses. Header-setting wrappers attach
// their headers to errors with mux.WithErrorHeaders, so error responses
// carry them too.
//
// # Basic Auth
//
// BasicAuthWrapper implements HTTP Basic Authentication per RFC 7617.
// Credentials can be validated via a dynamic callback or a static map.
// Static credential comparison uses constant-time comparison to prevent
// timing attacks.
//
//	auth, err := muxhandlers.BasicAuthWrapper(muxhandlers.BasicAuthConfig{
//	    Realm: "My App",
//	    Credentials: map[string]string{
//	        "admin": "secret",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r.Group("/admin", registerAdmin, mux.WithWrappers(auth))
//
// # Metrics
//
// MetricsWrapper registers a request counter and a duration histogram on a
// prometheus.Registerer. Routes are labelled by pattern, not by path.
package muxhandlers
