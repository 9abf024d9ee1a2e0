package mux

import (
	"path"
	"strings"
)

// cleanPath returns the canonical path for p, eliminating . and .. elements
// per RFC 3986 Section 5.2.4 (remove dot segments).
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// joinPath joins a group prefix and a route pattern with exactly one slash
// between them.
func joinPath(prefix, pattern string) string {
	prefix = strings.Trim(prefix, "/")
	pattern = strings.Trim(pattern, "/")

	switch {
	case prefix == "":
		return "/" + pattern
	case pattern == "":
		return "/" + prefix
	default:
		return "/" + prefix + "/" + pattern
	}
}

// hasBody reports whether requests with method carry a body the dispatcher
// decodes.
func hasBody(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	default:
		return false
	}
}
