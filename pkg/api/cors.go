package api

import (
	"net/http"
	"strings"
)

const (
	corsAllowedMethods = "GET, POST, OPTIONS"
	corsMaxAgeSeconds  = "600"
)

type corsHandler struct {
	base           http.Handler
	allowedOrigins map[string]struct{}
	allowAll       bool
}

// NewCORSHandler creates a decorator for http.Handler that permits
// browsers to make cross-origin requests from a fixed set of origins,
// such as the development server of a web UI. The origin "*" permits
// requests from any origin, albeit without credentials. Preflight
// requests are answered directly.
func NewCORSHandler(base http.Handler, allowedOrigins []string) http.Handler {
	h := &corsHandler{
		base:           base,
		allowedOrigins: make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			h.allowAll = true
			continue
		}
		h.allowedOrigins[strings.TrimSuffix(origin, "/")] = struct{}{}
	}
	return h
}

func (h *corsHandler) isAllowed(origin string) bool {
	if h.allowAll {
		return true
	}
	_, ok := h.allowedOrigins[origin]
	return ok
}

// setAllowOrigin grants access to an origin. Credentials are only
// permitted for origins that are listed explicitly.
func (h *corsHandler) setAllowOrigin(header http.Header, origin string) {
	if _, ok := h.allowedOrigins[origin]; ok {
		header.Set("Access-Control-Allow-Origin", origin)
		header.Set("Access-Control-Allow-Credentials", "true")
	} else {
		header.Set("Access-Control-Allow-Origin", "*")
	}
}

func (h *corsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		h.base.ServeHTTP(w, r)
		return
	}

	header := w.Header()
	header.Add("Vary", "Origin")
	allowed := h.isAllowed(origin)
	isPreflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
	if isPreflight {
		header.Add("Vary", "Access-Control-Request-Method")
		header.Add("Vary", "Access-Control-Request-Headers")
		if !allowed {
			http.Error(w, "Disallowed CORS origin", http.StatusForbidden)
			return
		}
		h.setAllowOrigin(header, origin)
		header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		if requestHeaders := r.Header.Get("Access-Control-Request-Headers"); requestHeaders != "" {
			header.Set("Access-Control-Allow-Headers", requestHeaders)
		}
		header.Set("Access-Control-Max-Age", corsMaxAgeSeconds)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if allowed {
		h.setAllowOrigin(header, origin)
		header.Set("Access-Control-Expose-Headers", requestIDHeader)
	}
	h.base.ServeHTTP(w, r)
}
