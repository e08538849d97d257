package handlers

import (
	"net/http"
)

// allowOrigin returns the value of the Access-Control-Allow-Origin header
func (h BaseHandler) allowOrigin() string {
	if h.Cfg == nil || len(h.Cfg.AllowedOrigin) == 0 {
		return "*"
	}

	return h.Cfg.AllowedOrigin
}

// CORSHandler enables cross origin resource sharing (CORS)
type CORSHandler struct {
	BaseHandler

	// Handler to enabled CORS for
	Handler http.Handler
}

// ServeHTTP runs CorsHandler.Handler with CORS enabled
func (h CORSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", h.allowOrigin())

	h.Handler.ServeHTTP(w, r)
}
