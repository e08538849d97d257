package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kscout/paper-submission-api/config"
	"github.com/kscout/paper-submission-api/metrics"

	"github.com/Noah-Huppert/golog"
)

// BaseHandler provides helper methods and commonly used variables for API endpoints to base
// their http.Handlers off
type BaseHandler struct {
	// Ctx is the application context
	Ctx context.Context

	// Logger logs information
	Logger golog.Logger

	// Cfg is the application configuration
	Cfg *config.Config

	// Metrics records API metrics
	Metrics metrics.Metrics
}

// GetChild makes a child instance of the base handler with a prefix
func (h BaseHandler) GetChild(prefix string) BaseHandler {
	h.Logger = h.Logger.GetChild(prefix)

	return h
}

// RespondJSON sends an object as a JSON encoded response
func (h BaseHandler) RespondJSON(w http.ResponseWriter, status int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if err := encoder.Encode(resp); err != nil {
		panic(fmt.Errorf("failed to encode response as JSON: %s", err.Error()))
	}
}

// RespondError sends a JSON error response. msg is shown to users.
func (h BaseHandler) RespondError(w http.ResponseWriter, status int, msg string) {
	h.RespondJSON(w, status, map[string]string{
		"error": msg,
	})
}

// ParseJSON parses a request body as JSON
func (h BaseHandler) ParseJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("failed to decode request body as JSON: %s", err.Error())
	}

	return nil
}
