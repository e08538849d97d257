package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kscout/paper-submission-api/eligibility"
	"github.com/kscout/paper-submission-api/models"
)

// EligibilityChecker decides if an application may submit
type EligibilityChecker interface {
	Check(ctx context.Context, applicationID string) (*models.EligibilityResult, error)
}

// CheckIdentityHandler tells a submitter if their application ID may be used to submit
type CheckIdentityHandler struct {
	BaseHandler

	// Checker looks application IDs up
	Checker EligibilityChecker
}

// checkIdentityRequest is the body of a check identity request
type checkIdentityRequest struct {
	// ApplicationID to check
	ApplicationID string `json:"applicationId"`
}

// ServeHTTP implements http.Handler
func (h CheckIdentityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body checkIdentityRequest
	if err := h.ParseJSON(r, &body); err != nil {
		h.RespondError(w, http.StatusBadRequest,
			"request body must be a JSON object with an applicationId field")
		return
	}

	if len(strings.TrimSpace(body.ApplicationID)) == 0 {
		h.RespondError(w, http.StatusBadRequest, "applicationId is required")
		return
	}

	result, err := h.Checker.Check(r.Context(), body.ApplicationID)

	var (
		notFound    eligibility.NotFoundError
		notEligible eligibility.NotEligibleError
	)

	switch {
	case err == nil:
		h.Metrics.EligibilityChecksTotal.WithLabelValues("eligible").Inc()
		h.RespondJSON(w, http.StatusOK, result)

	case errors.As(err, &notFound):
		h.Metrics.EligibilityChecksTotal.WithLabelValues("not_found").Inc()
		h.RespondError(w, http.StatusNotFound, "application ID not found")

	case errors.As(err, &notEligible):
		h.Metrics.EligibilityChecksTotal.WithLabelValues("not_eligible").Inc()
		h.RespondJSON(w, http.StatusForbidden, map[string]string{
			"error": fmt.Sprintf("your application is not eligible for submission, "+
				"current status: %s", notEligible.Decision),
			"decision": notEligible.Decision,
		})

	default:
		h.Metrics.EligibilityChecksTotal.WithLabelValues("error").Inc()
		panic(fmt.Errorf("failed to check eligibility of \"%s\": %s",
			body.ApplicationID, err.Error()))
	}
}
