package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kscout/paper-submission-api/models"
	"github.com/kscout/paper-submission-api/parsing"
	"github.com/kscout/paper-submission-api/submission"
)

// Submitter stores submissions
type Submitter interface {
	Submit(ctx context.Context, req models.SubmissionRequest) (*submission.Receipt, error)
}

// JobSubmitter starts the jobs which follow a completed submission
type JobSubmitter interface {
	SubmitSubmissionJobs(record models.SubmissionRecord) error
}

// SubmitHandler accepts a paper submission as a multipart form
type SubmitHandler struct {
	BaseHandler

	// Submitter stores the submission
	Submitter Submitter

	// Jobs is sent the record of each completed submission
	Jobs JobSubmitter
}

// ServeHTTP implements http.Handler
func (h SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// {{{1 Parse form
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		h.RespondError(w, http.StatusBadRequest,
			fmt.Sprintf("request must be a multipart form: %s", err.Error()))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.Logger.Errorf("failed to remove multipart form files: %s", err.Error())
		}
	}()

	req, err := parsing.ParseSubmissionForm(r.MultipartForm)
	if err != nil {
		var parseErr parsing.ParseError
		if errors.As(err, &parseErr) && parseErr.InternalError == nil {
			h.RespondError(w, http.StatusBadRequest, parseErr.UserError())
			return
		}

		panic(fmt.Errorf("failed to parse submission form: %s", err.Error()))
	}

	// {{{1 Store
	receipt, err := h.Submitter.Submit(r.Context(), *req)
	if err != nil {
		var validationErr submission.ValidationError
		if errors.As(err, &validationErr) {
			h.RespondError(w, http.StatusBadRequest, validationErr.Error())
			return
		}

		panic(fmt.Errorf("failed to store submission for \"%s\": %s",
			req.ApplicationID, err.Error()))
	}

	// {{{1 Follow up jobs
	if err := h.Jobs.SubmitSubmissionJobs(receipt.Record); err != nil {
		h.Logger.Errorf("failed to start jobs for submission %s: %s",
			receipt.SubmissionID, err.Error())
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{
		"submissionId": receipt.SubmissionID,
	})
}
