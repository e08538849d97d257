package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kscout/paper-submission-api/models"
	"github.com/kscout/paper-submission-api/req"
)

// NotifySubmissionJob tells an external service, like a mail relay, a submission
// completed. The data field must be a JSON encoded models.SubmissionRecord.
type NotifySubmissionJob struct {
	// Ctx
	Ctx context.Context

	// URL the notification is POSTed to
	URL string

	// Secret is sent in the Authorization header
	Secret string

	// Client makes the request, http.DefaultClient if nil
	Client *http.Client
}

// Do implements Job
func (j NotifySubmissionJob) Do(data []byte) error {
	var record models.SubmissionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("failed to decode data field as SubmissionRecord JSON: %s",
			err.Error())
	}

	// {{{1 Setup request
	r, err := req.NewJSONRequest(j.Ctx, http.MethodPost, j.URL, map[string]interface{}{
		"submission": record,
	})
	if err != nil {
		return fmt.Errorf("failed to create notification request: %s", err.Error())
	}

	if len(j.Secret) > 0 {
		r.Header.Set("Authorization", j.Secret)
	}

	// {{{1 Make request
	client := j.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(r)
	if err != nil {
		return fmt.Errorf("failed to make notification request: %s", err.Error())
	}
	defer resp.Body.Close()

	if err := req.CheckOK(resp); err != nil {
		return fmt.Errorf("notification for submission %s was not accepted: %s",
			record.SubmissionID, err.Error())
	}

	return nil
}
