package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kscout/paper-submission-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifySubmissionJob(t *testing.T) {
	var (
		gotAuth string
		gotBody struct {
			Submission models.SubmissionRecord `json:"submission"`
		}
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	data, err := json.Marshal(models.SubmissionRecord{
		SubmissionID:  "id",
		ApplicationID: "A1",
		Title:         "On Things",
	})
	require.NoError(t, err)

	job := NotifySubmissionJob{
		Ctx:    context.Background(),
		URL:    srv.URL,
		Secret: "shh",
	}
	require.NoError(t, job.Do(data))

	assert.Equal(t, "shh", gotAuth)
	assert.Equal(t, "A1", gotBody.Submission.ApplicationID)
	assert.Equal(t, "On Things", gotBody.Submission.Title)
}

func TestNotifySubmissionJobRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad secret", http.StatusUnauthorized)
	}))
	defer srv.Close()

	job := NotifySubmissionJob{
		Ctx: context.Background(),
		URL: srv.URL,
	}

	err := job.Do([]byte(`{"submissionId": "id"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad secret")
}

func TestNotifySubmissionJobBadData(t *testing.T) {
	job := NotifySubmissionJob{
		Ctx: context.Background(),
		URL: "http://relay.local",
	}

	assert.Error(t, job.Do([]byte("not json")))
}
