package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kscout/paper-submission-api/config"
	"github.com/kscout/paper-submission-api/eligibility"
	"github.com/kscout/paper-submission-api/metrics"
	"github.com/kscout/paper-submission-api/models"
	"github.com/kscout/paper-submission-api/submission"

	"github.com/Noah-Huppert/golog"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockChecker is an EligibilityChecker
type mockChecker struct {
	mock.Mock
}

// Check implements EligibilityChecker
func (m *mockChecker) Check(ctx context.Context, applicationID string) (*models.EligibilityResult, error) {
	args := m.Called(applicationID)

	result, _ := args.Get(0).(*models.EligibilityResult)
	return result, args.Error(1)
}

// mockSubmitter is a Submitter
type mockSubmitter struct {
	mock.Mock
}

// Submit implements Submitter
func (m *mockSubmitter) Submit(ctx context.Context, req models.SubmissionRequest) (*submission.Receipt, error) {
	args := m.Called(req)

	receipt, _ := args.Get(0).(*submission.Receipt)
	return receipt, args.Error(1)
}

// mockJobs is a JobSubmitter
type mockJobs struct {
	mock.Mock
}

// SubmitSubmissionJobs implements JobSubmitter
func (m *mockJobs) SubmitSubmissionJobs(record models.SubmissionRecord) error {
	return m.Called(record).Error(0)
}

// testServer holds a router and the mocks behind it
type testServer struct {
	handler   http.Handler
	metrics   metrics.Metrics
	checker   *mockChecker
	submitter *mockSubmitter
	jobs      *mockJobs
}

// newTestServer builds a router with mocked dependencies
func newTestServer() testServer {
	reg := prometheus.NewRegistry()

	s := testServer{
		metrics:   metrics.NewMetrics(reg),
		checker:   &mockChecker{},
		submitter: &mockSubmitter{},
		jobs:      &mockJobs{},
	}

	s.handler = NewRouter(BaseHandler{
		Ctx:    context.Background(),
		Logger: golog.NewStdLogger("test"),
		Cfg: &config.Config{
			MaxUploadBytes: 1 << 20,
			AllowedOrigin:  "*",
		},
		Metrics: s.metrics,
	}, Routes{
		Checker:        s.checker,
		Submitter:      s.submitter,
		Jobs:           s.jobs,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	return s
}

// do sends a request to the server
func (s testServer) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

// decodeBody decodes a JSON response body
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// newCheckIdentityRequest builds a check identity request
func newCheckIdentityRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/check-identity", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// multipartRequest builds a submit request from fields and files
func multipartRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	for name, content := range files {
		fw, err := mw.CreateFormFile(name, name+".bin")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/submit", buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

// submitFields are the text fields of a valid submission
var submitFields = map[string]string{
	"applicationId":    "A1",
	"title":            "On Things",
	"authors":          `[{"name": "Ada Byron", "email": "ada@example.org"}]`,
	"keywords":         "engines, notes",
	"submissionFormat": "standard",
}

// submitFiles are the files of a valid submission
var submitFiles = map[string]string{
	"manuscript": "manuscript",
	"copyright":  "copyright",
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "alive", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	s := newTestServer()

	w := s.do(httptest.NewRequest(http.MethodOptions, "/submit", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCheckIdentityEligible(t *testing.T) {
	s := newTestServer()
	s.checker.On("Check", "A1").Return(&models.EligibilityResult{
		Eligible:      true,
		ApplicationID: "A1",
		Title:         "On Things",
	}, nil)

	w := s.do(newCheckIdentityRequest(`{"applicationId": "A1"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["eligible"])
	assert.Equal(t, "A1", body["applicationId"])
	assert.Equal(t, "On Things", body["title"])
	assert.Equal(t, float64(1), testutil.ToFloat64(
		s.metrics.EligibilityChecksTotal.WithLabelValues("eligible")))
}

func TestCheckIdentityBadRequest(t *testing.T) {
	s := newTestServer()

	for _, body := range []string{"not json", `{}`, `{"applicationId": "  "}`} {
		w := s.do(newCheckIdentityRequest(body))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	s.checker.AssertNotCalled(t, "Check", mock.Anything)
}

func TestCheckIdentityNotFound(t *testing.T) {
	s := newTestServer()
	s.checker.On("Check", "A9").Return(nil, eligibility.NotFoundError{ApplicationID: "A9"})

	w := s.do(newCheckIdentityRequest(`{"applicationId": "A9"}`))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application ID not found", decodeBody(t, w)["error"])
}

func TestCheckIdentityNotEligible(t *testing.T) {
	s := newTestServer()
	s.checker.On("Check", "A2").Return(nil, eligibility.NotEligibleError{
		ApplicationID: "A2",
		Decision:      "Rejected",
	})

	w := s.do(newCheckIdentityRequest(`{"applicationId": "A2"}`))

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["error"], "Rejected")
	assert.Equal(t, "Rejected", body["decision"])
}

func TestCheckIdentityRosterUnavailable(t *testing.T) {
	s := newTestServer()
	s.checker.On("Check", "A1").Return(nil, eligibility.RosterUnavailableError{
		Err: errors.New("worksheet \"Sheet1\" not found"),
	})

	w := s.do(newCheckIdentityRequest(`{"applicationId": "A1"}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, w.Body.String(), "Sheet1")
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.APIHandlerPanicsTotal.With(
		prometheus.Labels{"path": "/check-identity", "method": http.MethodPost})))
}

func TestSubmit(t *testing.T) {
	s := newTestServer()

	record := models.SubmissionRecord{
		SubmissionID:  "0190b6a4-0000-7000-8000-000000000000",
		ApplicationID: "A1",
	}
	s.submitter.On("Submit", mock.MatchedBy(func(req models.SubmissionRequest) bool {
		return req.ApplicationID == "A1" &&
			assert.ObjectsAreEqual([]string{"engines", "notes"}, req.Keywords) &&
			string(req.RequiredFiles[models.FileManuscript]) == "manuscript" &&
			req.OptionalFile == nil
	})).Return(&submission.Receipt{
		SubmissionID: record.SubmissionID,
		Record:       record,
	}, nil)
	s.jobs.On("SubmitSubmissionJobs", record).Return(nil)

	w := s.do(multipartRequest(t, submitFields, submitFiles))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, record.SubmissionID, decodeBody(t, w)["submissionId"])
	s.jobs.AssertExpectations(t)
}

func TestSubmitJobFailureStillSucceeds(t *testing.T) {
	s := newTestServer()
	s.submitter.On("Submit", mock.Anything).Return(&submission.Receipt{
		SubmissionID: "id",
	}, nil)
	s.jobs.On("SubmitSubmissionJobs", mock.Anything).Return(errors.New("job queue is full"))

	w := s.do(multipartRequest(t, submitFields, submitFiles))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitNotMultipart(t *testing.T) {
	s := newTestServer()

	r := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/json")
	w := s.do(r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.submitter.AssertNotCalled(t, "Submit", mock.Anything)
}

func TestSubmitBadAuthors(t *testing.T) {
	s := newTestServer()

	fields := map[string]string{}
	for k, v := range submitFields {
		fields[k] = v
	}
	fields["authors"] = "Ada Byron"

	w := s.do(multipartRequest(t, fields, submitFiles))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "authors")
	s.submitter.AssertNotCalled(t, "Submit", mock.Anything)
}

func TestSubmitValidationError(t *testing.T) {
	s := newTestServer()
	s.submitter.On("Submit", mock.Anything).Return(nil, submission.ValidationError{
		Err: errors.New("latexSource file is required for latex submissions"),
	})

	w := s.do(multipartRequest(t, submitFields, submitFiles))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "latexSource file is required for latex submissions",
		decodeBody(t, w)["error"])
	s.jobs.AssertNotCalled(t, "SubmitSubmissionJobs", mock.Anything)
}

func TestSubmitInternalError(t *testing.T) {
	s := newTestServer()
	s.submitter.On("Submit", mock.Anything).Return(nil, submission.UpstreamServiceError{
		Op:  "upload artifacts",
		Err: errors.New("access denied to bucket papers"),
	})

	w := s.do(multipartRequest(t, submitFields, submitFiles))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody(t, w)["error"])
	assert.NotContains(t, w.Body.String(), "papers")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()

	s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	w := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "paper_submission_api_api_response_durations_milliseconds")
	assert.Contains(t, w.Body.String(), `path="/health"`)
}

func TestMetricsUnmatchedRequest(t *testing.T) {
	s := newTestServer()

	w := s.do(httptest.NewRequest(http.MethodGet, "/papers/A1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `path="unmatched"`)
	assert.Contains(t, w.Body.String(), `status_code="404"`)
	assert.NotContains(t, w.Body.String(), `path="/papers/A1"`)
}

func TestPanicLabeledWithRouteTemplate(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Handle("/papers/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	h := PanicHandler{
		BaseHandler: BaseHandler{
			Ctx:     context.Background(),
			Logger:  golog.NewStdLogger("test"),
			Metrics: m,
		},
		Router:  router,
		Handler: router,
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/papers/A1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.APIHandlerPanicsTotal.With(
		prometheus.Labels{"path": "/papers/{id}", "method": http.MethodGet})))
	assert.Equal(t, 1, testutil.CollectAndCount(m.APIHandlerPanicsTotal))
}
