package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kscout/paper-submission-api/metrics"
	"github.com/kscout/paper-submission-api/models"

	"github.com/Noah-Huppert/golog"
	"go.mongodb.org/mongo-driver/mongo"
)

// JobTypeT is used to specify what type of job to start
type JobTypeT string

// JobTypeRecordSubmission identifies a job of type RecordSubmission
var JobTypeRecordSubmission JobTypeT = "record_submission"

// JobTypeNotifySubmission identifies a job of type NotifySubmission
var JobTypeNotifySubmission JobTypeT = "notify_submission"

// queueSize is the number of jobs which can wait to be run
const queueSize = 64

// JobStartRequest provides informtion required to start a job
type JobStartRequest struct {
	// Type of job to start
	Type JobTypeT

	// Data required to start job
	Data []byte
}

// JobRunner manages starting jobs and shutting down gracefully
type JobRunner struct {
	// queue is a channel to which requests to start jobs are sent
	queue chan JobStartRequest

	// done is closed when Run returns
	done chan struct{}

	// jobInstances holds jobs which can be run
	jobInstances map[JobTypeT]Job

	// Ctx
	Ctx context.Context

	// Logger
	Logger golog.Logger

	// Metrics
	Metrics metrics.Metrics

	// MDbSubmissions is used to access the submissions collection. Submissions are
	// not recorded if nil.
	MDbSubmissions *mongo.Collection

	// NotifyURL receives submission notifications, none are sent if empty
	NotifyURL string

	// NotifySecret authorizes notification requests
	NotifySecret string

	// HTTPClient makes notification requests
	HTTPClient *http.Client
}

// Init initializes a JobRunner. The Submit() and Run() methods will not work properly
// unless this method is called.
func (r *JobRunner) Init() {
	r.queue = make(chan JobStartRequest, queueSize)
	r.done = make(chan struct{})

	r.jobInstances = map[JobTypeT]Job{}

	if r.MDbSubmissions != nil {
		r.jobInstances[JobTypeRecordSubmission] = RecordSubmissionJob{
			Ctx:            r.Ctx,
			MDbSubmissions: r.MDbSubmissions,
		}
	}

	if len(r.NotifyURL) > 0 {
		r.jobInstances[JobTypeNotifySubmission] = NotifySubmissionJob{
			Ctx:    r.Ctx,
			URL:    r.NotifyURL,
			Secret: r.NotifySecret,
			Client: r.HTTPClient,
		}
	}
}

// Enabled indicates if jobs of type t are run
func (r JobRunner) Enabled(t JobTypeT) bool {
	_, ok := r.jobInstances[t]
	return ok
}

// Submit new job. Jobs of a type which is not enabled are ignored. Never blocks,
// if the queue is full the job is dropped and an error is returned.
func (r JobRunner) Submit(req JobStartRequest) error {
	if !r.Enabled(req.Type) {
		return nil
	}

	select {
	case r.queue <- req:
		r.Metrics.JobsSubmittedTotal.WithLabelValues(string(req.Type)).Inc()
		return nil
	default:
		return fmt.Errorf("job queue is full, dropped %s job", req.Type)
	}
}

// SubmitSubmissionJobs submits every enabled job which follows a completed
// submission. A job which cannot be queued does not stop the others.
func (r JobRunner) SubmitSubmissionJobs(record models.SubmissionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode submission record: %s", err.Error())
	}

	var errs []error
	for _, t := range []JobTypeT{JobTypeRecordSubmission, JobTypeNotifySubmission} {
		if err := r.Submit(JobStartRequest{
			Type: t,
			Data: data,
		}); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Run reads requests off the Queue and runs jobs one at a time.
// If the JobRunner.Ctx is canceled JobRunner will stop accepting jobs and
// return when there are no more jobs running.
// Should be run in a goroutine b/c this method blocks to run jobs.
func (r JobRunner) Run() {
	defer close(r.done)

	for {
		select {
		case <-r.Ctx.Done():
			return

		case req := <-r.queue:
			job, ok := r.jobInstances[req.Type]
			if !ok {
				r.Logger.Errorf("cannot handle job type: %s", req.Type)
				continue
			}

			timer := r.Metrics.StartTimer()
			err := job.Do(req.Data)
			timer.Finish(r.Metrics.JobsRunDurationsMilliseconds.WithLabelValues(
				string(req.Type), metrics.SuccessLabel(err == nil)))

			if err != nil {
				r.Logger.Errorf("failed to run %s job: %s",
					req.Type, err.Error())
			}
		}
	}
}

// Done is closed once Run has returned
func (r JobRunner) Done() <-chan struct{} {
	return r.done
}
