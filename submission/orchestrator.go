package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/kscout/paper-submission-api/lock"
	"github.com/kscout/paper-submission-api/metrics"
	"github.com/kscout/paper-submission-api/models"
	"github.com/kscout/paper-submission-api/render"
	"github.com/kscout/paper-submission-api/storage"
	"github.com/kscout/paper-submission-api/validation"

	"github.com/Noah-Huppert/golog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Outcome labels of the submission metrics
const (
	OutcomeSuccess       = "success"
	OutcomeInvalid       = "invalid"
	OutcomeUpstreamError = "upstream_error"
	OutcomeRenderError   = "render_error"
	OutcomeInternalError = "internal_error"
)

// Renderer writes a summary document to a local file. Render must only return
// once the file is completely written.
type Renderer interface {
	Render(ctx context.Context, summary render.Summary, path string) error
}

// Receipt is returned for a completed submission
type Receipt struct {
	// SubmissionID is a unique, time ordered, token for the submission
	SubmissionID string

	// Record describes what was stored
	Record models.SubmissionRecord
}

// Orchestrator accepts paper submissions. Each submission replaces the folder of
// its application in the store with a rendered summary document and the files
// the submitter sent.
type Orchestrator struct {
	// Logger
	Logger golog.Logger

	// Metrics
	Metrics metrics.Metrics

	// Store holds submission folders
	Store storage.Store

	// Renderer produces summary documents
	Renderer Renderer

	// Locker serializes submissions for the same application
	Locker lock.Locker

	// BasePath is the store path under which submission folders are created
	BasePath string

	// TmpDir holds summary documents while they are uploaded, the system
	// temporary directory if empty
	TmpDir string

	// RemoteTimeout bounds each call to the store, no deadline if zero
	RemoteTimeout time.Duration

	// WriteManifest enables writing a ManifestArtifact once all uploads succeed
	WriteManifest bool

	// Now returns the current time, time.Now if nil
	Now func() time.Time
}

// now returns the current time
func (o Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}

	return time.Now()
}

// remoteCtx derives the context used for one call to the store
func (o Orchestrator) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.RemoteTimeout > 0 {
		return context.WithTimeout(ctx, o.RemoteTimeout)
	}

	return context.WithCancel(ctx)
}

// Outcome returns the metrics label for the result of Submit
func Outcome(err error) string {
	var (
		validationErr ValidationError
		upstreamErr   UpstreamServiceError
		renderErr     RenderIOError
	)

	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &validationErr):
		return OutcomeInvalid
	case errors.As(err, &upstreamErr):
		return OutcomeUpstreamError
	case errors.As(err, &renderErr):
		return OutcomeRenderError
	}

	return OutcomeInternalError
}

// Submit validates req then stores it in the folder of its application, replacing
// any previous submission. Only a ValidationError is caused by the submitter, any
// other error is internal.
func (o Orchestrator) Submit(ctx context.Context, req models.SubmissionRequest) (*Receipt, error) {
	timer := o.Metrics.StartTimer()

	receipt, err := o.submit(ctx, req)

	outcome := Outcome(err)
	o.Metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeInvalid {
		timer.Finish(o.Metrics.SubmissionDurationsMilliseconds.WithLabelValues(outcome))
	}

	return receipt, err
}

func (o Orchestrator) submit(ctx context.Context, req models.SubmissionRequest) (*Receipt, error) {
	// {{{1 Validate
	if err := validation.ValidateSubmission(req); err != nil {
		return nil, ValidationError{Err: err}
	}

	logger := o.Logger.GetChild(req.ApplicationID)
	folder := Folder(o.BasePath, req.ApplicationID)

	// {{{1 Serialize submissions for the application
	release, err := o.Locker.Acquire(ctx, req.ApplicationID)
	if err != nil {
		return nil, UpstreamServiceError{
			Op:  "acquire submission lock",
			Err: err,
		}
	}
	defer release()

	// {{{1 Replace folder
	replaceCtx, cancel := o.remoteCtx(ctx)
	deleted, err := storage.Replace(replaceCtx, o.Store, folder)
	cancel()
	if err != nil {
		return nil, UpstreamServiceError{
			Op:  "replace submission folder",
			Err: err,
		}
	}

	if deleted {
		logger.Infof("deleted previous submission in %s", folder)
	}

	// {{{1 Render summary document
	summary, err := o.renderSummary(ctx, logger, req)
	if err != nil {
		return nil, err
	}

	// {{{1 Upload artifacts
	artifacts := BuildArtifacts(req, summary)
	names := make([]string, len(artifacts))

	var group errgroup.Group
	for i, artifact := range artifacts {
		names[i] = artifact.Name

		artifact := artifact
		group.Go(func() error {
			return o.upload(ctx, folder, artifact)
		})
	}

	if err := group.Wait(); err != nil {
		return nil, UpstreamServiceError{
			Op:  "upload artifacts",
			Err: err,
		}
	}

	// {{{1 Respond
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate submission ID: %s", err.Error())
	}

	if o.WriteManifest {
		if err := o.writeManifest(ctx, folder, Manifest{
			SubmissionID:  id.String(),
			ApplicationID: req.ApplicationID,
			Artifacts:     names,
		}); err != nil {
			return nil, err
		}
	}

	logger.Infof("stored submission %s in %s", id.String(), folder)

	return &Receipt{
		SubmissionID: id.String(),
		Record: models.SubmissionRecord{
			SubmissionID:  id.String(),
			ApplicationID: req.ApplicationID,
			Title:         req.Title,
			Format:        req.SubmissionFormat,
			Authors:       req.Authors,
			Folder:        folder,
			Artifacts:     names,
			SubmittedAt:   o.now().UTC(),
		},
	}, nil
}

// renderSummary renders the summary document of req into a transient file and
// reads it back. The file is always removed before returning.
func (o Orchestrator) renderSummary(ctx context.Context, logger golog.Logger,
	req models.SubmissionRequest) ([]byte, error) {

	f, err := os.CreateTemp(o.TmpDir, "summary-*.pdf")
	if err != nil {
		return nil, RenderIOError{Err: err}
	}
	path := f.Name()
	defer o.cleanup(logger, path)

	if err := f.Close(); err != nil {
		return nil, RenderIOError{Err: err}
	}

	if err := o.Renderer.Render(ctx, render.SummaryFromRequest(req), path); err != nil {
		return nil, RenderIOError{Err: err}
	}

	content, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, RenderIOError{Err: err}
	}

	return content, nil
}

// cleanup removes a transient file. Failures are logged, never returned.
func (o Orchestrator) cleanup(logger golog.Logger, path string) {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return
	}

	o.Metrics.CleanupFailuresTotal.Inc()
	logger.Error(CleanupError{
		Path: path,
		Err:  err,
	}.Error())
}

// upload puts one artifact into folder
func (o Orchestrator) upload(ctx context.Context, folder string, artifact models.Artifact) error {
	ctx, cancel := o.remoteCtx(ctx)
	defer cancel()

	timer := o.Metrics.StartTimer()
	err := o.Store.Put(ctx, storage.Join(folder, artifact.Name), artifact.Content)
	timer.Finish(o.Metrics.UploadDurationsMilliseconds.WithLabelValues(artifact.Name,
		metrics.SuccessLabel(err == nil)))

	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", artifact.Name, err)
	}

	return nil
}

// writeManifest puts the completion marker into folder
func (o Orchestrator) writeManifest(ctx context.Context, folder string, manifest Manifest) error {
	content, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %s", err.Error())
	}

	ctx, cancel := o.remoteCtx(ctx)
	defer cancel()

	if err := o.Store.Put(ctx, storage.Join(folder, ManifestArtifact), content); err != nil {
		return UpstreamServiceError{
			Op:  "write manifest",
			Err: err,
		}
	}

	return nil
}
