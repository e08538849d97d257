package jobs

// Job is a piece of logic run after a request completed
type Job interface {
	// Do job. Data argument holds arbitrary data. It is up to each job
	// to define what data it takes, submission jobs take a JSON encoded
	// models.SubmissionRecord.
	Do(data []byte) error
}
