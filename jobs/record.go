package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kscout/paper-submission-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordSubmissionJob saves the latest submission of an application in the
// submissions collection. The data field must be a JSON encoded
// models.SubmissionRecord.
type RecordSubmissionJob struct {
	// Ctx
	Ctx context.Context

	// MDbSubmissions is used to access the submissions collection
	MDbSubmissions *mongo.Collection
}

// Do implements Job
func (j RecordSubmissionJob) Do(data []byte) error {
	var record models.SubmissionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("failed to decode data field as SubmissionRecord JSON: %s",
			err.Error())
	}

	// Folders are replaced on every submission, so are records
	upsertTrue := true
	_, err := j.MDbSubmissions.UpdateOne(j.Ctx,
		bson.D{{Key: "application_id", Value: record.ApplicationID}},
		bson.D{{Key: "$set", Value: record}}, &options.UpdateOptions{
			Upsert: &upsertTrue,
		})
	if err != nil {
		return fmt.Errorf("failed to save submission %s of application %s in db: %s",
			record.SubmissionID, record.ApplicationID, err.Error())
	}

	return nil
}
