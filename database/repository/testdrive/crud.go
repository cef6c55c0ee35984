package testdriveRepo

import (
	"context"
	"time"

	"sherpa/models"

	"github.com/google/uuid"
)

// Create inserts a new test-drive record and returns its ID.
func (r *mongoTestDriveRepo) Create(ctx context.Context, record models.TestDriveRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}
