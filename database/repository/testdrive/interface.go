package testdriveRepo

import (
	"context"

	"sherpa/database"
	"sherpa/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// TestDriveRepository persists confirmed test-drive bookings.
// The contract is a single insert per completed funnel: no updates, no deletes.
type TestDriveRepository interface {
	Create(ctx context.Context, record models.TestDriveRecord) (string, error)
}

type mongoTestDriveRepo struct {
	coll *mongo.Collection
}

// NewMongoTestDriveRepo returns a new TestDriveRepository instance using MongoDB.
func NewMongoTestDriveRepo() TestDriveRepository {
	db := database.MongoClient.Database("sherpa")
	return &mongoTestDriveRepo{
		coll: db.Collection("test_drives"),
	}
}
