package inventoryRepo

import (
	"context"

	"sherpa/database"
	"sherpa/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// InventoryRepository exposes read-only catalog lookups. Type and make
// filters are matched case-insensitively; listing pages are ordered
// ascending by price so pagination is deterministic for stable data.
type InventoryRepository interface {
	DistinctTypes(ctx context.Context, price models.PriceRange) ([]string, error)
	DistinctMakes(ctx context.Context, price models.PriceRange, carType string) ([]string, error)
	ListingsPage(ctx context.Context, price models.PriceRange, carType, make string, offset, limit int64) ([]models.CarListing, error)
}

type mongoInventoryRepo struct {
	coll *mongo.Collection
}

// NewMongoInventoryRepo returns a new InventoryRepository instance using MongoDB.
func NewMongoInventoryRepo() InventoryRepository {
	db := database.MongoClient.Database("sherpa")
	return &mongoInventoryRepo{
		coll: db.Collection("cars"),
	}
}
