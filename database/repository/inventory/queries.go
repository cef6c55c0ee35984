package inventoryRepo

import (
	"context"
	"fmt"

	"sherpa/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// priceBounds converts a price range predicate into a Mongo comparison doc.
func priceBounds(r models.PriceRange) bson.M {
	bounds := bson.M{}
	if r.Min > 0 {
		if r.Inclusive {
			bounds["$gte"] = r.Min
		} else {
			bounds["$gt"] = r.Min
		}
	}
	if r.Max > 0 {
		if r.Inclusive {
			bounds["$lte"] = r.Max
		} else {
			bounds["$lt"] = r.Max
		}
	}
	return bounds
}

// DistinctTypes returns the distinct vehicle types available within the price range.
func (r *mongoInventoryRepo) DistinctTypes(ctx context.Context, price models.PriceRange) ([]string, error) {
	filter := bson.M{"estimated_selling_price": priceBounds(price)}
	raw, err := r.coll.Distinct(ctx, "type", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch distinct types: %w", err)
	}
	return toStrings(raw), nil
}

// DistinctMakes returns the distinct makes within the price range for the given type.
func (r *mongoInventoryRepo) DistinctMakes(ctx context.Context, price models.PriceRange, carType string) ([]string, error) {
	filter := bson.M{
		"estimated_selling_price": priceBounds(price),
		"type":                    matchFold(carType),
	}
	raw, err := r.coll.Distinct(ctx, "make", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch distinct makes: %w", err)
	}
	return toStrings(raw), nil
}

// ListingsPage returns one page of listings ordered ascending by price.
func (r *mongoInventoryRepo) ListingsPage(ctx context.Context, price models.PriceRange, carType, make string, offset, limit int64) ([]models.CarListing, error) {
	filter := bson.M{
		"estimated_selling_price": priceBounds(price),
		"type":                    matchFold(carType),
		"make":                    matchFold(make),
	}
	opts := options.Find().
		SetSort(bson.D{
			{Key: "estimated_selling_price", Value: 1},
			{Key: "make", Value: 1},
			{Key: "model", Value: 1},
			{Key: "variant", Value: 1},
		}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings page: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.CarListing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

// matchFold builds a case-insensitive equality filter, mirroring the
// catalog contract's LOWER(x)=LOWER(y) comparison.
func matchFold(value string) bson.M {
	return bson.M{"$regex": "^" + escapeRegex(value) + "$", "$options": "i"}
}

func escapeRegex(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '*', '+', '?', '^', '$', '(', ')', '[', ']', '{', '}', '|', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func toStrings(raw []interface{}) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
