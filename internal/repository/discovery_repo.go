package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/khidmah/backend/internal/models"
)

// ProviderHit is one provider row emitted by the $geoNear pipeline. Distance
// is in kilometers. Rank stays internal; it drives ordering but is not part
// of the API response.
type ProviderHit struct {
	models.User `bson:",inline"`
	Distance    float64           `bson:"distance" json:"distance"`
	Categories  []models.Category `bson:"categories" json:"categories,omitempty"`
}

// FindProvidersNear returns every provider in the category ordered by
// proximity to (lat, lng). The $lookup can legitimately emit the same
// provider more than once when category sets overlap; callers deduplicate.
func (r *UserRepository) FindProvidersNear(ctx context.Context, categoryID primitive.ObjectID, lat, lng float64) ([]ProviderHit, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lat, lng},
			},
			"distanceField":      "distance",
			"spherical":          true,
			"distanceMultiplier": 0.001, // meters to km
			"query": bson.M{
				"is_provider": true,
				"category":    bson.M{"$in": bson.A{categoryID}},
			},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "categories",
			"localField":   "category",
			"foreignField": "_id",
			"as":           "categories",
		}}},
		{{Key: "$project", Value: bson.M{"password": 0, "google_id": 0}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	hits := []ProviderHit{}
	if err := cur.All(ctx, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}
