package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/khidmah/backend/internal/models"
)

// GrowthUnit selects the $project operator bucketing registrations in time.
type GrowthUnit string

const (
	GrowthByDay   GrowthUnit = "$dayOfYear"
	GrowthByWeek  GrowthUnit = "$isoWeek"
	GrowthByMonth GrowthUnit = "$month"
)

// GrowthRow is one (time bucket, role) registration count.
type GrowthRow struct {
	Bucket int         `bson:"bucket"`
	Role   models.Role `bson:"role"`
	Count  int64       `bson:"count"`
}

// DistributionRow is one (isClient, isProvider) flag-pair count.
type DistributionRow struct {
	IsClient   bool  `bson:"is_client"`
	IsProvider bool  `bson:"is_provider"`
	Count      int64 `bson:"count"`
}

// StatusRow is one account-status count.
type StatusRow struct {
	Status string `bson:"status" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

// CategoryCountRow is one per-category provider count with display names
// joined in.
type CategoryCountRow struct {
	CategoryID   primitive.ObjectID   `bson:"category_id" json:"categoryId"`
	CategoryName models.LocalizedText `bson:"category_name" json:"categoryName"`
	Count        int64                `bson:"count" json:"count"`
}

// roleProjection derives the capability bucket from the onboarding flags.
// "both" is the first branch; the single-flag branches are only reached when
// exactly one flag is set.
func roleProjection() bson.M {
	return bson.M{
		"$switch": bson.M{
			"branches": bson.A{
				bson.M{
					"case": bson.M{"$and": bson.A{
						bson.M{"$eq": bson.A{"$is_provider", true}},
						bson.M{"$eq": bson.A{"$is_client", true}},
					}},
					"then": models.RoleBoth,
				},
				bson.M{
					"case": bson.M{"$eq": bson.A{"$is_provider", true}},
					"then": models.RoleProvider,
				},
				bson.M{
					"case": bson.M{"$eq": bson.A{"$is_client", true}},
					"then": models.RoleClient,
				},
			},
			"default": models.RoleUnknown,
		},
	}
}

// GrowthBuckets groups non-admin registrations by (time bucket, role).
func (r *UserRepository) GrowthBuckets(ctx context.Context, unit GrowthUnit) ([]GrowthRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_admin": false}}},
		{{Key: "$project", Value: bson.M{
			"bucket": bson.M{string(unit): "$created_at"},
			"role":   roleProjection(),
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"bucket": "$bucket", "role": "$role"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"bucket": "$_id.bucket",
			"role":   "$_id.role",
			"count":  1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "bucket", Value: 1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	rows := []GrowthRow{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DistributionCounts groups non-admin users by their exact flag pair. The
// optional universe filter restricts to the client or provider population.
func (r *UserRepository) DistributionCounts(ctx context.Context, universe models.Role) ([]DistributionRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	match := bson.M{"is_admin": false}
	switch universe {
	case models.RoleClient:
		match["is_client"] = true
	case models.RoleProvider:
		match["is_provider"] = true
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"is_client":   "$is_client",
				"is_provider": "$is_provider",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":         0,
			"is_client":   "$_id.is_client",
			"is_provider": "$_id.is_provider",
			"count":       1,
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	rows := []DistributionRow{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// StatusCounts groups non-admin users by account status.
func (r *UserRepository) StatusCounts(ctx context.Context) ([]StatusRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_admin": false}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$account_status",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"status": "$_id",
			"count":  1,
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	rows := []StatusRow{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CategoryCounts unwinds each provider's category list and counts providers
// per category with display names joined in. The $lookup/$unwind join can
// emit the same category more than once; callers merge duplicates.
func (r *UserRepository) CategoryCounts(ctx context.Context) ([]CategoryCountRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_provider": true}}},
		{{Key: "$unwind", Value: "$category"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "categories",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "category_details",
		}}},
		{{Key: "$unwind", Value: "$category_details"}},
		{{Key: "$project", Value: bson.M{
			"_id":           0,
			"category_id":   "$_id",
			"category_name": "$category_details.name",
			"count":         1,
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	rows := []CategoryCountRow{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
