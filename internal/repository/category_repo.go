package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khidmah/backend/internal/models"
)

type CategoryRepository struct {
	coll   *mongo.Collection
	users  *mongo.Collection
	client *mongo.Client
}

func NewCategoryRepository(db *mongo.Database, client *mongo.Client) *CategoryRepository {
	coll := db.Collection("categories")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name.en", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	return &CategoryRepository{coll: coll, users: db.Collection("users"), client: client}
}

func (r *CategoryRepository) Insert(ctx context.Context, c *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var c models.Category
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByEitherName matches a category whose name collides in either locale.
// Inputs are expected to be normalized already.
func (r *CategoryRepository) FindByEitherName(ctx context.Context, en, ar string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	filter := bson.M{"$or": bson.A{bson.M{"name.en": en}, bson.M{"name.ar": ar}}}
	var c models.Category
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	fields["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Category
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &c, nil
}

// EnsureSentinel upserts the unassigned category keyed by its slug. The
// unique index on slug makes concurrent callers converge on one document.
func (r *CategoryRepository) EnsureSentinel(ctx context.Context) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	sentinel := models.SentinelCategory(time.Now().UTC())
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c models.Category
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"slug": models.SentinelCategorySlug},
		bson.M{"$setOnInsert": sentinel},
		opts,
	).Decode(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteWithReassign moves every reference to the deleted category onto the
// sentinel and removes the category, all inside one transaction. $addToSet
// runs before $pull so a user already carrying the sentinel does not end up
// with it twice.
func (r *CategoryRepository) DeleteWithReassign(ctx context.Context, id, sentinelID primitive.ObjectID) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.users.UpdateMany(sc,
			bson.M{"category": id},
			bson.M{"$addToSet": bson.M{"category": sentinelID}},
		); err != nil {
			return nil, err
		}
		if _, err := r.users.UpdateMany(sc,
			bson.M{"category": id},
			bson.M{"$pull": bson.M{"category": id}},
		); err != nil {
			return nil, err
		}
		res, err := r.coll.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, ErrNotFound
		}
		return nil, nil
	})
	return err
}

// ListPublic returns every non-default category sorted by English name.
func (r *CategoryRepository) ListPublic(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "name.en", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"is_default": bson.M{"$ne": true}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search does a case-insensitive substring match over both locales.
func (r *CategoryRepository) Search(ctx context.Context, query string) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	regex := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name.en": bson.M{"$regex": regex}},
		bson.M{"name.ar": bson.M{"$regex": regex}},
	}}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExistAll reports whether every given id references a category.
func (r *CategoryRepository) ExistAll(ctx context.Context, ids []primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return false, err
	}
	return n == int64(len(ids)), nil
}
