package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
	"github.com/khidmah/backend/internal/services"
)

type mockCategoryStore struct {
	insertFunc         func(ctx context.Context, c *models.Category) error
	findFunc           func(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	findByNameFunc     func(ctx context.Context, en, ar string) (*models.Category, error)
	updateFunc         func(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Category, error)
	ensureSentinelFunc func(ctx context.Context) (*models.Category, error)
	deleteFunc         func(ctx context.Context, id, sentinelID primitive.ObjectID) error
	listFunc           func(ctx context.Context) ([]models.Category, error)
	searchFunc         func(ctx context.Context, query string) ([]models.Category, error)
}

func (m *mockCategoryStore) Insert(ctx context.Context, c *models.Category) error {
	if m.insertFunc == nil {
		return nil
	}
	return m.insertFunc(ctx, c)
}

func (m *mockCategoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return m.findFunc(ctx, id)
}

func (m *mockCategoryStore) FindByEitherName(ctx context.Context, en, ar string) (*models.Category, error) {
	if m.findByNameFunc == nil {
		return nil, repository.ErrNotFound
	}
	return m.findByNameFunc(ctx, en, ar)
}

func (m *mockCategoryStore) UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Category, error) {
	return m.updateFunc(ctx, id, fields)
}

func (m *mockCategoryStore) EnsureSentinel(ctx context.Context) (*models.Category, error) {
	return m.ensureSentinelFunc(ctx)
}

func (m *mockCategoryStore) DeleteWithReassign(ctx context.Context, id, sentinelID primitive.ObjectID) error {
	return m.deleteFunc(ctx, id, sentinelID)
}

func (m *mockCategoryStore) ListPublic(ctx context.Context) ([]models.Category, error) {
	return m.listFunc(ctx)
}

func (m *mockCategoryStore) Search(ctx context.Context, query string) ([]models.Category, error) {
	return m.searchFunc(ctx, query)
}

func TestCategory_CreateNormalizesNames(t *testing.T) {
	var inserted *models.Category
	store := &mockCategoryStore{
		findByNameFunc: func(_ context.Context, en, ar string) (*models.Category, error) {
			assert.Equal(t, "plumbing", en)
			assert.Equal(t, "سباكة", ar)
			return nil, repository.ErrNotFound
		},
		insertFunc: func(_ context.Context, c *models.Category) error {
			inserted = c
			return nil
		},
	}
	svc := services.NewCategoryService(store, nil)

	created, err := svc.Create(context.Background(), services.CategoryInput{
		Name:        models.LocalizedText{EN: "  Plumbing ", AR: "سباكة"},
		Description: models.LocalizedText{EN: "Pipes and fittings", AR: "أنابيب وتجهيزات"},
	})
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, "plumbing", created.Name.EN)
	assert.Equal(t, models.DefaultCategoryIcon, created.Icon)
	assert.False(t, created.IsDefault)
}

func TestCategory_CreateRejectsMissingLocale(t *testing.T) {
	svc := services.NewCategoryService(&mockCategoryStore{}, nil)

	_, err := svc.Create(context.Background(), services.CategoryInput{
		Name:        models.LocalizedText{EN: "plumbing"},
		Description: models.LocalizedText{EN: "Pipes", AR: "أنابيب"},
	})
	assert.ErrorIs(t, err, services.ErrMissingLocale)
}

func TestCategory_CreateRejectsCaseInsensitiveDuplicate(t *testing.T) {
	store := &mockCategoryStore{
		findByNameFunc: func(_ context.Context, en, _ string) (*models.Category, error) {
			// "Plumbing" normalizes to the existing "plumbing".
			assert.Equal(t, "plumbing", en)
			return &models.Category{Name: models.LocalizedText{EN: "plumbing"}}, nil
		},
		insertFunc: func(_ context.Context, _ *models.Category) error {
			t.Fatal("should not insert a duplicate")
			return nil
		},
	}
	svc := services.NewCategoryService(store, nil)

	_, err := svc.Create(context.Background(), services.CategoryInput{
		Name:        models.LocalizedText{EN: "Plumbing", AR: "سباكة"},
		Description: models.LocalizedText{EN: "Pipes", AR: "أنابيب"},
	})
	assert.ErrorIs(t, err, services.ErrDuplicateCategory)
}

func TestCategory_UpdateDefaultIsImmutable(t *testing.T) {
	id := primitive.NewObjectID()
	store := &mockCategoryStore{
		findFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Category, error) {
			return &models.Category{ID: id, IsDefault: true, Slug: models.SentinelCategorySlug}, nil
		},
	}
	svc := services.NewCategoryService(store, nil)

	_, err := svc.Update(context.Background(), id, services.CategoryInput{Icon: "x"})
	assert.ErrorIs(t, err, services.ErrDefaultCategory)
}

func TestCategory_UpdateSendsOnlyProvidedFields(t *testing.T) {
	id := primitive.NewObjectID()
	store := &mockCategoryStore{
		findFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Category, error) {
			return &models.Category{ID: id}, nil
		},
		updateFunc: func(_ context.Context, _ primitive.ObjectID, fields bson.M) (*models.Category, error) {
			assert.Equal(t, bson.M{"name.en": "cleaning"}, fields)
			return &models.Category{ID: id, Name: models.LocalizedText{EN: "cleaning"}}, nil
		},
	}
	svc := services.NewCategoryService(store, nil)

	updated, err := svc.Update(context.Background(), id, services.CategoryInput{
		Name: models.LocalizedText{EN: " Cleaning "},
	})
	require.NoError(t, err)
	assert.Equal(t, "cleaning", updated.Name.EN)
}

func TestCategory_DeleteReassignsToSentinel(t *testing.T) {
	id := primitive.NewObjectID()
	sentinelID := primitive.NewObjectID()

	var reassigned bool
	store := &mockCategoryStore{
		findFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Category, error) {
			return &models.Category{ID: id}, nil
		},
		ensureSentinelFunc: func(_ context.Context) (*models.Category, error) {
			return &models.Category{ID: sentinelID, IsDefault: true, Slug: models.SentinelCategorySlug}, nil
		},
		deleteFunc: func(_ context.Context, gotID, gotSentinel primitive.ObjectID) error {
			assert.Equal(t, id, gotID)
			assert.Equal(t, sentinelID, gotSentinel)
			reassigned = true
			return nil
		},
	}
	svc := services.NewCategoryService(store, nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.True(t, reassigned)
}

func TestCategory_DeleteSentinelRefused(t *testing.T) {
	id := primitive.NewObjectID()
	store := &mockCategoryStore{
		findFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Category, error) {
			return &models.Category{ID: id, IsDefault: true, Slug: models.SentinelCategorySlug}, nil
		},
		ensureSentinelFunc: func(_ context.Context) (*models.Category, error) {
			t.Fatal("should not reach sentinel creation")
			return nil, nil
		},
	}
	svc := services.NewCategoryService(store, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), services.ErrDefaultCategory)
}

func TestCategory_DeleteMissing(t *testing.T) {
	store := &mockCategoryStore{
		findFunc: func(_ context.Context, _ primitive.ObjectID) (*models.Category, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := services.NewCategoryService(store, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), primitive.NewObjectID()), repository.ErrNotFound)
}
