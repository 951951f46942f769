package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
	"github.com/khidmah/backend/internal/services"
)

type mockAdminUserStore struct {
	listFunc   func(ctx context.Context, f repository.ListFilter, skip, limit int64) ([]repository.UserWithCategories, error)
	countFunc  func(ctx context.Context, f repository.ListFilter) (int64, error)
	findFunc   func(ctx context.Context, id primitive.ObjectID) (*repository.UserWithCategories, error)
	updateFunc func(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
}

func (m *mockAdminUserStore) List(ctx context.Context, f repository.ListFilter, skip, limit int64) ([]repository.UserWithCategories, error) {
	return m.listFunc(ctx, f, skip, limit)
}

func (m *mockAdminUserStore) Count(ctx context.Context, f repository.ListFilter) (int64, error) {
	return m.countFunc(ctx, f)
}

func (m *mockAdminUserStore) FindByIDWithCategories(ctx context.Context, id primitive.ObjectID) (*repository.UserWithCategories, error) {
	return m.findFunc(ctx, id)
}

func (m *mockAdminUserStore) UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	return m.updateFunc(ctx, id, fields)
}

type mockJobOfferCounter struct {
	countsFunc func(ctx context.Context, recipients []primitive.ObjectID) ([]repository.JobOfferCountRow, error)
}

func (m *mockJobOfferCounter) JobOfferCounts(ctx context.Context, recipients []primitive.ObjectID) ([]repository.JobOfferCountRow, error) {
	return m.countsFunc(ctx, recipients)
}

func userRow(id primitive.ObjectID) repository.UserWithCategories {
	return repository.UserWithCategories{User: models.User{ID: id, AccountStatus: models.StatusActive}}
}

func TestAdmin_ListUsersEnrichesJobOffers(t *testing.T) {
	busy := primitive.NewObjectID()
	idle := primitive.NewObjectID()

	users := &mockAdminUserStore{
		countFunc: func(_ context.Context, _ repository.ListFilter) (int64, error) { return 2, nil },
		listFunc: func(_ context.Context, _ repository.ListFilter, skip, limit int64) ([]repository.UserWithCategories, error) {
			assert.Equal(t, int64(0), skip)
			assert.Equal(t, int64(10), limit)
			return []repository.UserWithCategories{userRow(busy), userRow(idle)}, nil
		},
	}
	messages := &mockJobOfferCounter{
		countsFunc: func(_ context.Context, recipients []primitive.ObjectID) ([]repository.JobOfferCountRow, error) {
			require.Len(t, recipients, 2)
			return []repository.JobOfferCountRow{
				{Recipient: busy, Status: models.JobOfferPending, Count: 3},
				{Recipient: busy, Status: models.JobOfferCompleted, Count: 1},
			}, nil
		},
	}
	svc := services.NewAdminService(users, messages, nil)

	page, err := svc.ListUsers(context.Background(), repository.ListFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.Equal(t, int64(2), page.TotalUsers)
	assert.Equal(t, 1, page.TotalPages)

	assert.Equal(t, int64(3), page.Users[0].JobOffers.Pending)
	assert.Equal(t, int64(0), page.Users[0].JobOffers.Accepted)
	assert.Equal(t, int64(1), page.Users[0].JobOffers.Completed)

	// Users without offers get explicit zeros.
	assert.Equal(t, services.JobOfferCounts{}, page.Users[1].JobOffers)
}

func TestAdmin_ListUsersEnrichmentFailureFailsRequest(t *testing.T) {
	users := &mockAdminUserStore{
		countFunc: func(_ context.Context, _ repository.ListFilter) (int64, error) { return 1, nil },
		listFunc: func(_ context.Context, _ repository.ListFilter, _, _ int64) ([]repository.UserWithCategories, error) {
			return []repository.UserWithCategories{userRow(primitive.NewObjectID())}, nil
		},
	}
	messages := &mockJobOfferCounter{
		countsFunc: func(_ context.Context, _ []primitive.ObjectID) ([]repository.JobOfferCountRow, error) {
			return nil, errors.New("aggregation failed")
		},
	}
	svc := services.NewAdminService(users, messages, nil)

	_, err := svc.ListUsers(context.Background(), repository.ListFilter{}, 1, 10)
	require.Error(t, err)
}

func TestAdmin_ListUsersEmptyPageSkipsCounting(t *testing.T) {
	users := &mockAdminUserStore{
		countFunc: func(_ context.Context, _ repository.ListFilter) (int64, error) { return 0, nil },
		listFunc: func(_ context.Context, _ repository.ListFilter, _, _ int64) ([]repository.UserWithCategories, error) {
			return nil, nil
		},
	}
	messages := &mockJobOfferCounter{
		countsFunc: func(_ context.Context, _ []primitive.ObjectID) ([]repository.JobOfferCountRow, error) {
			t.Fatal("should not query job offers for an empty page")
			return nil, nil
		},
	}
	svc := services.NewAdminService(users, messages, nil)

	page, err := svc.ListUsers(context.Background(), repository.ListFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Users)
	assert.Equal(t, 0, page.TotalPages)
}

func TestAdmin_SuspendAndReactivate(t *testing.T) {
	id := primitive.NewObjectID()
	var lastFields bson.M
	users := &mockAdminUserStore{
		updateFunc: func(_ context.Context, gotID primitive.ObjectID, fields bson.M) (*models.User, error) {
			assert.Equal(t, id, gotID)
			lastFields = fields
			return &models.User{ID: gotID}, nil
		},
	}
	svc := services.NewAdminService(users, &mockJobOfferCounter{}, nil)

	require.NoError(t, svc.SuspendUser(context.Background(), id))
	assert.Equal(t, models.StatusSuspended, lastFields["account_status"])

	require.NoError(t, svc.ReactivateUser(context.Background(), id))
	assert.Equal(t, models.StatusActive, lastFields["account_status"])
}

func TestAdmin_SetRankBounds(t *testing.T) {
	var updated bool
	users := &mockAdminUserStore{
		updateFunc: func(_ context.Context, _ primitive.ObjectID, fields bson.M) (*models.User, error) {
			updated = true
			assert.Equal(t, 10, fields["rank"])
			return &models.User{}, nil
		},
	}
	svc := services.NewAdminService(users, &mockJobOfferCounter{}, nil)

	assert.ErrorIs(t, svc.SetRank(context.Background(), primitive.NewObjectID(), -1), services.ErrInvalidRank)
	assert.ErrorIs(t, svc.SetRank(context.Background(), primitive.NewObjectID(), 11), services.ErrInvalidRank)
	assert.False(t, updated)

	require.NoError(t, svc.SetRank(context.Background(), primitive.NewObjectID(), 10))
	assert.True(t, updated)
}
