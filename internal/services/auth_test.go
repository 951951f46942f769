package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/khidmah/backend/internal/auth"
	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
	"github.com/khidmah/backend/internal/services"
)

type mockUserStore struct {
	insertFunc        func(ctx context.Context, u *models.User) error
	findFunc          func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	findByEmailFunc   func(ctx context.Context, email string) (*models.User, error)
	findByContactFunc func(ctx context.Context, email, phone string) (*models.User, error)
	findByGoogleFunc  func(ctx context.Context, googleID, email string) (*models.User, error)
	findWithCatsFunc  func(ctx context.Context, id primitive.ObjectID) (*repository.UserWithCategories, error)
	updateFunc        func(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
}

func (m *mockUserStore) Insert(ctx context.Context, u *models.User) error {
	if m.insertFunc == nil {
		u.ID = primitive.NewObjectID()
		return nil
	}
	return m.insertFunc(ctx, u)
}

func (m *mockUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.findFunc(ctx, id)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findByEmailFunc(ctx, email)
}

func (m *mockUserStore) FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error) {
	if m.findByContactFunc == nil {
		return nil, repository.ErrNotFound
	}
	return m.findByContactFunc(ctx, email, phone)
}

func (m *mockUserStore) FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.User, error) {
	return m.findByGoogleFunc(ctx, googleID, email)
}

func (m *mockUserStore) FindByIDWithCategories(ctx context.Context, id primitive.ObjectID) (*repository.UserWithCategories, error) {
	return m.findWithCatsFunc(ctx, id)
}

func (m *mockUserStore) UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	if m.updateFunc == nil {
		return &models.User{ID: id}, nil
	}
	return m.updateFunc(ctx, id, fields)
}

func newAuthService(users *mockUserStore, categories *mockCategoryChecker) *services.AuthService {
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	return services.NewAuthService(users, categories, jwt, nil, nil, bcrypt.MinCost, 3, time.Minute)
}

func TestAuth_SignupStartsRoleless(t *testing.T) {
	var inserted *models.User
	users := &mockUserStore{
		insertFunc: func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			inserted = u
			return nil
		},
	}
	svc := newAuthService(users, &mockCategoryChecker{})

	res, err := svc.Signup(context.Background(), services.SignupInput{
		FullName:    "Sara Ahmed",
		Email:       "  Sara@Example.COM ",
		PhoneNumber: "+966500000001",
		Password:    "s3cret!",
	})
	require.NoError(t, err)
	require.NotNil(t, inserted)

	assert.Equal(t, "sara@example.com", inserted.Email)
	assert.False(t, inserted.IsClient)
	assert.False(t, inserted.IsProvider)
	assert.Equal(t, models.RoleUnknown, inserted.Role())
	assert.Equal(t, models.StatusActive, inserted.AccountStatus)
	assert.NotEqual(t, "s3cret!", inserted.Password, "password must be hashed")
	assert.NotEmpty(t, res.Token)
}

func TestAuth_SignupDuplicateContact(t *testing.T) {
	users := &mockUserStore{
		findByContactFunc: func(_ context.Context, _, _ string) (*models.User, error) {
			return &models.User{}, nil
		},
	}
	svc := newAuthService(users, &mockCategoryChecker{})

	_, err := svc.Signup(context.Background(), services.SignupInput{
		FullName: "x", Email: "a@b.c", PhoneNumber: "1", Password: "secret1",
	})
	assert.ErrorIs(t, err, services.ErrUserExists)
}

func TestAuth_LoginOpaqueOnBadCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mockUserStore{
		findByEmailFunc: func(_ context.Context, email string) (*models.User, error) {
			if email == "known@example.com" {
				return &models.User{ID: primitive.NewObjectID(), Email: email, Password: string(hashed)}, nil
			}
			return nil, repository.ErrNotFound
		},
	}
	svc := newAuthService(users, &mockCategoryChecker{})

	_, badUser := svc.Login(context.Background(), "missing@example.com", "whatever")
	_, badPass := svc.Login(context.Background(), "known@example.com", "wrong-password")
	assert.ErrorIs(t, badUser, services.ErrInvalidCredentials)
	assert.ErrorIs(t, badPass, services.ErrInvalidCredentials)
	assert.Equal(t, badUser, badPass, "login failures are indistinguishable")

	res, err := svc.Login(context.Background(), "Known@Example.com", "right-password")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestAuth_CompleteProviderProfile(t *testing.T) {
	categoryID := primitive.NewObjectID()
	var fields bson.M
	users := &mockUserStore{
		updateFunc: func(_ context.Context, id primitive.ObjectID, f bson.M) (*models.User, error) {
			fields = f
			return &models.User{ID: id, IsProvider: true}, nil
		},
	}
	svc := newAuthService(users, &mockCategoryChecker{})

	loc := &models.Location{Coordinates: []float64{24.7, 46.6}, StreetAddress: "King Fahd Rd"}
	u, err := svc.CompleteProviderProfile(context.Background(), primitive.NewObjectID(), services.ProviderProfileInput{
		Category: []string{categoryID.Hex()},
		Location: loc,
	})
	require.NoError(t, err)
	assert.True(t, u.IsProvider)
	assert.Equal(t, true, fields["is_provider"])
	assert.Equal(t, models.DefaultProviderBio, fields["bio"])
	assert.Equal(t, "Point", loc.Type)
}

func TestAuth_CompleteProviderProfileValidation(t *testing.T) {
	checker := &mockCategoryChecker{
		existFunc: func(_ context.Context, _ []primitive.ObjectID) (bool, error) { return false, nil },
	}
	svc := newAuthService(&mockUserStore{}, checker)

	loc := &models.Location{Coordinates: []float64{1, 2}}

	_, err := svc.CompleteProviderProfile(context.Background(), primitive.NewObjectID(), services.ProviderProfileInput{
		Category: nil, Location: loc,
	})
	assert.ErrorIs(t, err, services.ErrCategoryRequired)

	_, err = svc.CompleteProviderProfile(context.Background(), primitive.NewObjectID(), services.ProviderProfileInput{
		Category: []string{primitive.NewObjectID().Hex()},
	})
	assert.ErrorIs(t, err, services.ErrLocationRequired)

	_, err = svc.CompleteProviderProfile(context.Background(), primitive.NewObjectID(), services.ProviderProfileInput{
		Category: []string{primitive.NewObjectID().Hex()}, Location: loc,
	})
	assert.ErrorIs(t, err, services.ErrUnknownCategory)
}

func TestAuth_CompleteClientProfile(t *testing.T) {
	var fields bson.M
	users := &mockUserStore{
		updateFunc: func(_ context.Context, id primitive.ObjectID, f bson.M) (*models.User, error) {
			fields = f
			return &models.User{ID: id, IsClient: true}, nil
		},
	}
	svc := newAuthService(users, &mockCategoryChecker{})

	_, err := svc.CompleteClientProfile(context.Background(), primitive.NewObjectID(), nil)
	assert.ErrorIs(t, err, services.ErrLocationRequired)

	u, err := svc.CompleteClientProfile(context.Background(), primitive.NewObjectID(), &models.Location{Coordinates: []float64{24.7, 46.6}})
	require.NoError(t, err)
	assert.True(t, u.IsClient)
	assert.Equal(t, true, fields["is_client"])
}

func TestAuth_SubmitVerification(t *testing.T) {
	var fields bson.M
	users := &mockUserStore{
		updateFunc: func(_ context.Context, _ primitive.ObjectID, f bson.M) (*models.User, error) {
			fields = f
			return &models.User{}, nil
		},
	}
	svc := newAuthService(users, &mockCategoryChecker{})

	err := svc.SubmitVerification(context.Background(), primitive.NewObjectID(), []string{"a.jpg", "b.jpg"})
	assert.ErrorIs(t, err, services.ErrNotEnoughImages)

	require.NoError(t, svc.SubmitVerification(context.Background(), primitive.NewObjectID(), []string{"a.jpg", "b.jpg", "c.jpg"}))
	assert.Equal(t, models.StatusPending, fields["account_status"])
}

func TestAuth_GoogleLoginLinksExistingAccount(t *testing.T) {
	existing := &models.User{ID: primitive.NewObjectID(), Email: "sara@example.com"}
	var linked bson.M
	users := &mockUserStore{
		findByGoogleFunc: func(_ context.Context, _, email string) (*models.User, error) {
			assert.Equal(t, "sara@example.com", email)
			return existing, nil
		},
		updateFunc: func(_ context.Context, _ primitive.ObjectID, f bson.M) (*models.User, error) {
			linked = f
			u := *existing
			u.GoogleID = f["google_id"].(string)
			return &u, nil
		},
	}
	svc := newAuthService(users, &mockCategoryChecker{})

	res, err := svc.GoogleLogin(context.Background(), "google-123", "Sara@Example.com", "Sara", "")
	require.NoError(t, err)
	assert.Equal(t, "google-123", linked["google_id"])
	assert.NotEmpty(t, res.Token)
}

func TestAuth_GoogleLoginProvisionsNewAccount(t *testing.T) {
	var inserted *models.User
	users := &mockUserStore{
		findByGoogleFunc: func(_ context.Context, _, _ string) (*models.User, error) {
			return nil, repository.ErrNotFound
		},
		insertFunc: func(_ context.Context, u *models.User) error {
			u.ID = primitive.NewObjectID()
			inserted = u
			return nil
		},
	}
	svc := newAuthService(users, &mockCategoryChecker{})

	res, err := svc.GoogleLogin(context.Background(), "google-456", "new@example.com", "New User", "")
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, "google-456", inserted.GoogleID)
	assert.Empty(t, inserted.Password, "google accounts carry no local password")
	assert.Equal(t, models.DefaultProfilePicURL, inserted.ProfilePicURL)
	assert.NotEmpty(t, res.Token)
}
