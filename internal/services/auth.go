package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/khidmah/backend/internal/auth"
	"github.com/khidmah/backend/internal/events"
	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
)

type userStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)
	FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.User, error)
	FindByIDWithCategories(ctx context.Context, id primitive.ObjectID) (*repository.UserWithCategories, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
}

type categoryChecker interface {
	ExistAll(ctx context.Context, ids []primitive.ObjectID) (bool, error)
}

type SignupInput struct {
	FullName    string           `json:"fullName" validate:"required"`
	Email       string           `json:"email" validate:"required,email"`
	PhoneNumber string           `json:"phoneNumber" validate:"required"`
	Password    string           `json:"password" validate:"required,min=6"`
	Location    *models.Location `json:"location"`
}

type ProfileUpdateInput struct {
	FullName      string           `json:"fullName"`
	Bio           string           `json:"bio"`
	ProfilePicURL string           `json:"profilePicUrl"`
	HourlyRate    *float64         `json:"hourlyRate" validate:"omitempty,gte=0"`
	Location      *models.Location `json:"location"`
}

type ProviderProfileInput struct {
	Category   []string         `json:"category" validate:"required,min=1"`
	Location   *models.Location `json:"location" validate:"required"`
	Bio        string           `json:"bio"`
	HourlyRate float64          `json:"hourlyRate" validate:"gte=0"`
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService struct {
	users       userStore
	categories  categoryChecker
	jwt         *auth.JWTManager
	redis       *redis.Client
	events      *events.Publisher
	hashCost    int
	presenceTTL time.Duration
	minPics     int
}

func NewAuthService(users userStore, categories categoryChecker, jwt *auth.JWTManager, rdb *redis.Client, publisher *events.Publisher, hashCost, minPics int, presenceTTL time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		categories:  categories,
		jwt:         jwt,
		redis:       rdb,
		events:      publisher,
		hashCost:    hashCost,
		presenceTTL: presenceTTL,
		minPics:     minPics,
	}
}

// Signup registers a new account with both role flags unset; roles are
// granted later by the profile-completion endpoints.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.FindByEmailOrPhone(ctx, email, in.PhoneNumber); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		FullName:      strings.TrimSpace(in.FullName),
		Email:         email,
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		Password:      string(hashed),
		Location:      models.DefaultLocation(),
		AccountStatus: models.StatusActive,
		ProfilePicURL: models.DefaultProfilePicURL,
		LastActive:    now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Location != nil && len(in.Location.Coordinates) == 2 {
		user.Location = *in.Location
		user.Location.Type = "Point"
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	token, err := s.jwt.Generate(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.events.Publish(ctx, events.UserRegistered, user.ID.Hex(), map[string]interface{}{
		"userId": user.ID.Hex(),
		"email":  user.Email,
	})
	return &AuthResult{User: user, Token: token}, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, id primitive.ObjectID) (*repository.UserWithCategories, error) {
	return s.users.FindByIDWithCategories(ctx, id)
}

func (s *AuthService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileUpdateInput) (*models.User, error) {
	fields := bson.M{}
	if in.FullName != "" {
		fields["full_name"] = strings.TrimSpace(in.FullName)
	}
	if in.Bio != "" {
		fields["bio"] = strings.TrimSpace(in.Bio)
	}
	if in.ProfilePicURL != "" {
		fields["profile_pic_url"] = in.ProfilePicURL
	}
	if in.HourlyRate != nil {
		fields["hourly_rate"] = *in.HourlyRate
	}
	if in.Location != nil && len(in.Location.Coordinates) == 2 {
		in.Location.Type = "Point"
		fields["location"] = in.Location
	}
	return s.users.UpdateByID(ctx, id, fields)
}

// CompleteProviderProfile promotes the account to provider. All referenced
// categories must exist.
func (s *AuthService) CompleteProviderProfile(ctx context.Context, id primitive.ObjectID, in ProviderProfileInput) (*models.User, error) {
	if len(in.Category) == 0 {
		return nil, ErrCategoryRequired
	}
	if in.Location == nil || len(in.Location.Coordinates) != 2 {
		return nil, ErrLocationRequired
	}

	categoryIDs := make([]primitive.ObjectID, len(in.Category))
	for i, raw := range in.Category {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, ErrUnknownCategory
		}
		categoryIDs[i] = oid
	}
	ok, err := s.categories.ExistAll(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("check categories: %w", err)
	}
	if !ok {
		return nil, ErrUnknownCategory
	}

	in.Location.Type = "Point"
	fields := bson.M{
		"is_provider": true,
		"category":    categoryIDs,
		"location":    in.Location,
		"hourly_rate": in.HourlyRate,
	}
	if in.Bio != "" {
		fields["bio"] = strings.TrimSpace(in.Bio)
	} else {
		fields["bio"] = models.DefaultProviderBio
	}
	return s.users.UpdateByID(ctx, id, fields)
}

// CompleteClientProfile promotes the account to client.
func (s *AuthService) CompleteClientProfile(ctx context.Context, id primitive.ObjectID, location *models.Location) (*models.User, error) {
	if location == nil || len(location.Coordinates) != 2 {
		return nil, ErrLocationRequired
	}
	location.Type = "Point"
	return s.users.UpdateByID(ctx, id, bson.M{"is_client": true, "location": location})
}

// ToggleOnline flips the online flag and mirrors it as a redis presence key
// so other services can read it without touching the store.
func (s *AuthService) ToggleOnline(ctx context.Context, user *models.User) (bool, error) {
	next := !user.IsOnline
	if _, err := s.users.UpdateByID(ctx, user.ID, bson.M{"is_online": next, "last_active": time.Now().UTC()}); err != nil {
		return false, err
	}
	if s.redis != nil {
		key := "presence:" + user.ID.Hex()
		if next {
			if err := s.redis.Set(ctx, key, "1", s.presenceTTL).Err(); err != nil {
				return next, nil // presence is advisory, never fail the toggle
			}
		} else {
			_ = s.redis.Del(ctx, key).Err()
		}
	}
	return next, nil
}

// SubmitVerification stores the uploaded image URLs and moves the account to
// pending review.
func (s *AuthService) SubmitVerification(ctx context.Context, id primitive.ObjectID, images []string) error {
	if len(images) < s.minPics {
		return ErrNotEnoughImages
	}
	_, err := s.users.UpdateByID(ctx, id, bson.M{
		"images":         images,
		"account_status": models.StatusPending,
	})
	return err
}

func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.users.UpdateByID(ctx, user.ID, bson.M{"password": string(hashed)})
	return err
}

// GoogleLogin finds the account linked to the Google identity, linking or
// auto-provisioning by email when needed.
func (s *AuthService) GoogleLogin(ctx context.Context, googleID, email, name, picture string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByGoogleIDOrEmail(ctx, googleID, email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			if user, err = s.users.UpdateByID(ctx, user.ID, bson.M{"google_id": googleID}); err != nil {
				return nil, fmt.Errorf("link google id: %w", err)
			}
		}
	case errors.Is(err, repository.ErrNotFound):
		now := time.Now().UTC()
		user = &models.User{
			FullName:      name,
			Email:         email,
			GoogleID:      googleID,
			Location:      models.DefaultLocation(),
			AccountStatus: models.StatusActive,
			ProfilePicURL: picture,
			LastActive:    now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if user.ProfilePicURL == "" {
			user.ProfilePicURL = models.DefaultProfilePicURL
		}
		if err := s.users.Insert(ctx, user); err != nil {
			return nil, fmt.Errorf("provision google user: %w", err)
		}
		s.events.Publish(ctx, events.UserRegistered, user.ID.Hex(), map[string]interface{}{
			"userId": user.ID.Hex(),
			"email":  user.Email,
			"via":    "google",
		})
	default:
		return nil, fmt.Errorf("find google user: %w", err)
	}

	token, err := s.jwt.Generate(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
