package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/events"
	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
)

type categoryStore interface {
	Insert(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindByEitherName(ctx context.Context, en, ar string) (*models.Category, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Category, error)
	EnsureSentinel(ctx context.Context) (*models.Category, error)
	DeleteWithReassign(ctx context.Context, id, sentinelID primitive.ObjectID) error
	ListPublic(ctx context.Context) ([]models.Category, error)
	Search(ctx context.Context, query string) ([]models.Category, error)
}

// CategoryInput carries the bilingual create/update fields before
// normalization.
type CategoryInput struct {
	Name        models.LocalizedText `json:"name"`
	Description models.LocalizedText `json:"description"`
	Icon        string               `json:"icon"`
}

type CategoryService struct {
	categories categoryStore
	events     *events.Publisher
}

func NewCategoryService(categories categoryStore, publisher *events.Publisher) *CategoryService {
	return &CategoryService{categories: categories, events: publisher}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Create normalizes the bilingual fields and rejects a case-insensitive name
// collision in either locale.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if in.Name.EN == "" || in.Name.AR == "" || in.Description.EN == "" || in.Description.AR == "" {
		return nil, ErrMissingLocale
	}

	nameEN := normalizeName(in.Name.EN)
	nameAR := normalizeName(in.Name.AR)

	if _, err := s.categories.FindByEitherName(ctx, nameEN, nameAR); err == nil {
		return nil, ErrDuplicateCategory
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check duplicate category: %w", err)
	}

	now := time.Now().UTC()
	category := &models.Category{
		Name:        models.LocalizedText{EN: nameEN, AR: nameAR},
		Description: models.LocalizedText{EN: strings.TrimSpace(in.Description.EN), AR: strings.TrimSpace(in.Description.AR)},
		Icon:        in.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if category.Icon == "" {
		category.Icon = models.DefaultCategoryIcon
	}
	if err := s.categories.Insert(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

// Update applies a validated partial update; the sentinel default category
// is immutable.
func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, in CategoryInput) (*models.Category, error) {
	existing, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsDefault {
		return nil, ErrDefaultCategory
	}

	fields := bson.M{}
	if in.Name.EN != "" {
		fields["name.en"] = normalizeName(in.Name.EN)
	}
	if in.Name.AR != "" {
		fields["name.ar"] = normalizeName(in.Name.AR)
	}
	if in.Description.EN != "" {
		fields["description.en"] = strings.TrimSpace(in.Description.EN)
	}
	if in.Description.AR != "" {
		fields["description.ar"] = strings.TrimSpace(in.Description.AR)
	}
	if in.Icon != "" {
		fields["icon"] = in.Icon
	}

	updated, err := s.categories.UpdateByID(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	return updated, nil
}

// Delete reassigns every user referencing the category to the sentinel
// "unassigned" category and removes it, atomically. The sentinel itself is
// undeletable.
func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return ErrDefaultCategory
	}

	sentinel, err := s.categories.EnsureSentinel(ctx)
	if err != nil {
		return fmt.Errorf("ensure sentinel category: %w", err)
	}

	if err := s.categories.DeleteWithReassign(ctx, id, sentinel.ID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.events.Publish(ctx, events.CategoryDeleted, id.Hex(), map[string]interface{}{
		"categoryId": id.Hex(),
		"sentinelId": sentinel.ID.Hex(),
	})
	return nil
}

func (s *CategoryService) ListPublic(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListPublic(ctx)
}

func (s *CategoryService) Search(ctx context.Context, query string) ([]models.Category, error) {
	return s.categories.Search(ctx, query)
}
