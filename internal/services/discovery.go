package services

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
)

type providerFinder interface {
	FindProvidersNear(ctx context.Context, categoryID primitive.ObjectID, lat, lng float64) ([]repository.ProviderHit, error)
}

type categoryByID interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
}

// Coordinates echoes the caller's location back in the response.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ProviderPage struct {
	Providers      []repository.ProviderHit `json:"providers"`
	CurrentPage    int                      `json:"currentPage"`
	TotalPages     int                      `json:"totalPages"`
	TotalProviders int                      `json:"totalProviders"`
	UserLocation   Coordinates              `json:"userLocation"`
}

// DiscoveryService ranks providers of a category around a client location.
type DiscoveryService struct {
	providers  providerFinder
	categories categoryByID
}

func NewDiscoveryService(providers providerFinder, categories categoryByID) *DiscoveryService {
	return &DiscoveryService{providers: providers, categories: categories}
}

// FindProviders orders the matched providers by rank descending then
// distance ascending, deduplicates by provider id keeping the first-seen
// row, and slices the requested page out of the deduplicated sequence.
// Deduplicating before slicing means a page is never short because of
// duplicates, and totalProviders reflects the deduplicated universe.
func (s *DiscoveryService) FindProviders(ctx context.Context, categoryID primitive.ObjectID, lat, lng float64, page, limit int) (*ProviderPage, error) {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}

	hits, err := s.providers.FindProvidersNear(ctx, categoryID, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("find providers: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Rank != hits[j].Rank {
			return hits[i].Rank > hits[j].Rank
		}
		return hits[i].Distance < hits[j].Distance
	})

	unique := dedupeProviders(hits)

	total := len(unique)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &ProviderPage{
		Providers:      unique[start:end],
		CurrentPage:    page,
		TotalPages:     totalPages,
		TotalProviders: total,
		UserLocation:   Coordinates{Latitude: lat, Longitude: lng},
	}, nil
}

// dedupeProviders drops repeated provider rows keeping first-seen order. The
// category join emits one row per matching path, so a multi-category
// provider can appear more than once.
func dedupeProviders(hits []repository.ProviderHit) []repository.ProviderHit {
	seen := make(map[primitive.ObjectID]struct{}, len(hits))
	unique := make([]repository.ProviderHit, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		unique = append(unique, h)
	}
	return unique
}
