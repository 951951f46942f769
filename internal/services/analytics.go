package services

import (
	"context"
	"fmt"

	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
)

type analyticsSource interface {
	GrowthBuckets(ctx context.Context, unit repository.GrowthUnit) ([]repository.GrowthRow, error)
	DistributionCounts(ctx context.Context, universe models.Role) ([]repository.DistributionRow, error)
	StatusCounts(ctx context.Context) ([]repository.StatusRow, error)
	CategoryCounts(ctx context.Context) ([]repository.CategoryCountRow, error)
}

// RoleCounts is one time bucket of the growth report, cross-tabulated by
// derived role.
type RoleCounts struct {
	Client   int64 `json:"client"`
	Provider int64 `json:"provider"`
	Both     int64 `json:"both"`
	Unknown  int64 `json:"unknown"`
}

type GrowthReport struct {
	UserGrowthByDay   map[int]RoleCounts `json:"userGrowthByDay"`
	UserGrowthByWeek  map[int]RoleCounts `json:"userGrowthByWeek"`
	UserGrowthByMonth map[int]RoleCounts `json:"userGrowthByMonth"`
}

type Distribution struct {
	ClientOnly   int64 `json:"clientOnly"`
	ProviderOnly int64 `json:"providerOnly"`
	Both         int64 `json:"both"`
}

// AnalyticsService computes the admin reports. All reports exclude admin
// accounts and are read-only.
type AnalyticsService struct {
	source analyticsSource
}

func NewAnalyticsService(source analyticsSource) *AnalyticsService {
	return &AnalyticsService{source: source}
}

func (s *AnalyticsService) UserGrowth(ctx context.Context) (*GrowthReport, error) {
	byDay, err := s.source.GrowthBuckets(ctx, repository.GrowthByDay)
	if err != nil {
		return nil, fmt.Errorf("growth by day: %w", err)
	}
	byWeek, err := s.source.GrowthBuckets(ctx, repository.GrowthByWeek)
	if err != nil {
		return nil, fmt.Errorf("growth by week: %w", err)
	}
	byMonth, err := s.source.GrowthBuckets(ctx, repository.GrowthByMonth)
	if err != nil {
		return nil, fmt.Errorf("growth by month: %w", err)
	}
	return &GrowthReport{
		UserGrowthByDay:   restructureGrowth(byDay),
		UserGrowthByWeek:  restructureGrowth(byWeek),
		UserGrowthByMonth: restructureGrowth(byMonth),
	}, nil
}

// restructureGrowth folds (bucket, role, count) rows into a
// {bucket: {role: count}} map, summing counts per bucket.
func restructureGrowth(rows []repository.GrowthRow) map[int]RoleCounts {
	out := make(map[int]RoleCounts, len(rows))
	for _, row := range rows {
		rc := out[row.Bucket]
		switch row.Role {
		case models.RoleClient:
			rc.Client += row.Count
		case models.RoleProvider:
			rc.Provider += row.Count
		case models.RoleBoth:
			rc.Both += row.Count
		default:
			rc.Unknown += row.Count
		}
		out[row.Bucket] = rc
	}
	return out
}

// UserDistribution counts users by exclusive derived role. The caller may
// restrict the universe to clients or providers; asking for neither is a
// validation error.
func (s *AnalyticsService) UserDistribution(ctx context.Context, client, provider bool) (*Distribution, error) {
	var universe models.Role
	switch {
	case client && !provider:
		universe = models.RoleClient
	case provider && !client:
		universe = models.RoleProvider
	case !client && !provider:
		return nil, ErrFilterRequired
	}

	rows, err := s.source.DistributionCounts(ctx, universe)
	if err != nil {
		return nil, fmt.Errorf("distribution counts: %w", err)
	}

	var dist Distribution
	for _, row := range rows {
		switch {
		case row.IsClient && row.IsProvider:
			dist.Both += row.Count
		case row.IsClient:
			dist.ClientOnly += row.Count
		case row.IsProvider:
			dist.ProviderOnly += row.Count
		}
	}
	return &dist, nil
}

func (s *AnalyticsService) UserStatusStats(ctx context.Context) ([]repository.StatusRow, error) {
	rows, err := s.source.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return rows, nil
}

// UsersByCategory merges duplicate category rows arising from the join so
// the result carries at most one entry per category id.
func (s *AnalyticsService) UsersByCategory(ctx context.Context) ([]repository.CategoryCountRow, error) {
	rows, err := s.source.CategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}

	index := map[string]int{}
	merged := make([]repository.CategoryCountRow, 0, len(rows))
	for _, row := range rows {
		key := row.CategoryID.Hex()
		if i, ok := index[key]; ok {
			merged[i].Count += row.Count
			continue
		}
		index[key] = len(merged)
		merged = append(merged, row)
	}
	return merged, nil
}
