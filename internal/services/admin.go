package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/events"
	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
)

type adminUserStore interface {
	List(ctx context.Context, f repository.ListFilter, skip, limit int64) ([]repository.UserWithCategories, error)
	Count(ctx context.Context, f repository.ListFilter) (int64, error)
	FindByIDWithCategories(ctx context.Context, id primitive.ObjectID) (*repository.UserWithCategories, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
}

type jobOfferCounter interface {
	JobOfferCounts(ctx context.Context, recipients []primitive.ObjectID) ([]repository.JobOfferCountRow, error)
}

// JobOfferCounts is the per-user enrichment block, zero-valued when the user
// has no job offers.
type JobOfferCounts struct {
	Pending   int64 `json:"pendingJobOffers"`
	Accepted  int64 `json:"acceptedJobOffers"`
	Completed int64 `json:"completedJobOffers"`
}

type EnrichedUser struct {
	repository.UserWithCategories
	JobOffers JobOfferCounts `json:"jobOffers"`
}

type UserPage struct {
	Users       []EnrichedUser `json:"users"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalUsers  int64          `json:"totalUsers"`
}

type AdminService struct {
	users    adminUserStore
	messages jobOfferCounter
	events   *events.Publisher
}

func NewAdminService(users adminUserStore, messages jobOfferCounter, publisher *events.Publisher) *AdminService {
	return &AdminService{users: users, messages: messages, events: publisher}
}

// ListUsers returns one page of non-admin users enriched with job-offer
// counts. Enrichment failure fails the whole request; a listing with
// silently zeroed counts would be indistinguishable from real zeros.
func (s *AdminService) ListUsers(ctx context.Context, filter repository.ListFilter, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	skip := int64((page - 1) * limit)

	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	rows, err := s.users.List(ctx, filter, skip, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	enriched, err := s.enrichWithJobOffers(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("enrich job offers: %w", err)
	}

	return &UserPage{
		Users:       enriched,
		CurrentPage: page,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		TotalUsers:  total,
	}, nil
}

// enrichWithJobOffers batches one grouped query over the page's user ids.
func (s *AdminService) enrichWithJobOffers(ctx context.Context, rows []repository.UserWithCategories) ([]EnrichedUser, error) {
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	counts := map[primitive.ObjectID]JobOfferCounts{}
	if len(ids) > 0 {
		grouped, err := s.messages.JobOfferCounts(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, g := range grouped {
			c := counts[g.Recipient]
			switch g.Status {
			case models.JobOfferPending:
				c.Pending = g.Count
			case models.JobOfferAccepted:
				c.Accepted = g.Count
			case models.JobOfferCompleted:
				c.Completed = g.Count
			}
			counts[g.Recipient] = c
		}
	}

	enriched := make([]EnrichedUser, len(rows))
	for i, row := range rows {
		enriched[i] = EnrichedUser{
			UserWithCategories: row,
			JobOffers:          counts[row.ID],
		}
	}
	return enriched, nil
}

func (s *AdminService) GetUser(ctx context.Context, id primitive.ObjectID) (*repository.UserWithCategories, error) {
	return s.users.FindByIDWithCategories(ctx, id)
}

func (s *AdminService) SuspendUser(ctx context.Context, id primitive.ObjectID) error {
	u, err := s.users.UpdateByID(ctx, id, bson.M{"account_status": models.StatusSuspended})
	if err != nil {
		return err
	}
	s.events.Publish(ctx, events.UserSuspended, u.ID.Hex(), map[string]interface{}{"userId": u.ID.Hex()})
	return nil
}

func (s *AdminService) ReactivateUser(ctx context.Context, id primitive.ObjectID) error {
	u, err := s.users.UpdateByID(ctx, id, bson.M{"account_status": models.StatusActive})
	if err != nil {
		return err
	}
	s.events.Publish(ctx, events.UserReactivated, u.ID.Hex(), map[string]interface{}{"userId": u.ID.Hex()})
	return nil
}

// SetRank updates the curated discovery boost. Rank is the primary discovery
// sort key, ahead of distance.
func (s *AdminService) SetRank(ctx context.Context, id primitive.ObjectID, rank int) error {
	if rank < 0 || rank > 10 {
		return ErrInvalidRank
	}
	_, err := s.users.UpdateByID(ctx, id, bson.M{"rank": rank})
	return err
}
