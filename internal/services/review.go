package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
)

type reviewStore interface {
	Insert(ctx context.Context, rev *models.Review) error
	ListByReceiver(ctx context.Context, receiver primitive.ObjectID) ([]models.Review, error)
}

type reviewMessageStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	SetReviewID(ctx context.Context, id, reviewID primitive.ObjectID) error
}

type CreateReviewInput struct {
	MessageID string `json:"messageId" validate:"required"`
	Stars     int    `json:"stars" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required"`
}

type ReviewList struct {
	Reviews      []models.Review `json:"reviews"`
	AverageStars float64         `json:"averageStars"`
}

type ReviewService struct {
	reviews  reviewStore
	messages reviewMessageStore
}

func NewReviewService(reviews reviewStore, messages reviewMessageStore) *ReviewService {
	return &ReviewService{reviews: reviews, messages: messages}
}

// Create writes the one immutable review for a completed job offer. Only the
// offer's sender may review, and the unique index on message_id rejects a
// second attempt.
func (s *ReviewService) Create(ctx context.Context, caller primitive.ObjectID, in CreateReviewInput) (*models.Review, error) {
	messageID, err := primitive.ObjectIDFromHex(in.MessageID)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !msg.IsJobOffer() {
		return nil, ErrNotJobOffer
	}
	if msg.JobOfferStatus != models.JobOfferCompleted {
		return nil, ErrNotCompleted
	}
	if caller != msg.Sender {
		return nil, ErrNotParticipant
	}
	if msg.ReviewID != nil {
		return nil, ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	review := &models.Review{
		MessageID: messageID,
		Stars:     in.Stars,
		Comment:   in.Comment,
		Receiver:  msg.Recipient,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Insert(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	if err := s.messages.SetReviewID(ctx, messageID, review.ID); err != nil {
		return nil, fmt.Errorf("set review backref: %w", err)
	}
	return review, nil
}

func (s *ReviewService) ListForUser(ctx context.Context, receiver primitive.ObjectID) (*ReviewList, error) {
	reviews, err := s.reviews.ListByReceiver(ctx, receiver)
	if err != nil {
		return nil, err
	}
	out := &ReviewList{Reviews: reviews}
	if len(reviews) > 0 {
		var sum int
		for _, r := range reviews {
			sum += r.Stars
		}
		out.AverageStars = float64(sum) / float64(len(reviews))
	}
	return out, nil
}
