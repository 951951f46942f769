package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/events"
	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
)

type messageStore interface {
	Insert(ctx context.Context, m *models.Message) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	Conversation(ctx context.Context, a, b primitive.ObjectID, skip, limit int64) ([]models.Message, error)
	SetJobOfferStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Message, error)
}

type userByID interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type SendMessageInput struct {
	Recipient   string `json:"recipient" validate:"required"`
	Content     string `json:"content" validate:"required"`
	MessageType string `json:"messageType" validate:"omitempty,oneof=text job_offer"`
	CategoryID  string `json:"categoryId"`
}

type MessageService struct {
	messages   messageStore
	users      userByID
	categories categoryChecker
	events     *events.Publisher
}

func NewMessageService(messages messageStore, users userByID, categories categoryChecker, publisher *events.Publisher) *MessageService {
	return &MessageService{messages: messages, users: users, categories: categories, events: publisher}
}

// Send persists a text message or a job offer. Job offers start pending and
// must carry an existing category.
func (s *MessageService) Send(ctx context.Context, sender primitive.ObjectID, in SendMessageInput) (*models.Message, error) {
	recipient, err := primitive.ObjectIDFromHex(in.Recipient)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	if _, err := s.users.FindByID(ctx, recipient); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &models.Message{
		Sender:      sender,
		Recipient:   recipient,
		Content:     in.Content,
		MessageType: models.MessageTypeText,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if in.MessageType == models.MessageTypeJobOffer {
		categoryID, err := primitive.ObjectIDFromHex(in.CategoryID)
		if err != nil {
			return nil, ErrUnknownCategory
		}
		ok, err := s.categories.ExistAll(ctx, []primitive.ObjectID{categoryID})
		if err != nil {
			return nil, fmt.Errorf("check category: %w", err)
		}
		if !ok {
			return nil, ErrUnknownCategory
		}
		msg.MessageType = models.MessageTypeJobOffer
		msg.CategoryID = &categoryID
		msg.JobOfferStatus = models.JobOfferPending
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func (s *MessageService) Conversation(ctx context.Context, caller, with primitive.ObjectID, page, limit int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return s.messages.Conversation(ctx, caller, with, int64((page-1)*limit), int64(limit))
}

// UpdateJobOfferStatus advances a job offer along pending → accepted →
// completed. Only the recipient can accept; only the sender can mark the
// work completed.
func (s *MessageService) UpdateJobOfferStatus(ctx context.Context, caller primitive.ObjectID, id primitive.ObjectID, status string) (*models.Message, error) {
	msg, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !msg.IsJobOffer() {
		return nil, ErrNotJobOffer
	}
	if caller != msg.Sender && caller != msg.Recipient {
		return nil, ErrNotParticipant
	}

	switch {
	case msg.JobOfferStatus == models.JobOfferPending && status == models.JobOfferAccepted:
		if caller != msg.Recipient {
			return nil, ErrNotParticipant
		}
	case msg.JobOfferStatus == models.JobOfferAccepted && status == models.JobOfferCompleted:
		if caller != msg.Sender {
			return nil, ErrNotParticipant
		}
	default:
		return nil, ErrBadTransition
	}

	updated, err := s.messages.SetJobOfferStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.JobOfferStatusSet, id.Hex(), map[string]interface{}{
		"messageId": id.Hex(),
		"status":    status,
	})
	return updated, nil
}
