package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MessageTypeText     = "text"
	MessageTypeJobOffer = "job_offer"
)

const (
	JobOfferPending   = "pending"
	JobOfferAccepted  = "accepted"
	JobOfferCompleted = "completed"
)

type Message struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Sender         primitive.ObjectID  `bson:"sender" json:"sender"`
	Recipient      primitive.ObjectID  `bson:"recipient" json:"recipient"`
	Content        string              `bson:"content" json:"content"`
	MessageType    string              `bson:"message_type" json:"messageType"`
	CategoryID     *primitive.ObjectID `bson:"category_id,omitempty" json:"categoryId,omitempty"`
	JobOfferStatus string              `bson:"job_offer_status,omitempty" json:"jobOfferStatus,omitempty"`
	ReviewID       *primitive.ObjectID `bson:"review_id,omitempty" json:"reviewId,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updatedAt"`
}

func (m *Message) IsJobOffer() bool {
	return m.MessageType == MessageTypeJobOffer
}
