package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is written once a job offer completes and is immutable afterwards.
// The unique index on message_id enforces one review per job offer.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessageID primitive.ObjectID `bson:"message_id" json:"messageId"`
	Stars     int                `bson:"stars" json:"stars"`
	Comment   string             `bson:"comment" json:"comment"`
	Receiver  primitive.ObjectID `bson:"receiver" json:"receiver"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}
