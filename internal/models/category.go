package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultCategoryIcon = "https://img.icons8.com/color/512/services.png"

// SentinelCategorySlug is the canonical identity of the "unassigned" category.
// A unique sparse index on slug makes its get-or-create race-safe.
const SentinelCategorySlug = "unassigned"

// LocalizedText carries the English and Arabic rendering of a field.
type LocalizedText struct {
	EN string `bson:"en" json:"en"`
	AR string `bson:"ar" json:"ar"`
}

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        LocalizedText      `bson:"name" json:"name"`
	Description LocalizedText      `bson:"description" json:"description"`
	Icon        string             `bson:"icon,omitempty" json:"icon,omitempty"`
	IsDefault   bool               `bson:"is_default" json:"isDefault"`
	Slug        string             `bson:"slug,omitempty" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// SentinelCategory is the document inserted when the unassigned category is
// first needed. Names follow the same lowercase convention as user-created
// categories.
func SentinelCategory(now time.Time) Category {
	return Category{
		Name:        LocalizedText{EN: "n/a", AR: "غير محدد"},
		Description: LocalizedText{EN: "Unassigned Category", AR: "فئة غير محددة"},
		Icon:        DefaultCategoryIcon,
		IsDefault:   true,
		Slug:        SentinelCategorySlug,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
