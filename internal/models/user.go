package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
	StatusPending   = "pending"
)

const (
	DefaultProfilePicURL = "https://icons.veryicon.com/png/o/miscellaneous/standard/avatar-15.png"
	DefaultProviderBio   = "Hi there, I am a service provider, let's connect!!"
)

// Role is the capability set derived from the two onboarding flags.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleBoth     Role = "both"
	RoleUnknown  Role = "unknown"
)

// Location is a GeoJSON point. Coordinates are stored as [latitude, longitude].
type Location struct {
	Type          string    `bson:"type" json:"type"`
	Coordinates   []float64 `bson:"coordinates" json:"coordinates"`
	StreetAddress string    `bson:"street_address" json:"streetAddress"`
}

func DefaultLocation() Location {
	return Location{Type: "Point", Coordinates: []float64{0, 0}, StreetAddress: "N/A"}
}

type User struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FullName      string               `bson:"full_name,omitempty" json:"fullName,omitempty"`
	Email         string               `bson:"email" json:"email"`
	PhoneNumber   string               `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	Password      string               `bson:"password" json:"-"`
	Bio           string               `bson:"bio,omitempty" json:"bio,omitempty"`
	IsClient      bool                 `bson:"is_client" json:"isClient"`
	IsProvider    bool                 `bson:"is_provider" json:"isProvider"`
	IsAdmin       bool                 `bson:"is_admin" json:"isAdmin"`
	Category      []primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	Rank          int                  `bson:"rank" json:"-"`
	Location      Location             `bson:"location" json:"location"`
	AccountStatus string               `bson:"account_status" json:"accountStatus"`
	ProfilePicURL string               `bson:"profile_pic_url,omitempty" json:"profilePicUrl,omitempty"`
	LastActive    time.Time            `bson:"last_active" json:"lastActive"`
	Images        []string             `bson:"images,omitempty" json:"images,omitempty"`
	IsOnline      bool                 `bson:"is_online" json:"isOnline"`
	HourlyRate    float64              `bson:"hourly_rate" json:"hourlyRate"`
	GoogleID      string               `bson:"google_id,omitempty" json:"-"`
	CreatedAt     time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updatedAt"`
}

// Role collapses the independent onboarding flags into one capability bucket.
// "both" must be checked before the single-flag cases.
func (u *User) Role() Role {
	switch {
	case u.IsClient && u.IsProvider:
		return RoleBoth
	case u.IsProvider:
		return RoleProvider
	case u.IsClient:
		return RoleClient
	default:
		return RoleUnknown
	}
}
