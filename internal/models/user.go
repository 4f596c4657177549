package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSource identifies which client registered the user.
type UserSource string

const (
	UserSourceIOS UserSource = "ios"
	UserSourceWeb UserSource = "web"
)

// User is an end user who shared their email with the program.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email            string             `bson:"email" json:"email"`
	Sources          []UserSource       `bson:"sources" json:"sources"`
	MarketingConsent bool               `bson:"marketingConsent" json:"marketingConsent"`
	PhotoConsent     bool               `bson:"photoConsent" json:"photoConsent"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
