package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session records one user's pass through the quiz, from first question to
// completion, and whether they downloaded their result.
type Session struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email      string             `bson:"email" json:"email"`
	Downloaded bool               `bson:"downloaded" json:"downloaded"`
	StartTime  time.Time          `bson:"startTime" json:"startTime"`
	EndTime    time.Time          `bson:"endTime" json:"endTime"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
