package models

// ToSPlatform is the client a terms-of-service document applies to.
type ToSPlatform string

const (
	ToSPlatformIOS  ToSPlatform = "ios"
	ToSPlatformQuiz ToSPlatform = "quiz"
)

// Valid reports whether p names a known platform.
func (p ToSPlatform) Valid() bool {
	return p == ToSPlatformIOS || p == ToSPlatformQuiz
}

// ToS is a terms-of-service document, one per platform, keyed by platform.
type ToS struct {
	Platform ToSPlatform `bson:"_id" json:"platform"`
	Link     string      `bson:"link" json:"link"`
	Version  string      `bson:"version" json:"version"`
}
