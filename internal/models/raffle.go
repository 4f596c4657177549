package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
)

// Entrant is a raffle participant. An email may enter a given raffle at
// most once.
type Entrant struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// DecodeEntrant validates and decodes a stored subscriber document.
func DecodeEntrant(doc store.Doc) (*Entrant, error) {
	r := newDocReader("entrant", doc.Data)

	e := &Entrant{
		ID:        doc.ID,
		FirstName: r.str("firstName"),
		LastName:  r.str("lastName"),
		Email:     r.str("email"),
	}

	if err := r.err(); err != nil {
		return nil, err
	}
	return e, nil
}

// ToDoc encodes the entrant for storage under its raffle.
func (e *Entrant) ToDoc() bson.M {
	return bson.M{
		"firstName": e.FirstName,
		"lastName":  e.LastName,
		"email":     e.Email,
	}
}

// Raffle is one calendar month's raffle. Month is the first instant of the
// UTC month the raffle is scoped to; at most one raffle exists per quiz per
// month.
type Raffle struct {
	ID          string    `json:"id"`
	Prize       string    `json:"prize"`
	Requirement float64   `json:"requirement"`
	Month       time.Time `json:"month"`
	Winner      *Entrant  `json:"winner,omitempty"`
}

// DecodeRaffle validates and decodes a stored raffle document.
func DecodeRaffle(doc store.Doc) (*Raffle, error) {
	r := newDocReader("raffle", doc.Data)

	raffle := &Raffle{
		ID:          doc.ID,
		Prize:       r.str("prize"),
		Requirement: r.float("requirement"),
		Month:       r.timestamp("month").UTC(),
	}

	if r.has("winner") {
		sub := newDocReader("raffle.winner", r.sub("winner"))
		winner := Entrant{
			ID:        sub.str("id"),
			FirstName: sub.str("firstName"),
			LastName:  sub.str("lastName"),
			Email:     sub.str("email"),
		}
		if err := sub.err(); err != nil {
			r.bad("winner", "entrant")
		} else {
			raffle.Winner = &winner
		}
	}

	if err := r.err(); err != nil {
		return nil, err
	}
	return raffle, nil
}

// ToDoc encodes the raffle for storage. The owning collection key (quizId)
// and the month window key are attached by the raffle manager.
func (r *Raffle) ToDoc() bson.M {
	doc := bson.M{
		"prize":       r.Prize,
		"requirement": r.Requirement,
		"month":       r.Month.UTC(),
	}
	if r.Winner != nil {
		doc["winner"] = WinnerDoc(r.Winner)
	}
	return doc
}

// WinnerDoc encodes an entrant as the winner snapshot merged onto raffle
// and subscriber documents.
func WinnerDoc(e *Entrant) bson.M {
	return bson.M{
		"id":        e.ID,
		"firstName": e.FirstName,
		"lastName":  e.LastName,
		"email":     e.Email,
	}
}

// PublicRaffle is the raffle view shown to quiz takers: the prize and the
// number of correct answers needed to enter, with the winner withheld.
type PublicRaffle struct {
	Prize               string `json:"prize"`
	QuestionRequirement int    `json:"questionRequirement"`
}

// Public converts the fractional requirement into a concrete question count
// for the given served-question total.
func (r *Raffle) Public(servedQuestions int) PublicRaffle {
	return PublicRaffle{
		Prize:               r.Prize,
		QuestionRequirement: int(r.Requirement * float64(servedQuestions)),
	}
}
