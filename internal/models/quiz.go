package models

import (
	"log/slog"
	"math/rand"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
)

// PrizeInfo is the raffle template held on the quiz document, used to
// lazily create a month's raffle when none exists yet.
type PrizeInfo struct {
	Prize       string  `json:"prize"`
	Requirement float64 `json:"requirement"`
}

// Quiz is the in-memory snapshot of one quiz: metadata plus the full
// question list. Instances are immutable once built; the cache replaces
// them wholesale.
type Quiz struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	QuestionCount int        `json:"questionCount"`
	Tutorial      Tutorial   `json:"tutorial"`
	DefaultRaffle *PrizeInfo `json:"defaultRaffle,omitempty"`
	Questions     []Question `json:"questions"`
}

// DecodeQuiz validates and decodes a stored quiz document. Questions live in
// their own collection; the caller loads and attaches them.
func DecodeQuiz(doc store.Doc, questions []Question) (*Quiz, error) {
	r := newDocReader("quiz", doc.Data)

	q := &Quiz{
		ID:            doc.ID,
		Name:          r.str("name"),
		QuestionCount: r.integer("questionCount"),
		Tutorial:      decodeTutorial(r, "tutorial"),
		Questions:     questions,
	}

	if r.has("defaultRaffle") {
		sub := newDocReader("quiz.defaultRaffle", r.sub("defaultRaffle"))
		info := PrizeInfo{
			Prize:       sub.str("prize"),
			Requirement: sub.float("requirement"),
		}
		if err := sub.err(); err != nil {
			r.bad("defaultRaffle", "prize info")
		} else {
			q.DefaultRaffle = &info
		}
	}

	if err := r.err(); err != nil {
		return nil, err
	}
	return q, nil
}

// ToDoc encodes the quiz metadata for storage.
func (q *Quiz) ToDoc() bson.M {
	doc := bson.M{
		"name":          q.Name,
		"questionCount": q.QuestionCount,
		"tutorial":      q.Tutorial.toDoc(),
	}
	if q.DefaultRaffle != nil {
		doc["defaultRaffle"] = bson.M{
			"prize":       q.DefaultRaffle.Prize,
			"requirement": q.DefaultRaffle.Requirement,
		}
	}
	return doc
}

// ServedCount is the number of questions actually served:
// min(questionCount, available). A shortfall is logged, never fatal.
func (q *Quiz) ServedCount() int {
	if len(q.Questions) < q.QuestionCount {
		slog.Warn("quiz has fewer questions than its configured count",
			"quizId", q.ID, "questionCount", q.QuestionCount, "available", len(q.Questions))
		return len(q.Questions)
	}
	return q.QuestionCount
}

// Question returns the question with the given id, or nil.
func (q *Quiz) Question(questionID string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return &q.Questions[i]
		}
	}
	return nil
}

// ServedQuiz is the public quiz payload: a randomized subset of the
// question pool, sized by ServedCount.
type ServedQuiz struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Questions []PublicQuestion `json:"questions"`
}

// Serve draws a random subset of questions for one quiz taker. Selection
// here is cosmetic, so math/rand is fine; winner selection is the only
// place that requires a secure source.
func (q *Quiz) Serve() ServedQuiz {
	count := q.ServedCount()

	questions := make([]PublicQuestion, 0, count)
	for _, i := range rand.Perm(len(q.Questions))[:count] {
		questions = append(questions, q.Questions[i].Public())
	}

	return ServedQuiz{ID: q.ID, Name: q.Name, Questions: questions}
}
