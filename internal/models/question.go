package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
)

// Question is a quiz question with its ordered answers. AnswerID is the next
// answer id to allocate; it is strictly greater than every existing answer id
// and never decreases, so deleted ids are never reused.
type Question struct {
	ID           string    `json:"id"`
	Header       string    `json:"header"`
	Body         RichText  `json:"body"`
	AnswerID     int       `json:"answerId"`
	Answers      []Answer  `json:"answers"`
	CreationTime time.Time `json:"-"`
}

// NewQuestion creates the blank question an editor starts from.
func NewQuestion(id string) *Question {
	return &Question{
		ID:      id,
		Header:  "New Question",
		Answers: []Answer{},
	}
}

// DecodeQuestion validates and decodes a stored question document.
func DecodeQuestion(doc store.Doc) (*Question, error) {
	r := newDocReader("question", doc.Data)

	q := &Question{
		ID:           doc.ID,
		Header:       r.str("header"),
		Body:         decodeRichText(r, "body"),
		AnswerID:     r.integer("answerId"),
		CreationTime: doc.CreateTime,
	}

	q.Answers = []Answer{}
	for i, raw := range r.list("answers") {
		q.Answers = append(q.Answers, decodeAnswer(r, fmt.Sprintf("answers[%d]", i), raw))
	}

	if err := r.err(); err != nil {
		return nil, err
	}
	return q, nil
}

// ToDoc encodes the question for storage. The owning collection key
// (quizId) is attached by the caller.
func (q *Question) ToDoc() bson.M {
	answers := make([]any, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, a.toDoc())
	}

	return bson.M{
		"header":   q.Header,
		"body":     q.Body.toDoc(),
		"answerId": q.AnswerID,
		"answers":  answers,
	}
}

// Answer returns the answer with the given id, or nil.
func (q *Question) Answer(answerID int) *Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			return &q.Answers[i]
		}
	}
	return nil
}

// AddAnswer allocates the next answer id, appends a blank answer carrying it
// and advances the counter by exactly one.
func (q *Question) AddAnswer() int {
	next := q.AnswerID + 1
	q.Answers = append(q.Answers, BlankAnswer(next))
	q.AnswerID = next
	return next
}

// RemoveAnswer deletes the answer with the given id. The counter is left
// untouched so the id is never reused.
func (q *Question) RemoveAnswer(answerID int) bool {
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			q.Answers = append(q.Answers[:i], q.Answers[i+1:]...)
			return true
		}
	}
	return false
}

// PublicQuestion is the question view served to quiz takers: no correct
// flags, no feedback messages.
type PublicQuestion struct {
	ID      string         `json:"id"`
	Header  string         `json:"header"`
	Body    string         `json:"body"`
	Answers []PublicAnswer `json:"answers"`
}

// PublicAnswer carries only what a quiz taker may see before answering.
type PublicAnswer struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Public strips grading information from the question.
func (q *Question) Public() PublicQuestion {
	answers := make([]PublicAnswer, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, PublicAnswer{ID: a.ID, Text: a.Text.Sanitized})
	}
	return PublicQuestion{
		ID:      q.ID,
		Header:  q.Header,
		Body:    q.Body.Sanitized,
		Answers: answers,
	}
}
