package models

import "go.mongodb.org/mongo-driver/bson"

// Answer is one choice on a question. IDs are allocated from the owning
// question's counter and are unique within that question only.
type Answer struct {
	ID      int      `json:"id"`
	Text    RichText `json:"text"`
	Correct bool     `json:"correct"`
	Message string   `json:"message"`
}

// BlankAnswer creates an empty answer with the given id, the shape a freshly
// added answer has before an editor fills it in.
func BlankAnswer(id int) Answer {
	return Answer{ID: id}
}

func decodeAnswer(parent *docReader, field string, raw any) Answer {
	data, ok := asMap(raw)
	if !ok {
		parent.bad(field, "answer document")
		return Answer{}
	}

	r := newDocReader(parent.doc+"."+field, data)
	a := Answer{
		ID:      r.integer("id"),
		Text:    decodeRichText(r, "text"),
		Correct: r.boolean("correct"),
	}
	// message was introduced after the first content was written; default
	// missing ones to empty rather than rejecting the document.
	if r.has("message") {
		a.Message = r.str("message")
	}
	if err := r.err(); err != nil {
		parent.bad(field, "answer document")
	}
	return a
}

func (a Answer) toDoc() bson.M {
	return bson.M{
		"id":      a.ID,
		"text":    a.Text.toDoc(),
		"correct": a.Correct,
		"message": a.Message,
	}
}
