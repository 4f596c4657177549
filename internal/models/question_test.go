package models

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
)

func richText(text string) RichText {
	return RichText{Delta: text, Rendered: text, Sanitized: text}
}

func sampleQuestion() *Question {
	return &Question{
		ID:       "q1",
		Header:   "What bin does glass go in?",
		Body:     richText("Pick one."),
		AnswerID: 2,
		Answers: []Answer{
			{ID: 1, Text: richText("Recycling"), Correct: true, Message: "Right!"},
			{ID: 2, Text: richText("Landfill"), Correct: false, Message: "Glass is recyclable."},
		},
	}
}

func TestQuestionRoundTrip(t *testing.T) {
	q := sampleQuestion()

	now := time.Now().UTC()
	decoded, err := DecodeQuestion(store.Doc{ID: q.ID, Data: q.ToDoc(), CreateTime: now})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	decoded.CreationTime = time.Time{}
	q.CreationTime = time.Time{}
	if !reflect.DeepEqual(q, decoded) {
		t.Fatalf("round trip changed the question:\n got %+v\nwant %+v", decoded, q)
	}
}

func TestDecodeQuestionReportsAllBadFields(t *testing.T) {
	doc := store.Doc{ID: "q1", Data: bson.M{
		"header":   17,
		"body":     richText("ok").toDoc(),
		"answerId": "not a number",
		"answers":  []any{},
	}}

	_, err := DecodeQuestion(doc)

	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("got %v, want a shape error", err)
	}
	if len(shapeErr.Fields) != 2 {
		t.Fatalf("got bad fields %v, want header and answerId", shapeErr.Fields)
	}
}

func TestDecodeAnswerWithoutMessage(t *testing.T) {
	q := sampleQuestion()
	doc := q.ToDoc()

	// Early documents predate the message field.
	answers := doc["answers"].([]any)
	first := answers[0].(bson.M)
	delete(first, "message")

	decoded, err := DecodeQuestion(store.Doc{ID: q.ID, Data: doc})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Answers[0].Message != "" {
		t.Fatalf("missing message must decode empty, got %q", decoded.Answers[0].Message)
	}
}

func TestAnswerIDAllocation(t *testing.T) {
	q := NewQuestion("q1")

	first := q.AddAnswer()
	second := q.AddAnswer()
	if first != 1 || second != 2 {
		t.Fatalf("got ids %d, %d, want 1, 2", first, second)
	}

	if !q.RemoveAnswer(first) {
		t.Fatal("removing an existing answer must succeed")
	}
	if q.RemoveAnswer(first) {
		t.Fatal("removing a missing answer must fail")
	}

	third := q.AddAnswer()
	if third != 3 {
		t.Fatalf("deleted id reused: got %d, want 3", third)
	}
	if q.AnswerID != 3 {
		t.Fatalf("counter is %d, want 3", q.AnswerID)
	}
}

func TestPublicQuestionStripsGrading(t *testing.T) {
	q := sampleQuestion()
	public := q.Public()

	if len(public.Answers) != 2 {
		t.Fatalf("got %d public answers, want 2", len(public.Answers))
	}
	for _, a := range public.Answers {
		if a.Text == "" {
			t.Fatal("public answer lost its text")
		}
	}
	if public.Body != q.Body.Sanitized {
		t.Fatal("public body must be the sanitized rendering")
	}
}

func TestQuizServedCount(t *testing.T) {
	quiz := &Quiz{ID: "web-client", QuestionCount: 5}
	for i := 0; i < 3; i++ {
		quiz.Questions = append(quiz.Questions, *NewQuestion("q"))
	}

	if got := quiz.ServedCount(); got != 3 {
		t.Fatalf("served count %d, want the 3 available", got)
	}

	quiz.QuestionCount = 2
	if got := quiz.ServedCount(); got != 2 {
		t.Fatalf("served count %d, want the configured 2", got)
	}
}

func TestRafflePublicView(t *testing.T) {
	raffle := &Raffle{Prize: "Gift Card", Requirement: 0.6}

	public := raffle.Public(10)
	if public.QuestionRequirement != 6 {
		t.Fatalf("question requirement %d, want 6", public.QuestionRequirement)
	}
	if public.Prize != "Gift Card" {
		t.Fatalf("prize %q", public.Prize)
	}
}

func TestRaffleRoundTripWithWinner(t *testing.T) {
	raffle := &Raffle{
		ID:          "r1",
		Prize:       "Gift Card",
		Requirement: 0.6,
		Month:       time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		Winner:      &Entrant{ID: "e1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
	}

	decoded, err := DecodeRaffle(store.Doc{ID: raffle.ID, Data: raffle.ToDoc()})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(raffle, decoded) {
		t.Fatalf("round trip changed the raffle:\n got %+v\nwant %+v", decoded, raffle)
	}
}
