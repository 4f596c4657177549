package quiz

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store/memstore"
)

const testQuizID = "web-client"

// fastBackoff keeps retry tests quick.
func fastBackoff(int) time.Duration { return 5 * time.Millisecond }

func richTextDoc(text string) bson.M {
	return bson.M{"delta": text, "rendered": text, "sanitized": text}
}

func tutorialDoc() bson.M {
	return bson.M{"header": "Welcome", "body": richTextDoc("How the quiz works.")}
}

func quizDoc(questionCount int, withTemplate bool) bson.M {
	doc := bson.M{
		"name":          "Get Your GreenBack",
		"questionCount": questionCount,
		"tutorial":      tutorialDoc(),
	}
	if withTemplate {
		doc["defaultRaffle"] = bson.M{"prize": "Reusable Mug", "requirement": 0.5}
	}
	return doc
}

func answerDoc(id int, correct bool) bson.M {
	return bson.M{
		"id":      id,
		"text":    richTextDoc("choice"),
		"correct": correct,
		"message": "explanation",
	}
}

func questionDoc(header string, answers ...bson.M) bson.M {
	list := make([]any, 0, len(answers))
	maxID := 0
	for _, a := range answers {
		list = append(list, a)
		if id, ok := a["id"].(int); ok && id > maxID {
			maxID = id
		}
	}
	return bson.M{
		"quizId":   testQuizID,
		"header":   header,
		"body":     richTextDoc("question body"),
		"answerId": maxID,
		"answers":  list,
	}
}

// seedQuiz sets up a store with one quiz and n two-answer questions, answer
// 1 correct.
func seedQuiz(t *testing.T, questionCount, available int, withTemplate bool) *memstore.MemStore {
	t.Helper()

	st := memstore.New()
	st.Seed(store.Quizzes, testQuizID, quizDoc(questionCount, withTemplate))
	for i := 0; i < available; i++ {
		q := questionDoc("Question", answerDoc(1, true), answerDoc(2, false))
		if _, err := st.Add(context.Background(), store.Questions, q); err != nil {
			t.Fatalf("seeding question: %v", err)
		}
	}
	return st
}

// waitFor polls until cond holds, failing the test after two seconds.
// Change notifications are delivered asynchronously, so tests observe their
// effects rather than synchronize with them.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
