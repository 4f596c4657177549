package quiz

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
)

// schemaVersion is the quiz schema this build expects. Version 2 added the
// default raffle template to the quiz document.
const schemaVersion = 2

// Score is the result of grading one submission.
type Score struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Total     int `json:"total"`
}

// Service is the quiz domain facade: one quiz's cache, its raffles and the
// editing operations, behind a single dependency handed to the HTTP layer.
type Service struct {
	st     store.Store
	quizID string

	cache   *Cache
	raffles *RaffleManager
}

// NewService wires a service for the given quiz id. Call Start before
// serving traffic.
func NewService(st store.Store, quizID string, backoff Backoff) *Service {
	s := &Service{
		st:     st,
		quizID: quizID,
		cache:  NewCache(st, quizID, backoff),
	}
	s.raffles = NewRaffleManager(st, s.Quiz, quizID, backoff)
	return s
}

// Start populates the quiz cache and begins watching for changes.
func (s *Service) Start(ctx context.Context) error {
	return s.cache.Start(ctx)
}

// Close releases all subscriptions.
func (s *Service) Close() {
	s.raffles.Close()
	s.cache.Close()
}

// Quiz returns the cached quiz, falling back to a synchronous refresh when
// the cache has not been populated yet.
func (s *Service) Quiz(ctx context.Context) (*models.Quiz, error) {
	if quiz := s.cache.Cached(); quiz != nil {
		return quiz, nil
	}

	if err := s.cache.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.cache.Cached(), nil
}

// QuizUncached reads the quiz directly from the store, bypassing the cache.
func (s *Service) QuizUncached(ctx context.Context) (*models.Quiz, error) {
	return s.cache.load(ctx)
}

// Tutorial returns the quiz's tutorial content.
func (s *Service) Tutorial(ctx context.Context) (*models.Tutorial, error) {
	quiz, err := s.Quiz(ctx)
	if err != nil {
		return nil, err
	}
	return &quiz.Tutorial, nil
}

// UpdateQuiz merges edited quiz metadata onto the stored document. Fields
// not present in the update are left untouched.
func (s *Service) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	fields := []string{"name", "questionCount", "tutorial"}
	if quiz.DefaultRaffle != nil {
		fields = append(fields, "defaultRaffle")
	}

	if err := s.st.Set(ctx, store.Quizzes, s.quizID, quiz.ToDoc(), fields...); err != nil {
		return apierr.Internal("updating quiz", err)
	}
	return nil
}

// Question reads one question directly from the store.
func (s *Service) Question(ctx context.Context, questionID string) (*models.Question, error) {
	doc, err := s.st.Get(ctx, store.Questions, questionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.NotFound("no question %q exists in quiz %q", questionID, s.quizID)
	}
	if err != nil {
		return nil, apierr.Internal(fmt.Sprintf("loading question %q", questionID), err)
	}

	question, err := models.DecodeQuestion(*doc)
	if err != nil {
		return nil, apierr.Internal(fmt.Sprintf("invalid question %q in quiz %q", questionID, s.quizID), err)
	}
	return question, nil
}

// AddQuestion creates a blank question for the editor to fill in.
func (s *Service) AddQuestion(ctx context.Context) (*models.Question, error) {
	question := models.NewQuestion("")

	id, err := s.st.Add(ctx, store.Questions, withQuizID(question.ToDoc(), s.quizID))
	if err != nil {
		return nil, apierr.Internal("adding question", err)
	}

	question.ID = id
	return question, nil
}

// UpdateQuestion merges an edited question onto the stored document.
func (s *Service) UpdateQuestion(ctx context.Context, question *models.Question) error {
	if _, err := s.Question(ctx, question.ID); err != nil {
		return err
	}

	err := s.st.Set(ctx, store.Questions, question.ID, question.ToDoc(),
		"header", "body", "answerId", "answers")
	if err != nil {
		return apierr.Internal(fmt.Sprintf("updating question %q", question.ID), err)
	}
	return nil
}

// DeleteQuestion removes a question. Deleting an absent question is an
// error, not a silent no-op.
func (s *Service) DeleteQuestion(ctx context.Context, questionID string) error {
	if _, err := s.Question(ctx, questionID); err != nil {
		return err
	}

	if err := s.st.Delete(ctx, store.Questions, questionID); err != nil {
		return apierr.Internal(fmt.Sprintf("deleting question %q", questionID), err)
	}
	return nil
}

// AddAnswer appends a blank answer to the question and returns its id.
// Answer ids are allocated from a per-question counter and never reused.
func (s *Service) AddAnswer(ctx context.Context, questionID string) (int, error) {
	question, err := s.Question(ctx, questionID)
	if err != nil {
		return 0, err
	}

	next := question.AddAnswer()
	if err := s.st.Set(ctx, store.Questions, questionID, question.ToDoc(), "answers", "answerId"); err != nil {
		return 0, apierr.Internal(fmt.Sprintf("adding answer to question %q", questionID), err)
	}
	return next, nil
}

// DeleteAnswer removes one answer from a question.
func (s *Service) DeleteAnswer(ctx context.Context, questionID string, answerID int) error {
	question, err := s.Question(ctx, questionID)
	if err != nil {
		return err
	}

	if !question.RemoveAnswer(answerID) {
		return apierr.NotFound("no answer %d exists on question %q", answerID, questionID)
	}

	if err := s.st.Set(ctx, store.Questions, questionID, question.ToDoc(), "answers", "answerId"); err != nil {
		return apierr.Internal(fmt.Sprintf("deleting answer from question %q", questionID), err)
	}
	return nil
}

// Answer returns one answer of one question, including grading fields.
func (s *Service) Answer(ctx context.Context, questionID string, answerID int) (*models.Answer, error) {
	question, err := s.Question(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answer := question.Answer(answerID)
	if answer == nil {
		return nil, apierr.NotFound("no answer %d exists on question %q", answerID, questionID)
	}
	return answer, nil
}

// ScoreAnswers grades a submission of question id to chosen answer id
// against the cached quiz. Unknown question or answer ids count as
// incorrect rather than failing the submission.
func (s *Service) ScoreAnswers(ctx context.Context, answers map[string]int) (*Score, error) {
	quiz, err := s.Quiz(ctx)
	if err != nil {
		return nil, err
	}

	score := &Score{Total: len(answers)}
	for questionID, answerID := range answers {
		question := quiz.Question(questionID)
		if question == nil {
			score.Incorrect++
			continue
		}

		if answer := question.Answer(answerID); answer != nil && answer.Correct {
			score.Correct++
		} else {
			score.Incorrect++
		}
	}
	return score, nil
}

// CurrentRaffle resolves this month's raffle.
func (s *Service) CurrentRaffle(ctx context.Context, useCache, autoCreate bool) (*models.Raffle, error) {
	return s.raffles.Current(ctx, useCache, autoCreate)
}

// PublicRaffle is the raffle view shown to quiz takers, with the fractional
// requirement turned into a question count for the served quiz size.
func (s *Service) PublicRaffle(ctx context.Context) (*models.PublicRaffle, error) {
	raffle, err := s.raffles.Current(ctx, true, true)
	if err != nil {
		return nil, err
	}

	quiz, err := s.Quiz(ctx)
	if err != nil {
		return nil, err
	}

	public := raffle.Public(quiz.ServedCount())
	return &public, nil
}

// NewRaffle creates this month's raffle.
func (s *Service) NewRaffle(ctx context.Context, prize string, requirement float64) (*models.Raffle, error) {
	return s.raffles.New(ctx, prize, requirement)
}

// EditRaffle updates the current raffle's prize and requirement.
func (s *Service) EditRaffle(ctx context.Context, prize string, requirement float64) error {
	return s.raffles.Edit(ctx, prize, requirement)
}

// AddEntrant enters someone into the given raffle.
func (s *Service) AddEntrant(ctx context.Context, raffleID, firstname, lastname, email string) error {
	return s.raffles.AddEntrant(ctx, raffleID, firstname, lastname, email)
}

// Entrants lists everyone entered in the current raffle.
func (s *Service) Entrants(ctx context.Context) ([]models.Entrant, error) {
	raffle, err := s.raffles.Current(ctx, false, true)
	if err != nil {
		return nil, err
	}
	return s.raffles.Entrants(ctx, raffle.ID)
}

// SelectWinner draws and records the current raffle's winner.
func (s *Service) SelectWinner(ctx context.Context) (*models.Entrant, error) {
	return s.raffles.SelectWinner(ctx)
}

// Raffles lists every raffle of this quiz directly from the store.
func (s *Service) Raffles(ctx context.Context) ([]models.Raffle, error) {
	return s.raffles.ListUncached(ctx)
}

// Name implements migrate.Database.
func (s *Service) Name() string { return "quiz" }

// TargetVersion implements migrate.Database.
func (s *Service) TargetVersion() int { return schemaVersion }

// StoredVersion implements migrate.Database. The version lives on a meta
// document keyed by the database name; a missing document means version 0.
func (s *Service) StoredVersion(ctx context.Context) (int, error) {
	doc, err := s.st.Get(ctx, store.Meta, s.Name())
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	switch v := doc.Data["version"].(type) {
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("meta document %q has no integer version", s.Name())
	}
}

// SetStoredVersion implements migrate.Database.
func (s *Service) SetStoredVersion(ctx context.Context, version int) error {
	return s.st.Set(ctx, store.Meta, s.Name(), bson.M{"version": version})
}

// MigrateStep implements migrate.Database.
func (s *Service) MigrateStep(ctx context.Context, to int) error {
	switch to {
	case 1:
		// Seed the quiz document when it has never been created.
		_, err := s.st.Get(ctx, store.Quizzes, s.quizID)
		if errors.Is(err, store.ErrNotFound) {
			blank := models.Quiz{Name: "Quiz", QuestionCount: 0}
			return s.st.Set(ctx, store.Quizzes, s.quizID, blank.ToDoc())
		}
		return err
	case 2:
		// Give pre-existing quizzes a raffle template so a month's raffle
		// can be generated without operator intervention.
		template := bson.M{
			"defaultRaffle": bson.M{
				"prize":       "Default Prize",
				"requirement": 0.6,
			},
		}
		return s.st.Set(ctx, store.Quizzes, s.quizID, template, "defaultRaffle")
	}
	return nil
}
