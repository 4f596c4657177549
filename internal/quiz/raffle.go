package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/pkg/random"
)

// RaffleManager resolves the raffle for the current calendar month, lazily
// creating one from the quiz's default template when none exists. The most
// recently resolved raffle is cached and kept fresh by a subscription scoped
// to that raffle's month window.
type RaffleManager struct {
	st      store.Store
	quiz    func(ctx context.Context) (*models.Quiz, error)
	quizID  string
	backoff Backoff

	mu     sync.RWMutex
	cached *models.Raffle

	watch *watcher
}

// NewRaffleManager creates a manager for the given quiz. quiz resolves the
// owning quiz, used for the default raffle template.
func NewRaffleManager(st store.Store, quiz func(ctx context.Context) (*models.Quiz, error), quizID string, backoff Backoff) *RaffleManager {
	return &RaffleManager{st: st, quiz: quiz, quizID: quizID, backoff: backoff}
}

// cachedCurrent returns the cached raffle if it belongs to the month
// containing now. A raffle from another month is dropped along with its
// subscription; resolving the new month rebuilds both.
func (m *RaffleManager) cachedCurrent(now time.Time) *models.Raffle {
	start, end := monthWindow(now)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached == nil {
		return nil
	}
	if m.cached.Month.Before(start) || !m.cached.Month.Before(end) {
		m.cached = nil
		if m.watch != nil {
			m.watch.close()
			m.watch = nil
		}
		return nil
	}
	return m.cached
}

// Current resolves this month's raffle. With useCache a cached raffle from
// the same month is returned without touching the store. With autoCreate a
// missing raffle is created from the quiz's default template before
// resolving again.
func (m *RaffleManager) Current(ctx context.Context, useCache, autoCreate bool) (*models.Raffle, error) {
	now := time.Now()
	if useCache {
		if cached := m.cachedCurrent(now); cached != nil {
			return cached, nil
		}
	}

	start, end := monthWindow(now)
	docs, err := m.st.Query(ctx, store.Raffles,
		store.Where("quizId", m.quizID),
		store.Filter{Field: "month", Op: store.Gte, Value: start},
		store.Filter{Field: "month", Op: store.Lt, Value: end},
	)
	if err != nil {
		return nil, apierr.Internal("querying current raffle", err)
	}

	switch len(docs) {
	case 0:
		if !autoCreate {
			return nil, apierr.NotFound("no raffle exists for the current month")
		}

		quiz, err := m.quiz(ctx)
		if err != nil {
			return nil, err
		}
		if quiz == nil || quiz.DefaultRaffle == nil {
			return nil, apierr.Internal(
				"no default raffle options exist, the raffle must be created manually", nil)
		}

		if _, err := m.New(ctx, quiz.DefaultRaffle.Prize, quiz.DefaultRaffle.Requirement); err != nil {
			// A concurrent request may have created it first; resolving
			// again below handles both outcomes.
			var apiErr *apierr.Error
			if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
				return nil, err
			}
		}
		return m.Current(ctx, false, false)
	case 1:
		raffle, err := models.DecodeRaffle(docs[0])
		if err != nil {
			return nil, apierr.Internal(fmt.Sprintf("invalid raffle document %q", docs[0].ID), err)
		}
		m.setCached(raffle)
		return raffle, nil
	default:
		return nil, apierr.Internal(
			fmt.Sprintf("found %d raffles for the current month, expected at most one", len(docs)), nil)
	}
}

// setCached swaps the cached raffle and rescopes the month-window
// subscription to it.
func (m *RaffleManager) setCached(raffle *models.Raffle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.cached
	m.cached = raffle
	if prev != nil && prev.ID == raffle.ID {
		return
	}
	m.resubscribeLocked(raffle.Month)
}

// resubscribeLocked replaces the raffle subscription with one scoped to the
// month window starting at start.
func (m *RaffleManager) resubscribeLocked(start time.Time) {
	if m.watch != nil {
		m.watch.close()
	}

	_, end := monthWindow(start)
	filters := []store.Filter{
		store.Where("quizId", m.quizID),
		{Field: "month", Op: store.Gte, Value: start},
		{Field: "month", Op: store.Lt, Value: end},
	}

	m.watch = newWatcher("raffle:"+m.quizID, m.backoff, func(onError store.ErrorHandler) (store.Unsubscribe, error) {
		return m.st.WatchQuery(store.Raffles, filters, m.refreshCached, onError)
	})
	if err := m.watch.start(); err != nil {
		slog.Error("raffle subscription failed, retrying in background", "quizId", m.quizID, "error", err)
	}
}

// refreshCached re-resolves the cached raffle after a change notification.
func (m *RaffleManager) refreshCached() {
	go func() {
		if _, err := m.Current(context.Background(), false, false); err != nil {
			slog.Error("raffle refresh failed, keeping stale raffle", "quizId", m.quizID, "error", err)
		}
	}()
}

// New creates a raffle for the month containing now. At most one raffle per
// quiz and month can exist; a second create for the same month fails.
func (m *RaffleManager) New(ctx context.Context, prize string, requirement float64) (*models.Raffle, error) {
	start, _ := monthWindow(time.Now())

	raffle := models.Raffle{
		Prize:       prize,
		Requirement: requirement,
		Month:       start,
	}

	id, err := m.st.AddUnique(ctx, store.Raffles, []store.Filter{
		store.Where("quizId", m.quizID),
		store.Where("month", start),
	}, withQuizID(raffle.ToDoc(), m.quizID))
	if errors.Is(err, store.ErrExists) {
		return nil, apierr.InvalidRequest("a raffle already exists for the current month")
	}
	if err != nil {
		return nil, apierr.Internal("creating raffle", err)
	}

	raffle.ID = id
	return &raffle, nil
}

// Edit updates the prize and entry requirement of the current raffle.
func (m *RaffleManager) Edit(ctx context.Context, prize string, requirement float64) error {
	raffle, err := m.Current(ctx, false, false)
	if err != nil {
		return err
	}

	data := bson.M{"prize": prize, "requirement": requirement}
	if err := m.st.Set(ctx, store.Raffles, raffle.ID, data, "prize", "requirement"); err != nil {
		return apierr.Internal("updating raffle", err)
	}
	return nil
}

// AddEntrant enters someone into the given raffle. Email addresses are
// trimmed and act as the uniqueness key within a raffle.
func (m *RaffleManager) AddEntrant(ctx context.Context, raffleID, firstname, lastname, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apierr.InvalidRequest("an email address is required to enter the raffle")
	}

	entrant := models.Entrant{
		FirstName: strings.TrimSpace(firstname),
		LastName:  strings.TrimSpace(lastname),
		Email:     email,
	}

	data := entrant.ToDoc()
	data["raffleId"] = raffleID

	_, err := m.st.AddUnique(ctx, store.Subscribers, []store.Filter{
		store.Where("raffleId", raffleID),
		store.Where("email", email),
	}, data)
	if errors.Is(err, store.ErrExists) {
		return apierr.InvalidRequest("%q is already entered in this raffle", email)
	}
	if err != nil {
		return apierr.Internal("entering raffle", err)
	}
	return nil
}

// Entrants lists everyone entered in the given raffle.
func (m *RaffleManager) Entrants(ctx context.Context, raffleID string) ([]models.Entrant, error) {
	docs, err := m.st.Query(ctx, store.Subscribers, store.Where("raffleId", raffleID))
	if err != nil {
		return nil, apierr.Internal("listing raffle entrants", err)
	}

	entrants := make([]models.Entrant, 0, len(docs))
	for _, doc := range docs {
		entrant, err := models.DecodeEntrant(doc)
		if err != nil {
			return nil, apierr.Internal(fmt.Sprintf("invalid entrant document %q", doc.ID), err)
		}
		entrants = append(entrants, *entrant)
	}
	return entrants, nil
}

// SelectWinner draws a uniformly random winner from the current raffle's
// entrants and records the result on the raffle document.
func (m *RaffleManager) SelectWinner(ctx context.Context) (*models.Entrant, error) {
	raffle, err := m.Current(ctx, false, false)
	if err != nil {
		return nil, err
	}

	entrants, err := m.Entrants(ctx, raffle.ID)
	if err != nil {
		return nil, err
	}
	if len(entrants) == 0 {
		return nil, apierr.InvalidRequest("the raffle has no entrants to draw from")
	}

	winner := &entrants[0]
	if len(entrants) > 1 {
		i, err := random.Intn(len(entrants))
		if err != nil {
			return nil, apierr.Internal("drawing raffle winner", err)
		}
		winner = &entrants[i]
	}

	if err := m.st.Set(ctx, store.Subscribers, winner.ID, bson.M{"winner": true}, "winner"); err != nil {
		return nil, apierr.Internal("marking winning entrant", err)
	}
	if err := m.st.Set(ctx, store.Raffles, raffle.ID, bson.M{"winner": models.WinnerDoc(winner)}, "winner"); err != nil {
		return nil, apierr.Internal("recording raffle winner", err)
	}
	return winner, nil
}

// ListUncached reads every raffle for the quiz directly from the store.
func (m *RaffleManager) ListUncached(ctx context.Context) ([]models.Raffle, error) {
	docs, err := m.st.Query(ctx, store.Raffles, store.Where("quizId", m.quizID))
	if err != nil {
		return nil, apierr.Internal("listing raffles", err)
	}

	raffles := make([]models.Raffle, 0, len(docs))
	for _, doc := range docs {
		raffle, err := models.DecodeRaffle(doc)
		if err != nil {
			return nil, apierr.Internal(fmt.Sprintf("invalid raffle document %q", doc.ID), err)
		}
		raffles = append(raffles, *raffle)
	}
	return raffles, nil
}

// Close releases the raffle subscription.
func (m *RaffleManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watch != nil {
		m.watch.close()
	}
}

func withQuizID(data bson.M, quizID string) bson.M {
	data["quizId"] = quizID
	return data
}
