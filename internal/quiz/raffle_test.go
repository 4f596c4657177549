package quiz

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store/memstore"
)

func newRaffleManager(t *testing.T, st *memstore.MemStore) *RaffleManager {
	t.Helper()

	c := NewCache(st, testQuizID, fastBackoff)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refreshing cache: %v", err)
	}

	quiz := func(context.Context) (*models.Quiz, error) { return c.Cached(), nil }
	m := NewRaffleManager(st, quiz, testQuizID, fastBackoff)
	t.Cleanup(m.Close)
	return m
}

func errStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want an API error", err)
	}
	return apiErr.Status
}

func TestCurrentRaffleLazyCreation(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 2, 2, true)
	m := newRaffleManager(t, st)

	raffle, err := m.Current(ctx, false, true)
	if err != nil {
		t.Fatalf("current: %v", err)
	}

	if raffle.Prize != "Reusable Mug" || raffle.Requirement != 0.5 {
		t.Fatalf("raffle not built from the default template: %+v", raffle)
	}

	start, _ := monthWindow(time.Now())
	if !raffle.Month.Equal(start) {
		t.Fatalf("raffle month %v, want %v", raffle.Month, start)
	}

	again, err := m.Current(ctx, false, true)
	if err != nil {
		t.Fatalf("second current: %v", err)
	}
	if again.ID != raffle.ID {
		t.Fatalf("second resolution created a duplicate raffle: %q vs %q", again.ID, raffle.ID)
	}
}

func TestCurrentRaffleWithoutAutoCreate(t *testing.T) {
	st := seedQuiz(t, 2, 2, true)
	m := newRaffleManager(t, st)

	_, err := m.Current(context.Background(), false, false)
	if !apierr.IsNotFound(err) {
		t.Fatalf("got %v, want a not-found error", err)
	}
}

func TestCurrentRaffleWithoutTemplate(t *testing.T) {
	st := seedQuiz(t, 2, 2, false)
	m := newRaffleManager(t, st)

	_, err := m.Current(context.Background(), false, true)
	if status := errStatus(t, err); status != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500 when no template exists", status)
	}
}

func TestCurrentRaffleCached(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 2, 2, true)
	m := newRaffleManager(t, st)

	raffle, err := m.Current(ctx, false, true)
	if err != nil {
		t.Fatalf("current: %v", err)
	}

	cached, err := m.Current(ctx, true, false)
	if err != nil {
		t.Fatalf("cached current: %v", err)
	}
	if cached.ID != raffle.ID {
		t.Fatalf("cache returned raffle %q, want %q", cached.ID, raffle.ID)
	}
}

func TestNewRaffleRejectsDuplicateMonth(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 2, 2, false)
	m := newRaffleManager(t, st)

	if _, err := m.New(ctx, "Gift Card", 0.7); err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err := m.New(ctx, "Another Prize", 0.4)
	if status := errStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 for a duplicate month", status)
	}
}

func TestCurrentRaffleRejectsAmbiguousMonth(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 2, 2, false)
	m := newRaffleManager(t, st)

	start, _ := monthWindow(time.Now())
	for i := 0; i < 2; i++ {
		doc := bson.M{
			"quizId": testQuizID, "prize": "P", "requirement": 0.5, "month": start,
		}
		if _, err := st.Add(ctx, store.Raffles, doc); err != nil {
			t.Fatalf("seeding raffle: %v", err)
		}
	}

	_, err := m.Current(ctx, false, false)
	if status := errStatus(t, err); status != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500 for an ambiguous month", status)
	}
}

func TestAddEntrant(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 2, 2, false)
	m := newRaffleManager(t, st)

	raffle, err := m.New(ctx, "Gift Card", 0.7)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := m.AddEntrant(ctx, raffle.ID, "Ada", "Lovelace", " ada@example.com "); err != nil {
		t.Fatalf("add entrant: %v", err)
	}

	err = m.AddEntrant(ctx, raffle.ID, "Ada", "Lovelace", "ada@example.com")
	if status := errStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 for a duplicate email", status)
	}

	entrants, err := m.Entrants(ctx, raffle.ID)
	if err != nil {
		t.Fatalf("entrants: %v", err)
	}
	if len(entrants) != 1 {
		t.Fatalf("got %d entrants, want 1", len(entrants))
	}
	if entrants[0].Email != "ada@example.com" {
		t.Fatalf("email not trimmed: %q", entrants[0].Email)
	}
}

func TestAddEntrantRequiresEmail(t *testing.T) {
	st := seedQuiz(t, 2, 2, false)
	m := newRaffleManager(t, st)

	err := m.AddEntrant(context.Background(), "some-raffle", "Ada", "Lovelace", "   ")
	if status := errStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 for a blank email", status)
	}
}

func TestSelectWinnerSingleEntrant(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 2, 2, false)
	m := newRaffleManager(t, st)

	raffle, err := m.New(ctx, "Gift Card", 0.7)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.AddEntrant(ctx, raffle.ID, "Ada", "Lovelace", "ada@example.com"); err != nil {
		t.Fatalf("add entrant: %v", err)
	}

	winner, err := m.SelectWinner(ctx)
	if err != nil {
		t.Fatalf("select winner: %v", err)
	}
	if winner.Email != "ada@example.com" {
		t.Fatalf("winner %q, want the only entrant", winner.Email)
	}

	// The winner is recorded on both the raffle and the entrant.
	current, err := m.Current(ctx, false, false)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Winner == nil || current.Winner.Email != "ada@example.com" {
		t.Fatalf("raffle winner not persisted: %+v", current.Winner)
	}

	doc, err := st.Get(ctx, store.Subscribers, winner.ID)
	if err != nil {
		t.Fatalf("reading entrant: %v", err)
	}
	if won, _ := doc.Data["winner"].(bool); !won {
		t.Fatal("entrant document not flagged as winner")
	}
}

func TestSelectWinnerDrawsFromEntrants(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 2, 2, false)
	m := newRaffleManager(t, st)

	raffle, err := m.New(ctx, "Gift Card", 0.7)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	emails := map[string]bool{
		"a@example.com": true,
		"b@example.com": true,
		"c@example.com": true,
	}
	for email := range emails {
		if err := m.AddEntrant(ctx, raffle.ID, "First", "Last", email); err != nil {
			t.Fatalf("add entrant %q: %v", email, err)
		}
	}

	winner, err := m.SelectWinner(ctx)
	if err != nil {
		t.Fatalf("select winner: %v", err)
	}
	if !emails[winner.Email] {
		t.Fatalf("winner %q is not one of the entrants", winner.Email)
	}
}

func TestSelectWinnerWithoutEntrants(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 2, 2, false)
	m := newRaffleManager(t, st)

	if _, err := m.New(ctx, "Gift Card", 0.7); err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err := m.SelectWinner(ctx)
	if status := errStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 for an empty raffle", status)
	}
}

func TestEditRaffle(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 2, 2, false)
	m := newRaffleManager(t, st)

	raffle, err := m.New(ctx, "Gift Card", 0.7)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := m.Edit(ctx, "Better Prize", 0.9); err != nil {
		t.Fatalf("edit: %v", err)
	}

	edited, err := m.Current(ctx, false, false)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if edited.Prize != "Better Prize" || edited.Requirement != 0.9 {
		t.Fatalf("edit not applied: %+v", edited)
	}
	if !edited.Month.Equal(raffle.Month) {
		t.Fatal("edit must not move the raffle's month")
	}
}

func TestMonthRolloverDropsCachedRaffle(t *testing.T) {
	ctx := context.Background()
	st := seedQuiz(t, 1, 1, true)
	m := newRaffleManager(t, st)

	created, err := m.Current(ctx, true, true)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if m.cachedCurrent(time.Now()) == nil {
		t.Fatal("raffle was not cached")
	}
	if n := st.WatcherCount(store.Raffles); n != 1 {
		t.Fatalf("%d raffle watchers, want 1", n)
	}

	// A lookup in a later month drops the cache and its subscription.
	if stale := m.cachedCurrent(time.Now().AddDate(0, 1, 0)); stale != nil {
		t.Fatalf("raffle %q returned for the next month", stale.ID)
	}
	if n := st.WatcherCount(store.Raffles); n != 0 {
		t.Fatalf("%d raffle watchers after rollover, want 0", n)
	}
	if m.cachedCurrent(time.Now()) != nil {
		t.Fatal("rollover left a cached raffle behind")
	}

	// Resolving again rebuilds the cache and the subscription.
	again, err := m.Current(ctx, true, true)
	if err != nil {
		t.Fatalf("current after rollover: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("resolved raffle %q, want %q", again.ID, created.ID)
	}
	if n := st.WatcherCount(store.Raffles); n != 1 {
		t.Fatalf("%d raffle watchers after re-resolving, want 1", n)
	}
}
