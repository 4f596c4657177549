package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
)

// Cache holds the authoritative in-memory snapshot of one quiz, refreshed
// on demand and kept fresh by subscriptions to the quiz document and its
// question collection. The snapshot is replaced wholesale on every refresh;
// readers never observe a partially-built quiz.
type Cache struct {
	st      store.Store
	quizID  string
	backoff Backoff

	mu       sync.RWMutex
	snapshot *models.Quiz

	questionsWatch *watcher
	quizWatch      *watcher
}

// NewCache creates a cache for the given quiz. Call Start to populate it
// and begin listening for changes.
func NewCache(st store.Store, quizID string, backoff Backoff) *Cache {
	return &Cache{st: st, quizID: quizID, backoff: backoff}
}

// load reads the quiz document and the full question collection and
// assembles a fresh Quiz value.
func (c *Cache) load(ctx context.Context) (*models.Quiz, error) {
	quizDoc, err := c.st.Get(ctx, store.Quizzes, c.quizID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apierr.NotFound("quiz %q does not exist", c.quizID)
	}
	if err != nil {
		return nil, apierr.Internal(fmt.Sprintf("loading quiz %q", c.quizID), err)
	}

	questionDocs, err := c.st.Query(ctx, store.Questions, store.Where("quizId", c.quizID))
	if err != nil {
		return nil, apierr.Internal(fmt.Sprintf("loading questions for quiz %q", c.quizID), err)
	}

	questions := make([]models.Question, 0, len(questionDocs))
	for _, doc := range questionDocs {
		question, err := models.DecodeQuestion(doc)
		if err != nil {
			return nil, apierr.Internal(fmt.Sprintf("invalid question %q in quiz %q", doc.ID, c.quizID), err)
		}
		questions = append(questions, *question)
	}

	// Stable order for the admin panel.
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].CreationTime.Before(questions[j].CreationTime)
	})

	quiz, err := models.DecodeQuiz(*quizDoc, questions)
	if err != nil {
		return nil, apierr.Internal(fmt.Sprintf("invalid quiz document %q", c.quizID), err)
	}
	return quiz, nil
}

// Refresh reloads the quiz from the store and swaps the snapshot in a
// single assignment.
func (c *Cache) Refresh(ctx context.Context) error {
	quiz, err := c.load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snapshot = quiz
	c.mu.Unlock()
	return nil
}

// refreshAsync is the change-notification path: failures are logged and the
// stale snapshot stays in place until the next successful refresh.
func (c *Cache) refreshAsync() {
	go func() {
		if err := c.Refresh(context.Background()); err != nil {
			slog.Error("quiz refresh failed, keeping stale snapshot", "quizId", c.quizID, "error", err)
			return
		}
		slog.Debug("quiz snapshot updated", "quizId", c.quizID)
	}()
}

// Start refreshes once, then subscribes to the question collection and the
// quiz document. Change notifications trigger asynchronous refreshes;
// subscription failures self-heal via the watcher without ever surfacing to
// request callers.
func (c *Cache) Start(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}

	c.questionsWatch = newWatcher("questions:"+c.quizID, c.backoff, func(onError store.ErrorHandler) (store.Unsubscribe, error) {
		return c.st.WatchQuery(store.Questions, []store.Filter{store.Where("quizId", c.quizID)}, c.refreshAsync, onError)
	})
	if err := c.questionsWatch.start(); err != nil {
		slog.Error("question subscription failed, retrying in background", "quizId", c.quizID, "error", err)
	}

	c.quizWatch = newWatcher("quiz:"+c.quizID, c.backoff, func(onError store.ErrorHandler) (store.Unsubscribe, error) {
		return c.st.WatchDocument(store.Quizzes, c.quizID, c.refreshAsync, onError)
	})
	if err := c.quizWatch.start(); err != nil {
		slog.Error("quiz subscription failed, retrying in background", "quizId", c.quizID, "error", err)
	}

	return nil
}

// Cached returns the current snapshot without I/O. Nil means the cache has
// not completed a successful refresh yet, not that the quiz is missing.
func (c *Cache) Cached() *models.Quiz {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Close releases both subscriptions.
func (c *Cache) Close() {
	if c.questionsWatch != nil {
		c.questionsWatch.close()
	}
	if c.quizWatch != nil {
		c.quizWatch.close()
	}
}
