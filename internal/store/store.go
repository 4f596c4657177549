package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Collection names. Firestore-style sub-collections are flattened into
// top-level collections carrying their parent id as a field.
const (
	Quizzes     = "quizzes"
	Questions   = "questions"
	Raffles     = "raffles"
	Subscribers = "subscribers"
	Meta        = "meta"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrExists is returned by AddUnique when a document already matches
	// the unique key.
	ErrExists = errors.New("store: document already exists")
)

// Doc is an opaque key/value document. Shape validation is the caller's
// responsibility.
type Doc struct {
	ID         string
	Data       bson.M
	CreateTime time.Time
}

// Op is a filter comparison operator.
type Op string

const (
	Eq  Op = "=="
	Gte Op = ">="
	Lt  Op = "<"
)

// Filter narrows a query to documents whose field compares against Value.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where builds an equality filter.
func Where(field string, value any) Filter {
	return Filter{Field: field, Op: Eq, Value: value}
}

// ChangeHandler is invoked once per change notification. It receives no
// payload; subscribers re-read whatever state they care about.
type ChangeHandler func()

// ErrorHandler is invoked when a subscription fails. The subscription is
// dead once this is called; the owner decides whether to resubscribe.
type ErrorHandler func(error)

// Unsubscribe releases a live change listener. Safe to call more than once.
type Unsubscribe func()

// Store is the document store boundary. Every call is a suspension point;
// watch callbacks run on their own goroutines.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Doc, error)
	Set(ctx context.Context, collection, id string, data bson.M, mergeFields ...string) error
	Add(ctx context.Context, collection string, data bson.M) (string, error)
	// AddUnique inserts data only if no document matches the unique
	// filters, as a single conditional write. Returns ErrExists otherwise.
	AddUnique(ctx context.Context, collection string, unique []Filter, data bson.M) (string, error)
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filters ...Filter) ([]Doc, error)
	List(ctx context.Context, collection string) ([]Doc, error)
	WatchDocument(collection, id string, onChange ChangeHandler, onError ErrorHandler) (Unsubscribe, error)
	WatchQuery(collection string, filters []Filter, onChange ChangeHandler, onError ErrorHandler) (Unsubscribe, error)
}
