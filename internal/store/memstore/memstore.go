// Package memstore is an in-memory store.Store used by tests in place of
// MongoDB. Writes notify watchers asynchronously, the way change streams
// deliver events.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
)

// createTimeField matches the field mongostore manages on insert. Keeping
// the timestamp inside the data map means a full replace drops it here the
// same way it does on the real backend.
const createTimeField = "createdAt"

type record struct {
	data bson.M
	seq  int
}

type watcher struct {
	id       int
	docID    string // empty for query watches
	onChange store.ChangeHandler
	onError  store.ErrorHandler
}

// MemStore implements store.Store in memory.
type MemStore struct {
	mu          sync.Mutex
	collections map[string]map[string]*record
	watchers    map[string][]*watcher
	seq         int
	nextWatch   int
}

// New creates an empty MemStore.
func New() *MemStore {
	return &MemStore{
		collections: make(map[string]map[string]*record),
		watchers:    make(map[string][]*watcher),
	}
}

var _ store.Store = (*MemStore)(nil)

func (s *MemStore) collection(name string) map[string]*record {
	coll, ok := s.collections[name]
	if !ok {
		coll = make(map[string]*record)
		s.collections[name] = coll
	}
	return coll
}

func (s *MemStore) Get(ctx context.Context, collection, id string) (*store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.collection(collection)[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	doc := docFromRecord(id, rec)
	return &doc, nil
}

func (s *MemStore) Set(ctx context.Context, collection, id string, data bson.M, mergeFields ...string) error {
	s.mu.Lock()
	coll := s.collection(collection)

	rec, ok := coll[id]
	if !ok {
		s.seq++
		rec = &record{data: bson.M{}, seq: s.seq}
		coll[id] = rec
	}

	if len(mergeFields) == 0 {
		rec.data = clone(data)
	} else {
		for _, field := range mergeFields {
			if v, ok := data[field]; ok {
				rec.data[field] = v
			}
		}
	}

	s.notifyLocked(collection, id)
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Add(ctx context.Context, collection string, data bson.M) (string, error) {
	s.mu.Lock()
	id := s.insertLocked(collection, data)
	s.notifyLocked(collection, id)
	s.mu.Unlock()
	return id, nil
}

func (s *MemStore) AddUnique(ctx context.Context, collection string, unique []store.Filter, data bson.M) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.collection(collection) {
		if matches(rec.data, unique) {
			return "", store.ErrExists
		}
	}

	id := s.insertLocked(collection, data)
	s.notifyLocked(collection, id)
	return id, nil
}

func (s *MemStore) insertLocked(collection string, data bson.M) string {
	id := primitive.NewObjectID().Hex()
	stamped := clone(data)
	stamped[createTimeField] = time.Now().UTC()
	s.seq++
	s.collection(collection)[id] = &record{data: stamped, seq: s.seq}
	return id
}

func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.collection(collection), id)
	s.notifyLocked(collection, id)
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []store.Doc
	for id, rec := range s.collection(collection) {
		if matches(rec.data, filters) {
			docs = append(docs, docFromRecord(id, rec))
		}
	}
	sortByCreateTime(docs, s.collection(collection))
	return docs, nil
}

func (s *MemStore) List(ctx context.Context, collection string) ([]store.Doc, error) {
	return s.Query(ctx, collection)
}

func (s *MemStore) WatchDocument(collection, id string, onChange store.ChangeHandler, onError store.ErrorHandler) (store.Unsubscribe, error) {
	return s.addWatcher(collection, id, onChange, onError), nil
}

func (s *MemStore) WatchQuery(collection string, filters []store.Filter, onChange store.ChangeHandler, onError store.ErrorHandler) (store.Unsubscribe, error) {
	return s.addWatcher(collection, "", onChange, onError), nil
}

func (s *MemStore) addWatcher(collection, docID string, onChange store.ChangeHandler, onError store.ErrorHandler) store.Unsubscribe {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextWatch++
	w := &watcher{id: s.nextWatch, docID: docID, onChange: onChange, onError: onError}
	s.watchers[collection] = append(s.watchers[collection], w)

	return func() { s.removeWatcher(collection, w.id) }
}

func (s *MemStore) removeWatcher(collection string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.watchers[collection]
	for i, w := range ws {
		if w.id == id {
			s.watchers[collection] = append(ws[:i], ws[i+1:]...)
			return
		}
	}
}

func (s *MemStore) notifyLocked(collection, docID string) {
	for _, w := range s.watchers[collection] {
		if w.docID != "" && w.docID != docID {
			continue
		}
		go w.onChange()
	}
}

// FailWatchers delivers err to every watcher on the collection and removes
// them, simulating a broken change stream. Test helper.
func (s *MemStore) FailWatchers(collection string, err error) {
	s.mu.Lock()
	ws := s.watchers[collection]
	s.watchers[collection] = nil
	s.mu.Unlock()

	for _, w := range ws {
		go w.onError(err)
	}
}

// WatcherCount reports the number of live watchers on a collection. Test
// helper for leak checks.
func (s *MemStore) WatcherCount(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers[collection])
}

// sortByCreateTime orders docs the way mongostore's find does, ascending by
// the stored timestamp with documents missing one first. Insertion order
// breaks ties.
func sortByCreateTime(docs []store.Doc, coll map[string]*record) {
	sort.Slice(docs, func(i, j int) bool {
		a, b := coll[docs[i].ID], coll[docs[j].ID]
		if !docs[i].CreateTime.Equal(docs[j].CreateTime) {
			return docs[i].CreateTime.Before(docs[j].CreateTime)
		}
		return a.seq < b.seq
	})
}

func docFromRecord(id string, rec *record) store.Doc {
	data := clone(rec.data)
	createTime, _ := data[createTimeField].(time.Time)
	delete(data, createTimeField)
	return store.Doc{ID: id, Data: data, CreateTime: createTime}
}

func matches(data bson.M, filters []store.Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok {
			return false
		}
		cmp, comparable := compare(v, f.Value)
		if !comparable {
			return false
		}
		switch f.Op {
		case store.Eq:
			if cmp != 0 {
				return false
			}
		case store.Gte:
			if cmp < 0 {
				return false
			}
		case store.Lt:
			if cmp >= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func compare(a, b any) (int, bool) {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case at.Before(bt):
			return -1, true
		case at.After(bt):
			return 1, true
		default:
			return 0, true
		}
	}

	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if ok && ab == bb {
			return 0, true
		}
		return 1, ok
	}

	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func clone(data bson.M) bson.M {
	out := make(bson.M, len(data))
	for k, v := range data {
		if m, ok := v.(bson.M); ok {
			out[k] = clone(m)
			continue
		}
		if arr, ok := v.([]any); ok {
			cp := make([]any, len(arr))
			for i, item := range arr {
				if m, ok := item.(bson.M); ok {
					cp[i] = clone(m)
				} else {
					cp[i] = item
				}
			}
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

// Seed inserts a document with a fixed id, bypassing notifications. Test
// helper for building fixtures.
func (s *MemStore) Seed(collection, id string, data bson.M) {
	s.mu.Lock()
	stamped := clone(data)
	stamped[createTimeField] = time.Now().UTC()
	s.seq++
	s.collection(collection)[id] = &record{data: stamped, seq: s.seq}
	s.mu.Unlock()
}

func (s *MemStore) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("memstore(%d collections)", len(s.collections))
}
