package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
)

// createTimeField is managed by the adapter on every insert so callers get a
// stable creation timestamp without owning a wire-format detail.
const createTimeField = "createdAt"

// MongoStore implements store.Store on a MongoDB database. Subscriptions are
// backed by change streams, so the deployment must be a replica set.
type MongoStore struct {
	db *mongo.Database
}

// New creates a MongoStore on the given database.
func New(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

var _ store.Store = (*MongoStore)(nil)

func (s *MongoStore) Get(ctx context.Context, collection, id string) (*store.Doc, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	doc := docFromRaw(id, raw)
	return &doc, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, data bson.M, mergeFields ...string) error {
	coll := s.db.Collection(collection)

	if len(mergeFields) == 0 {
		replacement := cloneWithoutID(data)
		opts := options.Replace().SetUpsert(true)
		if _, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, replacement, opts); err != nil {
			return fmt.Errorf("set %s/%s: %w", collection, id, err)
		}
		return nil
	}

	set := bson.M{}
	for _, field := range mergeFields {
		if v, ok := data[field]; ok {
			set[field] = v
		}
	}
	if len(set) == 0 {
		return nil
	}

	opts := options.Update().SetUpsert(true)
	if _, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts); err != nil {
		return fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, data bson.M) (string, error) {
	id := primitive.NewObjectID().Hex()

	insert := cloneWithoutID(data)
	insert["_id"] = id
	insert[createTimeField] = time.Now().UTC()

	if _, err := s.db.Collection(collection).InsertOne(ctx, insert); err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return id, nil
}

// AddUnique inserts data only when no document matches the unique filters.
// The check and the insert are a single FindOneAndUpdate with $setOnInsert,
// so two concurrent calls cannot both insert.
func (s *MongoStore) AddUnique(ctx context.Context, collection string, unique []store.Filter, data bson.M) (string, error) {
	id := primitive.NewObjectID().Hex()

	insert := cloneWithoutID(data)
	insert["_id"] = id
	insert[createTimeField] = time.Now().UTC()

	filter, err := filterQuery(unique)
	if err != nil {
		return "", err
	}

	opts := options.FindOneAndUpdate().SetUpsert(true)
	res := s.db.Collection(collection).FindOneAndUpdate(ctx, filter, bson.M{"$setOnInsert": insert}, opts)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// No prior document matched, so the upsert inserted ours.
			return id, nil
		}
		return "", fmt.Errorf("conditional add to %s: %w", collection, err)
	}

	return "", store.ErrExists
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Doc, error) {
	filter, err := filterQuery(filters)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, collection, filter)
}

func (s *MongoStore) List(ctx context.Context, collection string) ([]store.Doc, error) {
	return s.find(ctx, collection, bson.M{})
}

func (s *MongoStore) find(ctx context.Context, collection string, filter bson.M) ([]store.Doc, error) {
	opts := options.Find().SetSort(bson.M{createTimeField: 1})
	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("decode %s query: %w", collection, err)
	}

	docs := make([]store.Doc, 0, len(raws))
	for _, raw := range raws {
		id, _ := raw["_id"].(string)
		docs = append(docs, docFromRaw(id, raw))
	}
	return docs, nil
}

func (s *MongoStore) WatchDocument(collection, id string, onChange store.ChangeHandler, onError store.ErrorHandler) (store.Unsubscribe, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": id}}},
	}
	return s.watch(collection, pipeline, onChange, onError)
}

// WatchQuery watches the whole collection. Subscribers re-run their query on
// every notification, so collection-level granularity only costs spurious
// wakeups; it also keeps delete events (which carry no fullDocument) visible.
func (s *MongoStore) WatchQuery(collection string, filters []store.Filter, onChange store.ChangeHandler, onError store.ErrorHandler) (store.Unsubscribe, error) {
	return s.watch(collection, mongo.Pipeline{}, onChange, onError)
}

func (s *MongoStore) watch(collection string, pipeline mongo.Pipeline, onChange store.ChangeHandler, onError store.ErrorHandler) (store.Unsubscribe, error) {
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := s.db.Collection(collection).Watch(ctx, pipeline)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", collection, err)
	}

	go func() {
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			onChange()
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			onError(err)
		}
	}()

	return func() { cancel() }, nil
}

func filterQuery(filters []store.Filter) (bson.M, error) {
	query := bson.M{}
	for _, f := range filters {
		switch f.Op {
		case store.Eq:
			query[f.Field] = f.Value
		case store.Gte, store.Lt:
			cond, ok := query[f.Field].(bson.M)
			if !ok {
				cond = bson.M{}
				query[f.Field] = cond
			}
			if f.Op == store.Gte {
				cond["$gte"] = f.Value
			} else {
				cond["$lt"] = f.Value
			}
		default:
			return nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	return query, nil
}

func docFromRaw(id string, raw bson.M) store.Doc {
	data := cloneWithoutID(raw)

	var createTime time.Time
	switch v := data[createTimeField].(type) {
	case time.Time:
		createTime = v
	case primitive.DateTime:
		createTime = v.Time()
	}
	delete(data, createTimeField)

	return store.Doc{ID: id, Data: data, CreateTime: createTime}
}

func cloneWithoutID(data bson.M) bson.M {
	clone := make(bson.M, len(data))
	for k, v := range data {
		if k == "_id" {
			continue
		}
		clone[k] = v
	}
	return clone
}
