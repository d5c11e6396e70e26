package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store on MongoDB. Live queries are built on
// change streams: every stream event triggers a full re-read of the
// subscribed query, preserving the recompute-from-scratch contract.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// NewMongoStore connects and verifies the connection before returning.
func NewMongoStore(ctx context.Context, uri, name string, logger *slog.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect document database: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping document database: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(name),
		logger: logger,
	}, nil
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{
		col:    s.db.Collection(name),
		logger: s.logger.With("collection", name),
	}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the Command Center queries rely on.
// Safe to run repeatedly.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"booking": {
			{Keys: bson.D{{Key: "for_censorship", Value: 1}, {Key: "created", Value: -1}}},
		},
		"wishlist": {
			{Keys: bson.D{{Key: "deleted", Value: 1}}},
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "deleted", Value: 1}}},
		},
		"price-configurations": {
			{Keys: bson.D{{Key: "created", Value: -1}}},
		},
		"command_center_users": {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		"companies": {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		"products": {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

type mongoCollection struct {
	col    *mongo.Collection
	logger *slog.Logger
}

// idValue maps our string ids onto whatever _id shape the collection
// uses: hex strings become ObjectIDs, everything else stays a string.
func idValue(id string) any {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func documentFromRaw(raw bson.M) Document {
	doc := Document{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			switch id := v.(type) {
			case bson.ObjectID:
				doc.ID = id.Hex()
			case string:
				doc.ID = id
			default:
				doc.ID = fmt.Sprintf("%v", id)
			}
			continue
		}
		if dt, ok := v.(bson.DateTime); ok {
			doc.Fields[k] = dt.Time().UTC()
			continue
		}
		doc.Fields[k] = v
	}
	return doc
}

func (c *mongoCollection) Get(ctx context.Context, id string) (Document, error) {
	var raw bson.M
	err := c.col.FindOne(ctx, bson.M{"_id": idValue(id)}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return documentFromRaw(raw), nil
}

func (c *mongoCollection) Set(ctx context.Context, id string, fields map[string]any) error {
	replacement := bson.M{}
	for k, v := range fields {
		replacement[k] = v
	}
	_, err := c.col.ReplaceOne(ctx, bson.M{"_id": idValue(id)}, replacement,
		options.Replace().SetUpsert(true))
	return err
}

func (c *mongoCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	res, err := c.col.UpdateOne(ctx, bson.M{"_id": idValue(id)}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Delete(ctx context.Context, id string) error {
	_, err := c.col.DeleteOne(ctx, bson.M{"_id": idValue(id)})
	return err
}

func filterDoc(q Query) bson.M {
	filter := bson.M{}
	for _, f := range q.Filters {
		filter[f.Field] = f.Value
	}
	return filter
}

func (c *mongoCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	filter := filterDoc(q)
	dir := 1
	if q.Descending {
		dir = -1
	}

	reversed := false
	if q.OrderBy != "" && (q.StartAfter != "" || q.EndBefore != "") {
		cursorID := q.StartAfter
		before := false
		if cursorID == "" {
			cursorID = q.EndBefore
			before = true
		}
		cursorDoc, err := c.Get(ctx, cursorID)
		if err != nil {
			return nil, fmt.Errorf("resolve pagination cursor %s: %w", cursorID, err)
		}
		sortKey := cursorDoc.Fields[q.OrderBy]

		// Keyset step over (sort key, _id). A previous-page read walks
		// the opposite direction and is reversed back afterwards.
		op := "$lt"
		if dir > 0 {
			op = "$gt"
		}
		if before {
			if op == "$lt" {
				op = "$gt"
			} else {
				op = "$lt"
			}
			dir = -dir
			reversed = true
		}
		filter["$or"] = bson.A{
			bson.M{q.OrderBy: bson.M{op: sortKey}},
			bson.M{q.OrderBy: sortKey, "_id": bson.M{op: idValue(cursorID)}},
		}
	}

	opts := options.Find()
	if q.OrderBy != "" {
		opts = opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}, {Key: "_id", Value: dir}})
	}
	if q.Limit > 0 {
		opts = opts.SetLimit(int64(q.Limit))
	}

	cur, err := c.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, documentFromRaw(raw))
	}
	if reversed {
		for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
			docs[i], docs[j] = docs[j], docs[i]
		}
	}
	return docs, nil
}

func (c *mongoCollection) Count(ctx context.Context, q Query) (int, error) {
	n, err := c.col.CountDocuments(ctx, filterDoc(q))
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (c *mongoCollection) Watch(ctx context.Context, q Query, onSnapshot func([]Document), onError func(error)) (Unsubscribe, error) {
	wctx, cancel := context.WithCancel(ctx)

	stream, err := c.col.Watch(wctx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch collection: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer stream.Close(context.Background())

		emit := func() {
			docs, err := c.Find(wctx, q)
			if err != nil {
				if wctx.Err() != nil {
					return
				}
				c.logger.Error("live query re-read failed", "error", err)
				onError(err)
				return
			}
			onSnapshot(docs)
		}

		emit()

		for stream.Next(wctx) {
			emit()
		}
		if err := stream.Err(); err != nil && wctx.Err() == nil {
			c.logger.Error("change stream failed", "error", err)
			onError(err)
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}
