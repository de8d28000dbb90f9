package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/errors"
)

// MongoOptions configures NewMongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	// ConnectTimeout bounds the initial connect and ping. Zero means 10s.
	ConnectTimeout time.Duration
}

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoRecord is the stored document. The architecture is kept as its JSON
// text so that field names match the wire format.
type mongoRecord struct {
	ID           string    `bson:"_id"`
	ClientName   string    `bson:"client_name"`
	WorkshopDate string    `bson:"workshop_date,omitempty"`
	Digest       string    `bson:"digest"`
	Architecture string    `bson:"architecture"`
	CreatedAt    time.Time `bson:"created_at"`
}

// NewMongoStore connects to MongoDB and ensures the collection's indexes.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = "lzdraw"
	}
	if opts.Collection == "" {
		opts.Collection = "architectures"
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "ping mongo")
	}

	s := NewMongoStoreFromClient(client, opts.Database, opts.Collection)
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. The caller keeps
// ownership of index setup.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "digest", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeUpstream, err, "create mongo indexes")
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, rec *Record) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec.Architecture)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal architecture")
	}
	doc := mongoRecord{
		ID:           rec.ID,
		ClientName:   rec.ClientName,
		WorkshopDate: rec.WorkshopDate,
		Digest:       rec.Digest,
		Architecture: string(data),
		CreatedAt:    rec.CreatedAt,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: rec.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeUpstream, err, "save architecture %s", rec.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var doc mongoRecord
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "load architecture %s", id)
	}
	return doc.record()
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(listLimit(limit)))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "list architectures")
	}
	var docs []mongoRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "list architectures")
	}

	recs := make([]*Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.record()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (d mongoRecord) record() (*Record, error) {
	var a arch.Architecture
	if err := json.Unmarshal([]byte(d.Architecture), &a); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode stored architecture %s", d.ID)
	}
	return &Record{
		ID:           d.ID,
		ClientName:   d.ClientName,
		WorkshopDate: d.WorkshopDate,
		Digest:       d.Digest,
		Architecture: &a,
		CreatedAt:    d.CreatedAt,
	}, nil
}

var _ Store = (*MongoStore)(nil)
