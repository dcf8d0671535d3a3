package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo is the MongoDB-backed Store. Batches run as multi-document
// transactions, so the deployment must be a replica set.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials uri, verifies the connection and selects database.
func ConnectMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("docstore/mongo: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("docstore/mongo: ping: %w", err)
	}

	return &Mongo{client: client, db: client.Database(database)}, nil
}

// Collection exposes a raw collection handle (used by the log sink).
func (s *Mongo) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndex creates an ascending index on field if it is missing.
func (s *Mongo) EnsureIndex(ctx context.Context, collection, field string) error {
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("docstore/mongo: index %s.%s: %w", collection, field, err)
	}
	return nil
}

// Close disconnects the client.
func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Mongo) All(ctx context.Context, collection string, out any) error {
	return s.find(ctx, collection, bson.D{}, out)
}

func (s *Mongo) Get(ctx context.Context, collection, id string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("docstore/mongo: get %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Mongo) find(ctx context.Context, collection string, filter bson.D, out any) error {
	cur, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("docstore/mongo: find %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("docstore/mongo: decode %s: %w", collection, err)
	}
	return nil
}

func (s *Mongo) Batch() Batch { return &mongoBatch{store: s} }

type mongoBatch struct {
	store *Mongo
	ops   []op
}

func (b *mongoBatch) Set(collection, id string, doc any) Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, doc: doc})
	return b
}

func (b *mongoBatch) DeleteWhere(collection, field string, value any) Batch {
	b.ops = append(b.ops, op{kind: opDeleteWhere, collection: collection, field: field, value: value})
	return b
}

func (b *mongoBatch) Len() int { return len(b.ops) }

// Commit runs the queued operations in a single transaction. The commit is
// attempted once: transient transaction errors are returned, not retried.
func (b *mongoBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}

	sess, err := b.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("docstore/mongo: start session: %w", err)
	}
	defer sess.EndSession(context.Background())

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sess.StartTransaction(); err != nil {
			return err
		}
		for _, o := range b.ops {
			if err := b.apply(sc, o); err != nil {
				_ = sess.AbortTransaction(context.Background())
				return err
			}
		}
		return sess.CommitTransaction(sc)
	})
	if err != nil {
		return fmt.Errorf("docstore/mongo: commit batch of %d: %w", len(b.ops), err)
	}

	b.ops = nil
	return nil
}

func (b *mongoBatch) apply(sc mongo.SessionContext, o op) error {
	col := b.store.db.Collection(o.collection)
	switch o.kind {
	case opSet:
		_, err := col.ReplaceOne(sc, bson.D{{Key: "_id", Value: o.id}}, o.doc, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("set %s/%s: %w", o.collection, o.id, err)
		}
	case opDeleteWhere:
		_, err := col.DeleteMany(sc, bson.D{{Key: o.field, Value: o.value}})
		if err != nil {
			return fmt.Errorf("delete %s where %s: %w", o.collection, o.field, err)
		}
	}
	return nil
}
