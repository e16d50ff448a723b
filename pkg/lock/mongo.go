package lock

import (
	mongotx "bookly/pkg/db/mongo"
	"bookly/pkg/model"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Booking_locks"

// MongoBackend stores one document per held key. The unique _id turns a second
// insert into a duplicate key error, which is reported as ErrLocked.
type MongoBackend struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoBackend(db *mongo.Database, timeout time.Duration) *MongoBackend {
	return &MongoBackend{
		collection: db.Collection(CollectionName),
		timeout:    timeout,
	}
}

// EnsureIndexes creates the TTL index that lets mongo purge abandoned locks.
func (b *MongoBackend) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := mongotx.WithTimeout(ctx, b.timeout)
	defer cancel()

	_, err := b.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create lock ttl index: %w", err)
	}
	return nil
}

func (b *MongoBackend) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	ctx, cancel := mongotx.WithTimeout(ctx, b.timeout)
	defer cancel()

	now := time.Now().UTC()
	lock := model.BookingLock{
		ID:        key,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := b.collection.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to insert lock: %w", err)
	}

	// The TTL monitor runs about once a minute, so an expired lock may still be present.
	res, err := b.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return fmt.Errorf("failed to purge expired lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrLocked
	}

	if _, err := b.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrLocked
		}
		return fmt.Errorf("failed to insert lock: %w", err)
	}
	return nil
}

func (b *MongoBackend) Release(ctx context.Context, key, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, b.timeout)
	defer cancel()

	if _, err := b.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
