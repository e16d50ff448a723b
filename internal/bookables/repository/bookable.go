package repository

import (
	bookableserrors "bookly/internal/bookables/errors"
	"bookly/pkg/config"
	mongotx "bookly/pkg/db/mongo"
	"bookly/pkg/model"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName      = "Bookables"
	EventCollectionName = "Events"
)

type BookableRepository interface {
	GetByID(ctx context.Context, tenant, id string) (*model.Bookable, error)
	FindByTenant(ctx context.Context, tenant string) ([]*model.Bookable, error)
	FindByEvent(ctx context.Context, tenant, eventID string) ([]*model.Bookable, error)
	GetEvent(ctx context.Context, tenant, eventID string) (*model.Event, error)
}

type mongoBookableRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	events     *mongo.Collection
}

func NewMongoBookableRepository(cfg *config.Config) BookableRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookableRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		events:     db.Collection(EventCollectionName),
	}
}

func (r *mongoBookableRepository) GetByID(ctx context.Context, tenant, id string) (*model.Bookable, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var bookable model.Bookable
	err := r.collection.FindOne(ctx, bson.M{"tenant": tenant, "id": id}).Decode(&bookable)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookableserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find bookable: %w", err)
	}
	return &bookable, nil
}

func (r *mongoBookableRepository) FindByTenant(ctx context.Context, tenant string) ([]*model.Bookable, error) {
	return r.find(ctx, bson.M{"tenant": tenant})
}

func (r *mongoBookableRepository) FindByEvent(ctx context.Context, tenant, eventID string) ([]*model.Bookable, error) {
	return r.find(ctx, bson.M{"tenant": tenant, "event_id": eventID})
}

func (r *mongoBookableRepository) find(ctx context.Context, filter bson.M) ([]*model.Bookable, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookables: %w", err)
	}
	defer cursor.Close(ctx)

	var bookables []*model.Bookable
	if err = cursor.All(ctx, &bookables); err != nil {
		return nil, fmt.Errorf("failed to decode bookables: %w", err)
	}
	return bookables, nil
}

func (r *mongoBookableRepository) GetEvent(ctx context.Context, tenant, eventID string) (*model.Event, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var event model.Event
	err := r.events.FindOne(ctx, bson.M{"tenant": tenant, "id": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookableserrors.ErrEventNotFound, eventID)
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return &event, nil
}
