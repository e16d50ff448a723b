package repository

import (
	bookingserrors "bookly/internal/bookings/errors"
	"bookly/pkg/config"
	mongotx "bookly/pkg/db/mongo"
	"bookly/pkg/model"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	ExistsByID(ctx context.Context, tenant, id string) (bool, error)
	FindByID(ctx context.Context, tenant, id string) (*model.Booking, error)
	FindByBookable(ctx context.Context, tenant, bookableID string) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, tenant, id string, update model.BookingStatusUpdate) (*model.Booking, error)
	AppendHook(ctx context.Context, tenant, id string, hook model.Hook) (*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return newMongoBookingRepository(cfg, db.Collection(CollectionName), mongotx.NewTransactionManager(cfg.Client.Mongo))
}

func newMongoBookingRepository(cfg *config.Config, collection *mongo.Collection, tx mongotx.TransactionManager) *mongoBookingRepository {
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: collection,
		txManager:  tx,
	}
}

// EnsureIndexes makes the reference unique per tenant and indexes the line-item lookup
// used by the overlap queries.
func EnsureIndexes(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := mongotx.WithTimeout(ctx, cfg.WriteTimeout)
	defer cancel()

	coll := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "bookable_items.bookable_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if booking.Tenant == "" {
		return bookingserrors.ErrInvalidTenant
	}

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if booking.Hooks == nil {
		booking.Hooks = []model.Hook{}
	}

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateReference, booking.ID)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) ExistsByID(ctx context.Context, tenant, id string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"tenant": tenant, "id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check booking reference: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, tenant, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"tenant": tenant, "id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindByBookable returns every booking of the tenant with a line item referencing the
// bookable, rejected ones included.
func (r *mongoBookingRepository) FindByBookable(ctx context.Context, tenant, bookableID string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"tenant":                     tenant,
		"bookable_items.bookable_id": bookableID,
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "time_begin", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, tenant, id string, update model.BookingStatusUpdate) (*model.Booking, error) {
	set := statusSet(update)
	if len(set) == 0 {
		return nil, bookingserrors.ErrEmptyStatusUpdate
	}
	return r.findOneAndUpdate(ctx, tenant, id, bson.M{"$set": set})
}

func (r *mongoBookingRepository) AppendHook(ctx context.Context, tenant, id string, hook model.Hook) (*model.Booking, error) {
	return r.findOneAndUpdate(ctx, tenant, id, bson.M{"$push": bson.M{"hooks": hook}})
}

func (r *mongoBookingRepository) findOneAndUpdate(ctx context.Context, tenant, id string, update bson.M) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"tenant": tenant, "id": id}, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return &booking, nil
}

func statusSet(update model.BookingStatusUpdate) bson.M {
	set := bson.M{}
	if update.IsCommitted != nil {
		set["is_committed"] = *update.IsCommitted
	}
	if update.IsPayed != nil {
		set["is_payed"] = *update.IsPayed
	}
	if update.IsRejected != nil {
		set["is_rejected"] = *update.IsRejected
	}
	if update.PaymentMethod != nil {
		set["payment_method"] = *update.PaymentMethod
	}
	return set
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
