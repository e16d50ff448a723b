package repository

import (
	couponserrors "bookly/internal/coupons/errors"
	"bookly/pkg/config"
	mongotx "bookly/pkg/db/mongo"
	"bookly/pkg/model"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Coupons"

type CouponRepository interface {
	GetByID(ctx context.Context, tenant, id string) (*model.Coupon, error)
	IncrementUsage(ctx context.Context, tenant, id string) error
}

type mongoCouponRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCouponRepository(cfg *config.Config) CouponRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCouponRepository{cfg: cfg, collection: db.Collection(CollectionName)}
}

func newMongoCouponRepository(cfg *config.Config, collection *mongo.Collection) *mongoCouponRepository {
	return &mongoCouponRepository{cfg: cfg, collection: collection}
}

func (r *mongoCouponRepository) GetByID(ctx context.Context, tenant, id string) (*model.Coupon, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var coupon model.Coupon
	err := r.collection.FindOne(ctx, bson.M{"tenant": tenant, "id": id}).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", couponserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}
	return &coupon, nil
}

// IncrementUsage bumps used_amount by one, but only while it is below max_amount
// (or no max is set). The condition and the increment are a single update.
func (r *mongoCouponRepository) IncrementUsage(ctx context.Context, tenant, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"tenant": tenant,
		"id":     id,
		"$or": bson.A{
			bson.M{"max_amount": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_amount", "$max_amount"}}},
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"used_amount": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", couponserrors.ErrUsageExhausted, id)
	}
	return nil
}
