package mongo

import (
	bookablesrepo "bookly/internal/bookables/repository"
	bookingsrepo "bookly/internal/bookings/repository"
	couponsrepo "bookly/internal/coupons/repository"
	"bookly/internal/lockers"
	"bookly/internal/migrations/mongo/validators"
	"bookly/internal/permissions"
	tenantsrepo "bookly/internal/tenants/repository"
	"bookly/pkg/config"
	"bookly/pkg/lock"
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection describes the schema validator and the indexes of one collection.
// Bookings and slot locks own their indexes in their packages.
type Collection struct {
	Name      string
	Validator bson.M
	Indexes   []mongo.IndexModel
}

func tenantUnique(key string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant", Value: 1}, {Key: key, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
}

func Collections() []Collection {
	collections := []Collection{
		{
			Name:      bookablesrepo.CollectionName,
			Validator: validators.BookableValidator,
			Indexes: []mongo.IndexModel{
				tenantUnique("id"),
				{Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "related_bookable_ids", Value: 1}}},
				{Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "event_id", Value: 1}}},
			},
		},
		{
			Name:    bookablesrepo.EventCollectionName,
			Indexes: []mongo.IndexModel{tenantUnique("id")},
		},
		{
			Name:      bookingsrepo.CollectionName,
			Validator: validators.BookingValidator,
		},
		{
			Name:      couponsrepo.CollectionName,
			Validator: validators.CouponValidator,
			Indexes:   []mongo.IndexModel{tenantUnique("id")},
		},
		{
			Name:      tenantsrepo.CollectionName,
			Validator: validators.TenantValidator,
			Indexes: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "tenant", Value: 1}},
				Options: options.Index().SetUnique(true),
			}},
		},
		{
			Name: permissions.CollectionName,
			Indexes: []mongo.IndexModel{
				tenantUnique("id"),
				{Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "user_ids", Value: 1}}},
			},
		},
		{
			Name: lockers.UnitCollectionName,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "bookable_id", Value: 1}, {Key: "name", Value: 1}}},
			},
		},
		{
			Name: lock.CollectionName,
		},
	}

	sort.Slice(collections, func(i, j int) bool { return collections[i].Name < collections[j].Name })
	return collections
}

func RunMigration(ctx context.Context, cfg *config.Config) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	cfg.Log.Info("Running mongo migrations", "database", cfg.MongoDatabaseName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, cfg, db, def.Name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, cfg, db, def.Name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	if err := bookingsrepo.EnsureIndexes(ctx, cfg); err != nil {
		return err
	}
	if err := lock.NewMongoBackend(db, cfg.WriteTimeout).EnsureIndexes(ctx); err != nil {
		return err
	}

	cfg.Log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, cfg *config.Config, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		cfg.Log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	cfg.Log.Debug("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		cfg.Log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, cfg *config.Config, db *mongo.Database, name string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	cfg.Log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
