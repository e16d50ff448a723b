package repository

import (
	tenantserrors "bookly/internal/tenants/errors"
	"bookly/pkg/config"
	mongotx "bookly/pkg/db/mongo"
	"bookly/pkg/model"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Tenants"

type TenantRepository interface {
	GetConfig(ctx context.Context, tenant string) (*model.TenantConfig, error)
}

type mongoTenantRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTenantRepository(cfg *config.Config) TenantRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTenantRepository{cfg: cfg, collection: db.Collection(CollectionName)}
}

func (r *mongoTenantRepository) GetConfig(ctx context.Context, tenant string) (*model.TenantConfig, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var tc model.TenantConfig
	err := r.collection.FindOne(ctx, bson.M{"tenant": tenant}).Decode(&tc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", tenantserrors.ErrNotFound, tenant)
		}
		return nil, fmt.Errorf("failed to find tenant config: %w", err)
	}
	return &tc, nil
}
