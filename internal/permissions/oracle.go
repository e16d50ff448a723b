// Package permissions answers permission queries against tenant roles. Role and
// permission administration happens elsewhere.
package permissions

import (
	"bookly/pkg/config"
	mongotx "bookly/pkg/db/mongo"
	"bookly/pkg/model"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Roles"

type Oracle interface {
	HasPermission(ctx context.Context, userID, tenant, resource, level string) (bool, error)
	UsersWithRoles(ctx context.Context, tenant string, roleIDs []string) ([]string, error)
}

type mongoOracle struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOracle(cfg *config.Config) Oracle {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOracle{cfg: cfg, collection: db.Collection(CollectionName)}
}

func (o *mongoOracle) HasPermission(ctx context.Context, userID, tenant, resource, level string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, o.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"tenant":   tenant,
		"user_ids": userID,
		"permissions": bson.M{"$elemMatch": bson.M{
			"resource": resource,
			"level":    level,
		}},
	}

	count, err := o.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to query permissions: %w", err)
	}
	return count > 0, nil
}

func (o *mongoOracle) UsersWithRoles(ctx context.Context, tenant string, roleIDs []string) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, o.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"tenant": tenant, "id": bson.M{"$in": roleIDs}}
	cursor, err := o.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"user_ids": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find roles: %w", err)
	}
	defer cursor.Close(ctx)

	var roles []model.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, fmt.Errorf("failed to decode roles: %w", err)
	}

	seen := map[string]struct{}{}
	var users []string
	for _, role := range roles {
		for _, id := range role.UserIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			users = append(users, id)
		}
	}
	return users, nil
}

// UserInRoles reports whether userID is listed directly or holds one of roleIDs.
func UserInRoles(ctx context.Context, oracle Oracle, tenant, userID string, userIDs, roleIDs []string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	for _, id := range userIDs {
		if id == userID {
			return true, nil
		}
	}
	if len(roleIDs) == 0 {
		return false, nil
	}

	members, err := oracle.UsersWithRoles(ctx, tenant, roleIDs)
	if err != nil {
		return false, err
	}
	for _, id := range members {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
