// Package lockers assigns physical locker units to bookings of locker-enabled bookables.
package lockers

import (
	bookingsrepo "bookly/internal/bookings/repository"
	"bookly/pkg/config"
	mongotx "bookly/pkg/db/mongo"
	"bookly/pkg/model"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const UnitCollectionName = "LockerUnits"

type Service interface {
	// AvailableUnits returns up to amount units of the bookable that are not assigned
	// to an active booking overlapping [begin, end). Fewer units mean not enough are free.
	AvailableUnits(ctx context.Context, tenant, bookableID string, begin, end *time.Time, amount int) ([]model.LockerUnit, error)
}

type mongoService struct {
	cfg      *config.Config
	units    *mongo.Collection
	bookings *mongo.Collection
}

func NewMongoService(cfg *config.Config) Service {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoService{
		cfg:      cfg,
		units:    db.Collection(UnitCollectionName),
		bookings: db.Collection(bookingsrepo.CollectionName),
	}
}

func (s *mongoService) AvailableUnits(ctx context.Context, tenant, bookableID string, begin, end *time.Time, amount int) ([]model.LockerUnit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	taken, err := s.takenUnits(ctx, tenant, bookableID, begin, end)
	if err != nil {
		return nil, err
	}

	cursor, err := s.units.Find(ctx,
		bson.M{"tenant": tenant, "bookable_id": bookableID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find locker units: %w", err)
	}
	defer cursor.Close(ctx)

	var units []model.LockerUnit
	if err := cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("failed to decode locker units: %w", err)
	}

	return pickFree(units, taken, amount), nil
}

func (s *mongoService) takenUnits(ctx context.Context, tenant, bookableID string, begin, end *time.Time) (map[string]struct{}, error) {
	filter := bson.M{
		"tenant":                  tenant,
		"is_rejected":             bson.M{"$ne": true},
		"locker_info.bookable_id": bookableID,
	}
	if begin != nil && end != nil {
		filter["time_begin"] = bson.M{"$lt": *end}
		filter["time_end"] = bson.M{"$gt": *begin}
	}

	cursor, err := s.bookings.Find(ctx, filter, options.Find().SetProjection(bson.M{"locker_info": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find locker assignments: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode locker assignments: %w", err)
	}

	taken := map[string]struct{}{}
	for _, b := range bookings {
		for _, a := range b.LockerInfo {
			if a.BookableID == bookableID {
				taken[a.UnitID] = struct{}{}
			}
		}
	}
	return taken, nil
}

func pickFree(units []model.LockerUnit, taken map[string]struct{}, amount int) []model.LockerUnit {
	free := make([]model.LockerUnit, 0, amount)
	for _, u := range units {
		if len(free) == amount {
			break
		}
		if _, ok := taken[u.ID]; ok {
			continue
		}
		free = append(free, u)
	}
	return free
}
