package openinghours

import (
	tenantserrors "bookly/internal/tenants/errors"
	"bookly/pkg/model"
	"context"
	"errors"
	"time"
)

type TenantConfigSource interface {
	GetConfig(ctx context.Context, tenant string) (*model.TenantConfig, error)
}

// Zones resolves a tenant's time zone from its configuration, using fallback when the
// tenant has none configured or names an unknown zone.
type Zones struct {
	tenants  TenantConfigSource
	fallback *time.Location
}

func NewZones(tenants TenantConfigSource, fallback *time.Location) *Zones {
	if fallback == nil {
		fallback = time.UTC
	}
	return &Zones{tenants: tenants, fallback: fallback}
}

func (z *Zones) Location(ctx context.Context, tenant string) (*time.Location, error) {
	tc, err := z.tenants.GetConfig(ctx, tenant)
	if err != nil {
		if errors.Is(err, tenantserrors.ErrNotFound) {
			return z.fallback, nil
		}
		return nil, err
	}
	return z.For(tc), nil
}

// For resolves the zone of an already loaded tenant configuration.
func (z *Zones) For(tc *model.TenantConfig) *time.Location {
	if tc == nil || tc.TimeZone == "" {
		return z.fallback
	}
	loc, err := time.LoadLocation(tc.TimeZone)
	if err != nil {
		return z.fallback
	}
	return loc
}
