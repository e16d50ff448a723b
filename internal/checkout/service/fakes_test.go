package service

import (
	"bookly/internal/availability"
	bookableserrors "bookly/internal/bookables/errors"
	bookingserrors "bookly/internal/bookings/errors"
	"bookly/internal/checkout/validator"
	couponserrors "bookly/internal/coupons/errors"
	"bookly/internal/hierarchy"
	"bookly/internal/openinghours"
	"bookly/internal/pricing"
	tenantserrors "bookly/internal/tenants/errors"
	"bookly/pkg/config"
	mongotx "bookly/pkg/db/mongo"
	"bookly/pkg/lock"
	"bookly/pkg/logger"
	"bookly/pkg/model"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

const testTenant = "acme"

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeBookables struct {
	items  []*model.Bookable
	events map[string]*model.Event
}

func (f *fakeBookables) GetByID(_ context.Context, tenant, id string) (*model.Bookable, error) {
	for _, b := range f.items {
		if b.Tenant == tenant && b.ID == id {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", bookableserrors.ErrNotFound, id)
}

func (f *fakeBookables) FindByTenant(_ context.Context, tenant string) ([]*model.Bookable, error) {
	var out []*model.Bookable
	for _, b := range f.items {
		if b.Tenant == tenant {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookables) FindByEvent(_ context.Context, tenant, eventID string) ([]*model.Bookable, error) {
	var out []*model.Bookable
	for _, b := range f.items {
		if b.Tenant == tenant && b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookables) GetEvent(_ context.Context, _, eventID string) (*model.Event, error) {
	if e, ok := f.events[eventID]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", bookableserrors.ErrEventNotFound, eventID)
}

type fakeBookings struct {
	mu        sync.Mutex
	stored    []*model.Booking
	createErr error
	// onFind runs before every capacity read, outside the mutex.
	onFind func()
}

func (f *fakeBookings) Create(_ context.Context, booking *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	for _, b := range f.stored {
		if b.Tenant == booking.Tenant && b.ID == booking.ID {
			return bookingserrors.ErrDuplicateReference
		}
	}
	booking.CreatedAt = fixedNow
	f.stored = append(f.stored, booking)
	return nil
}

func (f *fakeBookings) ExistsByID(ctx context.Context, tenant, id string) (bool, error) {
	_, err := f.FindByID(ctx, tenant, id)
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeBookings) FindByID(_ context.Context, tenant, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.stored {
		if b.Tenant == tenant && b.ID == id {
			return b, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (f *fakeBookings) FindByBookable(_ context.Context, tenant, bookableID string) ([]*model.Booking, error) {
	if f.onFind != nil {
		f.onFind()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Booking
	for _, b := range f.stored {
		if b.Tenant == tenant && b.References(bookableID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) UpdateStatus(ctx context.Context, tenant, id string, update model.BookingStatusUpdate) (*model.Booking, error) {
	b, err := f.FindByID(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if update.IsRejected != nil {
		b.IsRejected = *update.IsRejected
	}
	return b, nil
}

func (f *fakeBookings) AppendHook(ctx context.Context, tenant, id string, hook model.Hook) (*model.Booking, error) {
	b, err := f.FindByID(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	b.Hooks = append(b.Hooks, hook)
	return b, nil
}

func (f *fakeBookings) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return mongotx.Passthrough{}.ExecuteTransaction(ctx, fn)
}

func (f *fakeBookings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

type fakeTenants struct {
	configs map[string]*model.TenantConfig
}

func (f *fakeTenants) GetConfig(_ context.Context, tenant string) (*model.TenantConfig, error) {
	if tc, ok := f.configs[tenant]; ok {
		return tc, nil
	}
	return nil, tenantserrors.ErrNotFound
}

type fakeCoupons struct {
	coupons    map[string]*model.Coupon
	increments int
}

func (f *fakeCoupons) GetByID(_ context.Context, _, id string) (*model.Coupon, error) {
	if c, ok := f.coupons[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", couponserrors.ErrNotFound, id)
}

func (f *fakeCoupons) IncrementUsage(_ context.Context, _, id string) error {
	c := f.coupons[id]
	if c.MaxAmount != nil && c.UsedAmount >= *c.MaxAmount {
		return couponserrors.ErrUsageExhausted
	}
	c.UsedAmount++
	f.increments++
	return nil
}

type fakeOracle struct {
	admins map[string]bool
	roles  map[string][]string
}

func (f fakeOracle) HasPermission(_ context.Context, userID, _, _, _ string) (bool, error) {
	return f.admins[userID], nil
}

func (f fakeOracle) UsersWithRoles(_ context.Context, _ string, roleIDs []string) ([]string, error) {
	var out []string
	for _, r := range roleIDs {
		out = append(out, f.roles[r]...)
	}
	return out, nil
}

type fakeLockers struct {
	units []model.LockerUnit
}

func (f *fakeLockers) AvailableUnits(_ context.Context, _, bookableID string, _, _ *time.Time, amount int) ([]model.LockerUnit, error) {
	var out []model.LockerUnit
	for _, u := range f.units {
		if u.BookableID == bookableID && len(out) < amount {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*model.Booking
	err       error
}

func (f *fakePublisher) BookingCreated(_ context.Context, booking *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, booking)
	return nil
}

type fixture struct {
	svc       *CheckoutService
	bookables *fakeBookables
	bookings  *fakeBookings
	tenants   *fakeTenants
	coupons   *fakeCoupons
	oracle    fakeOracle
	lockers   *fakeLockers
	publisher *fakePublisher
	locks     *lock.MemoryBackend
	refs      *ReferenceGenerator
}

func newFixture(t *testing.T, bookables ...*model.Bookable) *fixture {
	t.Helper()

	f := &fixture{
		bookables: &fakeBookables{items: bookables, events: map[string]*model.Event{}},
		bookings:  &fakeBookings{},
		tenants:   &fakeTenants{configs: map[string]*model.TenantConfig{}},
		coupons:   &fakeCoupons{coupons: map[string]*model.Coupon{}},
		oracle:    fakeOracle{admins: map[string]bool{}, roles: map[string][]string{}},
		lockers:   &fakeLockers{},
		publisher: &fakePublisher{},
		locks:     lock.NewMemoryBackend(),
		refs:      NewReferenceGenerator(8, 4, 10),
	}

	cfg := &config.Config{Log: logger.Nop()}
	resolver := hierarchy.NewResolver(f.bookables, 0, 0)
	zones := openinghours.NewZones(f.tenants, time.UTC)

	f.svc = NewCheckoutService(cfg, Dependencies{
		Bookables:    f.bookables,
		Bookings:     f.bookings,
		Tenants:      f.tenants,
		Hierarchy:    resolver,
		Checker:      availability.NewChecker(availability.NewOverlapEngine(f.bookings), f.bookables, 0, 0),
		Pricing:      pricing.NewEngine(f.coupons, f.oracle),
		Oracle:       f.oracle,
		Lockers:      f.lockers,
		Locks:        lock.NewManager(f.locks, time.Minute, 0),
		Zones:        zones,
		OpeningHours: openinghours.NewValidator(resolver, zones),
		References:   f.refs,
		Validator:    validator.NewCheckoutValidator(cfg.Log),
		Publisher:    f.publisher,
	})
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

// assertUnlocked fails when a slot lock of any bookable is still held.
func (f *fixture) assertUnlocked(t *testing.T, bookableIDs ...string) {
	t.Helper()
	for _, id := range bookableIDs {
		key := lock.Key(testTenant, id)
		if err := f.locks.TryAcquire(context.Background(), key, "probe", time.Second); err != nil {
			t.Fatalf("lock %s still held: %v", key, err)
		}
		_ = f.locks.Release(context.Background(), key, "probe")
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func room(id string, capacity int) *model.Bookable {
	return &model.Bookable{
		ID:                  id,
		Tenant:              testTenant,
		Title:               "Room " + id,
		Type:                model.BookableRoom,
		Amount:              intPtr(capacity),
		IsTimePeriodRelated: true,
		PriceEur:            10,
		PriceCategory:       model.PricePerHour,
		PriceValueAddedTax:  19,
		IsBookable:          true,
		IsPublic:            true,
		AutoCommitBooking:   true,
	}
}

// window returns a slot on Tuesday 2025-06-03.
func window(fromHour, toHour int) (*time.Time, *time.Time) {
	begin := time.Date(2025, 6, 3, fromHour, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, toHour, 0, 0, 0, time.UTC)
	return &begin, &end
}

func request(begin, end *time.Time, items ...model.CheckoutItem) *model.CheckoutRequest {
	return &model.CheckoutRequest{
		Tenant:    testTenant,
		TimeBegin: begin,
		TimeEnd:   end,
		Items:     items,
		Name:      "Jane Doe",
		Mail:      "jane@example.com",
	}
}

func item(id string, amount int) model.CheckoutItem {
	return model.CheckoutItem{BookableID: id, Amount: amount}
}

func existing(id string, begin, end *time.Time, bookableID string, amount int) *model.Booking {
	return &model.Booking{
		ID:            id,
		Tenant:        testTenant,
		TimeBegin:     begin,
		TimeEnd:       end,
		BookableItems: []model.BookingItem{{BookableID: bookableID, Amount: amount}},
	}
}
