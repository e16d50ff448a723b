package availability

import (
	"bookly/pkg/model"
	"context"
	"fmt"
	"time"
)

type BookingSource interface {
	FindByBookable(ctx context.Context, tenant, bookableID string) ([]*model.Booking, error)
}

// Overlaps reports whether [aBegin, aEnd) and [bBegin, bEnd) intersect. A nil bound is
// open, so a window without an end extends forever. Windows that only touch do not overlap.
func Overlaps(aBegin, aEnd, bBegin, bEnd *time.Time) bool {
	beforeEnd := func(begin, end *time.Time) bool {
		return begin == nil || end == nil || begin.Before(*end)
	}
	return beforeEnd(aBegin, bEnd) && beforeEnd(bBegin, aEnd)
}

type OverlapEngine struct {
	bookings BookingSource
}

func NewOverlapEngine(bookings BookingSource) *OverlapEngine {
	return &OverlapEngine{bookings: bookings}
}

// OverlappingBookings returns the non-rejected bookings of the bookable that overlap the
// window. For bookables that are not time bound every non-rejected booking counts.
func (e *OverlapEngine) OverlappingBookings(ctx context.Context, bookable *model.Bookable, begin, end *time.Time, excludeID string) ([]*model.Booking, error) {
	all, err := e.bookings.FindByBookable(ctx, bookable.Tenant, bookable.ID)
	if err != nil {
		return nil, fmt.Errorf("load bookings of %s: %w", bookable.ID, err)
	}

	timeBound := bookable.IsTimeBound()
	var out []*model.Booking
	for _, b := range all {
		if b.IsRejected || (excludeID != "" && b.ID == excludeID) {
			continue
		}
		if timeBound && !Overlaps(begin, end, b.TimeBegin, b.TimeEnd) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// BookedAmount sums the units of the bookable held by overlapping bookings.
func (e *OverlapEngine) BookedAmount(ctx context.Context, bookable *model.Bookable, begin, end *time.Time) (int, error) {
	bookings, err := e.OverlappingBookings(ctx, bookable, begin, end, "")
	if err != nil {
		return 0, err
	}
	total := 0
	for _, b := range bookings {
		total += b.AmountFor(bookable.ID)
	}
	return total, nil
}
