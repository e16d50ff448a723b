package availability

import (
	"bookly/internal/hierarchy"
	apperrors "bookly/pkg/errors"
	"bookly/pkg/model"
	"context"
	"fmt"
	"time"
)

type EventSource interface {
	GetEvent(ctx context.Context, tenant, eventID string) (*model.Event, error)
	FindByEvent(ctx context.Context, tenant, eventID string) ([]*model.Bookable, error)
}

// Pending holds units per bookable already claimed by earlier items of the same bundle.
// All items of a bundle share one time window, so pending units always overlap.
type Pending map[string]int

func (p Pending) Add(bookableID string, amount int) {
	p[bookableID] += amount
}

// Request describes the units one item wants to reserve.
type Request struct {
	Bookable *model.Bookable
	Begin    *time.Time
	End      *time.Time
	Amount   int
	Pending  Pending
}

func (r Request) pending(bookableID string) int {
	if r.Pending == nil {
		return 0
	}
	return r.Pending[bookableID]
}

type Checker struct {
	overlap         *OverlapEngine
	events          EventSource
	ancestorDepth   int
	descendantDepth int
}

func NewChecker(overlap *OverlapEngine, events EventSource, ancestorDepth, descendantDepth int) *Checker {
	if ancestorDepth <= 0 {
		ancestorDepth = hierarchy.DefaultAncestorDepth
	}
	if descendantDepth <= 0 {
		descendantDepth = hierarchy.DefaultDescendantDepth
	}
	return &Checker{
		overlap:         overlap,
		events:          events,
		ancestorDepth:   ancestorDepth,
		descendantDepth: descendantDepth,
	}
}

// CheckAvailability fails when the bookable's own capacity cannot hold the request.
func (c *Checker) CheckAvailability(ctx context.Context, req Request) error {
	b := req.Bookable
	if b.Amount == nil {
		return nil
	}

	booked, err := c.overlap.BookedAmount(ctx, b, req.Begin, req.End)
	if err != nil {
		return err
	}
	booked += req.pending(b.ID)

	if booked+req.Amount > *b.Amount {
		return apperrors.Rejected(apperrors.ReasonCapacityExceeded,
			fmt.Sprintf("%s is not available in the requested amount", b.Title)).
			WithDetails(map[string]any{"bookable_id": b.ID, "booked": booked, "capacity": *b.Amount})
	}
	return nil
}

// CheckParentAvailability repeats the capacity check for every ancestor. Ticket bookables
// share the ancestor's pool with all of its descendants.
func (c *Checker) CheckParentAvailability(ctx context.Context, g *hierarchy.Graph, req Request) error {
	for _, parent := range g.Ancestors(req.Bookable.ID, c.ancestorDepth) {
		if parent.Amount == nil {
			continue
		}

		var booked int
		var err error
		if req.Bookable.IsTicket() {
			booked, err = c.poolAmount(ctx, g, parent, req)
		} else {
			booked, err = c.overlap.BookedAmount(ctx, parent, req.Begin, req.End)
			booked += req.pending(parent.ID)
		}
		if err != nil {
			return err
		}

		if booked+req.Amount > *parent.Amount {
			return apperrors.Rejected(apperrors.ReasonParentConflict,
				fmt.Sprintf("%s is not available because %s is fully booked", req.Bookable.Title, parent.Title)).
				WithDetails(map[string]any{"bookable_id": req.Bookable.ID, "parent_id": parent.ID})
		}
	}
	return nil
}

func (c *Checker) poolAmount(ctx context.Context, g *hierarchy.Graph, parent *model.Bookable, req Request) (int, error) {
	total := 0
	for _, d := range g.Descendants(parent.ID, c.descendantDepth) {
		booked, err := c.overlap.BookedAmount(ctx, d, req.Begin, req.End)
		if err != nil {
			return 0, err
		}
		total += booked + req.pending(d.ID)
	}
	return total, nil
}

// CheckChildBookings fails when any descendant is already reserved in the window.
func (c *Checker) CheckChildBookings(ctx context.Context, g *hierarchy.Graph, req Request) error {
	for _, child := range g.Descendants(req.Bookable.ID, c.descendantDepth) {
		conflict := req.pending(child.ID) > 0
		if !conflict {
			bookings, err := c.overlap.OverlappingBookings(ctx, child, req.Begin, req.End, "")
			if err != nil {
				return err
			}
			conflict = len(bookings) > 0
		}
		if conflict {
			return apperrors.Rejected(apperrors.ReasonChildConflict,
				fmt.Sprintf("%s is not available because %s is already booked", req.Bookable.Title, child.Title)).
				WithDetails(map[string]any{"bookable_id": req.Bookable.ID, "child_id": child.ID})
		}
	}
	return nil
}

// CheckEventSeats caps the tickets of an event at its attendee limit.
func (c *Checker) CheckEventSeats(ctx context.Context, req Request) error {
	b := req.Bookable
	if !b.IsTicket() || b.EventID == "" {
		return nil
	}

	event, err := c.events.GetEvent(ctx, b.Tenant, b.EventID)
	if err != nil {
		return err
	}
	if event.MaxAttendees == nil {
		return nil
	}

	tickets, err := c.events.FindByEvent(ctx, b.Tenant, b.EventID)
	if err != nil {
		return fmt.Errorf("load tickets of event %s: %w", b.EventID, err)
	}

	sold := 0
	for _, ticket := range tickets {
		booked, err := c.overlap.BookedAmount(ctx, ticket, req.Begin, req.End)
		if err != nil {
			return err
		}
		sold += booked + req.pending(ticket.ID)
	}

	if sold+req.Amount > *event.MaxAttendees {
		return apperrors.Rejected(apperrors.ReasonEventSoldOut,
			fmt.Sprintf("Not enough tickets left for %s", event.Name)).
			WithDetails(map[string]any{"event_id": event.ID, "sold": sold, "max_attendees": *event.MaxAttendees})
	}
	return nil
}
