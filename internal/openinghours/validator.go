// Package openinghours decides whether a booking window fits the regular weekly hours and
// the special calendar-date hours of a bookable and its ancestors.
package openinghours

import (
	"bookly/internal/hierarchy"
	"bookly/pkg/model"
	"context"
	"fmt"
	"time"
	_ "time/tzdata"
)

// Conflicts reports whether the window violates the bookable's own hours. Long-range
// bookables and bookables without opening-hours flags never conflict.
func Conflicts(b *model.Bookable, begin, end time.Time, loc *time.Location) (bool, error) {
	if b.IsLongRange || (!b.IsOpeningHoursRelated && !b.IsSpecialOpeningHoursRelated) {
		return false, nil
	}

	segments := splitByDay(begin, end, loc)

	if b.IsOpeningHoursRelated {
		conflict, err := regularConflict(b.OpeningHours, segments)
		if err != nil || conflict {
			return conflict, err
		}
	}
	if b.IsSpecialOpeningHoursRelated {
		return specialConflict(b.SpecialOpeningHours, segments)
	}
	return false, nil
}

func regularConflict(hours []model.OpeningHours, segments []segment) (bool, error) {
	for _, seg := range segments {
		if seg.empty() {
			continue
		}
		weekday := int(seg.date.Weekday())

		covered := false
		for _, oh := range hours {
			if !containsWeekday(oh.Weekdays, weekday) {
				continue
			}
			start, err := parseClock(oh.StartTime)
			if err != nil {
				return false, err
			}
			end, err := parseClock(oh.EndTime)
			if err != nil {
				return false, err
			}
			if start <= seg.start && seg.end <= end {
				covered = true
				break
			}
		}
		if !covered {
			return true, nil
		}
	}
	return false, nil
}

func specialConflict(hours []model.SpecialOpeningHours, segments []segment) (bool, error) {
	byDate := make(map[string][]model.SpecialOpeningHours, len(hours))
	for _, sh := range hours {
		byDate[sh.Date] = append(byDate[sh.Date], sh)
	}

	for _, seg := range segments {
		entries, ok := byDate[seg.key()]
		if !ok {
			continue
		}

		covered := seg.empty()
		for _, sh := range entries {
			if sh.IsClosed() {
				return true, nil
			}
			start, err := parseClock(sh.StartTime)
			if err != nil {
				return false, err
			}
			end, err := parseClock(sh.EndTime)
			if err != nil {
				return false, err
			}
			if start <= seg.start && seg.end <= end {
				covered = true
			}
		}
		if !covered {
			return true, nil
		}
	}
	return false, nil
}

func containsWeekday(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// ConflictsInGraph checks the bookable and every ancestor found in g.
func ConflictsInGraph(g *hierarchy.Graph, maxDepth int, b *model.Bookable, begin, end time.Time, loc *time.Location) (bool, error) {
	if b.IsLongRange {
		return false, nil
	}
	conflict, err := Conflicts(b, begin, end, loc)
	if err != nil || conflict {
		return conflict, err
	}
	for _, parent := range g.Ancestors(b.ID, maxDepth) {
		conflict, err := Conflicts(parent, begin, end, loc)
		if err != nil {
			return false, fmt.Errorf("opening hours of %s: %w", parent.ID, err)
		}
		if conflict {
			return true, nil
		}
	}
	return false, nil
}

type ZoneResolver interface {
	Location(ctx context.Context, tenant string) (*time.Location, error)
}

type Validator struct {
	resolver *hierarchy.Resolver
	zones    ZoneResolver
}

func NewValidator(resolver *hierarchy.Resolver, zones ZoneResolver) *Validator {
	return &Validator{resolver: resolver, zones: zones}
}

// HasConflict reports whether [begin, end) is not permitted for the bookable, taking the
// hours of all ancestors into account.
func (v *Validator) HasConflict(ctx context.Context, b *model.Bookable, begin, end time.Time) (bool, error) {
	if b.IsLongRange {
		return false, nil
	}
	loc, err := v.zones.Location(ctx, b.Tenant)
	if err != nil {
		return false, err
	}
	g, err := v.resolver.Graph(ctx, b.Tenant)
	if err != nil {
		return false, err
	}
	return ConflictsInGraph(g, v.resolver.AncestorDepth(), b, begin, end, loc)
}

// RelatedOpeningHours merges the bookable's own hours with those of its ancestors.
func (v *Validator) RelatedOpeningHours(ctx context.Context, b *model.Bookable) (*model.OpeningCalendar, error) {
	g, err := v.resolver.Graph(ctx, b.Tenant)
	if err != nil {
		return nil, err
	}
	contributors := append([]*model.Bookable{b}, g.Ancestors(b.ID, v.resolver.AncestorDepth())...)
	return Merge(contributors)
}
