package openinghours

import (
	"bookly/pkg/model"
	"sort"
)

type dayWindow struct {
	start, end int
}

// Merge combines the hours of several bookables into one calendar. Per weekday the
// earliest start and the earliest end win. Per special date a closed entry wins over
// partial ones, otherwise the first partial entry is kept.
func Merge(bookables []*model.Bookable) (*model.OpeningCalendar, error) {
	days := map[int]dayWindow{}
	special := map[string]model.SpecialOpeningHours{}
	var dates []string

	for _, b := range bookables {
		if b.IsOpeningHoursRelated {
			for _, oh := range b.OpeningHours {
				start, err := parseClock(oh.StartTime)
				if err != nil {
					return nil, err
				}
				end, err := parseClock(oh.EndTime)
				if err != nil {
					return nil, err
				}
				for _, wd := range oh.Weekdays {
					cur, ok := days[wd]
					if !ok {
						days[wd] = dayWindow{start: start, end: end}
						continue
					}
					cur.start = min(cur.start, start)
					cur.end = min(cur.end, end)
					days[wd] = cur
				}
			}
		}

		if b.IsSpecialOpeningHoursRelated {
			for _, sh := range b.SpecialOpeningHours {
				cur, ok := special[sh.Date]
				if !ok {
					special[sh.Date] = sh
					dates = append(dates, sh.Date)
					continue
				}
				if !cur.IsClosed() && sh.IsClosed() {
					special[sh.Date] = sh
				}
			}
		}
	}

	cal := &model.OpeningCalendar{
		OpeningHours:        []model.OpeningHours{},
		SpecialOpeningHours: []model.SpecialOpeningHours{},
	}

	weekdays := make([]int, 0, len(days))
	for wd := range days {
		weekdays = append(weekdays, wd)
	}
	sort.Ints(weekdays)
	for _, wd := range weekdays {
		w := days[wd]
		cal.OpeningHours = append(cal.OpeningHours, model.OpeningHours{
			Weekdays:  []int{wd},
			StartTime: formatClock(w.start),
			EndTime:   formatClock(w.end),
		})
	}

	sort.Strings(dates)
	for _, d := range dates {
		cal.SpecialOpeningHours = append(cal.SpecialOpeningHours, special[d])
	}
	return cal, nil
}
