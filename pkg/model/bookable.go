package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookableType string

const (
	BookableRoom          BookableType = "room"
	BookableResource      BookableType = "resource"
	BookableTicket        BookableType = "ticket"
	BookableEventLocation BookableType = "event-location"
)

type PriceCategory string

const (
	PricePerItem PriceCategory = "per-item"
	PricePerHour PriceCategory = "per-hour"
	PricePerDay  PriceCategory = "per-day"
)

// OpeningHours is a weekly recurring window. Weekdays follow time.Weekday (0 = Sunday),
// times are clock times "HH:MM" in the tenant time zone.
type OpeningHours struct {
	Weekdays  []int  `json:"weekdays" bson:"weekdays" validate:"required,min=1,max=7,dive,min=0,max=6"`
	StartTime string `json:"startTime" bson:"start_time" validate:"required"`
	EndTime   string `json:"endTime" bson:"end_time" validate:"required"`
}

// SpecialOpeningHours overrides a single calendar date. StartTime == EndTime marks the
// date as closed.
type SpecialOpeningHours struct {
	Date      string `json:"date" bson:"date" validate:"required"`
	StartTime string `json:"startTime" bson:"start_time"`
	EndTime   string `json:"endTime" bson:"end_time"`
}

func (s SpecialOpeningHours) IsClosed() bool {
	return s.StartTime == s.EndTime
}

type Attachment struct {
	ID              string `json:"id" bson:"id"`
	Title           string `json:"title" bson:"title"`
	MimeType        string `json:"mimeType" bson:"mime_type"`
	SendWithBooking bool   `json:"sendWithBooking" bson:"send_with_booking"`
}

type LockerDetails struct {
	Active bool `json:"active" bson:"active"`
}

type Bookable struct {
	MongoID primitive.ObjectID `json:"-" bson:"_id,omitempty"`

	ID     string       `json:"id" bson:"id"`
	Tenant string       `json:"tenant" bson:"tenant"`
	Title  string       `json:"title" bson:"title"`
	Type   BookableType `json:"type" bson:"type"`

	RelatedBookableIDs []string `json:"relatedBookableIds" bson:"related_bookable_ids"`

	// Amount nil means unlimited capacity.
	Amount             *int     `json:"amount,omitempty" bson:"amount,omitempty"`
	MinBookingDuration *float64 `json:"minBookingDuration,omitempty" bson:"min_booking_duration,omitempty"`
	MaxBookingDuration *float64 `json:"maxBookingDuration,omitempty" bson:"max_booking_duration,omitempty"`

	IsScheduleRelated            bool                  `json:"isScheduleRelated" bson:"is_schedule_related"`
	IsTimePeriodRelated          bool                  `json:"isTimePeriodRelated" bson:"is_time_period_related"`
	IsOpeningHoursRelated        bool                  `json:"isOpeningHoursRelated" bson:"is_opening_hours_related"`
	IsSpecialOpeningHoursRelated bool                  `json:"isSpecialOpeningHoursRelated" bson:"is_special_opening_hours_related"`
	IsLongRange                  bool                  `json:"isLongRange" bson:"is_long_range"`
	OpeningHours                 []OpeningHours        `json:"openingHours,omitempty" bson:"opening_hours,omitempty"`
	SpecialOpeningHours          []SpecialOpeningHours `json:"specialOpeningHours,omitempty" bson:"special_opening_hours,omitempty"`

	PriceEur           float64       `json:"priceEur" bson:"price_eur"`
	PriceCategory      PriceCategory `json:"priceCategory" bson:"price_category"`
	PriceValueAddedTax float64       `json:"priceValueAddedTax" bson:"price_value_added_tax"`

	PermittedUsers   []string `json:"permittedUsers,omitempty" bson:"permitted_users,omitempty"`
	PermittedRoles   []string `json:"permittedRoles,omitempty" bson:"permitted_roles,omitempty"`
	FreeBookingUsers []string `json:"freeBookingUsers,omitempty" bson:"free_booking_users,omitempty"`
	FreeBookingRoles []string `json:"freeBookingRoles,omitempty" bson:"free_booking_roles,omitempty"`

	IsBookable        bool `json:"isBookable" bson:"is_bookable"`
	IsPublic          bool `json:"isPublic" bson:"is_public"`
	AutoCommitBooking bool `json:"autoCommitBooking" bson:"auto_commit_booking"`

	EventID       string         `json:"eventId,omitempty" bson:"event_id,omitempty"`
	Attachments   []Attachment   `json:"attachments,omitempty" bson:"attachments,omitempty"`
	LockerDetails *LockerDetails `json:"lockerDetails,omitempty" bson:"locker_details,omitempty"`
}

// IsTimeBound reports whether capacity is sliced by time. Bookables without any of these
// flags use a plain counter over all active bookings.
func (b *Bookable) IsTimeBound() bool {
	return b.IsScheduleRelated || b.IsTimePeriodRelated || b.IsLongRange
}

// IsTimeRelated extends IsTimeBound with the opening-hours flags, which imply a requested
// window as well.
func (b *Bookable) IsTimeRelated() bool {
	return b.IsTimeBound() || b.IsOpeningHoursRelated || b.IsSpecialOpeningHoursRelated
}

func (b *Bookable) IsTicket() bool {
	return b.Type == BookableTicket
}

func (b *Bookable) UsesLockers() bool {
	return b.LockerDetails != nil && b.LockerDetails.Active
}

// Snapshot returns a deep-enough copy of the bookable for freezing into a booking item.
// The storage identifier is dropped.
func (b *Bookable) Snapshot() *Bookable {
	cp := *b
	cp.MongoID = primitive.NilObjectID
	cp.RelatedBookableIDs = append([]string(nil), b.RelatedBookableIDs...)
	cp.OpeningHours = append([]OpeningHours(nil), b.OpeningHours...)
	cp.SpecialOpeningHours = append([]SpecialOpeningHours(nil), b.SpecialOpeningHours...)
	cp.Attachments = append([]Attachment(nil), b.Attachments...)
	if b.Amount != nil {
		amount := *b.Amount
		cp.Amount = &amount
	}
	return &cp
}

// OpeningCalendar is the merged view of a bookable's own and inherited opening hours.
type OpeningCalendar struct {
	OpeningHours        []OpeningHours        `json:"openingHours"`
	SpecialOpeningHours []SpecialOpeningHours `json:"specialOpeningHours"`
}

// PriceQuote holds the four prices of one line item.
type PriceQuote struct {
	RegularPriceEur      float64 `json:"regularPriceEur"`
	RegularGrossPriceEur float64 `json:"regularGrossPriceEur"`
	UserPriceEur         float64 `json:"userPriceEur"`
	UserGrossPriceEur    float64 `json:"userGrossPriceEur"`
}
