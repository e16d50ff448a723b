package model

type TenantConfig struct {
	Tenant string `json:"tenant" bson:"tenant"`
	// MaxBookingMonths limits how far in advance a booking may start. 0 disables the limit.
	MaxBookingMonths int    `json:"maxBookingMonths" bson:"max_booking_months"`
	TimeZone         string `json:"timeZone,omitempty" bson:"time_zone,omitempty"`
}

type Event struct {
	ID           string `json:"id" bson:"id"`
	Tenant       string `json:"tenant" bson:"tenant"`
	Name         string `json:"name" bson:"name"`
	MaxAttendees *int   `json:"maxAttendees,omitempty" bson:"max_attendees,omitempty"`
}

type LockerUnit struct {
	ID         string `json:"id" bson:"id"`
	Tenant     string `json:"tenant" bson:"tenant"`
	BookableID string `json:"bookableId" bson:"bookable_id"`
	Name       string `json:"name" bson:"name"`
}
