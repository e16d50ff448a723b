package model

const (
	AccessAny   = "any"
	AccessOwn   = "own"
	AccessOwner = "owner"

	ResourceBookables = "bookables"
	ResourceBookings  = "bookings"
)

type Permission struct {
	Resource string `json:"resource" bson:"resource"`
	Level    string `json:"level" bson:"level"`
}

// Role groups users of a tenant and the permissions they share.
type Role struct {
	ID          string       `json:"id" bson:"id"`
	Tenant      string       `json:"tenant" bson:"tenant"`
	Name        string       `json:"name" bson:"name"`
	UserIDs     []string     `json:"userIds" bson:"user_ids"`
	Permissions []Permission `json:"permissions" bson:"permissions"`
}
