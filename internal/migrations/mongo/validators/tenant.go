package validators

import "go.mongodb.org/mongo-driver/bson"

var TenantValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"tenant",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"tenant": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"max_booking_months": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  0,
			},

			"time_zone": bson.M{
				"bsonType": "string",
			},
		},
	},
}
