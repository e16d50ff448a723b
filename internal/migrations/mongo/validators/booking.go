package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"id",
			"tenant",
			"bookable_items",
			"price_eur",
			"is_committed",
			"is_payed",
			"is_rejected",
			"hooks",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"id": bson.M{
				"bsonType":  "string",
				"minLength": 4,
				"maxLength": 64,
			},

			"tenant": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"time_begin": bson.M{
				"bsonType": "date",
			},

			"time_end": bson.M{
				"bsonType": "date",
			},

			"bookable_items": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"bookable_id", "amount"},
					"properties": bson.M{
						"bookable_id": bson.M{"bsonType": "string"},
						"amount": bson.M{
							"bsonType": bson.A{"int", "long"},
							"minimum":  1,
						},
					},
				},
			},

			"price_eur": bson.M{
				"bsonType": "number",
				"minimum":  0,
			},

			"is_committed": bson.M{"bsonType": "bool"},
			"is_payed":     bson.M{"bsonType": "bool"},
			"is_rejected":  bson.M{"bsonType": "bool"},

			"hooks": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "type", "timestamp"},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
