package validators

import "go.mongodb.org/mongo-driver/bson"

var BookableValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"id",
			"tenant",
			"type",
			"price_eur",
			"price_category",
			"is_bookable",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"tenant": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"room",
					"resource",
					"ticket",
					"event-location",
				},
			},

			"related_bookable_ids": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},

			"amount": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  0,
			},

			"price_eur": bson.M{
				"bsonType": "number",
				"minimum":  0,
			},

			"price_category": bson.M{
				"bsonType": "string",
				"enum": []string{
					"per-item",
					"per-hour",
					"per-day",
				},
			},

			"price_value_added_tax": bson.M{
				"bsonType": "number",
				"minimum":  0,
				"maximum":  100,
			},

			"opening_hours": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"weekdays", "start_time", "end_time"},
					"properties": bson.M{
						"start_time": bson.M{"bsonType": "string", "pattern": clockPattern},
						"end_time":   bson.M{"bsonType": "string", "pattern": clockPattern},
					},
				},
			},

			"special_opening_hours": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"date"},
					"properties": bson.M{
						"date": bson.M{"bsonType": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
					},
				},
			},

			"is_bookable": bson.M{"bsonType": "bool"},
		},
	},
}

const clockPattern = `^([01]\d|2[0-3]):[0-5]\d$`
