package validators

import "go.mongodb.org/mongo-driver/bson"

var CouponValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"id",
			"tenant",
			"type",
			"discount",
			"used_amount",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"tenant": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"percentage",
					"fixed",
				},
			},

			"discount": bson.M{
				"bsonType": "number",
				"minimum":  0,
			},

			"used_amount": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  0,
			},

			"max_amount": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  0,
			},

			"valid_from": bson.M{"bsonType": "date"},
			"valid_to":   bson.M{"bsonType": "date"},
		},
	},
}
