package validators

import "go.mongodb.org/mongo-driver/bson"

var objectIDString = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}

// positiveAmount rejects zero and negative prices.
var positiveAmount = bson.M{
	"bsonType":         []string{"double", "int", "long", "decimal"},
	"minimum":          0,
	"exclusiveMinimum": true,
}

var bookingStatus = bson.M{
	"bsonType": "string",
	"enum":     []string{"pending", "confirmed", "cancelled", "completed"},
}

var paymentStatus = bson.M{
	"bsonType": "string",
	"enum":     []string{"pending", "paid", "refunded", "failed"},
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user",
			"hotel",
			"room_type",
			"check_in_date",
			"check_out_date",
			"guests",
			"total_price",
			"status",
			"payment_status",
			"booking_date",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user":      bson.M{"bsonType": "string", "minLength": 1},
			"hotel":     objectIDString,
			"room_type": objectIDString,

			"check_in_date": bson.M{
				"bsonType": "date",
			},

			"check_out_date": bson.M{
				"bsonType": "date",
			},

			"guests": bson.M{
				"bsonType": "object",
				"required": []string{"adults"},
				"properties": bson.M{
					"adults":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 20},
					"children": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 20},
				},
			},

			"nights": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"total_price": positiveAmount,

			"status":         bookingStatus,
			"payment_status": paymentStatus,

			"booking_date": bson.M{
				"bsonType": "date",
			},
		},
	},
}
