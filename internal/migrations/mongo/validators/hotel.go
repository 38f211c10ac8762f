package validators

import "go.mongodb.org/mongo-driver/bson"

var HotelValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "city", "room_types"},
		"additionalProperties": true,
		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},
			"city": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"stars": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  5,
			},
			"room_types": bson.M{
				"bsonType": "array",
				"items":    objectIDString,
			},
		},
	},
}

var RoomTypeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"hotel", "name", "price_per_night", "count_in_stock"},
		"additionalProperties": true,
		"properties": bson.M{
			"hotel": objectIDString,
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"price_per_night": positiveAmount,
			"count_in_stock": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"booking_seq": bson.M{
				"bsonType": []string{"int", "long"},
			},
		},
	},
}
