package validators

import "go.mongodb.org/mongo-driver/bson"

var seatInventory = bson.M{
	"bsonType": "object",
	"required": []string{"total", "price"},
	"properties": bson.M{
		"total": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
		"price": positiveAmount,
	},
}

var FlightValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"airline", "flight_number", "origin", "destination", "departure_time", "seats"},
		"additionalProperties": true,
		"properties": bson.M{
			"airline":        bson.M{"bsonType": "string", "minLength": 1},
			"flight_number":  bson.M{"bsonType": "string", "minLength": 1},
			"origin":         bson.M{"bsonType": "string", "minLength": 1},
			"destination":    bson.M{"bsonType": "string", "minLength": 1},
			"departure_time": bson.M{"bsonType": "date"},
			"arrival_time":   bson.M{"bsonType": "date"},
			"seats": bson.M{
				"bsonType":             "object",
				"additionalProperties": false,
				"properties": bson.M{
					"economy":    seatInventory,
					"business":   seatInventory,
					"firstClass": seatInventory,
				},
			},
		},
	},
}

var FlightBookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user",
			"flight",
			"seat_class",
			"passengers",
			"total_price",
			"status",
			"payment_status",
			"booking_date",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"user":   bson.M{"bsonType": "string", "minLength": 1},
			"flight": objectIDString,
			"seat_class": bson.M{
				"bsonType": "string",
				"enum":     []string{"economy", "business", "firstClass"},
			},
			"passengers": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  9,
			},
			"total_price":    positiveAmount,
			"status":         bookingStatus,
			"payment_status": paymentStatus,
			"booking_date":   bson.M{"bsonType": "date"},
		},
	},
}
