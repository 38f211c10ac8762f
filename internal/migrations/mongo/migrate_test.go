package mongo

import (
	"reflect"
	"strings"
	"testing"

	"travelbook/internal/migrations/mongo/validators"
	"travelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func bsonFields(v any) map[string]bool {
	fields := make(map[string]bool)
	t := reflect.TypeOf(v)
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("bson"), ",")
		if name != "" && name != "-" {
			fields[name] = true
		}
	}
	return fields
}

// A required field the model never writes would make every insert fail validation.
func TestValidatorsRequireOnlyPersistedFields(t *testing.T) {
	models := map[string]any{
		"Hotels":          model.Hotel{},
		"Room_types":      model.RoomType{},
		"Bookings":        model.Booking{},
		"Flights":         model.Flight{},
		"Flight_bookings": model.FlightBooking{},
	}

	for _, coll := range Collections() {
		t.Run(coll.Name, func(t *testing.T) {
			m, ok := models[coll.Name]
			if !ok {
				t.Fatalf("no model registered for collection %s", coll.Name)
			}
			fields := bsonFields(m)
			schema := coll.Validator["$jsonSchema"].(bson.M)
			for _, req := range schema["required"].([]string) {
				if !fields[req] {
					t.Errorf("required field %q is not persisted by %T", req, m)
				}
			}
			for prop := range schema["properties"].(bson.M) {
				if !fields[prop] {
					t.Errorf("schema property %q is not persisted by %T", prop, m)
				}
			}
		})
	}
}

func TestCollectionsHaveIndexes(t *testing.T) {
	seen := make(map[string]bool)
	for _, coll := range Collections() {
		if seen[coll.Name] {
			t.Errorf("collection %s declared twice", coll.Name)
		}
		seen[coll.Name] = true
		if len(coll.Indexes) == 0 {
			t.Errorf("collection %s has no indexes", coll.Name)
		}
	}
}

func schemaProperty(t *testing.T, validator bson.M, path ...string) bson.M {
	t.Helper()
	node := validator["$jsonSchema"].(bson.M)
	for _, name := range path {
		props, ok := node["properties"].(bson.M)
		if !ok {
			t.Fatalf("no properties above %q", name)
		}
		if node, ok = props[name].(bson.M); !ok {
			t.Fatalf("property %q not declared", name)
		}
	}
	return node
}

// A zero price would let a stay or seat be booked for nothing.
func TestPricesMustBePositive(t *testing.T) {
	tests := []struct {
		name      string
		validator bson.M
		path      []string
	}{
		{"room type price per night", validators.RoomTypeValidator, []string{"price_per_night"}},
		{"booking total price", validators.BookingValidator, []string{"total_price"}},
		{"flight booking total price", validators.FlightBookingValidator, []string{"total_price"}},
		{"economy seat price", validators.FlightValidator, []string{"seats", "economy", "price"}},
		{"business seat price", validators.FlightValidator, []string{"seats", "business", "price"}},
		{"first class seat price", validators.FlightValidator, []string{"seats", "firstClass", "price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop := schemaProperty(t, tt.validator, tt.path...)
			if prop["minimum"] != 0 {
				t.Errorf("minimum = %v, want 0", prop["minimum"])
			}
			if prop["exclusiveMinimum"] != true {
				t.Errorf("exclusiveMinimum = %v, want true", prop["exclusiveMinimum"])
			}
		})
	}
}
