package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "travelbook/internal/bookings/repository"
	flightsrepo "travelbook/internal/flights/repository"
	hotelsrepo "travelbook/internal/hotels/repository"
	"travelbook/internal/migrations/mongo/validators"
	"travelbook/pkg/logger"
)

var (
	HotelsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}}},
	}

	RoomTypesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "hotel", Value: 1}}},
	}

	// The first index covers the overlap count run inside every admission.
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_type", Value: 1},
			{Key: "status", Value: 1},
			{Key: "check_in_date", Value: 1},
			{Key: "check_out_date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "user", Value: 1},
			{Key: "booking_date", Value: -1},
		}},
	}

	FlightsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "origin", Value: 1},
			{Key: "destination", Value: 1},
			{Key: "departure_time", Value: 1},
		}},
	}

	FlightBookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "flight", Value: 1},
			{Key: "seat_class", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
	}
)

type CollectionSpec struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() []CollectionSpec {
	return []CollectionSpec{
		{Name: hotelsrepo.HotelsCollection, Indexes: HotelsIndexes, Validator: validators.HotelValidator},
		{Name: hotelsrepo.RoomTypesCollection, Indexes: RoomTypesIndexes, Validator: validators.RoomTypeValidator},
		{Name: bookingsrepo.CollectionName, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: flightsrepo.FlightsCollection, Indexes: FlightsIndexes, Validator: validators.FlightValidator},
		{Name: flightsrepo.FlightBookingsCollection, Indexes: FlightBookingsIndexes, Validator: validators.FlightBookingValidator},
	}
}

// RunMigration is idempotent: existing collections get their validator replaced and missing indexes created.
func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully", "database", dbName)
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
