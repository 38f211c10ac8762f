package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	flightserrors "travelbook/internal/flights/errors"
	"travelbook/pkg/config"
	mongotx "travelbook/pkg/db/mongo"
	"travelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	FlightsCollection        = "Flights"
	FlightBookingsCollection = "Flight_bookings"
)

type FlightRepository interface {
	FindFlightByID(ctx context.Context, id string) (*model.Flight, error)
	// ClaimFlight bumps the flight's booking sequence so that two seat admissions on one
	// flight cannot both commit.
	ClaimFlight(ctx context.Context, id string) (*model.Flight, error)
	CountBookedSeats(ctx context.Context, flightID, seatClass string) (int, error)
	Create(ctx context.Context, booking *model.FlightBooking) error
	FindBookingByID(ctx context.Context, id string) (*model.FlightBooking, error)
	TransitionStatus(ctx context.Context, id, from, to, paymentStatus string) (*model.FlightBooking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoFlightRepository struct {
	cfg       *config.Config
	flights   *mongo.Collection
	bookings  *mongo.Collection
	txManager mongotx.TransactionManager
}

func NewMongoFlightRepository(cfg *config.Config) FlightRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFlightRepository{
		cfg:       cfg,
		flights:   db.Collection(FlightsCollection),
		bookings:  db.Collection(FlightBookingsCollection),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoFlightRepository) FindFlightByID(ctx context.Context, id string) (*model.Flight, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", flightserrors.ErrInvalidID, id)
	}

	var flight model.Flight
	err = r.flights.FindOne(ctx, bson.M{"_id": objectID}).Decode(&flight)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, flightserrors.ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to find flight: %w", err)
	}
	return &flight, nil
}

func (r *mongoFlightRepository) ClaimFlight(ctx context.Context, id string) (*model.Flight, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", flightserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var flight model.Flight
	err = r.flights.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$inc": bson.M{"booking_seq": 1}}, opts).Decode(&flight)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, flightserrors.ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to claim flight: %w", err)
	}
	return &flight, nil
}

// BookedSeatsPipeline sums passengers over live bookings of one class on a flight.
func BookedSeatsPipeline(flightID, seatClass string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"flight":     flightID,
			"seat_class": seatClass,
			"status":     bson.M{"$ne": model.BookingStatusCancelled},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"booked": bson.M{"$sum": "$passengers"},
		}}},
	}
}

func (r *mongoFlightRepository) CountBookedSeats(ctx context.Context, flightID, seatClass string) (int, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.bookings.Aggregate(ctx, BookedSeatsPipeline(flightID, seatClass))
	if err != nil {
		return 0, fmt.Errorf("failed to count booked seats: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Booked int `bson:"booked"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, fmt.Errorf("failed to decode booked seats: %w", err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Booked, nil
}

func (r *mongoFlightRepository) Create(ctx context.Context, booking *model.FlightBooking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.bookings.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create flight booking: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoFlightRepository) FindBookingByID(ctx context.Context, id string) (*model.FlightBooking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", flightserrors.ErrInvalidID, id)
	}

	var booking model.FlightBooking
	err = r.bookings.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, flightserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find flight booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoFlightRepository) TransitionStatus(ctx context.Context, id, from, to, paymentStatus string) (*model.FlightBooking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", flightserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":         to,
			"payment_status": paymentStatus,
			"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.FlightBooking
	err = r.bookings.FindOneAndUpdate(ctx, bson.M{"_id": objectID, "status": from}, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, flightserrors.ErrStatusChanged
		}
		return nil, fmt.Errorf("failed to update flight booking status: %w", err)
	}
	return &booking, nil
}

func (r *mongoFlightRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
