package repository

import (
	"context"
	"errors"
	"fmt"

	hotelserrors "travelbook/internal/hotels/errors"
	"travelbook/pkg/config"
	mongotx "travelbook/pkg/db/mongo"
	"travelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	HotelsCollection    = "Hotels"
	RoomTypesCollection = "Room_types"
)

type HotelRepository interface {
	FindHotelByID(ctx context.Context, id string) (*model.Hotel, error)
	FindRoomTypeByID(ctx context.Context, id string) (*model.RoomType, error)
	FindRoomTypesByHotel(ctx context.Context, hotel *model.Hotel) ([]*model.RoomType, error)
	ClaimRoomType(ctx context.Context, id string) (*model.RoomType, error)
}

type mongoHotelRepository struct {
	cfg       *config.Config
	hotels    *mongo.Collection
	roomTypes *mongo.Collection
}

func NewMongoHotelRepository(cfg *config.Config) HotelRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHotelRepository{
		cfg:       cfg,
		hotels:    db.Collection(HotelsCollection),
		roomTypes: db.Collection(RoomTypesCollection),
	}
}

func (r *mongoHotelRepository) FindHotelByID(ctx context.Context, id string) (*model.Hotel, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", hotelserrors.ErrInvalidID, id)
	}

	var hotel model.Hotel
	err = r.hotels.FindOne(ctx, bson.M{"_id": objectID}).Decode(&hotel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hotelserrors.ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to find hotel: %w", err)
	}

	return &hotel, nil
}

func (r *mongoHotelRepository) FindRoomTypeByID(ctx context.Context, id string) (*model.RoomType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", hotelserrors.ErrInvalidID, id)
	}

	var roomType model.RoomType
	err = r.roomTypes.FindOne(ctx, bson.M{"_id": objectID}).Decode(&roomType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hotelserrors.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("failed to find room type: %w", err)
	}

	return &roomType, nil
}

// FindRoomTypesByHotel returns room types that either point at the hotel or are listed by it.
func (r *mongoHotelRepository) FindRoomTypesByHotel(ctx context.Context, hotel *model.Hotel) ([]*model.RoomType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	listed := make([]primitive.ObjectID, 0, len(hotel.RoomTypes))
	for _, id := range hotel.RoomTypes {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			listed = append(listed, oid)
		}
	}

	filter := bson.M{
		"$or": []bson.M{
			{"hotel": hotel.ID},
			{"_id": bson.M{"$in": listed}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "price_per_night", Value: 1}})

	cursor, err := r.roomTypes.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find room types: %w", err)
	}
	defer cursor.Close(ctx)

	roomTypes := []*model.RoomType{}
	if err = cursor.All(ctx, &roomTypes); err != nil {
		return nil, fmt.Errorf("failed to decode room types: %w", err)
	}

	return roomTypes, nil
}

// ClaimRoomType increments booking_seq so that two transactions admitting into the
// same room type write the same document and cannot both commit.
func (r *mongoHotelRepository) ClaimRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", hotelserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var roomType model.RoomType
	err = r.roomTypes.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID},
		bson.M{"$inc": bson.M{"booking_seq": 1}},
		opts,
	).Decode(&roomType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hotelserrors.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("failed to claim room type: %w", err)
	}

	return &roomType, nil
}
