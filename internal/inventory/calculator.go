package inventory

import (
	"context"
	"errors"
	"time"

	hotelserrors "travelbook/internal/hotels/errors"
	mongotx "travelbook/pkg/db/mongo"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/model"
)

type RoomTypeFinder interface {
	FindRoomTypeByID(ctx context.Context, id string) (*model.RoomType, error)
}

// OverlapCounter counts non-cancelled bookings of a room type whose stay overlaps [checkIn, checkOut).
type OverlapCounter interface {
	CountOverlapping(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (int64, error)
}

type Availability struct {
	RoomTypeID   string `json:"roomType"`
	CountInStock int    `json:"countInStock"`
	Booked       int    `json:"booked"`
	Available    int    `json:"available"`
}

// Calculator derives remaining units from the booking ledger. It never writes.
type Calculator struct {
	roomTypes RoomTypeFinder
	bookings  OverlapCounter
}

func NewCalculator(roomTypes RoomTypeFinder, bookings OverlapCounter) *Calculator {
	return &Calculator{
		roomTypes: roomTypes,
		bookings:  bookings,
	}
}

// Available reports CountInStock minus overlapping bookings. The result is not clamped:
// zero or below means the room type cannot take another booking for the stay.
func (c *Calculator) Available(ctx context.Context, roomTypeID string, stay Stay) (*Availability, error) {
	roomType, err := c.roomTypes.FindRoomTypeByID(ctx, roomTypeID)
	if err != nil {
		return nil, lookupError(err, "RoomType", roomTypeID)
	}
	return c.AvailableFor(ctx, roomType, stay)
}

func (c *Calculator) AvailableFor(ctx context.Context, roomType *model.RoomType, stay Stay) (*Availability, error) {
	if err := stay.Validate(); err != nil {
		return nil, err
	}

	booked, err := c.bookings.CountOverlapping(ctx, roomType.ID, stay.CheckIn, stay.CheckOut)
	if err != nil {
		if mongotx.IsContention(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to count overlapping bookings", err)
	}

	return &Availability{
		RoomTypeID:   roomType.ID,
		CountInStock: roomType.CountInStock,
		Booked:       int(booked),
		Available:    roomType.CountInStock - int(booked),
	}, nil
}

// lookupError leaves transaction contention untouched so the transaction layer can retry it
// and report a Conflict.
func lookupError(err error, resource, id string) error {
	switch {
	case mongotx.IsContention(err):
		return err
	case errors.Is(err, hotelserrors.ErrHotelNotFound),
		errors.Is(err, hotelserrors.ErrRoomTypeNotFound),
		errors.Is(err, hotelserrors.ErrInvalidID):
		return apperrors.NotFoundWithID(resource, id)
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.Internal("Failed to load "+resource, err)
	}
}
