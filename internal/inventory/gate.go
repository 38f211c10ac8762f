package inventory

import (
	"context"
	"fmt"
	"time"

	mongotx "travelbook/pkg/db/mongo"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/model"
)

const MsgNoRoomsAvailable = "No rooms available for these dates."

// Catalog resolves hotels and room types and serializes admissions per room type.
type Catalog interface {
	RoomTypeFinder
	FindHotelByID(ctx context.Context, id string) (*model.Hotel, error)
	// ClaimRoomType bumps the room type's booking sequence and returns the updated document.
	// Two transactions claiming the same room type cannot both commit.
	ClaimRoomType(ctx context.Context, id string) (*model.RoomType, error)
}

type Ledger interface {
	OverlapCounter
	Create(ctx context.Context, booking *model.Booking) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type Request struct {
	HotelID    string
	RoomTypeID string
	Stay       Stay
	Guests     model.Guests
	User       model.Identity
}

type Admission struct {
	Booking  *model.Booking
	Hotel    *model.Hotel
	RoomType *model.RoomType
}

// Gate admits hotel bookings without ever overselling a room type.
type Gate struct {
	catalog    Catalog
	ledger     Ledger
	calculator *Calculator
	now        func() time.Time
}

func NewGate(catalog Catalog, ledger Ledger) *Gate {
	return &Gate{
		catalog:    catalog,
		ledger:     ledger,
		calculator: NewCalculator(catalog, ledger),
		now:        time.Now,
	}
}

func (g *Gate) Calculator() *Calculator {
	return g.calculator
}

// Admit checks, in order: hotel exists, room type exists, room type belongs to the hotel,
// the stay is a valid interval, the party fits the room. It then claims the room type,
// recomputes availability and inserts the booking inside one transaction.
func (g *Gate) Admit(ctx context.Context, req Request) (*Admission, error) {
	hotel, err := g.catalog.FindHotelByID(ctx, req.HotelID)
	if err != nil {
		return nil, lookupError(err, "Hotel", req.HotelID)
	}

	roomType, err := g.catalog.FindRoomTypeByID(ctx, req.RoomTypeID)
	if err != nil {
		return nil, lookupError(err, "RoomType", req.RoomTypeID)
	}

	if !roomType.BelongsTo(hotel) {
		return nil, apperrors.Validation("Room type does not belong to this hotel", map[string]any{
			"hotel":    hotel.ID,
			"roomType": roomType.ID,
		})
	}

	if err := req.Stay.Validate(); err != nil {
		return nil, err
	}

	if roomType.Capacity > 0 && req.Guests.Total() > roomType.Capacity {
		return nil, apperrors.Validation("Guest count exceeds room capacity", map[string]any{
			"guests":   req.Guests.Total(),
			"capacity": roomType.Capacity,
		})
	}

	var booking *model.Booking
	err = g.ledger.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// the transaction may be retried, so nothing from a previous attempt is reused
		booking = nil

		claimed, err := g.catalog.ClaimRoomType(txCtx, roomType.ID)
		if err != nil {
			return lookupError(err, "RoomType", roomType.ID)
		}

		availability, err := g.calculator.AvailableFor(txCtx, claimed, req.Stay)
		if err != nil {
			return err
		}
		if availability.Available <= 0 {
			return apperrors.NoAvailability(MsgNoRoomsAvailable, map[string]any{
				"roomType":     claimed.ID,
				"countInStock": availability.CountInStock,
				"booked":       availability.Booked,
			})
		}

		candidate := g.newBooking(req, claimed)
		if err := g.ledger.Create(txCtx, candidate); err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		booking = candidate
		roomType = claimed
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	return &Admission{
		Booking:  booking,
		Hotel:    hotel,
		RoomType: roomType,
	}, nil
}

func (g *Gate) newBooking(req Request, roomType *model.RoomType) *model.Booking {
	now := g.now().UTC().Truncate(time.Millisecond)
	nights := req.Stay.Nights()
	return &model.Booking{
		UserID:        req.User.UserID,
		HotelID:       req.HotelID,
		RoomTypeID:    roomType.ID,
		CheckInDate:   req.Stay.CheckIn,
		CheckOutDate:  req.Stay.CheckOut,
		Guests:        req.Guests,
		Nights:        nights,
		TotalPrice:    TotalPrice(roomType.PricePerNight, nights),
		Status:        model.BookingStatusConfirmed,
		PaymentStatus: model.PaymentStatusPaid,
		BookingDate:   now,
		UpdatedAt:     now,
	}
}
