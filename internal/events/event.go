package events

import (
	"time"

	"travelbook/pkg/model"
)

const (
	TypeHotelConfirmed  = "booking.hotel.confirmed"
	TypeHotelCancelled  = "booking.hotel.cancelled"
	TypeHotelCompleted  = "booking.hotel.completed"
	TypeFlightConfirmed = "booking.flight.confirmed"
	TypeFlightCancelled = "booking.flight.cancelled"

	SchemaVersion = "1"
)

// Event is the payload written to the booking-events topic.
type Event struct {
	Type          string     `json:"type"`
	OccurredAt    time.Time  `json:"occurredAt"`
	BookingID     string     `json:"bookingId"`
	UserID        string     `json:"user"`
	ResourceID    string     `json:"resourceId"`
	HotelID       string     `json:"hotel,omitempty"`
	CheckInDate   *time.Time `json:"checkInDate,omitempty"`
	CheckOutDate  *time.Time `json:"checkOutDate,omitempty"`
	SeatClass     string     `json:"seatClass,omitempty"`
	Quantity      int        `json:"quantity"`
	TotalPrice    float64    `json:"totalPrice"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"paymentStatus"`
}

func HotelBookingEvent(eventType string, b *model.Booking) Event {
	checkIn, checkOut := b.CheckInDate, b.CheckOutDate
	return Event{
		Type:          eventType,
		OccurredAt:    time.Now().UTC(),
		BookingID:     b.ID,
		UserID:        b.UserID,
		ResourceID:    b.RoomTypeID,
		HotelID:       b.HotelID,
		CheckInDate:   &checkIn,
		CheckOutDate:  &checkOut,
		Quantity:      b.Guests.Total(),
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
	}
}

func FlightBookingEvent(eventType string, b *model.FlightBooking) Event {
	return Event{
		Type:          eventType,
		OccurredAt:    time.Now().UTC(),
		BookingID:     b.ID,
		UserID:        b.UserID,
		ResourceID:    b.FlightID,
		SeatClass:     b.SeatClass,
		Quantity:      b.Passengers,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
	}
}
