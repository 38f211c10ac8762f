package model

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

var bookingTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
// Cancelled and completed are terminal.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentStatusAfter returns the payment status a booking ends up with after moving to status.
func PaymentStatusAfter(status, current string) string {
	if status == BookingStatusCancelled && current == PaymentStatusPaid {
		return PaymentStatusRefunded
	}
	return current
}

type Guests struct {
	Adults   int `json:"adults" bson:"adults" validate:"min=1,max=20"`
	Children int `json:"children" bson:"children" validate:"min=0,max=20"`
}

func (g Guests) Total() int {
	return g.Adults + g.Children
}

type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        string    `json:"user" bson:"user"`
	HotelID       string    `json:"hotel" bson:"hotel"`
	RoomTypeID    string    `json:"roomType" bson:"room_type"`
	CheckInDate   time.Time `json:"checkInDate" bson:"check_in_date"`
	CheckOutDate  time.Time `json:"checkOutDate" bson:"check_out_date"`
	Guests        Guests    `json:"guests" bson:"guests"`
	Nights        int       `json:"nights" bson:"nights"`
	TotalPrice    float64   `json:"totalPrice" bson:"total_price"`
	Status        string    `json:"status" bson:"status"`
	PaymentStatus string    `json:"paymentStatus" bson:"payment_status"`
	BookingDate   time.Time `json:"bookingDate" bson:"booking_date"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

type HotelBookingRequest struct {
	HotelID      string `json:"hotel" validate:"required,mongodb"`
	RoomTypeID   string `json:"roomType" validate:"required,mongodb"`
	CheckInDate  Date   `json:"checkInDate"`
	CheckOutDate Date   `json:"checkOutDate"`
	Guests       Guests `json:"guests"`
}

type AvailabilityRequest struct {
	CheckInDate  Date `json:"checkInDate"`
	CheckOutDate Date `json:"checkOutDate"`
}

// BookingDetails is a booking populated with the documents it references.
type BookingDetails struct {
	*Booking
	User     *UserSummary `json:"userDetails,omitempty"`
	Hotel    *Hotel       `json:"hotelDetails,omitempty"`
	RoomType *RoomType    `json:"roomTypeDetails,omitempty"`
}
