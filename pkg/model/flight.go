package model

import "time"

const (
	SeatClassEconomy    = "economy"
	SeatClassBusiness   = "business"
	SeatClassFirstClass = "firstClass"
)

var SeatClasses = []string{SeatClassEconomy, SeatClassBusiness, SeatClassFirstClass}

type SeatInventory struct {
	Total int     `json:"total" bson:"total"`
	Price float64 `json:"price" bson:"price"`
}

type Flight struct {
	ID            string                   `json:"id,omitempty" bson:"_id,omitempty"`
	Airline       string                   `json:"airline" bson:"airline"`
	FlightNumber  string                   `json:"flightNumber" bson:"flight_number"`
	Origin        string                   `json:"origin" bson:"origin"`
	Destination   string                   `json:"destination" bson:"destination"`
	DepartureTime time.Time                `json:"departureTime" bson:"departure_time"`
	ArrivalTime   time.Time                `json:"arrivalTime" bson:"arrival_time"`
	Seats         map[string]SeatInventory `json:"seats" bson:"seats"`
	BookingSeq    int64                    `json:"-" bson:"booking_seq"`
	CreatedAt     time.Time                `json:"createdAt" bson:"created_at"`
}

type SeatAvailability struct {
	SeatClass string  `json:"seatClass"`
	Total     int     `json:"total"`
	Booked    int     `json:"booked"`
	Available int     `json:"available"`
	Price     float64 `json:"price"`
}

type FlightBooking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        string    `json:"user" bson:"user"`
	FlightID      string    `json:"flight" bson:"flight"`
	SeatClass     string    `json:"seatClass" bson:"seat_class"`
	Passengers    int       `json:"passengers" bson:"passengers"`
	TotalPrice    float64   `json:"totalPrice" bson:"total_price"`
	Status        string    `json:"status" bson:"status"`
	PaymentStatus string    `json:"paymentStatus" bson:"payment_status"`
	BookingDate   time.Time `json:"bookingDate" bson:"booking_date"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

type FlightBookingRequest struct {
	FlightID   string `json:"flight" validate:"required,mongodb"`
	SeatClass  string `json:"seatClass" validate:"required,oneof=economy business firstClass"`
	Passengers int    `json:"passengers" validate:"required,min=1,max=9"`
}

type FlightBookingDetails struct {
	*FlightBooking
	User   *UserSummary `json:"userDetails,omitempty"`
	Flight *Flight      `json:"flightDetails,omitempty"`
}
