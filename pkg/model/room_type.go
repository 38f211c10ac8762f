package model

import "time"

type RoomType struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	HotelID       string    `json:"hotel" bson:"hotel"`
	Name          string    `json:"name" bson:"name"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	PricePerNight float64   `json:"pricePerNight" bson:"price_per_night"`
	CountInStock  int       `json:"countInStock" bson:"count_in_stock"`
	Capacity      int       `json:"capacity" bson:"capacity"`
	Amenities     []string  `json:"amenities,omitempty" bson:"amenities,omitempty"`
	BookingSeq    int64     `json:"-" bson:"booking_seq"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// BelongsTo accepts either side of the hotel/room type relation as proof of ownership.
func (rt *RoomType) BelongsTo(hotel *Hotel) bool {
	return rt.HotelID == hotel.ID || hotel.HasRoomType(rt.ID)
}

type RoomTypeAvailability struct {
	*RoomType
	AvailableCount int `json:"availableCount"`
}
