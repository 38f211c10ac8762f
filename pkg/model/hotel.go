package model

import "time"

type Hotel struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	City      string    `json:"city" bson:"city"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
	Stars     int       `json:"stars,omitempty" bson:"stars,omitempty"`
	RoomTypes []string  `json:"roomTypes" bson:"room_types"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// HasRoomType reports whether the hotel lists roomTypeID among its room types.
func (h *Hotel) HasRoomType(roomTypeID string) bool {
	for _, id := range h.RoomTypes {
		if id == roomTypeID {
			return true
		}
	}
	return false
}

type HotelDetails struct {
	*Hotel
	RoomTypeDetails []*RoomType `json:"roomTypeDetails"`
}
