package repository_test

import (
	"context"
	"testing"
	"time"

	"travelbook/internal/bookings/repository"
	"travelbook/internal/testutil/mongotest"
	"travelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCountOverlapping_Mongo(t *testing.T) {
	m := mongotest.NewMongoHelper(t)
	repo := repository.NewMongoBookingRepository(m.Config)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hotelID := primitive.NewObjectID().Hex()
	roomTypeID := primitive.NewObjectID().Hex()
	otherRoomTypeID := primitive.NewObjectID().Hex()
	day := func(d int) time.Time { return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC) }

	seed := []struct {
		roomType string
		status   string
		in, out  int
	}{
		{roomTypeID, model.BookingStatusConfirmed, 7, 10},
		{roomTypeID, model.BookingStatusConfirmed, 13, 15},
		{roomTypeID, model.BookingStatusPending, 12, 14},
		{roomTypeID, model.BookingStatusCompleted, 1, 20},
		{roomTypeID, model.BookingStatusCancelled, 10, 13},
		{otherRoomTypeID, model.BookingStatusConfirmed, 10, 13},
	}
	for _, s := range seed {
		err := repo.Create(ctx, &model.Booking{
			UserID:        "user-1",
			HotelID:       hotelID,
			RoomTypeID:    s.roomType,
			CheckInDate:   day(s.in),
			CheckOutDate:  day(s.out),
			Guests:        model.Guests{Adults: 1},
			Nights:        s.out - s.in,
			TotalPrice:    100,
			Status:        s.status,
			PaymentStatus: model.PaymentStatusPaid,
			BookingDate:   time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	tests := []struct {
		name    string
		in, out int
		want    int64
	}{
		{"stay between back to back bookings", 10, 13, 2},
		{"first night only", 10, 11, 1},
		{"last night only", 12, 13, 2},
		{"reaches into the next booking", 12, 14, 3},
		{"after everything", 21, 23, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.CountOverlapping(ctx, roomTypeID, day(tt.in), day(tt.out))
			if err != nil {
				t.Fatalf("CountOverlapping: %v", err)
			}
			if got != tt.want {
				t.Errorf("CountOverlapping = %d, want %d", got, tt.want)
			}
		})
	}
}
