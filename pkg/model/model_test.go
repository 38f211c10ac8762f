package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCompleted, BookingStatusConfirmed, false},
		{"unknown", BookingStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPaymentStatusAfter(t *testing.T) {
	if got := PaymentStatusAfter(BookingStatusCancelled, PaymentStatusPaid); got != PaymentStatusRefunded {
		t.Errorf("cancelling a paid booking should refund, got %s", got)
	}
	if got := PaymentStatusAfter(BookingStatusCancelled, PaymentStatusPending); got != PaymentStatusPending {
		t.Errorf("cancelling an unpaid booking keeps payment status, got %s", got)
	}
	if got := PaymentStatusAfter(BookingStatusCompleted, PaymentStatusPaid); got != PaymentStatusPaid {
		t.Errorf("completing keeps payment status, got %s", got)
	}
}

func TestRoomType_BelongsTo(t *testing.T) {
	hotel := &Hotel{ID: "h1", RoomTypes: []string{"rt-listed"}}

	tests := []struct {
		name     string
		roomType *RoomType
		want     bool
	}{
		{"hotel reference matches", &RoomType{ID: "rt-owned", HotelID: "h1"}, true},
		{"listed by hotel only", &RoomType{ID: "rt-listed", HotelID: "h2"}, true},
		{"foreign room type", &RoomType{ID: "rt-other", HotelID: "h2"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.roomType.BelongsTo(hotel); got != tt.want {
				t.Errorf("BelongsTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentity_CanAccess(t *testing.T) {
	owner := Identity{UserID: "u1", Role: RoleUser}
	stranger := Identity{UserID: "u2", Role: RoleUser}
	admin := Identity{UserID: "a1", Role: RoleAdmin}
	anonymous := Identity{}

	if !owner.CanAccess("u1") {
		t.Error("owner should access own booking")
	}
	if stranger.CanAccess("u1") {
		t.Error("other users must not access the booking")
	}
	if !admin.CanAccess("u1") {
		t.Error("admin should access any booking")
	}
	if anonymous.CanAccess("") {
		t.Error("an empty identity must not match an empty owner")
	}
}

func TestGuests_Total(t *testing.T) {
	if got := (Guests{Adults: 2, Children: 1}).Total(); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
}
