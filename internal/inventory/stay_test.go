package inventory

import (
	"testing"
	"time"

	apperrors "travelbook/pkg/errors"
)

func date(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 0, 0, 0, 0, time.UTC)
}

func TestStay_Overlaps(t *testing.T) {
	existing := NewStay(date(time.January, 10), date(time.January, 15))

	tests := []struct {
		name string
		stay Stay
		want bool
	}{
		{"back to back after", NewStay(date(time.January, 15), date(time.January, 20)), false},
		{"back to back before", NewStay(date(time.January, 5), date(time.January, 10)), false},
		{"overlapping tail", NewStay(date(time.January, 12), date(time.January, 20)), true},
		{"overlapping head", NewStay(date(time.January, 8), date(time.January, 11)), true},
		{"contained", NewStay(date(time.January, 11), date(time.January, 13)), true},
		{"containing", NewStay(date(time.January, 1), date(time.January, 31)), true},
		{"identical", existing, true},
		{"disjoint", NewStay(date(time.February, 1), date(time.February, 3)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stay.Overlaps(existing); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := existing.Overlaps(tt.stay); got != tt.want {
				t.Errorf("Overlaps() is not symmetric: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStay_Validate(t *testing.T) {
	tests := []struct {
		name    string
		stay    Stay
		wantErr bool
	}{
		{"one night", NewStay(date(time.March, 1), date(time.March, 2)), false},
		{"same instant", NewStay(date(time.March, 1), date(time.March, 1)), true},
		{"reversed", NewStay(date(time.March, 2), date(time.March, 1)), true},
		{"zero values", Stay{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.stay.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				appErr := apperrors.AsAppError(err)
				if appErr.Code != apperrors.CodeValidation || appErr.Message != "Invalid interval" {
					t.Errorf("unexpected error %v", appErr)
				}
			}
		})
	}
}

func TestStay_Nights(t *testing.T) {
	start := date(time.April, 1)

	tests := []struct {
		name     string
		checkOut time.Time
		want     int
	}{
		{"exactly one day", start.Add(Day), 1},
		{"five days", start.Add(5 * Day), 5},
		{"partial day rounds up", start.Add(25 * time.Hour), 2},
		{"few hours is one night", start.Add(3 * time.Hour), 1},
		{"empty", start, 0},
		{"negative", start.Add(-Day), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewStay(start, tt.checkOut).Nights(); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewStay_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	stay := NewStay(time.Date(2025, 1, 10, 3, 0, 0, 0, loc), time.Date(2025, 1, 11, 3, 0, 0, 0, loc))

	if stay.CheckIn.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", stay.CheckIn.Location())
	}
	if !stay.CheckIn.Equal(date(time.January, 10)) {
		t.Errorf("unexpected check-in %v", stay.CheckIn)
	}
}

func TestTotalPrice(t *testing.T) {
	tests := []struct {
		price  float64
		nights int
		want   float64
	}{
		{120, 5, 600},
		{99.5, 3, 298.5},
		{250, 1, 250},
	}

	for _, tt := range tests {
		if got := TotalPrice(tt.price, tt.nights); got != tt.want {
			t.Errorf("TotalPrice(%v, %d) = %v, want %v", tt.price, tt.nights, got, tt.want)
		}
	}
}
