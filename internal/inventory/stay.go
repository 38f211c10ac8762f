package inventory

import (
	"time"

	apperrors "travelbook/pkg/errors"
)

const Day = 24 * time.Hour

// Stay is the half-open interval [CheckIn, CheckOut).
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func NewStay(checkIn, checkOut time.Time) Stay {
	return Stay{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
}

func (s Stay) Validate() error {
	if !s.CheckOut.After(s.CheckIn) {
		return apperrors.Validation("Invalid interval", map[string]any{
			"checkInDate":  s.CheckIn,
			"checkOutDate": s.CheckOut,
			"reason":       "checkOutDate must be after checkInDate",
		})
	}
	return nil
}

// Overlaps uses open bounds, so a stay ending on the day another begins does not overlap it.
func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && s.CheckOut.After(other.CheckIn)
}

// Nights counts started 24h periods; a 25h stay is billed as two nights.
func (s Stay) Nights() int {
	d := s.CheckOut.Sub(s.CheckIn)
	if d <= 0 {
		return 0
	}
	nights := d / Day
	if d%Day != 0 {
		nights++
	}
	return int(nights)
}

func TotalPrice(pricePerNight float64, nights int) float64 {
	return pricePerNight * float64(nights)
}
