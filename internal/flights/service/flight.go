package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travelbook/internal/bookings/validator"
	"travelbook/internal/events"
	flightserrors "travelbook/internal/flights/errors"
	"travelbook/internal/flights/repository"
	"travelbook/pkg/config"
	mongotx "travelbook/pkg/db/mongo"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/metrics"
	"travelbook/pkg/model"
)

const MsgNoSeatsAvailable = "No seats available in this class."

type FlightService interface {
	Availability(ctx context.Context, flightID string) ([]*model.SeatAvailability, error)
	Book(ctx context.Context, user model.Identity, req *model.FlightBookingRequest) (*model.FlightBookingDetails, error)
	GetByID(ctx context.Context, user model.Identity, id string) (*model.FlightBookingDetails, error)
	Cancel(ctx context.Context, user model.Identity, id string) (*model.FlightBooking, error)
}

type flightService struct {
	repo      repository.FlightRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewFlightService(
	repo repository.FlightRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
	m *metrics.Metrics,
) FlightService {
	return &flightService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		metrics:   m,
		now:       time.Now,
	}
}

// Availability derives the free seats of every class the flight offers from its live bookings.
func (s *flightService) Availability(ctx context.Context, flightID string) ([]*model.SeatAvailability, error) {
	flight, err := s.repo.FindFlightByID(ctx, flightID)
	if err != nil {
		return nil, s.translateError(ctx, err, "Flight", flightID)
	}

	out := make([]*model.SeatAvailability, 0, len(flight.Seats))
	for _, class := range model.SeatClasses {
		inventory, ok := flight.Seats[class]
		if !ok {
			continue
		}
		availability, err := s.seatAvailability(ctx, flight.ID, class, inventory)
		if err != nil {
			return nil, err
		}
		out = append(out, availability)
	}

	if s.metrics != nil {
		s.metrics.AvailabilityChecks.WithLabelValues(metrics.KindFlight).Add(float64(len(out)))
	}
	return out, nil
}

func (s *flightService) seatAvailability(ctx context.Context, flightID, class string, inventory model.SeatInventory) (*model.SeatAvailability, error) {
	booked, err := s.repo.CountBookedSeats(ctx, flightID, class)
	if err != nil {
		if mongotx.IsContention(err) {
			return nil, err
		}
		s.cfg.Log.FromContext(ctx).Error("Failed to count booked seats", "flight", flightID, "seat_class", class, "error", err)
		return nil, apperrors.Internal("Failed to count booked seats", err)
	}
	return &model.SeatAvailability{
		SeatClass: class,
		Total:     inventory.Total,
		Booked:    booked,
		Available: inventory.Total - booked,
		Price:     inventory.Price,
	}, nil
}

// Book admits a flight booking under the same guard as hotel rooms: the flight document is
// claimed inside the transaction, so concurrent bookings of one flight serialize.
func (s *flightService) Book(ctx context.Context, user model.Identity, req *model.FlightBookingRequest) (*model.FlightBookingDetails, error) {
	booking, flight, err := s.book(ctx, user, req)
	if s.metrics != nil {
		s.metrics.ObserveAdmission(metrics.KindFlight, err)
	}
	if err != nil {
		return nil, err
	}

	s.cfg.Log.FromContext(ctx).Info("Flight booking created",
		"id", booking.ID,
		"user", user.UserID,
		"flight", booking.FlightID,
		"seat_class", booking.SeatClass,
		"passengers", booking.Passengers,
		"total_price", booking.TotalPrice,
	)
	s.publish(ctx, events.TypeFlightConfirmed, booking)

	return &model.FlightBookingDetails{
		FlightBooking: booking,
		User:          user.Summary(),
		Flight:        flight,
	}, nil
}

func (s *flightService) book(ctx context.Context, user model.Identity, req *model.FlightBookingRequest) (*model.FlightBooking, *model.Flight, error) {
	if err := s.validator.ValidateFlightBooking(req); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return nil, nil, apperrors.Validation("Flight booking validation failed", errs.Details())
		}
		return nil, nil, apperrors.Validation("Flight booking validation failed", map[string]any{"error": err.Error()})
	}

	flight, err := s.repo.FindFlightByID(ctx, req.FlightID)
	if err != nil {
		return nil, nil, s.translateError(ctx, err, "Flight", req.FlightID)
	}
	if _, ok := flight.Seats[req.SeatClass]; !ok {
		return nil, nil, apperrors.Validation("Seat class not offered on this flight", map[string]any{
			"flight":    flight.ID,
			"seatClass": req.SeatClass,
		})
	}

	var booking *model.FlightBooking
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		booking = nil

		claimed, err := s.repo.ClaimFlight(txCtx, flight.ID)
		if err != nil {
			return s.translateError(txCtx, err, "Flight", flight.ID)
		}
		inventory := claimed.Seats[req.SeatClass]

		availability, err := s.seatAvailability(txCtx, claimed.ID, req.SeatClass, inventory)
		if err != nil {
			return err
		}
		if availability.Available < req.Passengers {
			return apperrors.NoAvailability(MsgNoSeatsAvailable, map[string]any{
				"seatClass": req.SeatClass,
				"available": availability.Available,
				"requested": req.Passengers,
			})
		}

		now := s.now().UTC().Truncate(time.Millisecond)
		candidate := &model.FlightBooking{
			UserID:        user.UserID,
			FlightID:      claimed.ID,
			SeatClass:     req.SeatClass,
			Passengers:    req.Passengers,
			TotalPrice:    inventory.Price * float64(req.Passengers),
			Status:        model.BookingStatusConfirmed,
			PaymentStatus: model.PaymentStatusPaid,
			BookingDate:   now,
			UpdatedAt:     now,
		}
		if err := s.repo.Create(txCtx, candidate); err != nil {
			return fmt.Errorf("failed to insert flight booking: %w", err)
		}
		booking = candidate
		flight = claimed
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, nil, err
		}
		s.cfg.Log.FromContext(ctx).Error("Failed to book flight", "flight", req.FlightID, "error", err)
		return nil, nil, apperrors.Internal("Failed to create flight booking", err)
	}

	return booking, flight, nil
}

func (s *flightService) GetByID(ctx context.Context, user model.Identity, id string) (*model.FlightBookingDetails, error) {
	booking, err := s.findOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	details := &model.FlightBookingDetails{
		FlightBooking: booking,
		User:          &model.UserSummary{ID: booking.UserID},
	}
	if booking.UserID == user.UserID {
		details.User = user.Summary()
	}
	if flight, err := s.repo.FindFlightByID(ctx, booking.FlightID); err == nil {
		details.Flight = flight
	}
	return details, nil
}

func (s *flightService) Cancel(ctx context.Context, user model.Identity, id string) (*model.FlightBooking, error) {
	booking, err := s.findOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	to := model.BookingStatusCancelled
	if !model.CanTransition(booking.Status, to) {
		return nil, apperrors.Validation("Booking cannot move from "+booking.Status+" to "+to, map[string]any{
			"status": booking.Status,
			"target": to,
		})
	}

	updated, err := s.repo.TransitionStatus(ctx, id, booking.Status, to, model.PaymentStatusAfter(to, booking.PaymentStatus))
	if err != nil {
		if errors.Is(err, flightserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Booking was modified concurrently, please retry")
		}
		s.cfg.Log.FromContext(ctx).Error("Failed to cancel flight booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update flight booking", err)
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(metrics.KindFlight, to).Inc()
	}
	s.cfg.Log.FromContext(ctx).Info("Flight booking cancelled", "id", id, "by", user.UserID, "payment_status", updated.PaymentStatus)
	s.publish(ctx, events.TypeFlightCancelled, updated)
	return updated, nil
}

func (s *flightService) findOwned(ctx context.Context, user model.Identity, id string) (*model.FlightBooking, error) {
	booking, err := s.repo.FindBookingByID(ctx, id)
	if err != nil {
		return nil, s.translateError(ctx, err, "FlightBooking", id)
	}
	if !user.CanAccess(booking.UserID) {
		return nil, apperrors.NotFoundWithID("FlightBooking", id)
	}
	return booking, nil
}

func (s *flightService) publish(ctx context.Context, eventType string, booking *model.FlightBooking) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, events.FlightBookingEvent(eventType, booking))
	}
}

func (s *flightService) translateError(ctx context.Context, err error, resource, id string) error {
	switch {
	case mongotx.IsContention(err):
		return err
	case errors.Is(err, flightserrors.ErrFlightNotFound),
		errors.Is(err, flightserrors.ErrBookingNotFound),
		errors.Is(err, flightserrors.ErrInvalidID):
		return apperrors.NotFoundWithID(resource, id)
	case apperrors.IsAppError(err):
		return err
	default:
		s.cfg.Log.FromContext(ctx).Error("Failed to load "+resource, "id", id, "error", err)
		return apperrors.Internal("Failed to load "+resource, err)
	}
}
