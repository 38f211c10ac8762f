package service

import (
	"context"
	"errors"
	"sync"

	bookingserrors "travelbook/internal/bookings/errors"
	"travelbook/internal/bookings/repository"
	"travelbook/internal/bookings/validator"
	"travelbook/internal/events"
	"travelbook/internal/inventory"
	"travelbook/pkg/config"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/metrics"
	"travelbook/pkg/model"
)

type BookingService interface {
	Create(ctx context.Context, user model.Identity, req *model.HotelBookingRequest) (*model.BookingDetails, error)
	GetByID(ctx context.Context, user model.Identity, id string) (*model.BookingDetails, error)
	ListMine(ctx context.Context, user model.Identity, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, user model.Identity, id string) (*model.Booking, error)
	Complete(ctx context.Context, user model.Identity, id string) (*model.Booking, error)
}

// Catalog populates a booking with the hotel and room type it references.
type Catalog interface {
	FindHotelByID(ctx context.Context, id string) (*model.Hotel, error)
	FindRoomTypeByID(ctx context.Context, id string) (*model.RoomType, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	catalog   Catalog
	gate      *inventory.Gate
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	metrics   *metrics.Metrics
}

func NewBookingService(
	repo repository.BookingRepository,
	catalog Catalog,
	gate *inventory.Gate,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
	m *metrics.Metrics,
) BookingService {
	return &bookingService{
		repo:      repo,
		catalog:   catalog,
		gate:      gate,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		metrics:   m,
	}
}

func (s *bookingService) Create(ctx context.Context, user model.Identity, req *model.HotelBookingRequest) (*model.BookingDetails, error) {
	log := s.cfg.Log.FromContext(ctx)

	if err := s.validator.ValidateHotelBooking(req); err != nil {
		log.Warn("Booking validation failed", "user", user.UserID, "error", err)
		s.observe(err)
		return nil, validationError(err)
	}

	admission, err := s.gate.Admit(ctx, inventory.Request{
		HotelID:    req.HotelID,
		RoomTypeID: req.RoomTypeID,
		Stay:       inventory.NewStay(req.CheckInDate.Time, req.CheckOutDate.Time),
		Guests:     req.Guests,
		User:       user,
	})
	s.observe(err)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			log.Error("Failed to admit booking", "user", user.UserID, "room_type", req.RoomTypeID, "error", err)
		} else {
			log.Info("Booking rejected",
				"user", user.UserID,
				"hotel", req.HotelID,
				"room_type", req.RoomTypeID,
				"code", apperrors.AsAppError(err).Code,
			)
		}
		return nil, err
	}

	booking := admission.Booking
	log.Info("Booking created",
		"id", booking.ID,
		"user", user.UserID,
		"room_type", booking.RoomTypeID,
		"check_in", booking.CheckInDate,
		"check_out", booking.CheckOutDate,
		"total_price", booking.TotalPrice,
	)
	s.publish(ctx, events.TypeHotelConfirmed, booking)

	return &model.BookingDetails{
		Booking:  booking,
		User:     user.Summary(),
		Hotel:    admission.Hotel,
		RoomType: admission.RoomType,
	}, nil
}

func (s *bookingService) GetByID(ctx context.Context, user model.Identity, id string) (*model.BookingDetails, error) {
	booking, err := s.findOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	details := &model.BookingDetails{Booking: booking}
	if booking.UserID == user.UserID {
		details.User = user.Summary()
	} else {
		details.User = &model.UserSummary{ID: booking.UserID}
	}

	// a hotel or room type deleted since the booking was made is simply left out
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if hotel, err := s.catalog.FindHotelByID(ctx, booking.HotelID); err == nil {
			details.Hotel = hotel
		}
	}()
	go func() {
		defer wg.Done()
		if roomType, err := s.catalog.FindRoomTypeByID(ctx, booking.RoomTypeID); err == nil {
			details.RoomType = roomType
		}
	}()
	wg.Wait()

	return details, nil
}

func (s *bookingService) ListMine(ctx context.Context, user model.Identity, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByUser(ctx, user.UserID)
		if err != nil {
			s.cfg.Log.FromContext(ctx).Error("Failed to count bookings", "user", user.UserID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByUser(ctx, user.UserID, limit, offset)
		if err != nil {
			s.cfg.Log.FromContext(ctx).Error("Failed to list bookings", "user", user.UserID, "limit", limit, "offset", offset, "error", err)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Cancel(ctx context.Context, user model.Identity, id string) (*model.Booking, error) {
	booking, err := s.transition(ctx, user, id, model.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeHotelCancelled, booking)
	return booking, nil
}

func (s *bookingService) Complete(ctx context.Context, user model.Identity, id string) (*model.Booking, error) {
	if !user.IsAdmin() {
		return nil, apperrors.Forbidden("Not authorized as " + model.RoleAdmin)
	}
	booking, err := s.transition(ctx, user, id, model.BookingStatusCompleted)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeHotelCompleted, booking)
	return booking, nil
}

// transition applies the booking state machine. The update is conditional on the status
// that was read, so a concurrent transition surfaces as a Conflict instead of being overwritten.
func (s *bookingService) transition(ctx context.Context, user model.Identity, id, to string) (*model.Booking, error) {
	booking, err := s.findOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(booking.Status, to) {
		return nil, apperrors.Validation("Booking cannot move from "+booking.Status+" to "+to, map[string]any{
			"status": booking.Status,
			"target": to,
		})
	}

	updated, err := s.repo.TransitionStatus(ctx, id, booking.Status, to, model.PaymentStatusAfter(to, booking.PaymentStatus))
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Booking was modified concurrently, please retry")
		}
		s.cfg.Log.FromContext(ctx).Error("Failed to update booking status", "id", id, "target", to, "error", err)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(metrics.KindHotel, to).Inc()
	}
	s.cfg.Log.FromContext(ctx).Info("Booking status changed",
		"id", id,
		"from", booking.Status,
		"to", to,
		"payment_status", updated.PaymentStatus,
		"by", user.UserID,
	)
	return updated, nil
}

// findOwned loads a booking the caller may see. Anyone else gets a NotFound so that
// booking ids cannot be enumerated.
func (s *bookingService) findOwned(ctx context.Context, user model.Identity, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		default:
			s.cfg.Log.FromContext(ctx).Error("Failed to retrieve booking", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to retrieve booking", err)
		}
	}

	if !user.CanAccess(booking.UserID) {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return booking, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, events.HotelBookingEvent(eventType, booking))
}

func (s *bookingService) observe(err error) {
	if s.metrics != nil {
		s.metrics.ObserveAdmission(metrics.KindHotel, err)
	}
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return apperrors.Validation("Booking validation failed", errs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}
