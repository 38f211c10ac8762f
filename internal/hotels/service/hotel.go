package service

import (
	"context"
	"errors"

	hotelserrors "travelbook/internal/hotels/errors"
	"travelbook/internal/hotels/repository"
	"travelbook/internal/inventory"
	"travelbook/pkg/config"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/metrics"
	"travelbook/pkg/model"

	"golang.org/x/sync/errgroup"
)

type HotelService interface {
	GetHotel(ctx context.Context, id string) (*model.HotelDetails, error)
	CheckAvailability(ctx context.Context, hotelID string, req *model.AvailabilityRequest) ([]*model.RoomTypeAvailability, error)
}

type hotelService struct {
	repo       repository.HotelRepository
	calculator *inventory.Calculator
	cfg        *config.Config
	metrics    *metrics.Metrics
}

func NewHotelService(
	repo repository.HotelRepository,
	calculator *inventory.Calculator,
	cfg *config.Config,
	m *metrics.Metrics,
) HotelService {
	return &hotelService{
		repo:       repo,
		calculator: calculator,
		cfg:        cfg,
		metrics:    m,
	}
}

func (s *hotelService) GetHotel(ctx context.Context, id string) (*model.HotelDetails, error) {
	hotel, err := s.repo.FindHotelByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, "Hotel", id)
	}

	roomTypes, err := s.repo.FindRoomTypesByHotel(ctx, hotel)
	if err != nil {
		s.cfg.Log.FromContext(ctx).Error("failed to load room types", "hotel_id", id, "error", err)
		return nil, apperrors.Internal("Failed to load room types", err)
	}

	return &model.HotelDetails{Hotel: hotel, RoomTypeDetails: roomTypes}, nil
}

// CheckAvailability computes availableCount for every room type of the hotel.
// Room types are evaluated concurrently, at most AvailabilityWorkers at a time.
func (s *hotelService) CheckAvailability(ctx context.Context, hotelID string, req *model.AvailabilityRequest) ([]*model.RoomTypeAvailability, error) {
	hotel, err := s.repo.FindHotelByID(ctx, hotelID)
	if err != nil {
		return nil, s.translateError(err, "Hotel", hotelID)
	}

	if req.CheckInDate.IsZero() || req.CheckOutDate.IsZero() {
		return nil, apperrors.Validation("checkInDate and checkOutDate are required", map[string]any{
			"checkInDate":  req.CheckInDate.Time,
			"checkOutDate": req.CheckOutDate.Time,
		})
	}
	stay := inventory.NewStay(req.CheckInDate.Time, req.CheckOutDate.Time)
	if err := stay.Validate(); err != nil {
		return nil, err
	}

	roomTypes, err := s.repo.FindRoomTypesByHotel(ctx, hotel)
	if err != nil {
		s.cfg.Log.FromContext(ctx).Error("failed to load room types", "hotel_id", hotelID, "error", err)
		return nil, apperrors.Internal("Failed to load room types", err)
	}

	results := make([]*model.RoomTypeAvailability, len(roomTypes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.AvailabilityWorkers, 1))
	for i, roomType := range roomTypes {
		g.Go(func() error {
			availability, err := s.calculator.AvailableFor(gctx, roomType, stay)
			if err != nil {
				return err
			}
			results[i] = &model.RoomTypeAvailability{
				RoomType:       roomType,
				AvailableCount: availability.Available,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.cfg.Log.FromContext(ctx).Error("availability check failed", "hotel_id", hotelID, "error", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AvailabilityChecks.WithLabelValues(metrics.KindHotel).Add(float64(len(roomTypes)))
	}

	return results, nil
}

func (s *hotelService) translateError(err error, resource, id string) error {
	switch {
	case errors.Is(err, hotelserrors.ErrHotelNotFound),
		errors.Is(err, hotelserrors.ErrRoomTypeNotFound),
		errors.Is(err, hotelserrors.ErrInvalidID):
		return apperrors.NotFoundWithID(resource, id)
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.Internal("Failed to load "+resource, err)
	}
}
