package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingserrors "travelbook/internal/bookings/errors"
	"travelbook/internal/bookings/validator"
	"travelbook/internal/events"
	hotelserrors "travelbook/internal/hotels/errors"
	"travelbook/internal/inventory"
	"travelbook/pkg/config"
	mongotx "travelbook/pkg/db/mongo"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/logger"
	"travelbook/pkg/metrics"
	"travelbook/pkg/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockCatalog struct {
	hotels    map[string]*model.Hotel
	roomTypes map[string]*model.RoomType
}

func (m *mockCatalog) FindHotelByID(_ context.Context, id string) (*model.Hotel, error) {
	if h, ok := m.hotels[id]; ok {
		return h, nil
	}
	return nil, hotelserrors.ErrHotelNotFound
}

func (m *mockCatalog) FindRoomTypeByID(_ context.Context, id string) (*model.RoomType, error) {
	if rt, ok := m.roomTypes[id]; ok {
		return rt, nil
	}
	return nil, hotelserrors.ErrRoomTypeNotFound
}

func (m *mockCatalog) ClaimRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	return m.FindRoomTypeByID(ctx, id)
}

type mockBookingRepository struct {
	mu            sync.Mutex
	bookings      map[string]*model.Booking
	nextID        int
	transitionErr error
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepository) CountOverlapping(_ context.Context, roomTypeID string, checkIn, checkOut time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := inventory.NewStay(checkIn, checkOut)
	var n int64
	for _, b := range m.bookings {
		if b.RoomTypeID == roomTypeID && b.Status != model.BookingStatusCancelled &&
			inventory.NewStay(b.CheckInDate, b.CheckOutDate).Overlaps(want) {
			n++
		}
	}
	return n, nil
}

func (m *mockBookingRepository) Create(_ context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	booking.ID = fmt.Sprintf("65b%021d", m.nextID)
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *mockBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByUser(_ context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	bookings, _ := m.FindByUser(ctx, userID, 0, 0)
	return int64(len(bookings)), nil
}

func (m *mockBookingRepository) TransitionStatus(_ context.Context, id, from, to, paymentStatus string) (*model.Booking, error) {
	if m.transitionErr != nil {
		return nil, m.transitionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return nil, bookingserrors.ErrStatusChanged
	}
	b.Status, b.PaymentStatus = to, paymentStatus
	copied := *b
	return &copied, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const (
	hotelID    = "65a000000000000000000001"
	roomTypeID = "65a000000000000000000002"
	otherRoom  = "65a000000000000000000003"
)

var (
	owner    = model.Identity{UserID: "user-1", Email: "owner@example.com", Name: "Owner", Role: model.RoleUser}
	stranger = model.Identity{UserID: "user-2", Role: model.RoleUser}
	admin    = model.Identity{UserID: "admin-1", Role: model.RoleAdmin}
)

type fixture struct {
	svc       BookingService
	repo      *mockBookingRepository
	publisher *recordingPublisher
	metrics   *metrics.Metrics
}

func newFixture(stock int) *fixture {
	catalog := &mockCatalog{
		hotels: map[string]*model.Hotel{
			hotelID: {ID: hotelID, Name: "Seaside", RoomTypes: []string{roomTypeID}},
		},
		roomTypes: map[string]*model.RoomType{
			roomTypeID: {ID: roomTypeID, HotelID: hotelID, Name: "Double", PricePerNight: 120, CountInStock: stock, Capacity: 3},
			otherRoom:  {ID: otherRoom, HotelID: "65a0000000000000000000ff", Name: "Elsewhere", PricePerNight: 90, CountInStock: 1},
		},
	}
	repo := newMockBookingRepository()
	publisher := &recordingPublisher{}
	m := metrics.New("test")
	cfg := &config.Config{Log: logger.Discard()}

	svc := NewBookingService(repo, catalog, inventory.NewGate(catalog, repo), validator.NewBookingValidator(cfg.Log), publisher, cfg, m)
	return &fixture{svc: svc, repo: repo, publisher: publisher, metrics: m}
}

func request(checkIn, checkOut string) *model.HotelBookingRequest {
	parse := func(s string) model.Date {
		t, _ := time.Parse(model.DateLayout, s)
		return model.NewDate(t)
	}
	return &model.HotelBookingRequest{
		HotelID:      hotelID,
		RoomTypeID:   roomTypeID,
		CheckInDate:  parse(checkIn),
		CheckOutDate: parse(checkOut),
		Guests:       model.Guests{Adults: 2},
	}
}

func mustCreate(t *testing.T, f *fixture, user model.Identity) *model.BookingDetails {
	t.Helper()
	details, err := f.svc.Create(context.Background(), user, request("2025-01-10", "2025-01-15"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return details
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_Success(t *testing.T) {
	f := newFixture(1)

	details := mustCreate(t, f, owner)

	if details.TotalPrice != 600 || details.Nights != 5 {
		t.Errorf("total = %v nights = %d, want 600 and 5", details.TotalPrice, details.Nights)
	}
	if details.Status != model.BookingStatusConfirmed || details.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("status = %s/%s", details.Status, details.PaymentStatus)
	}
	if details.User == nil || details.User.Email != owner.Email {
		t.Errorf("user = %+v", details.User)
	}
	if details.Hotel == nil || details.RoomType == nil {
		t.Error("expected hotel and room type to be populated")
	}
	if got := f.publisher.types(); len(got) != 1 || got[0] != events.TypeHotelConfirmed {
		t.Errorf("events = %v", got)
	}
	if got := testutil.ToFloat64(f.metrics.Admissions.WithLabelValues(metrics.KindHotel, metrics.OutcomeAccepted)); got != 1 {
		t.Errorf("accepted admissions = %v, want 1", got)
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		req      func() *model.HotelBookingRequest
		wantCode string
	}{
		{
			name:     "missing dates",
			req:      func() *model.HotelBookingRequest { r := request("2025-01-10", "2025-01-15"); r.CheckInDate = model.Date{}; return r },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "reversed stay",
			req:      func() *model.HotelBookingRequest { return request("2025-01-15", "2025-01-10") },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "room type of another hotel",
			req:      func() *model.HotelBookingRequest { r := request("2025-01-10", "2025-01-15"); r.RoomTypeID = otherRoom; return r },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "unknown hotel",
			req:      func() *model.HotelBookingRequest { r := request("2025-01-10", "2025-01-15"); r.HotelID = "65a0000000000000000000aa"; return r },
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "overlapping stay",
			req:      func() *model.HotelBookingRequest { return request("2025-01-12", "2025-01-20") },
			wantCode: apperrors.CodeNoAvailability,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(1)
			mustCreate(t, f, stranger)

			_, err := f.svc.Create(context.Background(), owner, tt.req())
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("Create() error = %v, want code %s", err, tt.wantCode)
			}
			if len(f.publisher.types()) != 1 {
				t.Errorf("a rejected booking must not publish, events = %v", f.publisher.types())
			}
		})
	}
}

func TestCreate_BackToBackStayAccepted(t *testing.T) {
	f := newFixture(1)
	mustCreate(t, f, stranger)

	if _, err := f.svc.Create(context.Background(), owner, request("2025-01-15", "2025-01-20")); err != nil {
		t.Fatalf("back-to-back stay rejected: %v", err)
	}
	if got := testutil.ToFloat64(f.metrics.Admissions.WithLabelValues(metrics.KindHotel, metrics.OutcomeAccepted)); got != 2 {
		t.Errorf("accepted admissions = %v, want 2", got)
	}
}

// ────────────────────────────────────────────────
// Reads
// ────────────────────────────────────────────────

func TestGetByID_Access(t *testing.T) {
	f := newFixture(2)
	created := mustCreate(t, f, owner)

	tests := []struct {
		name     string
		user     model.Identity
		wantCode string
	}{
		{"owner", owner, ""},
		{"admin", admin, ""},
		{"stranger", stranger, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := f.svc.GetByID(context.Background(), tt.user, created.ID)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("GetByID() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if details.Hotel == nil || details.RoomType == nil {
				t.Error("expected populated hotel and room type")
			}
			if details.User.ID != owner.UserID {
				t.Errorf("user = %+v, want the booking owner", details.User)
			}
		})
	}
}

func TestGetByID_Errors(t *testing.T) {
	f := newFixture(1)
	f.repo.bookings = nil

	_, err := f.svc.GetByID(context.Background(), owner, "65b000000000000000000099")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("GetByID() error = %v, want NOT_FOUND", err)
	}
}

func TestListMine(t *testing.T) {
	f := newFixture(3)
	mustCreate(t, f, owner)
	mustCreate(t, f, owner)
	mustCreate(t, f, stranger)

	bookings, total, err := f.svc.ListMine(context.Background(), owner, 10, 0)
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if total != 2 || len(bookings) != 2 {
		t.Errorf("total = %d len = %d, want 2 and 2", total, len(bookings))
	}
	for _, b := range bookings {
		if b.UserID != owner.UserID {
			t.Errorf("listed a booking of %s", b.UserID)
		}
	}
}

// ────────────────────────────────────────────────
// Transitions
// ────────────────────────────────────────────────

func TestCancel_RefundsAndFreesInventory(t *testing.T) {
	f := newFixture(1)
	created := mustCreate(t, f, owner)

	cancelled, err := f.svc.Cancel(context.Background(), owner, created.ID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if cancelled.Status != model.BookingStatusCancelled || cancelled.PaymentStatus != model.PaymentStatusRefunded {
		t.Errorf("status = %s/%s, want cancelled/refunded", cancelled.Status, cancelled.PaymentStatus)
	}

	// the cancelled booking no longer holds the only unit
	if _, err := f.svc.Create(context.Background(), stranger, request("2025-01-12", "2025-01-14")); err != nil {
		t.Errorf("Create() after cancel error = %v", err)
	}

	got := f.publisher.types()
	if len(got) != 3 || got[1] != events.TypeHotelCancelled {
		t.Errorf("events = %v", got)
	}
	if v := testutil.ToFloat64(f.metrics.StatusTransitions.WithLabelValues(metrics.KindHotel, model.BookingStatusCancelled)); v != 1 {
		t.Errorf("cancel transitions = %v, want 1", v)
	}
}

func TestCancel_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture, id string)
		user     model.Identity
		wantCode string
	}{
		{
			name:     "already cancelled",
			setup:    func(f *fixture, id string) { _, _ = f.svc.Cancel(context.Background(), owner, id) },
			user:     owner,
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "not the owner",
			setup:    func(*fixture, string) {},
			user:     stranger,
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "lost a concurrent update",
			setup:    func(f *fixture, _ string) { f.repo.transitionErr = bookingserrors.ErrStatusChanged },
			user:     owner,
			wantCode: apperrors.CodeConflict,
		},
		{
			name:     "booking no longer exists",
			setup:    func(f *fixture, _ string) { f.repo.bookings = map[string]*model.Booking{} },
			user:     owner,
			wantCode: apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(1)
			created := mustCreate(t, f, owner)
			tt.setup(f, created.ID)

			_, err := f.svc.Cancel(context.Background(), tt.user, created.ID)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("Cancel() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	f := newFixture(1)
	created := mustCreate(t, f, owner)

	if _, err := f.svc.Complete(context.Background(), owner, created.ID); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("Complete() by owner error = %v, want FORBIDDEN", err)
	}

	completed, err := f.svc.Complete(context.Background(), admin, created.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completed.Status != model.BookingStatusCompleted || completed.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("status = %s/%s, want completed/paid", completed.Status, completed.PaymentStatus)
	}

	if _, err := f.svc.Cancel(context.Background(), owner, created.ID); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("Cancel() of completed booking error = %v, want VALIDATION_ERROR", err)
	}
}
