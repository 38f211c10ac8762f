package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	hotelserrors "travelbook/internal/hotels/errors"
	mongotx "travelbook/pkg/db/mongo"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/model"
)

var errWriteConflict = errors.New("write conflict")

// memStore is an in-memory Catalog and Ledger with snapshot transactions.
// A transaction reads the committed state as of its start plus its own writes.
// Commit fails when another transaction committed a claim on the same room type
// after the snapshot was taken, mirroring a write-write conflict in MongoDB.
type memStore struct {
	mu        sync.Mutex
	hotels    map[string]*model.Hotel
	roomTypes map[string]*model.RoomType
	bookings  []*model.Booking
	nextID    int

	maxAttempts int
	commits     int
	conflicts   int
	countErr    error
	createErr   error
}

type txKey struct{}

type memTx struct {
	bookings []*model.Booking
	seq      map[string]int64
	claimed  map[string]bool
	pending  []*model.Booking
}

func newMemStore() *memStore {
	return &memStore{
		hotels:      make(map[string]*model.Hotel),
		roomTypes:   make(map[string]*model.RoomType),
		maxAttempts: 1000,
	}
}

func (s *memStore) addHotel(h *model.Hotel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotels[h.ID] = h
}

func (s *memStore) addRoomType(rt *model.RoomType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomTypes[rt.ID] = rt
}

func (s *memStore) seedBooking(roomTypeID string, checkIn, checkOut time.Time, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.bookings = append(s.bookings, &model.Booking{
		ID:           fmt.Sprintf("seed-%d", s.nextID),
		RoomTypeID:   roomTypeID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Status:       status,
	})
}

func (s *memStore) committed() []*model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

func (s *memStore) begin() *memTx {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memTx{
		bookings: make([]*model.Booking, len(s.bookings)),
		seq:      make(map[string]int64, len(s.roomTypes)),
		claimed:  make(map[string]bool),
	}
	copy(tx.bookings, s.bookings)
	for id, rt := range s.roomTypes {
		tx.seq[id] = rt.BookingSeq
	}
	return tx
}

func (s *memStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range tx.claimed {
		if s.roomTypes[id].BookingSeq != tx.seq[id] {
			s.conflicts++
			return errWriteConflict
		}
	}
	for id := range tx.claimed {
		s.roomTypes[id].BookingSeq++
	}
	for _, b := range tx.pending {
		s.nextID++
		b.ID = fmt.Sprintf("booking-%d", s.nextID)
		s.bookings = append(s.bookings, b)
	}
	s.commits++
	return nil
}

func txFrom(ctx context.Context) *memTx {
	tx, _ := ctx.Value(txKey{}).(*memTx)
	return tx
}

func (s *memStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		tx := s.begin()
		if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
			return err
		}
		err := s.commit(tx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errWriteConflict) {
			return err
		}
	}
	return apperrors.Conflict("The resource is being booked concurrently, please retry")
}

func (s *memStore) FindHotelByID(ctx context.Context, id string) (*model.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return nil, hotelserrors.ErrHotelNotFound
	}
	copied := *h
	return &copied, nil
}

func (s *memStore) FindRoomTypeByID(ctx context.Context, id string) (*model.RoomType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.roomTypes[id]
	if !ok {
		return nil, hotelserrors.ErrRoomTypeNotFound
	}
	copied := *rt
	return &copied, nil
}

func (s *memStore) ClaimRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	tx := txFrom(ctx)
	if tx == nil {
		return nil, errors.New("claim outside of a transaction")
	}
	rt, err := s.FindRoomTypeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tx.claimed[id] = true
	rt.BookingSeq = tx.seq[id] + 1
	return rt, nil
}

func (s *memStore) CountOverlapping(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}

	var visible []*model.Booking
	if tx := txFrom(ctx); tx != nil {
		visible = append(append(visible, tx.bookings...), tx.pending...)
	} else {
		visible = s.committed()
	}

	want := Stay{CheckIn: checkIn, CheckOut: checkOut}
	var n int64
	for _, b := range visible {
		if b.RoomTypeID != roomTypeID || b.Status == model.BookingStatusCancelled {
			continue
		}
		if (Stay{CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}).Overlaps(want) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Create(ctx context.Context, booking *model.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	tx := txFrom(ctx)
	if tx == nil {
		return errors.New("insert outside of a transaction")
	}
	tx.pending = append(tx.pending, booking)
	return nil
}
