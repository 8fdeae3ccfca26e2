package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/kafka"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SeatsChanged(seatMap domain.SeatMap) {
	m.Called(seatMap)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService(totalSeats int, opts ...BookingServiceOption) *BookingService {
	opts = append([]BookingServiceOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewBookingService(totalSeats, opts...)
}

func mustBook(t *testing.T, s *BookingService, name string) *BookingResult {
	t.Helper()
	res, err := s.BookTicket(context.Background(), BookTicketInput{Name: name, Age: 30})
	require.NoError(t, err)
	return res
}

func assertConsistent(t *testing.T, s *BookingService) {
	t.Helper()
	ctx := context.Background()
	seatMap := s.SeatMap(ctx)
	assert.Equal(t, seatMap.TotalSeats, seatMap.Available+seatMap.Occupied)

	taken := map[int]int64{}
	waiting := map[int64]bool{}
	for _, tk := range s.ListAllBookings(ctx) {
		switch tk.Status {
		case domain.TicketStatusConfirmed:
			require.True(t, tk.HasSeat(), "confirmed ticket %d without seat", tk.ID)
			other, dup := taken[tk.SeatNumber]
			assert.False(t, dup, "seat %d held by %d and %d", tk.SeatNumber, other, tk.ID)
			taken[tk.SeatNumber] = tk.ID
			assert.True(t, seatMap.Seats[tk.SeatNumber-1])
		case domain.TicketStatusWaiting:
			assert.False(t, tk.HasSeat())
			waiting[tk.Passenger.ID] = true
		}
	}
	assert.Equal(t, len(taken), seatMap.Occupied)

	queued := s.ListWaitingList(ctx)
	assert.Len(t, queued, len(waiting))
	for _, p := range queued {
		assert.True(t, waiting[p.ID], "queued passenger %d has no waiting ticket", p.ID)
	}
}

func TestBookingService_BookCancelUndo(t *testing.T) {
	ctx := context.Background()
	s := newTestService(2)

	// third booking on a full train goes to the waiting list
	a := mustBook(t, s, "A")
	b := mustBook(t, s, "B")
	c := mustBook(t, s, "C")

	assert.Equal(t, domain.TicketStatusConfirmed, a.Ticket.Status)
	assert.Equal(t, 1, a.Ticket.SeatNumber)
	assert.Equal(t, "Ticket booked successfully! Seat: 1", a.Message)
	assert.Equal(t, 2, b.Ticket.SeatNumber)
	assert.True(t, c.Waiting)
	assert.Equal(t, domain.TicketStatusWaiting, c.Ticket.Status)
	assert.Equal(t, 0, c.Ticket.SeatNumber)
	assert.Equal(t, "No seats available. Added to waiting list.", c.Message)
	require.Len(t, s.ListWaitingList(ctx), 1)
	assert.Equal(t, "C", s.ListWaitingList(ctx)[0].Name)
	assertConsistent(t, s)

	// cancel promotes head of queue into the freed seat
	res, err := s.CancelTicket(ctx, a.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ticket cancelled successfully!", res.Message)
	require.NotNil(t, res.Promoted)
	assert.Equal(t, c.Ticket.ID, res.Promoted.ID)

	promoted, err := s.SearchBooking(ctx, c.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusConfirmed, promoted.Status)
	assert.Equal(t, 1, promoted.SeatNumber)
	assert.Empty(t, s.ListWaitingList(ctx))

	_, err = s.SearchBooking(ctx, a.Ticket.ID)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	hist := s.ListCancellationHistory(ctx)
	require.Len(t, hist, 1)
	assert.Equal(t, a.Ticket.ID, hist[0].Ticket.ID)
	assert.Equal(t, "A", hist[0].Passenger.Name)
	assert.Equal(t, 1, hist[0].Ticket.SeatNumber)
	assertConsistent(t, s)

	// undo with no free seat puts the ticket back on the waiting list
	undo, err := s.UndoCancellation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cancellation undone successfully!", undo.Message)
	assert.Equal(t, a.Ticket.ID, undo.Ticket.ID)
	assert.Equal(t, domain.TicketStatusWaiting, undo.Ticket.Status)
	assert.Equal(t, 0, undo.Ticket.SeatNumber)

	queue := s.ListWaitingList(ctx)
	require.Len(t, queue, 1)
	assert.Equal(t, "A", queue[0].Name)
	assert.Equal(t, a.Ticket.Passenger.ID, queue[0].ID)
	assert.Empty(t, s.ListCancellationHistory(ctx))
	assertConsistent(t, s)
}

func TestBookingService_CancelTicket_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestService(2)
	mustBook(t, s, "A")
	before := s.ExportSnapshot(ctx)

	res, err := s.CancelTicket(ctx, 999)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	assert.Equal(t, before, s.ExportSnapshot(ctx))
}

func TestBookingService_UndoCancellation_EmptyHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestService(2)
	mustBook(t, s, "A")
	before := s.ExportSnapshot(ctx)

	res, err := s.UndoCancellation(ctx)

	assert.Nil(t, res)
	assert.True(t, errors.Is(err, domain.ErrNothingToUndo))
	assert.Equal(t, before, s.ExportSnapshot(ctx))
}

func TestBookingService_LowestFreeSeat(t *testing.T) {
	ctx := context.Background()
	s := newTestService(5)
	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, mustBook(t, s, fmt.Sprintf("p%d", i)).Ticket.ID)
	}

	_, err := s.CancelTicket(ctx, ids[3]) // seat 4
	require.NoError(t, err)
	_, err = s.CancelTicket(ctx, ids[1]) // seat 2
	require.NoError(t, err)

	assert.Equal(t, 2, mustBook(t, s, "next").Ticket.SeatNumber)
	assert.Equal(t, 4, mustBook(t, s, "after").Ticket.SeatNumber)
	assert.True(t, mustBook(t, s, "late").Waiting)
	assertConsistent(t, s)
}

func TestBookingService_IdentifiersNeverReused(t *testing.T) {
	ctx := context.Background()
	s := newTestService(1)

	first := mustBook(t, s, "A")
	assert.Equal(t, int64(1000), first.Ticket.ID)
	assert.Equal(t, int64(1), first.Ticket.Passenger.ID)

	_, err := s.CancelTicket(ctx, first.Ticket.ID)
	require.NoError(t, err)

	second := mustBook(t, s, "B")
	assert.Equal(t, int64(1001), second.Ticket.ID)
	assert.Equal(t, int64(2), second.Ticket.Passenger.ID)
}

func TestBookingService_FIFOPromotion(t *testing.T) {
	ctx := context.Background()
	s := newTestService(1)
	holder := mustBook(t, s, "holder")
	w1 := mustBook(t, s, "w1")
	w2 := mustBook(t, s, "w2")
	w3 := mustBook(t, s, "w3")

	current := holder.Ticket.ID
	for _, want := range []*BookingResult{w1, w2, w3} {
		res, err := s.CancelTicket(ctx, current)
		require.NoError(t, err)
		require.NotNil(t, res.Promoted)
		assert.Equal(t, want.Ticket.ID, res.Promoted.ID)
		assert.Equal(t, 1, res.Promoted.SeatNumber)
		current = res.Promoted.ID
		assertConsistent(t, s)
	}
}

func TestBookingService_LIFOUndo(t *testing.T) {
	ctx := context.Background()
	s := newTestService(5)
	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, mustBook(t, s, fmt.Sprintf("p%d", i)).Ticket.ID)
	}
	for _, id := range ids {
		_, err := s.CancelTicket(ctx, id)
		require.NoError(t, err)
	}

	for i := len(ids) - 1; i >= 0; i-- {
		res, err := s.UndoCancellation(ctx)
		require.NoError(t, err)
		assert.Equal(t, ids[i], res.Ticket.ID)
	}
	_, err := s.UndoCancellation(ctx)
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
	assertConsistent(t, s)
}

func TestBookingService_UndoTakesLowestFreeSeat(t *testing.T) {
	ctx := context.Background()
	s := newTestService(3)
	a := mustBook(t, s, "A")
	mustBook(t, s, "B")
	c := mustBook(t, s, "C")

	_, err := s.CancelTicket(ctx, c.Ticket.ID) // seat 3
	require.NoError(t, err)
	_, err = s.CancelTicket(ctx, a.Ticket.ID) // seat 1
	require.NoError(t, err)

	res, err := s.UndoCancellation(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.Ticket.ID, res.Ticket.ID)
	assert.Equal(t, 1, res.Ticket.SeatNumber)

	res, err = s.UndoCancellation(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Ticket.ID, res.Ticket.ID)
	assert.Equal(t, 3, res.Ticket.SeatNumber)
	assert.Equal(t, fixedNow, res.Ticket.BookedAt, "undo keeps the original booking time")
}

func TestBookingService_HistoryIsDeepCopy(t *testing.T) {
	ctx := context.Background()
	s := newTestService(1)
	a := mustBook(t, s, "A")
	w := mustBook(t, s, "W")

	_, err := s.CancelTicket(ctx, w.Ticket.ID) // waiting ticket
	require.NoError(t, err)
	_, err = s.CancelTicket(ctx, a.Ticket.ID)
	require.NoError(t, err)

	hist := s.ListCancellationHistory(ctx)
	require.Len(t, hist, 2)
	hist[0].Ticket.SeatNumber = 99
	hist[0].Passenger.Name = "mutated"

	again := s.ListCancellationHistory(ctx)
	assert.Equal(t, 1, again[0].Ticket.SeatNumber)
	assert.Equal(t, "A", again[0].Passenger.Name)
	assert.Equal(t, domain.TicketStatusWaiting, again[1].Ticket.Status)
}

func TestBookingService_CancelWaitingRemovesFromQueue(t *testing.T) {
	ctx := context.Background()
	s := newTestService(1)
	a := mustBook(t, s, "A")
	w := mustBook(t, s, "W")

	_, err := s.CancelTicket(ctx, w.Ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, s.ListWaitingList(ctx))
	assertConsistent(t, s)

	// freeing the seat must not promote the cancelled passenger
	res, err := s.CancelTicket(ctx, a.Ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Promoted)
	assert.Equal(t, 0, s.SeatMap(ctx).Occupied)

	// undo A, then undo W: W waits again exactly once
	_, err = s.UndoCancellation(ctx)
	require.NoError(t, err)
	res2, err := s.UndoCancellation(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusWaiting, res2.Ticket.Status)
	require.Len(t, s.ListWaitingList(ctx), 1)
	assertConsistent(t, s)
}

func TestBookingService_SearchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(2)
	a := mustBook(t, s, "A")
	before := s.ExportSnapshot(ctx)

	first, err := s.SearchBooking(ctx, a.Ticket.ID)
	require.NoError(t, err)
	second, err := s.SearchBooking(ctx, a.Ticket.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, s.ExportSnapshot(ctx))
}

func TestBookingService_ListAllBookingsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestService(1)
	a := mustBook(t, s, "A")
	b := mustBook(t, s, "B")
	c := mustBook(t, s, "C")

	ids := func() []int64 {
		var out []int64
		for _, tk := range s.ListAllBookings(ctx) {
			out = append(out, tk.ID)
		}
		return out
	}
	assert.Equal(t, []int64{a.Ticket.ID, b.Ticket.ID, c.Ticket.ID}, ids())

	_, err := s.CancelTicket(ctx, b.Ticket.ID)
	require.NoError(t, err)
	_, err = s.UndoCancellation(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.Ticket.ID, c.Ticket.ID, b.Ticket.ID}, ids())
}

func TestBookingService_BookTicket_Validation(t *testing.T) {
	s := newTestService(2)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input BookTicketInput
	}{
		{name: "Empty name", input: BookTicketInput{Name: "", Age: 20}},
		{name: "Blank name", input: BookTicketInput{Name: "   ", Age: 20}},
		{name: "Zero age", input: BookTicketInput{Name: "A", Age: 0}},
		{name: "Negative age", input: BookTicketInput{Name: "A", Age: -3}},
		{name: "Too old", input: BookTicketInput{Name: "A", Age: 151}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.BookTicket(ctx, tc.input)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, domain.ErrInvalidPassenger)
		})
	}
	assert.Empty(t, s.ListAllBookings(ctx))

	res, err := s.BookTicket(ctx, BookTicketInput{Name: "  Asha  ", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, "Asha", res.Ticket.Passenger.Name)
	assert.Equal(t, int64(1000), res.Ticket.ID, "rejected input must not consume ids")
}

func TestBookingService_ClearAll(t *testing.T) {
	ctx := context.Background()
	s := newTestService(1, WithIDSeeds(500, 10))
	a := mustBook(t, s, "A")
	assert.Equal(t, int64(500), a.Ticket.ID)
	mustBook(t, s, "B")
	_, err := s.CancelTicket(ctx, a.Ticket.ID)
	require.NoError(t, err)

	s.ClearAll(ctx)

	seatMap := s.SeatMap(ctx)
	assert.Equal(t, 1, seatMap.TotalSeats)
	assert.Equal(t, 0, seatMap.Occupied)
	assert.Empty(t, s.ListAllBookings(ctx))
	assert.Empty(t, s.ListWaitingList(ctx))
	assert.Empty(t, s.ListCancellationHistory(ctx))

	again := mustBook(t, s, "C")
	assert.Equal(t, int64(500), again.Ticket.ID)
	assert.Equal(t, int64(10), again.Ticket.Passenger.ID)
}

func TestBookingService_DefaultCapacity(t *testing.T) {
	s := NewBookingService(0)
	assert.Equal(t, DefaultTotalSeats, s.SeatMap(context.Background()).TotalSeats)
}

func TestBookingService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	producer := &MockProducer{}
	s := newTestService(1,
		WithProducer(producer, "booking_topic"),
		WithNotificationsTopic("notifications"),
	)

	isEvent := func(eventType string) interface{} {
		return mock.MatchedBy(func(e kafka.BookingEvent) bool { return e.Type == eventType })
	}

	producer.On("Publish", mock.Anything, "booking_topic", "1000", isEvent(kafka.EventTicketBooked)).Return(nil).Once()
	producer.On("Publish", mock.Anything, "notifications", "1000", isEvent(kafka.EventTicketBooked)).Return(nil).Once()
	producer.On("Publish", mock.Anything, "booking_topic", "1001", isEvent(kafka.EventTicketWaitlisted)).Return(nil).Once()
	producer.On("Publish", mock.Anything, "notifications", "1001", isEvent(kafka.EventTicketWaitlisted)).Return(nil).Once()
	producer.On("Publish", mock.Anything, "booking_topic", "1000", isEvent(kafka.EventTicketCancelled)).Return(nil).Once()
	producer.On("Publish", mock.Anything, "notifications", "1000", isEvent(kafka.EventTicketCancelled)).Return(nil).Once()
	producer.On("Publish", mock.Anything, "booking_topic", "1001", isEvent(kafka.EventPassengerPromoted)).Return(nil).Once()
	producer.On("Publish", mock.Anything, "notifications", "1001", isEvent(kafka.EventPassengerPromoted)).Return(nil).Once()

	mustBook(t, s, "A")
	mustBook(t, s, "B")
	_, err := s.CancelTicket(ctx, 1000)
	require.NoError(t, err)

	producer.AssertExpectations(t)
}

func TestBookingService_PublishFailureDoesNotFailBooking(t *testing.T) {
	ctx := context.Background()
	producer := &MockProducer{}
	s := newTestService(1, WithProducer(producer, "booking_topic"))

	producer.On("Publish", mock.Anything, "booking_topic", "1000", mock.Anything).Return(errors.New("kafka down")).Once()

	res, err := s.BookTicket(ctx, BookTicketInput{Name: "A", Age: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ticket.SeatNumber)
	producer.AssertExpectations(t)
}

func TestBookingService_NoProducerNoPublish(t *testing.T) {
	producer := &MockProducer{}
	s := newTestService(1, WithProducer(producer, ""))

	mustBook(t, s, "A")
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_NotifiesSeatChanges(t *testing.T) {
	ctx := context.Background()
	notifier := &MockNotifier{}
	s := newTestService(2, WithChangeNotifier(notifier))

	notifier.On("SeatsChanged", mock.MatchedBy(func(m domain.SeatMap) bool {
		return m.Occupied == 1 && m.Seats[0]
	})).Once()
	notifier.On("SeatsChanged", mock.MatchedBy(func(m domain.SeatMap) bool {
		return m.Occupied == 0 && m.HistorySize == 1
	})).Once()

	mustBook(t, s, "A")
	_, err := s.CancelTicket(ctx, 1000)
	require.NoError(t, err)

	// failed operations do not notify
	_, err = s.CancelTicket(ctx, 1000)
	require.Error(t, err)

	notifier.AssertExpectations(t)
}
