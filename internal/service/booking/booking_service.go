package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/history"
	"github.com/Domenick1991/trainbooking/internal/kafka"
	"github.com/Domenick1991/trainbooking/internal/ledger"
	"github.com/Domenick1991/trainbooking/internal/seats"
	"github.com/Domenick1991/trainbooking/internal/waitlist"
)

const (
	DefaultTotalSeats       = 20
	DefaultFirstTicketID    = 1000
	DefaultFirstPassengerID = 1

	tracerName = "github.com/Domenick1991/trainbooking/internal/service/booking"
)

const (
	msgNoSeats   = "No seats available. Added to waiting list."
	msgCancelled = "Ticket cancelled successfully!"
	msgUndone    = "Cancellation undone successfully!"
)

type BookingUseCase interface {
	BookTicket(ctx context.Context, input BookTicketInput) (*BookingResult, error)
	CancelTicket(ctx context.Context, ticketID int64) (*CancelResult, error)
	UndoCancellation(ctx context.Context) (*UndoResult, error)
	SearchBooking(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	ListAllBookings(ctx context.Context) []domain.Ticket
	ListWaitingList(ctx context.Context) []domain.Passenger
	ListCancellationHistory(ctx context.Context) []domain.CancelledTicket
	SeatMap(ctx context.Context) domain.SeatMap
	ClearAll(ctx context.Context)
	ExportSnapshot(ctx context.Context) domain.Snapshot
	ImportSnapshot(ctx context.Context, snapshot domain.Snapshot) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// ChangeNotifier is told about the seat map after every mutation.
type ChangeNotifier interface {
	SeatsChanged(seatMap domain.SeatMap)
}

type BookTicketInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Age  int    `json:"age" validate:"min=1,max=150"`
}

type BookingResult struct {
	Ticket  domain.Ticket `json:"ticket"`
	Waiting bool          `json:"waiting"`
	Message string        `json:"message"`
}

type CancelResult struct {
	Cancelled domain.Ticket  `json:"cancelled"`
	Promoted  *domain.Ticket `json:"promoted,omitempty"`
	Message   string         `json:"message"`
}

type UndoResult struct {
	Ticket  domain.Ticket `json:"ticket"`
	Message string        `json:"message"`
}

// BookingService owns the seat inventory, waiting queue, cancellation
// history and ledger of one vehicle. A single lock covers all four so that
// cancel-then-promote and undo are atomic.
type BookingService struct {
	mu        sync.RWMutex
	inventory *seats.Inventory
	queue     *waitlist.Queue
	history   *history.Stack
	ledger    *ledger.Ledger

	nextTicketID     int64
	nextPassengerID  int64
	firstTicketID    int64
	firstPassengerID int64

	producer           Producer
	bookingTopic       string
	notificationsTopic string
	notifier           ChangeNotifier

	validate *validator.Validate
	log      *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithProducer enables event publishing to bookingTopic.
func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithChangeNotifier(notifier ChangeNotifier) BookingServiceOption {
	return func(s *BookingService) {
		s.notifier = notifier
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDSeeds sets the first ticket and passenger ids handed out after
// construction and after ClearAll.
func WithIDSeeds(firstTicketID, firstPassengerID int64) BookingServiceOption {
	return func(s *BookingService) {
		if firstTicketID > 0 {
			s.firstTicketID = firstTicketID
		}
		if firstPassengerID > 0 {
			s.firstPassengerID = firstPassengerID
		}
	}
}

func NewBookingService(totalSeats int, opts ...BookingServiceOption) *BookingService {
	if totalSeats <= 0 {
		totalSeats = DefaultTotalSeats
	}
	service := &BookingService{
		inventory:        seats.NewInventory(totalSeats),
		queue:            waitlist.NewQueue(),
		history:          history.NewStack(),
		ledger:           ledger.New(),
		firstTicketID:    DefaultFirstTicketID,
		firstPassengerID: DefaultFirstPassengerID,
		validate:         validator.New(),
		log:              zap.NewNop(),
		tracer:           otel.Tracer(tracerName),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	service.nextTicketID = service.firstTicketID
	service.nextPassengerID = service.firstPassengerID
	return service
}

func (s *BookingService) BookTicket(ctx context.Context, input BookTicketInput) (*BookingResult, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.BookTicket")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if err := s.validate.Struct(input); err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrInvalidPassenger, err)
		recordError(span, err)
		return nil, err
	}

	s.mu.Lock()
	passenger := domain.Passenger{ID: s.nextPassengerID, Name: input.Name, Age: input.Age}
	s.nextPassengerID++
	ticket := domain.Ticket{ID: s.nextTicketID, Passenger: passenger, BookedAt: s.now()}
	s.nextTicketID++

	result := &BookingResult{}
	eventType := kafka.EventTicketBooked
	if seat := s.inventory.FindFirstFree(); seat != seats.NoSeat && s.inventory.Claim(seat) {
		ticket.Confirm(seat)
		result.Message = fmt.Sprintf("Ticket booked successfully! Seat: %d", seat)
	} else {
		s.queue.Enqueue(passenger)
		ticket.Wait()
		result.Waiting = true
		result.Message = msgNoSeats
		eventType = kafka.EventTicketWaitlisted
	}
	s.ledger.Insert(ticket.ID, ticket)
	result.Ticket = ticket
	event := s.newEvent(eventType, ticket)
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int64("ticket.id", ticket.ID),
		attribute.Int("ticket.seat", ticket.SeatNumber),
		attribute.Bool("ticket.waiting", result.Waiting),
	)
	s.log.Info("ticket booked",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("passenger_id", passenger.ID),
		zap.Int("seat", ticket.SeatNumber),
		zap.String("status", string(ticket.Status)),
	)
	s.emit(ctx, event)
	return result, nil
}

func (s *BookingService) CancelTicket(ctx context.Context, ticketID int64) (*CancelResult, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CancelTicket",
		trace.WithAttributes(attribute.Int64("ticket.id", ticketID)))
	defer span.End()

	s.mu.Lock()
	ticket, ok := s.ledger.Lookup(ticketID)
	if !ok {
		s.mu.Unlock()
		err := fmt.Errorf("cancel ticket %d: %w", ticketID, domain.ErrTicketNotFound)
		recordError(span, err)
		return nil, err
	}

	s.history.Push(domain.CancelledTicket{Ticket: ticket, Passenger: ticket.Passenger})
	events := []kafka.BookingEvent{s.newEvent(kafka.EventTicketCancelled, ticket)}
	result := &CancelResult{Cancelled: ticket, Message: msgCancelled}

	switch {
	case ticket.IsConfirmed() && ticket.HasSeat():
		s.inventory.Release(ticket.SeatNumber)
		if promoted, ok := s.promote(ticket.SeatNumber); ok {
			result.Promoted = &promoted
			events = append(events, s.newEvent(kafka.EventPassengerPromoted, promoted))
		}
	case ticket.IsWaiting():
		s.queue.Remove(ticket.Passenger.ID)
	}

	s.ledger.Remove(ticketID)
	s.mu.Unlock()

	if result.Promoted != nil {
		span.SetAttributes(attribute.Int64("promoted.ticket.id", result.Promoted.ID))
	}
	s.log.Info("ticket cancelled",
		zap.Int64("ticket_id", ticketID),
		zap.Int("seat", ticket.SeatNumber),
		zap.Bool("promoted", result.Promoted != nil),
	)
	s.emit(ctx, events...)
	return result, nil
}

// promote moves the head of the waiting queue into seat, which the caller has
// just released. Queue entries without a live WAITING ticket are dropped.
// Must be called with the write lock held.
func (s *BookingService) promote(seat int) (domain.Ticket, bool) {
	for {
		passenger, ok := s.queue.DequeueIfRoom(s.inventory.IsFull())
		if !ok {
			return domain.Ticket{}, false
		}

		ticketID, found := s.ledger.FindWaitingByPassenger(passenger.ID)
		if !found {
			s.log.Warn("dropping waiting passenger without a live ticket", zap.Int64("passenger_id", passenger.ID))
			continue
		}

		if !s.inventory.Claim(seat) {
			// seat was released by the caller; only a corrupted import gets here
			s.queue.Enqueue(passenger)
			return domain.Ticket{}, false
		}

		var promoted domain.Ticket
		s.ledger.Update(ticketID, func(t *domain.Ticket) {
			t.Confirm(seat)
			promoted = *t
		})
		return promoted, true
	}
}

func (s *BookingService) UndoCancellation(ctx context.Context) (*UndoResult, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.UndoCancellation")
	defer span.End()

	s.mu.Lock()
	entry, ok := s.history.Pop()
	if !ok {
		s.mu.Unlock()
		recordError(span, domain.ErrNothingToUndo)
		return nil, domain.ErrNothingToUndo
	}

	restored := entry.Ticket
	restored.Passenger = entry.Passenger
	if seat := s.inventory.FindFirstFree(); seat != seats.NoSeat && s.inventory.Claim(seat) {
		restored.Confirm(seat)
	} else {
		restored.Wait()
		if !s.queue.Contains(entry.Passenger.ID) {
			s.queue.Enqueue(entry.Passenger)
		}
	}
	s.ledger.Insert(restored.ID, restored)
	event := s.newEvent(kafka.EventCancellationUndone, restored)
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int64("ticket.id", restored.ID),
		attribute.String("ticket.status", string(restored.Status)),
	)
	s.log.Info("cancellation undone",
		zap.Int64("ticket_id", restored.ID),
		zap.Int("seat", restored.SeatNumber),
		zap.String("status", string(restored.Status)),
	)
	s.emit(ctx, event)
	return &UndoResult{Ticket: restored, Message: msgUndone}, nil
}

func (s *BookingService) SearchBooking(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.ledger.Lookup(ticketID)
	if !ok {
		return nil, fmt.Errorf("search ticket %d: %w", ticketID, domain.ErrTicketNotFound)
	}
	return &ticket, nil
}

func (s *BookingService) ListAllBookings(ctx context.Context) []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Values()
}

func (s *BookingService) ListWaitingList(ctx context.Context) []domain.Passenger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.ToSlice()
}

func (s *BookingService) ListCancellationHistory(ctx context.Context) []domain.CancelledTicket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.PeekAll()
}

func (s *BookingService) SeatMap(ctx context.Context) domain.SeatMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.SeatMap{
		TotalSeats:   s.inventory.Total(),
		Available:    s.inventory.AvailableCount(),
		Occupied:     s.inventory.OccupiedCount(),
		Seats:        s.inventory.Flags(),
		WaitingCount: s.queue.Len(),
		HistorySize:  s.history.Len(),
	}
}

// ClearAll empties every structure and resets both id counters. The seat
// count does not change.
func (s *BookingService) ClearAll(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "BookingService.ClearAll")
	defer span.End()

	s.mu.Lock()
	s.inventory.Reset()
	s.queue.Clear()
	s.history.Clear()
	s.ledger.Clear()
	s.nextTicketID = s.firstTicketID
	s.nextPassengerID = s.firstPassengerID
	event := s.newEvent(kafka.EventBookingsCleared, domain.Ticket{})
	s.mu.Unlock()

	s.log.Info("all bookings cleared")
	s.emit(ctx, event)
}

func (s *BookingService) newEvent(eventType string, ticket domain.Ticket) kafka.BookingEvent {
	return kafka.BookingEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		TicketID:      ticket.ID,
		PassengerID:   ticket.Passenger.ID,
		PassengerName: ticket.Passenger.Name,
		SeatNumber:    ticket.SeatNumber,
		Status:        string(ticket.Status),
		OccurredAt:    s.now(),
	}
}

// emit publishes events and pushes the new seat map. It runs after the lock
// is released; failures are logged and never fail the operation.
func (s *BookingService) emit(ctx context.Context, events ...kafka.BookingEvent) {
	for _, event := range events {
		if err := s.publish(ctx, event); err != nil {
			s.log.Warn("failed to publish booking event",
				zap.String("type", event.Type),
				zap.Int64("ticket_id", event.TicketID),
				zap.Error(err),
			)
		}
	}
	if s.notifier != nil {
		s.notifier.SeatsChanged(s.SeatMap(ctx))
	}
}

func (s *BookingService) publish(ctx context.Context, event kafka.BookingEvent) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	key := strconv.FormatInt(event.TicketID, 10)
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, key, event)
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

var _ BookingUseCase = (*BookingService)(nil)
