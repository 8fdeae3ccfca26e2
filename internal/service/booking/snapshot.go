package booking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Domenick1991/trainbooking/internal/domain"
)

// ExportSnapshot captures the full state. Every list is non-nil so that an
// import of the result replaces all fields.
func (s *BookingService) ExportSnapshot(ctx context.Context) domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Snapshot{
		Seats:           s.inventory.Flags(),
		Bookings:        s.ledger.Entries(),
		CancelledStack:  s.history.PeekAll(),
		NextTicketID:    s.nextTicketID,
		NextPassengerID: s.nextPassengerID,
		WaitingList:     s.queue.ToSlice(),
	}
}

// ImportSnapshot replaces the fields present in snapshot and leaves the rest
// untouched. Nothing is changed when the document fails validation.
//
// CancelledStack is newest first, the same order ListCancellationHistory and
// ExportSnapshot produce.
func (s *BookingService) ImportSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	ctx, span := s.tracer.Start(ctx, "BookingService.ImportSnapshot")
	defer span.End()

	if err := validateSnapshot(snapshot, s.inventory.Total()); err != nil {
		recordError(span, err)
		return err
	}

	s.mu.Lock()
	merged := s.mergeSnapshot(snapshot)
	if err := validateMerged(merged); err != nil {
		s.mu.Unlock()
		recordError(span, err)
		return err
	}

	s.inventory.Restore(merged.Seats)
	s.nextTicketID = merged.NextTicketID
	s.nextPassengerID = merged.NextPassengerID
	if snapshot.Bookings != nil {
		s.ledger.Clear()
		for _, entry := range snapshot.Bookings {
			ticket := entry.Ticket
			ticket.ID = entry.TicketID
			s.ledger.Insert(entry.TicketID, ticket)
		}
	}
	if snapshot.CancelledStack != nil {
		s.history.Clear()
		for i := len(snapshot.CancelledStack) - 1; i >= 0; i-- {
			s.history.Push(snapshot.CancelledStack[i])
		}
	}
	if snapshot.WaitingList != nil {
		s.queue.Clear()
		for _, passenger := range snapshot.WaitingList {
			s.queue.Enqueue(passenger)
		}
	}
	s.mu.Unlock()

	s.log.Info("snapshot imported",
		zap.Int("bookings", len(snapshot.Bookings)),
		zap.Int("waiting", len(snapshot.WaitingList)),
		zap.Int("history", len(snapshot.CancelledStack)),
	)
	s.emit(ctx)
	return nil
}

// mergeSnapshot fills the fields absent from snapshot with the current
// state. Must be called with the lock held.
func (s *BookingService) mergeSnapshot(snapshot domain.Snapshot) domain.Snapshot {
	merged := snapshot
	if merged.Seats == nil {
		merged.Seats = s.inventory.Flags()
	}
	if merged.Bookings == nil {
		merged.Bookings = s.ledger.Entries()
	}
	if merged.CancelledStack == nil {
		merged.CancelledStack = s.history.PeekAll()
	}
	if merged.WaitingList == nil {
		merged.WaitingList = s.queue.ToSlice()
	}
	if merged.NextTicketID == 0 {
		merged.NextTicketID = s.nextTicketID
	}
	if merged.NextPassengerID == 0 {
		merged.NextPassengerID = s.nextPassengerID
	}
	return merged
}

// validateMerged checks the state an import would produce: occupied seats
// are exactly the seats of CONFIRMED tickets, and both counters are past
// every id already handed out.
func validateMerged(state domain.Snapshot) error {
	holders := make(map[int]int64, len(state.Bookings))
	var maxTicketID, maxPassengerID int64
	for _, entry := range state.Bookings {
		maxTicketID = max(maxTicketID, entry.TicketID)
		maxPassengerID = max(maxPassengerID, entry.Ticket.Passenger.ID)
		if !entry.Ticket.IsConfirmed() {
			continue
		}
		seat := entry.Ticket.SeatNumber
		if other, taken := holders[seat]; taken {
			return fmt.Errorf("%w: seat %d held by tickets %d and %d", domain.ErrInvalidSnapshot, seat, other, entry.TicketID)
		}
		holders[seat] = entry.TicketID
		if !state.Seats[seat-1] {
			return fmt.Errorf("%w: seat %d of ticket %d is not marked occupied", domain.ErrInvalidSnapshot, seat, entry.TicketID)
		}
	}
	for i, occupied := range state.Seats {
		if _, held := holders[i+1]; occupied && !held {
			return fmt.Errorf("%w: seat %d is occupied without a confirmed ticket", domain.ErrInvalidSnapshot, i+1)
		}
	}

	for _, cancelled := range state.CancelledStack {
		maxTicketID = max(maxTicketID, cancelled.Ticket.ID)
		maxPassengerID = max(maxPassengerID, cancelled.Passenger.ID, cancelled.Ticket.Passenger.ID)
	}
	for _, passenger := range state.WaitingList {
		maxPassengerID = max(maxPassengerID, passenger.ID)
	}

	if state.NextTicketID <= maxTicketID {
		return fmt.Errorf("%w: next_ticket_id %d must be above %d", domain.ErrInvalidSnapshot, state.NextTicketID, maxTicketID)
	}
	if state.NextPassengerID <= maxPassengerID {
		return fmt.Errorf("%w: next_passenger_id %d must be above %d", domain.ErrInvalidSnapshot, state.NextPassengerID, maxPassengerID)
	}
	return nil
}

func validateSnapshot(snapshot domain.Snapshot, totalSeats int) error {
	if snapshot.Seats != nil && len(snapshot.Seats) != totalSeats {
		return fmt.Errorf("%w: expected %d seats, got %d", domain.ErrInvalidSnapshot, totalSeats, len(snapshot.Seats))
	}
	if snapshot.NextTicketID < 0 || snapshot.NextPassengerID < 0 {
		return fmt.Errorf("%w: negative id counter", domain.ErrInvalidSnapshot)
	}

	seen := make(map[int64]struct{}, len(snapshot.Bookings))
	for _, entry := range snapshot.Bookings {
		if _, dup := seen[entry.TicketID]; dup {
			return fmt.Errorf("%w: duplicate ticket %d", domain.ErrInvalidSnapshot, entry.TicketID)
		}
		seen[entry.TicketID] = struct{}{}
		if err := validateTicket(entry.Ticket, totalSeats); err != nil {
			return fmt.Errorf("%w: ticket %d: %v", domain.ErrInvalidSnapshot, entry.TicketID, err)
		}
	}
	for i, cancelled := range snapshot.CancelledStack {
		if err := validateTicket(cancelled.Ticket, totalSeats); err != nil {
			return fmt.Errorf("%w: cancelled entry %d: %v", domain.ErrInvalidSnapshot, i, err)
		}
	}
	return nil
}

func validateTicket(ticket domain.Ticket, totalSeats int) error {
	if !ticket.Status.IsValid() {
		return fmt.Errorf("unknown status %q", ticket.Status)
	}
	if ticket.IsConfirmed() && (ticket.SeatNumber < 1 || ticket.SeatNumber > totalSeats) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidSeat, ticket.SeatNumber)
	}
	return nil
}
