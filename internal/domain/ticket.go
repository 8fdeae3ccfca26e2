package domain

import (
	"fmt"
	"time"
)

type TicketStatus string

const (
	TicketStatusConfirmed TicketStatus = "CONFIRMED"
	TicketStatusWaiting   TicketStatus = "WAITING"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusConfirmed, TicketStatusWaiting:
		return true
	default:
		return false
	}
}

func (s *TicketStatus) UnmarshalText(text []byte) error {
	status := TicketStatus(text)
	if !status.IsValid() {
		return fmt.Errorf("unknown ticket status %q", string(text))
	}
	*s = status
	return nil
}

// Ticket is a plain value: copying it copies the passenger as well, so a copy
// taken for the cancellation history cannot be changed through the ledger.
type Ticket struct {
	ID         int64        `json:"ticket_id"`
	Passenger  Passenger    `json:"passenger"`
	SeatNumber int          `json:"seat_number,omitempty"` // 0 while waiting
	Status     TicketStatus `json:"status"`
	BookedAt   time.Time    `json:"booked_at"`
}

func (t Ticket) HasSeat() bool {
	return t.SeatNumber > 0
}

func (t Ticket) IsConfirmed() bool {
	return t.Status == TicketStatusConfirmed
}

func (t Ticket) IsWaiting() bool {
	return t.Status == TicketStatusWaiting
}

// Confirm places the ticket in seat.
func (t *Ticket) Confirm(seat int) {
	t.SeatNumber = seat
	t.Status = TicketStatusConfirmed
}

// Wait clears the seat and marks the ticket as queued.
func (t *Ticket) Wait() {
	t.SeatNumber = 0
	t.Status = TicketStatusWaiting
}

// CancelledTicket is the history entry pushed on every cancellation.
type CancelledTicket struct {
	Ticket    Ticket    `json:"ticket"`
	Passenger Passenger `json:"passenger"`
}
