package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Domenick1991/trainbooking/internal/kafka"
)

// Sender turns booking events into passenger-facing messages. Delivery is a
// structured log line; there is no outbound channel.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	text, ok := Message(event)
	if !ok {
		s.log.Debug("no notification for event", zap.String("type", event.Type), zap.String("event_id", event.ID))
		return nil
	}
	s.log.Info("notify passenger",
		zap.Int64("passenger_id", event.PassengerID),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("type", event.Type),
		zap.String("text", text),
	)
	return nil
}

// Message renders the text for event. ok is false for events that carry no
// passenger, such as a full reset.
func Message(event kafka.BookingEvent) (string, bool) {
	switch event.Type {
	case kafka.EventTicketBooked:
		return fmt.Sprintf("%s, your ticket %d is confirmed. Seat: %d", event.PassengerName, event.TicketID, event.SeatNumber), true
	case kafka.EventTicketWaitlisted:
		return fmt.Sprintf("%s, no seats were free. Ticket %d is on the waiting list", event.PassengerName, event.TicketID), true
	case kafka.EventTicketCancelled:
		return fmt.Sprintf("%s, ticket %d has been cancelled", event.PassengerName, event.TicketID), true
	case kafka.EventPassengerPromoted:
		return fmt.Sprintf("%s, a seat opened up. Ticket %d is confirmed. Seat: %d", event.PassengerName, event.TicketID, event.SeatNumber), true
	case kafka.EventCancellationUndone:
		if event.SeatNumber > 0 {
			return fmt.Sprintf("%s, ticket %d has been restored. Seat: %d", event.PassengerName, event.TicketID, event.SeatNumber), true
		}
		return fmt.Sprintf("%s, ticket %d has been restored to the waiting list", event.PassengerName, event.TicketID), true
	default:
		return "", false
	}
}
