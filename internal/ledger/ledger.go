package ledger

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/Domenick1991/trainbooking/internal/domain"
)

// Ledger maps ticket ids to tickets and iterates in insertion order.
type Ledger struct {
	tickets *orderedmap.OrderedMap[int64, domain.Ticket]
}

func New() *Ledger {
	return &Ledger{tickets: orderedmap.New[int64, domain.Ticket]()}
}

// Insert stores the ticket under id. An existing entry is overwritten in
// place and keeps its position.
func (l *Ledger) Insert(id int64, ticket domain.Ticket) {
	l.tickets.Set(id, ticket)
}

func (l *Ledger) Lookup(id int64) (domain.Ticket, bool) {
	return l.tickets.Get(id)
}

func (l *Ledger) Remove(id int64) (domain.Ticket, bool) {
	return l.tickets.Delete(id)
}

// Update applies mutate to the stored ticket. The id itself cannot change.
func (l *Ledger) Update(id int64, mutate func(*domain.Ticket)) bool {
	pair := l.tickets.GetPair(id)
	if pair == nil {
		return false
	}
	mutate(&pair.Value)
	pair.Value.ID = id
	return true
}

// FindWaitingByPassenger returns the id of the first WAITING ticket held by
// passengerID. This is a linear scan; fine for a single vehicle.
func (l *Ledger) FindWaitingByPassenger(passengerID int64) (int64, bool) {
	for pair := l.tickets.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.IsWaiting() && pair.Value.Passenger.ID == passengerID {
			return pair.Key, true
		}
	}
	return 0, false
}

// Values lists the tickets oldest booking first.
func (l *Ledger) Values() []domain.Ticket {
	out := make([]domain.Ticket, 0, l.tickets.Len())
	for pair := l.tickets.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (l *Ledger) Entries() []domain.BookingEntry {
	out := make([]domain.BookingEntry, 0, l.tickets.Len())
	for pair := l.tickets.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, domain.BookingEntry{TicketID: pair.Key, Ticket: pair.Value})
	}
	return out
}

func (l *Ledger) Len() int {
	return l.tickets.Len()
}

func (l *Ledger) Clear() {
	l.tickets = orderedmap.New[int64, domain.Ticket]()
}
