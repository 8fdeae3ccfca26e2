package history

import "github.com/Domenick1991/trainbooking/internal/domain"

// Stack is the LIFO of cancellations available for undo. Entries are stored
// by value and never modified after Push.
type Stack struct {
	items []domain.CancelledTicket
}

func NewStack() *Stack {
	return &Stack{}
}

func (s *Stack) Push(entry domain.CancelledTicket) {
	s.items = append(s.items, entry)
}

// Pop removes and returns the most recent entry.
func (s *Stack) Pop() (domain.CancelledTicket, bool) {
	if len(s.items) == 0 {
		return domain.CancelledTicket{}, false
	}
	last := len(s.items) - 1
	entry := s.items[last]
	s.items[last] = domain.CancelledTicket{}
	s.items = s.items[:last]
	return entry, true
}

// PeekAll lists the entries newest first.
func (s *Stack) PeekAll() []domain.CancelledTicket {
	out := make([]domain.CancelledTicket, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0; i-- {
		out = append(out, s.items[i])
	}
	return out
}

func (s *Stack) Len() int {
	return len(s.items)
}

func (s *Stack) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *Stack) Clear() {
	s.items = nil
}
