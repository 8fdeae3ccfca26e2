package waitlist

import (
	list "github.com/bahlo/generic-list-go"

	"github.com/Domenick1991/trainbooking/internal/domain"
)

// Queue is the FIFO of passengers who arrived while every seat was taken.
type Queue struct {
	items *list.List[domain.Passenger]
}

func NewQueue() *Queue {
	return &Queue{items: list.New[domain.Passenger]()}
}

func (q *Queue) Enqueue(p domain.Passenger) {
	q.items.PushBack(p)
}

// DequeueIfRoom yields the head only when the queue is not empty and the
// caller reports that the inventory has a free seat.
func (q *Queue) DequeueIfRoom(inventoryFull bool) (domain.Passenger, bool) {
	if q.items.Len() == 0 || inventoryFull {
		return domain.Passenger{}, false
	}
	return q.items.Remove(q.items.Front()), true
}

// Remove drops the first entry for passengerID.
func (q *Queue) Remove(passengerID int64) bool {
	for e := q.items.Front(); e != nil; e = e.Next() {
		if e.Value.ID == passengerID {
			q.items.Remove(e)
			return true
		}
	}
	return false
}

func (q *Queue) Contains(passengerID int64) bool {
	for e := q.items.Front(); e != nil; e = e.Next() {
		if e.Value.ID == passengerID {
			return true
		}
	}
	return false
}

// ToSlice returns the passengers head first without changing the queue.
func (q *Queue) ToSlice() []domain.Passenger {
	out := make([]domain.Passenger, 0, q.items.Len())
	for e := q.items.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value)
	}
	return out
}

func (q *Queue) Len() int {
	return q.items.Len()
}

func (q *Queue) IsEmpty() bool {
	return q.items.Len() == 0
}

func (q *Queue) Clear() {
	q.items.Init()
}
