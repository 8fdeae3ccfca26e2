package domain

// Snapshot is the persistence document. Nil slices mean "absent" and leave the
// matching state untouched on import; zero counters are treated the same way.
// Callers that expect import to replace everything must send every field.
type Snapshot struct {
	Seats           []bool            `json:"seats" jsonschema:"description=Occupancy flags; index 0 is seat 1"`
	Bookings        []BookingEntry    `json:"bookings" jsonschema:"description=Ledger entries, oldest booking first"`
	CancelledStack  []CancelledTicket `json:"cancelled_stack" jsonschema:"description=Cancellation history, newest first"`
	NextTicketID    int64             `json:"next_ticket_id,omitempty"`
	NextPassengerID int64             `json:"next_passenger_id,omitempty"`
	WaitingList     []Passenger       `json:"waiting_list" jsonschema:"description=Waiting passengers in arrival order"`
}

type BookingEntry struct {
	TicketID int64  `json:"ticket_id"`
	Ticket   Ticket `json:"ticket"`
}

// SeatMap is the read model behind the seat grid and the statistics panel.
type SeatMap struct {
	TotalSeats   int    `json:"total_seats"`
	Available    int    `json:"available"`
	Occupied     int    `json:"occupied"`
	Seats        []bool `json:"seats"`
	WaitingCount int    `json:"waiting_count"`
	HistorySize  int    `json:"history_size"`
}
