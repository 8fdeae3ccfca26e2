package seats

// NoSeat is returned by FindFirstFree when every seat is occupied.
const NoSeat = -1

// Inventory holds one occupancy flag per seat. Seat numbers are 1-based.
type Inventory struct {
	seats []bool
}

func NewInventory(total int) *Inventory {
	if total < 0 {
		total = 0
	}
	return &Inventory{seats: make([]bool, total)}
}

func (inv *Inventory) Total() int {
	return len(inv.seats)
}

// FindFirstFree returns the lowest numbered free seat or NoSeat.
func (inv *Inventory) FindFirstFree() int {
	for i, occupied := range inv.seats {
		if !occupied {
			return i + 1
		}
	}
	return NoSeat
}

// Claim marks the seat occupied. It fails when the number is out of range or
// the seat is already taken.
func (inv *Inventory) Claim(seat int) bool {
	if !inv.inRange(seat) || inv.seats[seat-1] {
		return false
	}
	inv.seats[seat-1] = true
	return true
}

// Release frees the seat. Out of range numbers are reported as failure.
func (inv *Inventory) Release(seat int) bool {
	if !inv.inRange(seat) {
		return false
	}
	inv.seats[seat-1] = false
	return true
}

func (inv *Inventory) IsOccupied(seat int) bool {
	return inv.inRange(seat) && inv.seats[seat-1]
}

func (inv *Inventory) IsFull() bool {
	for _, occupied := range inv.seats {
		if !occupied {
			return false
		}
	}
	return true
}

func (inv *Inventory) AvailableCount() int {
	n := 0
	for _, occupied := range inv.seats {
		if !occupied {
			n++
		}
	}
	return n
}

func (inv *Inventory) OccupiedCount() int {
	n := 0
	for _, occupied := range inv.seats {
		if occupied {
			n++
		}
	}
	return n
}

// Flags returns a copy of the occupancy flags.
func (inv *Inventory) Flags() []bool {
	out := make([]bool, len(inv.seats))
	copy(out, inv.seats)
	return out
}

// Restore replaces the flags. The length must match the capacity.
func (inv *Inventory) Restore(flags []bool) bool {
	if len(flags) != len(inv.seats) {
		return false
	}
	copy(inv.seats, flags)
	return true
}

func (inv *Inventory) Reset() {
	for i := range inv.seats {
		inv.seats[i] = false
	}
}

func (inv *Inventory) inRange(seat int) bool {
	return seat >= 1 && seat <= len(inv.seats)
}
