package domain

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")

	ErrNothingToUndo = errors.New("no cancellations to undo")

	ErrInvalidSeat = errors.New("seat number out of range")

	ErrInvalidPassenger = errors.New("invalid passenger details")

	ErrInvalidSnapshot = errors.New("invalid snapshot")

	ErrSnapshotNotFound = errors.New("no saved data found")
)
