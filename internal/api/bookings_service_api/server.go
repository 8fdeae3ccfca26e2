package bookings_service_api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/service/booking"
)

// Server implements BookingsServiceServer on top of the booking use case.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

func (s *Server) BookTicket(ctx context.Context, req *BookTicketRequest) (*booking.BookingResult, error) {
	result, err := s.bookings.BookTicket(ctx, booking.BookTicketInput{Name: req.Name, Age: req.Age})
	if err != nil {
		return nil, StatusFromError(err)
	}
	return result, nil
}

func (s *Server) CancelTicket(ctx context.Context, req *TicketRequest) (*booking.CancelResult, error) {
	result, err := s.bookings.CancelTicket(ctx, req.TicketID)
	if err != nil {
		return nil, StatusFromError(err)
	}
	return result, nil
}

func (s *Server) UndoCancellation(ctx context.Context, _ *emptypb.Empty) (*booking.UndoResult, error) {
	result, err := s.bookings.UndoCancellation(ctx)
	if err != nil {
		return nil, StatusFromError(err)
	}
	return result, nil
}

func (s *Server) SearchBooking(ctx context.Context, req *TicketRequest) (*domain.Ticket, error) {
	ticket, err := s.bookings.SearchBooking(ctx, req.TicketID)
	if err != nil {
		return nil, StatusFromError(err)
	}
	return ticket, nil
}

func (s *Server) ListBookings(ctx context.Context, _ *emptypb.Empty) (*ListBookingsResponse, error) {
	return &ListBookingsResponse{Tickets: s.bookings.ListAllBookings(ctx)}, nil
}

func (s *Server) ListWaitingList(ctx context.Context, _ *emptypb.Empty) (*ListWaitingListResponse, error) {
	return &ListWaitingListResponse{Passengers: s.bookings.ListWaitingList(ctx)}, nil
}

func (s *Server) ListCancellations(ctx context.Context, _ *emptypb.Empty) (*ListCancellationsResponse, error) {
	return &ListCancellationsResponse{Cancellations: s.bookings.ListCancellationHistory(ctx)}, nil
}

func (s *Server) GetSeatMap(ctx context.Context, _ *emptypb.Empty) (*domain.SeatMap, error) {
	seatMap := s.bookings.SeatMap(ctx)
	return &seatMap, nil
}

func (s *Server) ClearAll(ctx context.Context, _ *emptypb.Empty) (*ClearAllResponse, error) {
	s.bookings.ClearAll(ctx)
	return &ClearAllResponse{Message: "All data cleared!"}, nil
}

func (s *Server) ExportSnapshot(ctx context.Context, _ *emptypb.Empty) (*domain.Snapshot, error) {
	snapshot := s.bookings.ExportSnapshot(ctx)
	return &snapshot, nil
}

func (s *Server) ImportSnapshot(ctx context.Context, req *domain.Snapshot) (*ImportSnapshotResponse, error) {
	if err := s.bookings.ImportSnapshot(ctx, *req); err != nil {
		return nil, StatusFromError(err)
	}
	return &ImportSnapshotResponse{SeatMap: s.bookings.SeatMap(ctx)}, nil
}

// StatusFromError maps domain errors to gRPC status errors. The HTTP API
// derives its status codes from the same mapping.
func StatusFromError(err error) error {
	switch {
	case errors.Is(err, domain.ErrTicketNotFound), errors.Is(err, domain.ErrSnapshotNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrNothingToUndo):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidPassenger),
		errors.Is(err, domain.ErrInvalidSnapshot),
		errors.Is(err, domain.ErrInvalidSeat):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

var _ BookingsServiceServer = (*Server)(nil)
