package bookings_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/service/booking"
)

const ServiceName = "trainbooking.bookings.v1.BookingsService"

type BookTicketRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type TicketRequest struct {
	TicketID int64 `json:"ticket_id"`
}

type ListBookingsResponse struct {
	Tickets []domain.Ticket `json:"tickets"`
}

type ListWaitingListResponse struct {
	Passengers []domain.Passenger `json:"passengers"`
}

type ListCancellationsResponse struct {
	Cancellations []domain.CancelledTicket `json:"cancellations"`
}

type ClearAllResponse struct {
	Message string `json:"message"`
}

type ImportSnapshotResponse struct {
	SeatMap domain.SeatMap `json:"seat_map"`
}

// BookingsServiceServer is the server side of ServiceName.
type BookingsServiceServer interface {
	BookTicket(context.Context, *BookTicketRequest) (*booking.BookingResult, error)
	CancelTicket(context.Context, *TicketRequest) (*booking.CancelResult, error)
	UndoCancellation(context.Context, *emptypb.Empty) (*booking.UndoResult, error)
	SearchBooking(context.Context, *TicketRequest) (*domain.Ticket, error)
	ListBookings(context.Context, *emptypb.Empty) (*ListBookingsResponse, error)
	ListWaitingList(context.Context, *emptypb.Empty) (*ListWaitingListResponse, error)
	ListCancellations(context.Context, *emptypb.Empty) (*ListCancellationsResponse, error)
	GetSeatMap(context.Context, *emptypb.Empty) (*domain.SeatMap, error)
	ClearAll(context.Context, *emptypb.Empty) (*ClearAllResponse, error)
	ExportSnapshot(context.Context, *emptypb.Empty) (*domain.Snapshot, error)
	ImportSnapshot(context.Context, *domain.Snapshot) (*ImportSnapshotResponse, error)
}

func RegisterBookingsServiceServer(s grpc.ServiceRegistrar, srv BookingsServiceServer) {
	s.RegisterService(&BookingsServiceDesc, srv)
}

var BookingsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("BookTicket", BookingsServiceServer.BookTicket),
		unary("CancelTicket", BookingsServiceServer.CancelTicket),
		unary("UndoCancellation", BookingsServiceServer.UndoCancellation),
		unary("SearchBooking", BookingsServiceServer.SearchBooking),
		unary("ListBookings", BookingsServiceServer.ListBookings),
		unary("ListWaitingList", BookingsServiceServer.ListWaitingList),
		unary("ListCancellations", BookingsServiceServer.ListCancellations),
		unary("GetSeatMap", BookingsServiceServer.GetSeatMap),
		unary("ClearAll", BookingsServiceServer.ClearAll),
		unary("ExportSnapshot", BookingsServiceServer.ExportSnapshot),
		unary("ImportSnapshot", BookingsServiceServer.ImportSnapshot),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookings_api/bookings.proto",
}

func unary[Req, Resp any](method string, call func(BookingsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BookingsServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookingsServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Client is a thin caller for ServiceName. The connection must use Codec,
// see DialOptions.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// DialOptions forces Codec on every call made through the connection.
func DialOptions() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{}))}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) BookTicket(ctx context.Context, in *BookTicketRequest, opts ...grpc.CallOption) (*booking.BookingResult, error) {
	return invoke[booking.BookingResult](ctx, c, "BookTicket", in, opts...)
}

func (c *Client) CancelTicket(ctx context.Context, in *TicketRequest, opts ...grpc.CallOption) (*booking.CancelResult, error) {
	return invoke[booking.CancelResult](ctx, c, "CancelTicket", in, opts...)
}

func (c *Client) UndoCancellation(ctx context.Context, opts ...grpc.CallOption) (*booking.UndoResult, error) {
	return invoke[booking.UndoResult](ctx, c, "UndoCancellation", &emptypb.Empty{}, opts...)
}

func (c *Client) SearchBooking(ctx context.Context, in *TicketRequest, opts ...grpc.CallOption) (*domain.Ticket, error) {
	return invoke[domain.Ticket](ctx, c, "SearchBooking", in, opts...)
}

func (c *Client) ListBookings(ctx context.Context, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	return invoke[ListBookingsResponse](ctx, c, "ListBookings", &emptypb.Empty{}, opts...)
}

func (c *Client) ListWaitingList(ctx context.Context, opts ...grpc.CallOption) (*ListWaitingListResponse, error) {
	return invoke[ListWaitingListResponse](ctx, c, "ListWaitingList", &emptypb.Empty{}, opts...)
}

func (c *Client) ListCancellations(ctx context.Context, opts ...grpc.CallOption) (*ListCancellationsResponse, error) {
	return invoke[ListCancellationsResponse](ctx, c, "ListCancellations", &emptypb.Empty{}, opts...)
}

func (c *Client) GetSeatMap(ctx context.Context, opts ...grpc.CallOption) (*domain.SeatMap, error) {
	return invoke[domain.SeatMap](ctx, c, "GetSeatMap", &emptypb.Empty{}, opts...)
}

func (c *Client) ClearAll(ctx context.Context, opts ...grpc.CallOption) (*ClearAllResponse, error) {
	return invoke[ClearAllResponse](ctx, c, "ClearAll", &emptypb.Empty{}, opts...)
}

func (c *Client) ExportSnapshot(ctx context.Context, opts ...grpc.CallOption) (*domain.Snapshot, error) {
	return invoke[domain.Snapshot](ctx, c, "ExportSnapshot", &emptypb.Empty{}, opts...)
}

func (c *Client) ImportSnapshot(ctx context.Context, in *domain.Snapshot, opts ...grpc.CallOption) (*ImportSnapshotResponse, error) {
	return invoke[ImportSnapshotResponse](ctx, c, "ImportSnapshot", in, opts...)
}
