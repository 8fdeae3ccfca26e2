package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookTicketRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type bookTicketResponse struct {
	Success    bool                `json:"success"`
	TicketID   int64               `json:"ticket_id"`
	SeatNumber int                 `json:"seat_number,omitempty"`
	Status     domain.TicketStatus `json:"status"`
	Waiting    bool                `json:"waiting"`
	Message    string              `json:"message"`
}

type cancelTicketResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Cancelled domain.Ticket  `json:"cancelled"`
	Promoted  *domain.Ticket `json:"promoted,omitempty"`
}

type undoResponse struct {
	Success    bool                `json:"success"`
	TicketID   int64               `json:"ticket_id"`
	SeatNumber int                 `json:"seat_number,omitempty"`
	Status     domain.TicketStatus `json:"status"`
	Message    string              `json:"message"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	bookings := router.Group("/bookings")
	bookings.POST("", h.book)
	bookings.GET("", h.list)
	bookings.GET("/:id", h.search)
	bookings.DELETE("/:id", h.cancel)

	router.POST("/undo", h.undo)
	router.GET("/waiting-list", h.waitingList)
	router.GET("/cancellations", h.cancellations)
	router.GET("/seats", h.seats)
	router.DELETE("/bookings", h.clear)
}

func (h *BookingHandler) book(c *gin.Context) {
	var req bookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.BookTicket(c.Request.Context(), booking.BookTicketInput{Name: req.Name, Age: req.Age})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookTicketResponse{
		Success:    true,
		TicketID:   result.Ticket.ID,
		SeatNumber: result.Ticket.SeatNumber,
		Status:     result.Ticket.Status,
		Waiting:    result.Waiting,
		Message:    result.Message,
	})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}

	result, err := h.service.CancelTicket(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelTicketResponse{
		Success:   true,
		Message:   result.Message,
		Cancelled: result.Cancelled,
		Promoted:  result.Promoted,
	})
}

func (h *BookingHandler) undo(c *gin.Context) {
	result, err := h.service.UndoCancellation(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, undoResponse{
		Success:    true,
		TicketID:   result.Ticket.ID,
		SeatNumber: result.Ticket.SeatNumber,
		Status:     result.Ticket.Status,
		Message:    result.Message,
	})
}

func (h *BookingHandler) search(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}

	ticket, err := h.service.SearchBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *BookingHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListAllBookings(c.Request.Context()))
}

func (h *BookingHandler) waitingList(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListWaitingList(c.Request.Context()))
}

func (h *BookingHandler) cancellations(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListCancellationHistory(c.Request.Context()))
}

func (h *BookingHandler) seats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.SeatMap(c.Request.Context()))
}

func (h *BookingHandler) clear(c *gin.Context) {
	h.service.ClearAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All data cleared!"})
}

func ticketID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid ticket id")
		return 0, false
	}
	return id, true
}
