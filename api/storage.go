package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/service/booking"
	"github.com/Domenick1991/trainbooking/internal/service/storage"
)

type StorageHandler struct {
	storage  storage.StorageUseCase
	bookings booking.BookingUseCase
	schema   *jsonschema.Schema
}

func NewStorageHandler(storage storage.StorageUseCase, bookings booking.BookingUseCase) *StorageHandler {
	r := &jsonschema.Reflector{DoNotReference: true}
	return &StorageHandler{
		storage:  storage,
		bookings: bookings,
		schema:   r.Reflect(&domain.Snapshot{}),
	}
}

func (h *StorageHandler) Register(router *gin.RouterGroup) {
	group := router.Group("/storage")
	group.POST("/save", h.save)
	group.POST("/load", h.load)
	group.DELETE("", h.clear)
	group.GET("/export", h.export)
	group.POST("/import", h.importSnapshot)
	group.GET("/schema", h.snapshotSchema)
}

func (h *StorageHandler) save(c *gin.Context) {
	if err := h.storage.Save(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Data saved successfully!"})
}

func (h *StorageHandler) load(c *gin.Context) {
	if err := h.storage.Load(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Data loaded successfully!"})
}

func (h *StorageHandler) clear(c *gin.Context) {
	if err := h.storage.Clear(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All data cleared!"})
}

func (h *StorageHandler) export(c *gin.Context) {
	c.JSON(http.StatusOK, h.bookings.ExportSnapshot(c.Request.Context()))
}

func (h *StorageHandler) importSnapshot(c *gin.Context) {
	var snapshot domain.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		badRequest(c, "invalid snapshot: "+err.Error())
		return
	}
	if err := h.bookings.ImportSnapshot(c.Request.Context(), snapshot); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.bookings.SeatMap(c.Request.Context()))
}

func (h *StorageHandler) snapshotSchema(c *gin.Context) {
	c.JSON(http.StatusOK, h.schema)
}
