package api

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/service/booking"
	"github.com/Domenick1991/trainbooking/internal/service/storage"
)

const requestIDHeader = "X-Request-ID"

// SeatMapStream upgrades a request to a live seat map feed.
type SeatMapStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request, initial *domain.SeatMap) error
}

type RouterConfig struct {
	Bookings   booking.BookingUseCase
	Storage    storage.StorageUseCase
	Stream     SeatMapStream
	SwaggerDir string
	Log        *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(RequestID(), RequestLogger(log), Recovery(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	NewBookingHandler(cfg.Bookings).Register(v1)
	if cfg.Storage != nil {
		NewStorageHandler(cfg.Storage, cfg.Bookings).Register(v1)
	}
	if cfg.Stream != nil {
		v1.GET("/ws", func(c *gin.Context) {
			seatMap := cfg.Bookings.SeatMap(c.Request.Context())
			if err := cfg.Stream.ServeWS(c.Writer, c.Request, &seatMap); err != nil {
				log.Warn("websocket upgrade failed", zap.Error(err))
			}
		})
	}

	if cfg.SwaggerDir != "" {
		router.StaticFile("/swagger/bookings.swagger.json", filepath.Join(cfg.SwaggerDir, "bookings.swagger.json"))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/bookings.swagger.json"))))
	}

	return router
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.String("request_id", c.GetString("request_id")),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Success: false, Message: "internal error"})
	})
}
