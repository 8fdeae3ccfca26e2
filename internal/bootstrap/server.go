package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/Domenick1991/trainbooking/api"
	"github.com/Domenick1991/trainbooking/config"
	bookingsapi "github.com/Domenick1991/trainbooking/internal/api/bookings_service_api"
	"github.com/Domenick1991/trainbooking/internal/service/booking"
	"github.com/Domenick1991/trainbooking/internal/service/storage"
)

type Deps struct {
	Bookings booking.BookingUseCase
	Storage  storage.StorageUseCase
	Stream   api.SeatMapStream
	Log      *zap.Logger
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts gRPC and HTTP (gin + swagger) servers and blocks until context is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	s := newServers(cfg, deps)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	deps.Log.Info("servers started",
		zap.String("http", cfg.HTTP.Address),
		zap.String("grpc", lis.Addr().String()))

	select {
	case err := <-errCh:
		s.grpcServer.Stop()
		_ = s.httpServer.Close()
		return err
	case <-ctx.Done():
		deps.Log.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, deps Deps) *Servers {
	grpcSrv := grpc.NewServer(
		grpc.ForceServerCodec(bookingsapi.Codec{}),
		grpc.ChainUnaryInterceptor(unaryLogger(deps.Log)),
	)
	bookingsapi.RegisterBookingsServiceServer(grpcSrv, bookingsapi.NewServer(deps.Bookings))

	router := api.NewRouter(api.RouterConfig{
		Bookings:   deps.Bookings,
		Storage:    deps.Storage,
		Stream:     deps.Stream,
		SwaggerDir: cfg.HTTP.SwaggerDir,
		Log:        deps.Log,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
	}
}

func unaryLogger(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("grpc call failed", zap.String("method", info.FullMethod), zap.Duration("latency", time.Since(start)), zap.Error(err))
		} else {
			log.Debug("grpc call", zap.String("method", info.FullMethod), zap.Duration("latency", time.Since(start)))
		}
		return resp, err
	}
}
