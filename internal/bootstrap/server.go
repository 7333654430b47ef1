package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/tourbooking/api"
	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/service/departures"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
)

const (
	shutdownTimeout = 5 * time.Second
	probeInterval   = 15 * time.Second
)

// Probe reports whether a backing dependency is reachable.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type Deps struct {
	Bookings   booking.BookingUseCase
	Departures departures.DepartureUseCase
	Probes     []Probe
	Middleware []gin.HandlerFunc
	Log        logrus.FieldLogger
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	healthConn *grpc.ClientConn
	probes     []Probe
	log        logrus.FieldLogger
}

// Run starts the gRPC health server and the HTTP server (REST API, metrics, swagger and the
// gateway health endpoint) and blocks until ctx is cancelled or a server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	s, err := newServers(cfg, deps)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.WithField("addr", cfg.GRPC.Address).Info("grpc server started")
		return s.grpcServer.Serve(lis)
	})
	g.Go(func() error {
		s.log.WithField("addr", cfg.HTTP.Address).Info("http server started")
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.watch(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down servers")
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		_ = s.healthConn.Close()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newServers(cfg *config.Config, deps Deps) (*Servers, error) {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(),
			logging.UnaryServerInterceptor(grpcLogger(log), logging.WithLogOnEvents(logging.FinishCall)),
		),
	)
	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, healthSrv)

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial grpc health: %w", err)
	}
	gateway := runtime.NewServeMux()
	if err := gateway.HandlePath(http.MethodGet, "/healthz", healthHandler(grpc_health_v1.NewHealthClient(conn))); err != nil {
		return nil, fmt.Errorf("register health gateway: %w", err)
	}

	router := NewRouter(deps.Bookings, deps.Departures, log, deps.Middleware...)
	router.GET("/healthz", gin.WrapH(gateway))
	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFile("/swagger/bookings.swagger.json", filepath.Join(cfg.HTTP.SwaggerDir, "bookings.swagger.json"))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/bookings.swagger.json"))))
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		health:     healthSrv,
		healthConn: conn,
		probes:     deps.Probes,
		log:        log,
	}, nil
}

// NewRouter builds the REST engine with request logging, panic recovery and the metrics endpoint.
// Nil entries in middleware are skipped.
func NewRouter(bookings booking.BookingUseCase, deps departures.DepartureUseCase, log logrus.FieldLogger, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	for _, mw := range middleware {
		if mw != nil {
			router.Use(mw)
		}
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api.RegisterRoutes(router, bookings, deps, log)
	return router
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request served")
			return
		}
		entry.Debug("request served")
	}
}

// grpcLogger adapts logrus to the interceptor logger.
func grpcLogger(log logrus.FieldLogger) logging.Logger {
	return logging.LoggerFunc(func(_ context.Context, lvl logging.Level, msg string, fields ...any) {
		entry := log.WithFields(logrus.Fields{})
		for i := 0; i+1 < len(fields); i += 2 {
			if key, ok := fields[i].(string); ok {
				entry = entry.WithField(key, fields[i+1])
			}
		}
		switch lvl {
		case logging.LevelDebug, logging.LevelInfo:
			entry.Debug(msg)
		case logging.LevelWarn:
			entry.Warn(msg)
		default:
			entry.Error(msg)
		}
	})
}

func healthHandler(client grpc_health_v1.HealthClient) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		resp, err := client.Check(r.Context(), &grpc_health_v1.HealthCheckRequest{})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		body, err := protojson.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_, _ = w.Write(body)
	}
}

// watch keeps the gRPC health status in line with the probes until ctx is done.
func (s *Servers) watch(ctx context.Context) {
	s.probe(ctx)
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *Servers) probe(ctx context.Context) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	for _, p := range s.probes {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := p.Check(checkCtx)
		cancel()
		if err != nil {
			s.log.WithError(err).WithField("dependency", p.Name).Warn("health probe failed")
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
}
