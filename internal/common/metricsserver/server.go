package metricsserver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/htmlcut/internal/common/configtypes"
)

// MetricsHandler serves the metrics exposition
type MetricsHandler interface {
	ServeHTTP(ctx *fasthttp.RequestCtx)
}

// Server is a running metrics listener
type Server struct {
	srv *fasthttp.Server
	ln  net.Listener
}

// Addr returns the bound address
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight scrapes.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

// Start binds the metrics listener and serves in the background. It returns
// nil, nil when metrics are disabled. Binding errors are returned directly.
func Start(cfg configtypes.MetricsConfig, handler MetricsHandler, logger *zap.Logger) (*Server, error) {
	if !cfg.Enabled {
		logger.Info("Metrics collection disabled")
		return nil, nil
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("failed to bind metrics listener %s: %w", cfg.Listen, err)
	}

	s := &Server{
		ln: ln,
		srv: &fasthttp.Server{
			Handler:            newHandler(cfg.Path, handler),
			Name:               "htmlcut-metrics",
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			MaxRequestBodySize: 1 * 1024,
			TCPKeepalive:       true,
			TCPKeepalivePeriod: 30 * time.Second,
			MaxConnsPerIP:      100,
			MaxRequestsPerConn: 1000,
			Concurrency:        100,
		},
	}

	go func() {
		logger.Info("Metrics server listening",
			zap.String("listen", s.Addr()),
			zap.String("path", cfg.Path))

		if err := s.srv.Serve(ln); err != nil {
			logger.Error("Metrics server stopped",
				zap.String("listen", cfg.Listen),
				zap.Error(err))
		}
	}()

	return s, nil
}

func newHandler(path string, metrics MetricsHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) == path {
			metrics.ServeHTTP(ctx)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetBodyString("Not Found")
	}
}
