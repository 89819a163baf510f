package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/edgecomet/htmlcut/internal/common/config"
	"github.com/edgecomet/htmlcut/internal/common/configtypes"
	"github.com/edgecomet/htmlcut/internal/common/httputil"
	"github.com/edgecomet/htmlcut/internal/common/redis"
	"github.com/edgecomet/htmlcut/internal/common/requestid"
	"github.com/edgecomet/htmlcut/internal/preview/metrics"
	"github.com/edgecomet/htmlcut/pkg/htmlcut"
	"github.com/edgecomet/htmlcut/pkg/types"
)

const (
	cacheTimeout       = time.Second
	healthCheckTimeout = 2 * time.Second
	batchWorkers       = 8
)

// Service serves the cut API over fasthttp.
type Service struct {
	cutter        *htmlcut.Cutter
	cache         *ResultCache
	metrics       *metrics.PrometheusMetrics
	logger        *zap.Logger
	defaultLength int
	defaultMarker string
	maxBodySize   int
	fingerprint   string
}

// NewService builds the cutter from cfg.Truncate. cache may be nil.
func NewService(cfg *configtypes.ServiceConfig, cache *ResultCache, m *metrics.PrometheusMetrics, logger *zap.Logger) (*Service, error) {
	cutter, err := config.NewCutter(cfg.Truncate)
	if err != nil {
		return nil, fmt.Errorf("failed to build cutter: %w", err)
	}

	return &Service{
		cutter:        cutter,
		cache:         cache,
		metrics:       m,
		logger:        logger,
		defaultLength: cfg.Truncate.DefaultLength,
		defaultMarker: config.DefaultMarker(cfg.Truncate),
		maxBodySize:   cfg.Server.MaxBodySize,
		fingerprint:   cutter.Config().Fingerprint(),
	}, nil
}

// Handler returns the request handler with request ID handling applied.
func (s *Service) Handler() fasthttp.RequestHandler {
	return requestid.Middleware(s.ServeHTTP)
}

// ServeHTTP routes API requests
func (s *Service) ServeHTTP(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case method == fasthttp.MethodPost && path == "/cut":
		s.handleCut(ctx)
	case method == fasthttp.MethodPost && path == "/cut/batch":
		s.handleBatch(ctx)
	case method == fasthttp.MethodGet && path == "/status":
		s.handleStatus(ctx)
	default:
		path = "other"
		httputil.JSONError(ctx, "not found", fasthttp.StatusNotFound)
	}

	s.metrics.RecordRequest(path, ctx.Response.StatusCode(), time.Since(start))
}

// handleCut handles POST /cut
func (s *Service) handleCut(ctx *fasthttp.RequestCtx) {
	if !s.checkBodySize(ctx) {
		return
	}

	var req types.CutRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.JSONError(ctx, err.Error(), fasthttp.StatusBadRequest)
		return
	}
	if req.HTML == "" {
		httputil.JSONError(ctx, "html is required", fasthttp.StatusBadRequest)
		return
	}

	result, err := s.cut(req)
	if err != nil {
		status := errorStatus(err)
		s.logger.Warn("Cut failed",
			zap.String("request_id", requestid.FromContext(ctx)),
			zap.Int("status", status),
			zap.Error(err))
		httputil.JSONError(ctx, err.Error(), status)
		return
	}

	s.logger.Debug("Cut served",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.Int("initial_length", result.InitialLength),
		zap.Int("final_length", result.FinalLength),
		zap.Bool("truncated", result.Truncated),
		zap.Bool("cached", result.Cached))

	httputil.JSONData(ctx, result, fasthttp.StatusOK)
}

// handleBatch handles POST /cut/batch. Items are cut concurrently and
// reported in request order; a failing item does not fail the batch.
func (s *Service) handleBatch(ctx *fasthttp.RequestCtx) {
	if !s.checkBodySize(ctx) {
		return
	}

	var req types.CutBatchRequest
	if err := httputil.DecodeJSON(ctx, &req); err != nil {
		httputil.JSONError(ctx, err.Error(), fasthttp.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		httputil.JSONError(ctx, "items array cannot be empty", fasthttp.StatusBadRequest)
		return
	}
	if len(req.Items) > types.MaxBatchItems {
		httputil.JSONError(ctx, fmt.Sprintf("items array cannot exceed %d entries", types.MaxBatchItems), fasthttp.StatusBadRequest)
		return
	}

	results := make([]types.BatchItemResult, len(req.Items))
	var g errgroup.Group
	g.SetLimit(batchWorkers)

	for i, item := range req.Items {
		g.Go(func() error {
			results[i].Index = i
			if item.HTML == "" {
				results[i].Error = "html is required"
				return nil
			}
			result, err := s.cut(item)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Result = result
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	s.logger.Debug("Batch served",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.Int("items", len(results)),
		zap.Int("failed", failed))

	httputil.JSONData(ctx, types.CutBatchResponse{Items: results}, fasthttp.StatusOK)
}

// handleStatus handles GET /status
func (s *Service) handleStatus(ctx *fasthttp.RequestCtx) {
	resp := types.StatusResponse{
		Status:        "ok",
		CacheEnabled:  s.cache != nil,
		DefaultLength: s.defaultLength,
		CacheHits:     s.metrics.CacheCount(metrics.CacheHit),
		CacheMisses:   s.metrics.CacheCount(metrics.CacheMiss),
	}

	if s.cache != nil {
		hctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		defer cancel()
		if err := s.cache.HealthCheck(hctx); err != nil {
			resp.Status = "degraded"
			resp.Redis = "unavailable"
		} else {
			resp.Redis = "ok"
		}
	}

	httputil.JSONData(ctx, resp, fasthttp.StatusOK)
}

func (s *Service) checkBodySize(ctx *fasthttp.RequestCtx) bool {
	if s.maxBodySize > 0 && len(ctx.Request.Body()) > s.maxBodySize {
		httputil.JSONError(ctx, fmt.Sprintf("request body exceeds %d bytes", s.maxBodySize), fasthttp.StatusRequestEntityTooLarge)
		return false
	}
	return true
}

// cut resolves request defaults, consults the cache and runs the cutter.
func (s *Service) cut(req types.CutRequest) (*types.CutResult, error) {
	key := redis.CutKey{
		HTML:            req.HTML,
		Length:          s.defaultLength,
		Paragraphs:      max(req.Paragraphs, 0),
		Marker:          s.defaultMarker,
		StripDenylisted: true,
		Config:          s.fingerprint,
	}
	if req.Length != nil {
		key.Length = max(*req.Length, 0)
	}
	if req.Marker != nil {
		key.Marker = *req.Marker
	}
	if req.StripDenylisted != nil {
		key.StripDenylisted = *req.StripDenylisted
	}

	if s.cache != nil {
		cctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
		cached, ok := s.cache.Get(cctx, key)
		cancel()
		if ok {
			cached.Cached = true
			return cached, nil
		}
	}

	res, err := s.cutter.CutResult(req.HTML, key.Length,
		htmlcut.WithParagraphs(key.Paragraphs),
		htmlcut.WithMarker(key.Marker),
		htmlcut.WithDenylistStripping(key.StripDenylisted))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCut(res.Truncated, len(req.HTML))

	result := &types.CutResult{
		HTML:          res.Text,
		Truncated:     res.Truncated,
		InitialLength: res.InitialLength,
		FinalLength:   res.FinalLength,
	}

	if s.cache != nil {
		cctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
		s.cache.Set(cctx, key, result)
		cancel()
	}
	return result, nil
}

// errorStatus maps cutter errors onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, htmlcut.ErrStructureTooDeep):
		return fasthttp.StatusUnprocessableEntity
	case errors.Is(err, htmlcut.ErrUpstreamParse):
		return fasthttp.StatusBadGateway
	default:
		return fasthttp.StatusInternalServerError
	}
}
