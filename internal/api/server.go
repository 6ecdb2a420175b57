package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/tcbf/internal/beamformer"
	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/logger"
	"github.com/samcharles93/tcbf/internal/plan"
)

// Engine is the part of a Beamformer the server drives.
type Engine interface {
	Plan() plan.Plan
	State() beamformer.State
	Variant() ccg.Variant
	Backend() string
	LoadAMatrix(r io.Reader, size int64) error
	Process(rf []int16, bf []int32) error
}

type Options struct {
	// RateLimit is the sustained number of POST requests per second.
	// Zero disables limiting.
	RateLimit float64
	Burst     int
	Logger    logger.Logger
}

// Server exposes one Engine over HTTP. Requests are serialized because a
// Beamformer is not safe for concurrent use.
type Server struct {
	mu      sync.Mutex
	engine  Engine
	limiter *rate.Limiter
	log     logger.Logger
	clock   func() time.Time
	started time.Time

	batches   atomic.Uint64
	lastError atomic.Pointer[string]
}

func NewServer(engine Engine, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	s := &Server{
		engine:  engine,
		limiter: limiter,
		log:     log.With("component", "api"),
		clock:   time.Now,
	}
	s.started = s.clock()
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(s.requestIDMiddleware)

	e.POST("/v1/weights", s.handleLoadWeights)
	e.POST("/v1/beamform", s.handleBeamform)
	e.GET("/v1/plan", s.handlePlan)
	e.GET("/v1/status", s.handleStatus)
}

func (s *Server) requestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := c.Request().Header.Get(headerRequestID)
		if id == "" {
			id = newRequestID()
		}
		c.Response().Header().Set(headerRequestID, id)
		return next(c)
	}
}

func (s *Server) allow(c *echo.Context) bool {
	if s.limiter == nil || s.limiter.Allow() {
		return true
	}
	_ = writeError(c, http.StatusTooManyRequests, "rate_limit_error", "too many requests")
	return false
}

type WeightsResponse struct {
	RequestID string `json:"request_id"`
	State     string `json:"state"`
	Bytes     int64  `json:"bytes"`
}

func (s *Server) handleLoadWeights(c *echo.Context) error {
	if !s.allow(c) {
		return nil
	}
	want := s.engine.Plan().BytesAPacked
	body, err := readBody(c.Request().Body, want)
	if err != nil {
		return writeEngineError(c, err)
	}

	s.mu.Lock()
	err = s.engine.LoadAMatrix(bytes.NewReader(body), int64(len(body)))
	state := s.engine.State()
	s.mu.Unlock()
	if err != nil {
		s.recordError(c, err)
		return writeEngineError(c, err)
	}
	s.log.Info("weights uploaded", "request_id", requestID(c), "bytes", len(body))
	return writeJSON(c, http.StatusOK, WeightsResponse{
		RequestID: requestID(c),
		State:     state.String(),
		Bytes:     int64(len(body)),
	})
}

func (s *Server) handleBeamform(c *echo.Context) error {
	if !s.allow(c) {
		return nil
	}
	p := s.engine.Plan()
	body, err := readBody(c.Request().Body, p.BytesRF)
	if err != nil {
		return writeEngineError(c, err)
	}
	if int64(len(body)) != p.BytesRF {
		return writeError(c, http.StatusBadRequest, "size_error",
			fmt.Sprintf("RF body holds %d bytes, expected %d", len(body), p.BytesRF))
	}

	rf := decodeInt16(body)
	bf := make([]int32, p.BFElements())
	start := s.clock()
	s.mu.Lock()
	err = s.engine.Process(rf, bf)
	s.mu.Unlock()
	if err != nil {
		s.recordError(c, err)
		return writeEngineError(c, err)
	}
	s.batches.Add(1)
	s.log.Debug("batch beamformed", "request_id", requestID(c), "took", s.clock().Sub(start))

	h := c.Response().Header()
	h.Set("X-Beam-Pixels", fmt.Sprint(p.Logical.Pixels))
	h.Set("X-Beam-Frames", fmt.Sprint(p.Logical.Frames))
	return writeBinary(c, encodeInt32(bf))
}

type PlanResponse struct {
	plan.Plan
	Backend string `json:"backend"`
	Variant string `json:"variant"`
}

func (s *Server) handlePlan(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, PlanResponse{
		Plan:    s.engine.Plan(),
		Backend: s.engine.Backend(),
		Variant: s.engine.Variant().String(),
	})
}

type StatusResponse struct {
	State         string  `json:"state"`
	Backend       string  `json:"backend"`
	Variant       string  `json:"variant"`
	Batches       uint64  `json:"batches"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	LastError     string  `json:"last_error,omitempty"`
}

func (s *Server) handleStatus(c *echo.Context) error {
	s.mu.Lock()
	state := s.engine.State()
	s.mu.Unlock()
	resp := StatusResponse{
		State:         state.String(),
		Backend:       s.engine.Backend(),
		Variant:       s.engine.Variant().String(),
		Batches:       s.batches.Load(),
		UptimeSeconds: s.clock().Sub(s.started).Seconds(),
	}
	if msg := s.lastError.Load(); msg != nil {
		resp.LastError = *msg
	}
	return writeJSON(c, http.StatusOK, resp)
}

func (s *Server) recordError(c *echo.Context, err error) {
	msg := err.Error()
	s.lastError.Store(&msg)
	s.log.Warn("request failed", "request_id", requestID(c), "path", c.Request().URL.Path, "error", err)
}
