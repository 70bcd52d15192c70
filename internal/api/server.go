// Package api exposes the process catalog and run control over HTTP.
package api

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/MaTriXy/babysitter-sub001/internal/engine"
	vlog "github.com/MaTriXy/babysitter-sub001/internal/log"
	"github.com/MaTriXy/babysitter-sub001/internal/process"
	"github.com/MaTriXy/babysitter-sub001/internal/run"
)

// Server holds the dependencies for the API server.
type Server struct {
	Registry   *process.Registry
	Dispatcher engine.Dispatcher
	Gate       *engine.ReviewGate

	// Persist controls whether launched runs write a run directory.
	Persist bool

	mu   sync.Mutex
	runs map[string]*runState
}

type runState struct {
	ID        string          `json:"id"`
	ProcessID string          `json:"processId"`
	Status    string          `json:"status"` // "running" | "completed" | "failed"
	StartedAt time.Time       `json:"startedAt"`
	Result    *process.Result `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewServer creates a new Server around a catalog registry.
func NewServer(registry *process.Registry, dispatcher engine.Dispatcher) *Server {
	return &Server{
		Registry:   registry,
		Dispatcher: dispatcher,
		Gate:       engine.NewReviewGate(),
		runs:       map[string]*runState{},
	}
}

// Echo builds the configured echo instance with all routes mounted.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	v1 := e.Group("/api/v1")
	v1.GET("/processes", s.ListProcesses)
	v1.GET("/processes/*", s.GetProcess)
	v1.POST("/runs", s.LaunchRun)
	v1.GET("/runs", s.ListRuns)
	v1.GET("/runs/:id", s.GetRun)
	v1.GET("/breakpoints", s.ListBreakpoints)
	v1.POST("/breakpoints/:id", s.ResolveBreakpoint)

	return e
}

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	return s.Echo().Start(addr)
}

type processSummary struct {
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Summary string             `json:"summary"`
	Inputs  []process.InputDoc `json:"inputs"`
}

// ListProcesses returns the catalog.
// (GET /api/v1/processes)
func (s *Server) ListProcesses(c echo.Context) error {
	all := s.Registry.All()
	out := make([]processSummary, 0, len(all))
	for _, p := range all {
		out = append(out, processSummary{ID: p.ID, Title: p.Title, Summary: p.Summary, Inputs: p.Inputs})
	}
	return c.JSON(http.StatusOK, out)
}

// GetProcess returns one catalog entry. Process IDs contain slashes, so
// the route matches a wildcard.
// (GET /api/v1/processes/<id>)
func (s *Server) GetProcess(c echo.Context) error {
	id := c.Param("*")
	p, ok := s.Registry.Get(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown process "+id)
	}
	return c.JSON(http.StatusOK, processSummary{ID: p.ID, Title: p.Title, Summary: p.Summary, Inputs: p.Inputs})
}

type launchRequest struct {
	Process string         `json:"process"`
	Inputs  process.Inputs `json:"inputs"`
}

// LaunchRun starts a process asynchronously and returns its run ID.
// (POST /api/v1/runs)
func (s *Server) LaunchRun(c echo.Context) error {
	var req launchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	p, ok := s.Registry.Get(req.Process)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown process "+req.Process)
	}

	state := &runState{
		ID:        uuid.New().String(),
		ProcessID: p.ID,
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.runs[state.ID] = state
	s.mu.Unlock()

	snapshot := *state
	go s.execute(p, req.Inputs, state)

	return c.JSON(http.StatusAccepted, snapshot)
}

func (s *Server) execute(p process.Process, inputs process.Inputs, state *runState) {
	rt := &engine.Runtime{
		Dispatcher: s.Dispatcher,
		Gate:       s.Gate,
	}

	if s.Persist {
		r, err := run.New(p.ID, inputs)
		if err != nil {
			vlog.Warn("could not create run directory", "err", err)
		} else {
			rt.Recorder = r
			defer func() {
				if state.Status == "failed" {
					r.Fail(state.Error)
				} else {
					r.Complete()
				}
			}()
		}
	}

	res, err := p.Run(context.Background(), rt, inputs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		state.Status = "failed"
		state.Error = err.Error()
		vlog.Error("run failed", "run", state.ID, "process", p.ID, "err", err)
		return
	}
	state.Status = "completed"
	state.Result = res
}

// ListRuns returns all launched runs, newest first. States are copied
// under the lock so the executor goroutine can keep mutating them.
// (GET /api/v1/runs)
func (s *Server) ListRuns(c echo.Context) error {
	s.mu.Lock()
	out := make([]runState, 0, len(s.runs))
	for _, st := range s.runs {
		out = append(out, *st)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return c.JSON(http.StatusOK, out)
}

// GetRun returns the status and, once finished, the result of a run.
// (GET /api/v1/runs/:id)
func (s *Server) GetRun(c echo.Context) error {
	s.mu.Lock()
	state, ok := s.runs[c.Param("id")]
	var snapshot runState
	if ok {
		snapshot = *state
	}
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown run "+c.Param("id"))
	}
	return c.JSON(http.StatusOK, snapshot)
}

// ListBreakpoints returns breakpoints waiting for a decision.
// (GET /api/v1/breakpoints)
func (s *Server) ListBreakpoints(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Gate.Pending())
}

type resolveRequest struct {
	Approved bool `json:"approved"`
}

// ResolveBreakpoint approves or rejects a pending breakpoint.
// (POST /api/v1/breakpoints/:id)
func (s *Server) ResolveBreakpoint(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := s.Gate.Resolve(c.Param("id"), req.Approved); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"id": c.Param("id"), "approved": req.Approved})
}
