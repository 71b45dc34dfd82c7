package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"diffusion-sim/internal/config"
	"diffusion-sim/internal/logging"
	"diffusion-sim/internal/metrics"
	"diffusion-sim/internal/network"
	"diffusion-sim/internal/scenario"
	"diffusion-sim/internal/sim"
	"diffusion-sim/internal/timeseries"
)

//go:embed templates/index.html
var content embed.FS

// RunRequest is the validated body of POST /runs.
type RunRequest struct {
	Policy   string  `json:"policy" validate:"max=100"`
	Origin   string  `json:"origin" validate:"required"`
	Strength float64 `json:"strength" validate:"gte=0.1,lte=1"`
	Years    int     `json:"years" validate:"gte=1,lte=100"`
}

// runRequestBody allows strength, years and policy to be omitted.
type runRequestBody struct {
	Policy   *string  `json:"policy"`
	Origin   string   `json:"origin"`
	Strength *float64 `json:"strength"`
	Years    *int     `json:"years"`
}

// RunSummary is the JSON view of a stored run without its time series.
type RunSummary struct {
	RunID     string             `json:"run_id"`
	Policy    string             `json:"policy,omitempty"`
	Origin    string             `json:"origin"`
	Strength  float64            `json:"strength"`
	Years     int                `json:"years"`
	BaseYear  int                `json:"base_year"`
	EndYear   int                `json:"end_year"`
	Saturated bool               `json:"saturated"`
	Adopted   int                `json:"adopted"`
	Total     int                `json:"total"`
	ReachPct  int                `json:"reach_pct"`
	Curve     []sim.CurvePoint   `json:"curve,omitempty"`
	Events    []timeseries.Event `json:"events,omitempty"`
}

func summarize(res *sim.Result, detail bool) RunSummary {
	adopted, total := res.Reach()
	s := RunSummary{
		RunID:     res.RunID,
		Policy:    res.Policy,
		Origin:    res.Origin,
		Strength:  res.Strength,
		Years:     res.Years,
		BaseYear:  res.BaseYear,
		EndYear:   res.EndYear(),
		Saturated: res.Saturated,
		Adopted:   adopted,
		Total:     total,
		ReachPct:  res.ReachPercent(),
	}
	if detail {
		s.Curve = res.AdoptionCurve()
		s.Events = res.Events
	}
	return s
}

// NetworkView is the JSON view of the influence graph.
type NetworkView struct {
	Summary network.Summary `json:"summary"`
	Edges   []network.Edge  `json:"edges"`
}

// Server exposes the simulator over HTTP.
type Server struct {
	Sim      *sim.Simulator
	Store    *RunStore
	Metrics  *metrics.Metrics
	cfg      *config.SimulationConfig
	tpl      *template.Template
	validate *validator.Validate
	log      *slog.Logger
	router   chi.Router
}

// NewServer wires the routes. A nil cfg uses config.Default, a nil m creates
// a private metrics registry.
func NewServer(s *sim.Simulator, cfg *config.SimulationConfig, m *metrics.Metrics) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	tpl := template.Must(template.New("index.html").Funcs(template.FuncMap{
		"pct": func(v float64) string { return strconv.FormatFloat(v*100, 'f', 0, 64) + "%" },
	}).ParseFS(content, "templates/index.html"))
	srv := &Server{
		Sim:      s,
		Store:    NewRunStore(DefaultStoreCapacity),
		Metrics:  m,
		cfg:      cfg,
		tpl:      tpl,
		validate: validator.New(),
		log:      slog.Default(),
	}
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/countries", s.handleCountries)
	r.Get("/network", s.handleNetwork)
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.handleCreateRun)
		r.Get("/", s.handleListRuns)
		r.Route("/{runID}", func(r chi.Router) {
			r.Get("/", s.handleGetRun)
			r.Get("/events", s.handleRunEvents)
			r.Get("/export.csv", s.handleExportCSV)
		})
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.log = logging.FromContext(ctx)
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("admin server listening", "addr", addr)
		errCh <- hs.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		default:
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(parts, "; ")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Policy    string
		Countries int
		Network   network.Summary
		Runs      []RunSummary
		Default   config.RunConfig
		MinStr    float64
		MaxStr    float64
	}{
		Policy:    s.cfg.Policy,
		Countries: s.Sim.Registry().Len(),
		Network:   s.Sim.Graph().Summarize(),
		Default:   s.cfg.Run,
		MinStr:    scenario.MinStrength,
		MaxStr:    scenario.MaxStrength,
	}
	for _, res := range s.Store.List(20) {
		data.Runs = append(data.Runs, summarize(res, false))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		s.log.Error("render index", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"countries": s.Sim.Registry().Len(),
		"runs":      s.Store.Len(),
	})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Countries())
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	g := s.Sim.Graph()
	writeJSON(w, http.StatusOK, NetworkView{Summary: g.Summarize(), Edges: g.Edges()})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var body runRequestBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.Metrics.IncrementFailed()
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	req := RunRequest{
		Policy:   s.cfg.Policy,
		Origin:   body.Origin,
		Strength: s.cfg.Run.Strength,
		Years:    s.cfg.Run.Years,
	}
	if body.Policy != nil {
		req.Policy = *body.Policy
	}
	if body.Strength != nil {
		req.Strength = *body.Strength
	}
	if body.Years != nil {
		req.Years = *body.Years
	}
	if err := s.validate.Struct(req); err != nil {
		s.Metrics.IncrementFailed()
		writeError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	start := time.Now()
	res, err := s.Sim.Run(r.Context(), req.Origin, req.Strength, req.Years)
	if err != nil {
		s.Metrics.IncrementFailed()
		if errors.Is(err, sim.ErrInvalidOrigin) {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s is not a known country; choose another origin", req.Origin))
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	res.Policy = req.Policy
	adopted, total := res.Reach()
	s.Metrics.ObserveRun(res.Saturated, len(res.Adopters()), res.FinalStep, float64(adopted)/float64(total), time.Since(start))
	s.Store.Put(res)
	s.Metrics.SetStoredRuns(s.Store.Len())

	w.Header().Set("Location", "/runs/"+res.RunID)
	writeJSON(w, http.StatusCreated, summarize(res, true))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs := s.Store.List(limit)
	out := make([]RunSummary, 0, len(runs))
	for _, res := range runs {
		out = append(out, summarize(res, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*sim.Result, bool) {
	id := chi.URLParam(r, "runID")
	res, ok := s.Store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("run %s not found", id))
	}
	return res, ok
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.lookupRun(w, r); ok {
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.lookupRun(w, r); ok {
		writeJSON(w, http.StatusOK, res.Events)
	}
}

// ReportFilename names a CSV export after the policy.
func ReportFilename(policy string) string {
	if policy == "" {
		policy = "policy"
	}
	return "diffusion_report_" + strings.ReplaceAll(policy, " ", "_") + ".csv"
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportFilename(res.Policy)))
	if err := sim.ExportCSV(w, res); err != nil {
		s.log.Error("csv export", "run_id", res.RunID, "err", err)
	}
}
