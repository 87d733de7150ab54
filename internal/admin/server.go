package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reliefops-sim/internal/logging"
	"reliefops-sim/internal/sim"
	"reliefops-sim/internal/telemetry"
)

const invalidFormat = "Invalid Format. Use x,y (e.g., 5,5)"

// Server is the operator console: status page, JSON API and live stream.
type Server struct {
	Sim *sim.Simulator
	hub *StreamHub
	tpl *template.Template
	mux *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

// NewServer wires the handlers. hub may be nil to disable /ws.
func NewServer(s *sim.Simulator, hub *StreamHub) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	srv := &Server{Sim: s, hub: hub, tpl: tpl, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /state", s.handleState)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /mission-log", s.handleMissionLog)
	s.mux.HandleFunc("POST /mission-log/clear", s.handleClearLog)
	s.mux.HandleFunc("POST /zones", s.handleZone)
	s.mux.HandleFunc("POST /turn", s.handleTurn)
	if s.hub != nil {
		s.mux.Handle("GET /ws", s.hub)
	}
}

// Handler exposes the mux for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("admin server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("admin server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type cell struct {
	Class string
	Label string
}

type indexData struct {
	World      telemetry.World
	Turn       int
	Phase      string
	Grid       [][]cell
	MissionLog []sim.MissionEntry
	Stream     bool
}

// grid lays the world out row by row. Drones are drawn over zones, zones over hubs.
func grid(world telemetry.World) [][]cell {
	rows := make([][]cell, world.GridSize)
	for y := range rows {
		rows[y] = make([]cell, world.GridSize)
	}
	put := func(c telemetry.Coord, v cell) {
		if c.Y >= 0 && c.Y < world.GridSize && c.X >= 0 && c.X < world.GridSize {
			rows[c.Y][c.X] = v
		}
	}
	for _, h := range world.Hubs {
		put(h, cell{Class: "hub", Label: "H"})
	}
	for _, z := range world.Zones {
		put(z.Coords, cell{Class: "zone", Label: strconv.Itoa(z.Severity)})
	}
	for _, d := range world.Drones {
		label := "?"
		if d.ID != "" {
			label = d.ID[:1]
		}
		put(d.Position, cell{Class: "drone", Label: label})
	}
	return rows
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	world := s.Sim.World()
	data := indexData{
		World:      world,
		Turn:       s.Sim.Turn(),
		Phase:      s.Sim.Phase(),
		Grid:       grid(world),
		MissionLog: s.Sim.MissionLog(3),
		Stream:     s.hub != nil,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Turn  int             `json:"turn"`
		Phase string          `json:"phase,omitempty"`
		World telemetry.World `json:"world"`
	}{s.Sim.Turn(), s.Sim.Phase(), s.Sim.World()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Stats())
}

func (s *Server) handleMissionLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.Sim.MissionLog(limit))
}

func (s *Server) handleClearLog(w http.ResponseWriter, r *http.Request) {
	s.Sim.ClearMissionLog()
	w.WriteHeader(http.StatusNoContent)
}

// parseZoneForm accepts coords=x,y or separate x and y fields, plus an optional severity.
func parseZoneForm(r *http.Request) (x, y, severity int, err error) {
	if err := r.ParseForm(); err != nil {
		return 0, 0, 0, err
	}
	xs, ys := r.Form.Get("x"), r.Form.Get("y")
	if c := r.Form.Get("coords"); c != "" {
		parts := strings.Split(c, ",")
		if len(parts) != 2 {
			return 0, 0, 0, errors.New("expected two coordinates")
		}
		xs, ys = parts[0], parts[1]
	}
	if x, err = strconv.Atoi(strings.TrimSpace(xs)); err != nil {
		return 0, 0, 0, err
	}
	if y, err = strconv.Atoi(strings.TrimSpace(ys)); err != nil {
		return 0, 0, 0, err
	}
	if v := r.Form.Get("severity"); v != "" {
		if severity, err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
			return 0, 0, 0, err
		}
	}
	return x, y, severity, nil
}

func (s *Server) handleZone(w http.ResponseWriter, r *http.Request) {
	x, y, severity, err := parseZoneForm(r)
	if err != nil {
		http.Error(w, invalidFormat, http.StatusBadRequest)
		return
	}
	res := s.Sim.RegisterZone(r.Context(), x, y, severity, sim.SourceOperator)
	status := http.StatusOK
	if !res.Accepted {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rep, err := s.Sim.RunTurn(r.Context(), strings.TrimSpace(r.Form.Get("override")))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Radio Silence (AI Error): " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
