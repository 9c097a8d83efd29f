// Package httpapi exposes the controller's operational HTTP surface:
// status, Prometheus metrics, topology DOT export, telemetry CSV export,
// and the operator's enforcement pause/resume switch.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/netarch/teflow/internal/enforcement"
	"github.com/netarch/teflow/internal/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TopologyExporter is the subset of topology.Viewer the DOT endpoint needs.
type TopologyExporter interface {
	DOT() (string, error)
}

// TelemetryExporter is the subset of monitor.Monitor the CSV endpoint
// needs.
type TelemetryExporter interface {
	WriteCSV(w io.Writer, limit int) error
}

// SwitchCounter is the subset of controller.Manager the status endpoint
// needs.
type SwitchCounter interface {
	Switches() []model.SwitchId
}

// Handler holds the dependencies every route needs. Grounded on the
// teacher's api.Handler shape: one struct of narrow interfaces, one method
// per route.
type Handler struct {
	Version   string
	StartedAt time.Time
	Enforcer  *enforcement.State
	Topology  TopologyExporter
	Telemetry TelemetryExporter
	Switches  SwitchCounter
}

// NewHandler builds a Handler with StartedAt set to time.Now().
func NewHandler(version string, enforcer *enforcement.State, topo TopologyExporter, telemetry TelemetryExporter, switches SwitchCounter) *Handler {
	return &Handler{
		Version:   version,
		StartedAt: time.Now(),
		Enforcer:  enforcer,
		Topology:  topo,
		Telemetry: telemetry,
		Switches:  switches,
	}
}

// StatusResponse is the response body for GET /status.
type StatusResponse struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	SwitchesConnected int    `json:"switches_connected"`
	EnforcementPaused bool   `json:"enforcement_paused"`
}

// EnforcementResponse is the response body for the enforcement endpoints.
type EnforcementResponse struct {
	Paused bool      `json:"paused"`
	Since  time.Time `json:"since,omitempty"`
}

// ErrorResponse is the response body for a handler error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleStatus handles GET /status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StatusResponse{
		Status:            "ok",
		Version:           h.Version,
		UptimeSeconds:     int64(time.Since(h.StartedAt).Seconds()),
		SwitchesConnected: len(h.Switches.Switches()),
		EnforcementPaused: h.Enforcer.Paused(),
	})
}

// HandleMetrics handles GET /metrics via the real Prometheus exposition
// format.
func (h *Handler) HandleMetrics() http.Handler {
	return promhttp.Handler()
}

// HandleTopologyDOT handles GET /topology.dot.
func (h *Handler) HandleTopologyDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := h.Topology.DOT()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	io.WriteString(w, dot)
}

// HandleTelemetryCSV handles GET /telemetry.csv. An optional ?limit=
// query parameter caps the number of most-recent points exported per
// link, per spec.md §4.5.
func (h *Handler) HandleTelemetryCSV(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			limit = n
		}
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := h.Telemetry.WriteCSV(w, limit); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// HandleEnforcementStatus handles GET /enforcement.
func (h *Handler) HandleEnforcementStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EnforcementResponse{Paused: h.Enforcer.Paused(), Since: h.Enforcer.Since()})
}

// HandleEnforcementPause handles POST /enforcement/pause.
func (h *Handler) HandleEnforcementPause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.Enforcer.Pause()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EnforcementResponse{Paused: true, Since: h.Enforcer.Since()})
}

// HandleEnforcementResume handles POST /enforcement/resume.
func (h *Handler) HandleEnforcementResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.Enforcer.Resume()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EnforcementResponse{Paused: false, Since: h.Enforcer.Since()})
}

// Mux builds the *http.ServeMux serving every route this package owns,
// following the teacher's main.go flat mux.HandleFunc registration style.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", h.HandleStatus)
	mux.Handle("/metrics", h.HandleMetrics())
	mux.HandleFunc("/topology.dot", h.HandleTopologyDOT)
	mux.HandleFunc("/telemetry.csv", h.HandleTelemetryCSV)
	mux.HandleFunc("/enforcement", h.HandleEnforcementStatus)
	mux.HandleFunc("/enforcement/pause", h.HandleEnforcementPause)
	mux.HandleFunc("/enforcement/resume", h.HandleEnforcementResume)
	return mux
}
