package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"sysdash/db"
	"sysdash/export"
	"sysdash/metrics"
	"sysdash/monitoring"
)

// Handler bundles the dependencies of the REST surface.
type Handler struct {
	Monitor *monitoring.Monitor
	DB      *sql.DB
	Metrics *metrics.Metrics
}

// NewHandler creates a Handler over the given monitor and settings database.
// DB may be nil, in which case the settings routes report 503. Metrics may
// be nil to skip instrumentation.
func NewHandler(monitor *monitoring.Monitor, database *sql.DB) *Handler {
	return &Handler{Monitor: monitor, DB: database}
}

func (h *Handler) observeControl(op string, err error) {
	if h.Metrics != nil {
		h.Metrics.ObserveProcessControl(op, err)
	}
}

// RegisterRoutes attaches all API paths to the router.
func RegisterRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/api/cpu", h.GetCPUHandler).Methods("GET")
	r.HandleFunc("/api/memory", h.GetMemoryHandler).Methods("GET")
	r.HandleFunc("/api/disks", h.GetDisksHandler).Methods("GET")
	r.HandleFunc("/api/network", h.GetNetworkHandler).Methods("GET")
	r.HandleFunc("/api/processes", h.GetProcessesHandler).Methods("GET")
	r.HandleFunc("/api/processes/{pid:[0-9]+}", h.GetProcessUsageHandler).Methods("GET")
	r.HandleFunc("/api/processes/{pid:[0-9]+}/details", h.GetProcessDetailsHandler).Methods("GET")

	r.HandleFunc("/api/refresh", h.RefreshHandler).Methods("POST")
	r.HandleFunc("/api/processes/{pid:[0-9]+}/kill", h.KillProcessHandler).Methods("POST")
	r.HandleFunc("/api/processes/{pid:[0-9]+}/terminate", h.TerminateProcessHandler).Methods("POST")

	r.HandleFunc("/api/settings", h.GetSettingsHandler).Methods("GET")
	r.HandleFunc("/api/settings", h.SaveSettingsHandler).Methods("PUT")

	r.HandleFunc("/api/export", h.ExportHandler).Methods("GET")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// writeProcessError maps the process control error taxonomy onto HTTP
// statuses: absent pid 404, no graceful terminate 501, OS failure 500.
func writeProcessError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case monitoring.IsNotFound(err):
		status = http.StatusNotFound
	case monitoring.IsNotSupported(err):
		status = http.StatusNotImplemented
	}
	body := errorBody{Error: err.Error()}
	var pe *monitoring.ProcessError
	if errors.As(err, &pe) {
		body.Code = pe.Code
	}
	writeJSON(w, status, body)
}

func pidFromRequest(r *http.Request) (int32, bool) {
	pid64, err := strconv.ParseInt(mux.Vars(r)["pid"], 10, 32)
	if err != nil || pid64 < 0 {
		return 0, false
	}
	return int32(pid64), true
}

// GetCPUHandler returns the last sampled system-wide usage percentage.
func (h *Handler) GetCPUHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"cpu_usage": h.Monitor.GlobalCPUUsage()})
}

func (h *Handler) GetMemoryHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Monitor.MemoryInfo())
}

func (h *Handler) GetDisksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Monitor.DiskInfo())
}

func (h *Handler) GetNetworkHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Monitor.NetworkInfo())
}

func (h *Handler) GetProcessesHandler(w http.ResponseWriter, r *http.Request) {
	procs := h.Monitor.CombinedProcessList()
	if procs == nil {
		procs = []monitoring.CombinedProcess{}
	}
	writeJSON(w, http.StatusOK, procs)
}

func (h *Handler) GetProcessUsageHandler(w http.ResponseWriter, r *http.Request) {
	pid, ok := pidFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid pid"})
		return
	}
	usage, found := h.Monitor.UsageForPid(pid)
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "process not found"})
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func (h *Handler) GetProcessDetailsHandler(w http.ResponseWriter, r *http.Request) {
	pid, ok := pidFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid pid"})
		return
	}
	details, found := h.Monitor.ProcessDetails(pid)
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "process not found"})
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// RefreshHandler runs one synchronous sampling cycle and returns the
// resulting snapshot. It serializes against the background collector
// through the monitor's lock.
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	h.Monitor.Refresh()
	writeJSON(w, http.StatusOK, h.Monitor.Snapshot())
}

func (h *Handler) KillProcessHandler(w http.ResponseWriter, r *http.Request) {
	pid, ok := pidFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid pid"})
		return
	}
	err := h.Monitor.KillProcess(pid)
	h.observeControl("kill", err)
	if err != nil {
		log.Warn().Err(err).Int32("pid", pid).Msg("kill request failed")
		writeProcessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "killed"})
}

func (h *Handler) TerminateProcessHandler(w http.ResponseWriter, r *http.Request) {
	pid, ok := pidFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid pid"})
		return
	}
	err := h.Monitor.TerminateProcess(pid)
	h.observeControl("terminate", err)
	if err != nil {
		log.Warn().Err(err).Int32("pid", pid).Msg("terminate request failed")
		writeProcessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "terminated"})
}

// ExportHandler renders the current snapshot in the requested format.
// format=csv downloads CSV; format=json (the default) downloads pretty JSON.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	snap := h.Monitor.Snapshot()
	switch r.URL.Query().Get("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="sysdash.csv"`)
		if err := export.WriteCSV(w, snap); err != nil {
			log.Error().Err(err).Msg("csv export failed")
		}
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="sysdash.json"`)
		if err := export.WriteJSON(w, snap); err != nil {
			log.Error().Err(err).Msg("json export failed")
		}
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unknown export format"})
	}
}

func (h *Handler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "settings store unavailable"})
		return
	}
	settings, err := db.LoadSettings(h.DB)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to load settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) SaveSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "settings store unavailable"})
		return
	}
	var settings db.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := db.SaveSettings(h.DB, &settings); err != nil {
		log.Error().Err(err).Msg("failed to save settings")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to save settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
