package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/activewin/activewin/internal/config"
	"github.com/activewin/activewin/internal/logger"
	"github.com/activewin/activewin/internal/models"
	"github.com/activewin/activewin/internal/watcher"
	"github.com/activewin/activewin/pkg/utils"
	"github.com/activewin/activewin/pkg/window"
)

const (
	defaultFailureLimit = 20
	maxFailureLimit     = 1000
)

// Watcher is the part of the watch loop the API reads from.
type Watcher interface {
	Latest() *watcher.Snapshot
	Probe(ctx context.Context) (*window.Result, error)
	IsRunning() bool
}

// FailureSource lists stored enumeration failures.
type FailureSource interface {
	RecentFailures(limit int) ([]*models.FailureLog, error)
}

type Handler struct {
	config   *config.Config
	watcher  Watcher
	failures FailureSource
	platform string
	now      func() time.Time
}

func NewHandler(cfg *config.Config, w Watcher, failures FailureSource, platform string) *Handler {
	return &Handler{
		config:   cfg,
		watcher:  w,
		failures: failures,
		platform: platform,
		now:      time.Now,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/active", h.handleActive)
	mux.HandleFunc("/api/failures", h.handleFailures)

	mux.HandleFunc("/health", h.handleHealth)
}

type activeResponse struct {
	Platform     string             `json:"platform"`
	Reason       window.Reason      `json:"reason"`
	Window       *window.Descriptor `json:"window,omitempty"`
	FrontmostPID window.ProcessID   `json:"frontmost_pid,omitempty"`
	Verdicts     []window.Verdict   `json:"verdicts,omitempty"`
	Error        string             `json:"error,omitempty"`
	Since        time.Time          `json:"since"`
	CheckedAt    time.Time          `json:"checked_at"`
	CurrentFor   string             `json:"current_for"`
}

func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	fresh := isTrue(query.Get("fresh"))
	explain := isTrue(query.Get("explain"))

	snap := h.watcher.Latest()
	var probeErr error
	if fresh || snap == nil {
		_, probeErr = h.watcher.Probe(r.Context())
		snap = h.watcher.Latest()
	}
	if snap == nil || snap.Result == nil {
		http.Error(w, "No sample available", http.StatusServiceUnavailable)
		return
	}

	res := snap.Result
	resp := activeResponse{
		Platform:     h.platform,
		Reason:       res.Reason,
		Window:       res.Window,
		FrontmostPID: res.FrontmostPID,
		Since:        snap.Since,
		CheckedAt:    snap.CheckedAt,
		CurrentFor:   utils.FormatSince(snap.Since, h.now()),
	}
	if explain {
		resp.Verdicts = res.Verdicts
	}
	if probeErr != nil {
		resp.Error = probeErr.Error()
	}

	respondJSON(w, resp)
}

func (h *Handler) handleFailures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultFailureLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			http.Error(w, fmt.Sprintf("invalid limit: %s", limitStr), http.StatusBadRequest)
			return
		}
		limit = min(l, maxFailureLimit)
	}

	failures, err := h.failures.RecentFailures(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch failures: %v", err), http.StatusInternalServerError)
		return
	}
	if failures == nil {
		failures = []*models.FailureLog{}
	}

	respondJSON(w, failures)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":        "healthy",
		"time":          h.now().Format(time.RFC3339),
		"platform":      h.platform,
		"watching":      h.watcher.IsRunning(),
		"poll_interval": h.config.Watch.PollInterval.String(),
	}

	if snap := h.watcher.Latest(); snap != nil && snap.Result != nil {
		health["reason"] = snap.Result.Reason
		health["last_check"] = utils.FormatSince(snap.CheckedAt, h.now()) + " ago"
		if snap.Result.Reason == window.EnumerationUnavailable {
			health["status"] = "degraded"
		}
	}

	respondJSON(w, health)
}

func isTrue(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
