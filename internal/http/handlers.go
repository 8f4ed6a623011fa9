package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"freesleep-bridge/internal/client"
	"freesleep-bridge/internal/derive"
	"freesleep-bridge/internal/models"
	"freesleep-bridge/internal/snapshot"
)

// StateSource is the poller surface the handlers read from.
type StateSource interface {
	Current() *snapshot.Snapshot
	Status() (lastAttempt time.Time, failures int, lastErr error)
	TriggerRefresh()
}

// PodWriter is the pod client surface the handlers write through.
type PodWriter interface {
	SetSideOn(ctx context.Context, side string, on bool) error
	SetSideTemperature(ctx context.Context, side string, tempF int) error
	SetGain(ctx context.Context, side string, gain int) error
	SetAwayMode(ctx context.Context, side string, enabled bool) error
	SetAlarm(ctx context.Context, side, day string, alarm models.Alarm) error
	SetAlarmOverride(ctx context.Context, side string, o models.Override) error
	SetTempScheduleOverride(ctx context.Context, side string, o models.Override) error
	TriggerAlarm(ctx context.Context, side string, intensity int, pattern string, durationMinutes int) error
	SetLedBrightness(ctx context.Context, brightness int) error
	StartPrime(ctx context.Context) error
	SetPrimeDaily(ctx context.Context, enabled bool) error
	SetPrimeDailyTime(ctx context.Context, timeStr string) error
	SetRebootDaily(ctx context.Context, enabled bool) error
	SetBiometricsEnabled(ctx context.Context, enabled bool) error
	RunJobs(ctx context.Context, jobs []string) error
}

// Handler serves the bridge API: snapshot + derived state reads, and the
// write actions forwarded to the pod.
type Handler struct {
	source StateSource
	pod    PodWriter
	loc    *time.Location
	logger *zap.Logger

	// test seam; defaults to time.Now
	now func() time.Time
}

func NewHandler(source StateSource, pod PodWriter, loc *time.Location, logger *zap.Logger) *Handler {
	return &Handler{
		source: source,
		pod:    pod,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// GetState serves the full state document.
func (h *Handler) GetState(w http.ResponseWriter, req *http.Request) {
	snap := h.source.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return
	}
	_, _, lastErr := h.source.Status()
	writeJSON(w, http.StatusOK, StateDocument(snap, h.now(), h.loc, lastErr))
}

// GetHealth serves the health rollup; 503 when unhealthy so it doubles as a
// probe endpoint.
func (h *Handler) GetHealth(w http.ResponseWriter, req *http.Request) {
	snap := h.source.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return
	}
	healthy := derive.Healthy(snap)
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"healthy":    healthy,
		"subsystems": derive.CriticalSubsystems(snap),
	})
}

// PostSideAction dispatches the side-scoped write actions.
func (h *Handler) PostSideAction(w http.ResponseWriter, req *http.Request, side, action string) {
	if !models.ValidSide(side) {
		writeError(w, http.StatusNotFound, "unknown side")
		return
	}
	ctx := req.Context()

	switch action {
	case "alarm":
		h.postAlarmPatch(w, req, side)
		return
	case "alarm/trigger":
		var body struct {
			VibrationIntensity int    `json:"vibrationIntensity"`
			VibrationPattern   string `json:"vibrationPattern"`
			Duration           int    `json:"duration"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		h.submit(w, h.pod.TriggerAlarm(ctx, side, body.VibrationIntensity, body.VibrationPattern, body.Duration))
	case "alarm/skip-tonight":
		h.postAlarmSkip(w, req, side)
	case "temp-schedule/skip-tonight":
		h.postTempScheduleSkip(w, req, side)
	case "power":
		var body struct {
			On bool `json:"on"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		h.submit(w, h.pod.SetSideOn(ctx, side, body.On))
	case "temperature":
		var body struct {
			TargetTemperatureF int `json:"targetTemperatureF"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		h.submit(w, h.pod.SetSideTemperature(ctx, side, body.TargetTemperatureF))
	case "away":
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		h.submit(w, h.pod.SetAwayMode(ctx, side, body.Enabled))
	case "gain":
		var body struct {
			Gain int `json:"gain"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		h.submit(w, h.pod.SetGain(ctx, side, body.Gain))
	default:
		writeError(w, http.StatusNotFound, "unknown action")
	}
}

// postAlarmPatch applies a partial alarm update to tonight's schedule entry.
// The current record is read from the snapshot and the patch merged onto it
// before the write, since the pod replaces the whole alarm object.
func (h *Handler) postAlarmPatch(w http.ResponseWriter, req *http.Request, side string) {
	snap := h.source.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return
	}
	var patch models.AlarmPatch
	if !decodeBody(w, req, &patch) {
		return
	}
	now := h.now()
	day := derive.ActiveScheduleDay(now, h.loc)
	current := derive.TonightAlarm(snap, side, now, h.loc)
	merged := derive.MergeAlarm(current, patch)
	h.submit(w, h.pod.SetAlarm(req.Context(), side, day, merged))
}

func (h *Handler) postAlarmSkip(w http.ResponseWriter, req *http.Request, side string) {
	var body struct {
		Skip bool `json:"skip"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	if !body.Skip {
		h.submit(w, h.pod.SetAlarmOverride(req.Context(), side, models.Override{}))
		return
	}
	snap := h.source.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return
	}
	expires, ok := derive.AlarmSkipExpiry(snap, side, h.now(), h.loc)
	if !ok {
		writeError(w, http.StatusConflict, "no alarm time configured for tonight")
		return
	}
	h.submit(w, h.pod.SetAlarmOverride(req.Context(), side, models.Override{
		Disabled:  true,
		ExpiresAt: expires.Format(time.RFC3339),
	}))
}

func (h *Handler) postTempScheduleSkip(w http.ResponseWriter, req *http.Request, side string) {
	var body struct {
		Skip bool `json:"skip"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	override := models.Override{}
	if body.Skip {
		override = models.Override{
			Disabled:  true,
			ExpiresAt: derive.TempScheduleSkipExpiry(h.now(), h.loc).Format(time.RFC3339),
		}
	}
	h.submit(w, h.pod.SetTempScheduleOverride(req.Context(), side, override))
}

// PostPodAction dispatches the pod-scoped write actions.
func (h *Handler) PostPodAction(w http.ResponseWriter, req *http.Request, action string) {
	ctx := req.Context()
	switch action {
	case "led":
		var body struct {
			Brightness int `json:"brightness"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		h.submit(w, h.pod.SetLedBrightness(ctx, body.Brightness))
	case "prime":
		h.submit(w, h.pod.StartPrime(ctx))
	case "prime-daily":
		var body struct {
			Enabled bool    `json:"enabled"`
			Time    *string `json:"time,omitempty"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		if body.Time != nil {
			if _, _, err := derive.ParseClock(*body.Time); err != nil {
				writeError(w, http.StatusBadRequest, "time must be HH:MM")
				return
			}
		}
		if err := h.pod.SetPrimeDaily(ctx, body.Enabled); err != nil {
			h.submit(w, err)
			return
		}
		if body.Time != nil {
			h.submit(w, h.pod.SetPrimeDailyTime(ctx, *body.Time))
			return
		}
		h.submit(w, nil)
	case "reboot-daily":
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		h.submit(w, h.pod.SetRebootDaily(ctx, body.Enabled))
	case "jobs":
		var body struct {
			Jobs []string `json:"jobs"`
		}
		if !decodeBody(w, req, &body) {
			return
		}
		if len(body.Jobs) == 0 {
			writeError(w, http.StatusBadRequest, "jobs must be non-empty")
			return
		}
		h.submit(w, h.pod.RunJobs(ctx, body.Jobs))
	default:
		writeError(w, http.StatusNotFound, "unknown action")
	}
}

// PostBiometrics enables or disables the biometrics service.
func (h *Handler) PostBiometrics(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	h.submit(w, h.pod.SetBiometricsEnabled(req.Context(), body.Enabled))
}

// submit finishes a write action: upstream failures surface synchronously,
// successes answer ok and schedule a refresh so reads converge quickly.
func (h *Handler) submit(w http.ResponseWriter, err error) {
	if err != nil {
		h.logger.Warn("pod write failed", zap.Error(err))
		// Both connectivity and protocol failures are upstream problems.
		status := http.StatusBadGateway
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	h.source.TriggerRefresh()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, req *http.Request, out any) bool {
	if err := json.NewDecoder(req.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
