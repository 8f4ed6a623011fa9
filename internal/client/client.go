// Package client talks to the free-sleep server running on an Eight Sleep pod.
//
// All endpoints are HTTP/JSON. Reads are idempotent; writes are partial
// documents merged server-side, except the alarm record which the server
// replaces wholesale (see SetAlarm).
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"freesleep-bridge/internal/models"
)

// Client is the free-sleep pod API client.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient creates a pod client for the given base URL (http://host:port).
func NewClient(baseURL string, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.httpClient.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Get(path)
	op := "GET " + path
	if err != nil {
		return &ConnectionError{Op: op, Err: err}
	}
	if resp.IsError() {
		return &APIError{Op: op, StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	op := "POST " + path
	if err != nil {
		return &ConnectionError{Op: op, Err: err}
	}
	if resp.IsError() {
		return &APIError{Op: op, StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	c.logger.Debug("pod write ok", zap.String("op", op))
	return nil
}

func sideWindowQuery(side string, start, end time.Time) map[string]string {
	return map[string]string{
		"side":      side,
		"startTime": start.Format(time.RFC3339),
		"endTime":   end.Format(time.RFC3339),
	}
}

// ── Device status ────────────────────────────────────────────────────

// DeviceStatus fetches GET /api/deviceStatus.
func (c *Client) DeviceStatus(ctx context.Context) (models.DeviceStatus, error) {
	var out models.DeviceStatus
	err := c.get(ctx, "/api/deviceStatus", nil, &out)
	return out, err
}

// SetDeviceStatus posts a partial device status document (merged server-side).
func (c *Client) SetDeviceStatus(ctx context.Context, patch map[string]any) error {
	return c.post(ctx, "/api/deviceStatus", patch)
}

// ── Settings ─────────────────────────────────────────────────────────

// Settings fetches GET /api/settings.
func (c *Client) Settings(ctx context.Context) (models.Settings, error) {
	var out models.Settings
	err := c.get(ctx, "/api/settings", nil, &out)
	return out, err
}

// SetSettings posts a partial settings document (merged server-side).
func (c *Client) SetSettings(ctx context.Context, patch map[string]any) error {
	return c.post(ctx, "/api/settings", patch)
}

// ── Presence ─────────────────────────────────────────────────────────

// Presence fetches GET /api/metrics/presence.
func (c *Client) Presence(ctx context.Context) (models.Presence, error) {
	var out models.Presence
	err := c.get(ctx, "/api/metrics/presence", nil, &out)
	return out, err
}

// ── Schedules ────────────────────────────────────────────────────────

// Schedules fetches GET /api/schedules.
func (c *Client) Schedules(ctx context.Context) (models.Schedules, error) {
	var out models.Schedules
	err := c.get(ctx, "/api/schedules", nil, &out)
	return out, err
}

// SetSchedules posts a partial schedules document. The server merges at the
// day level but replaces the whole addressed alarm object.
func (c *Client) SetSchedules(ctx context.Context, patch map[string]any) error {
	return c.post(ctx, "/api/schedules", patch)
}

// ── Services ─────────────────────────────────────────────────────────

// Services fetches GET /api/services.
func (c *Client) Services(ctx context.Context) (models.Services, error) {
	out := models.Services{}
	err := c.get(ctx, "/api/services", nil, &out)
	return out, err
}

// SetServices posts a partial services document.
func (c *Client) SetServices(ctx context.Context, patch map[string]any) error {
	return c.post(ctx, "/api/services", patch)
}

// ── Biometrics (vitals + sleep) ──────────────────────────────────────

// VitalsSummary fetches aggregated vitals for a side over [start, end].
// Returns 404 from the pod when biometrics is disabled.
func (c *Client) VitalsSummary(ctx context.Context, side string, start, end time.Time) (models.VitalsSummary, error) {
	var out models.VitalsSummary
	err := c.get(ctx, "/api/metrics/vitals/summary", sideWindowQuery(side, start, end), &out)
	return out, err
}

// SleepRecords fetches completed sleep records for a side over [start, end].
func (c *Client) SleepRecords(ctx context.Context, side string, start, end time.Time) ([]models.SleepRecord, error) {
	var out []models.SleepRecord
	err := c.get(ctx, "/api/metrics/sleep", sideWindowQuery(side, start, end), &out)
	return out, err
}

// ── Server status ────────────────────────────────────────────────────

// ServerStatus fetches GET /api/serverStatus (per-subsystem health).
func (c *Client) ServerStatus(ctx context.Context) (models.ServerStatus, error) {
	out := models.ServerStatus{}
	err := c.get(ctx, "/api/serverStatus", nil, &out)
	return out, err
}

// ── Jobs and immediate actions ───────────────────────────────────────

// RunJobs triggers pod jobs by name (reboot, update, ...). Fire-and-forget.
func (c *Client) RunJobs(ctx context.Context, jobs []string) error {
	c.logger.Info("running pod jobs", zap.Strings("jobs", jobs))
	return c.post(ctx, "/api/jobs", jobs)
}

// TriggerAlarm vibrates a side immediately, bypassing the schedule.
func (c *Client) TriggerAlarm(ctx context.Context, side string, intensity int, pattern string, durationMinutes int) error {
	c.logger.Info("triggering alarm",
		zap.String("side", side),
		zap.Int("intensity", intensity),
		zap.String("pattern", pattern),
		zap.Int("duration_minutes", durationMinutes),
	)
	return c.post(ctx, "/api/alarm", map[string]any{
		"side":               side,
		"vibrationIntensity": intensity,
		"vibrationPattern":   pattern,
		"duration":           durationMinutes,
		"force":              false,
	})
}

// ── Convenience writes ───────────────────────────────────────────────

// SetSideOn turns a side on or off.
func (c *Client) SetSideOn(ctx context.Context, side string, on bool) error {
	return c.SetDeviceStatus(ctx, map[string]any{side: map[string]any{"isOn": on}})
}

// SetSideTemperature sets the target temperature of a side (Fahrenheit).
func (c *Client) SetSideTemperature(ctx context.Context, side string, tempF int) error {
	return c.SetDeviceStatus(ctx, map[string]any{side: map[string]any{"targetTemperatureF": tempF}})
}

// SetLedBrightness sets the pod LED brightness (0-100).
func (c *Client) SetLedBrightness(ctx context.Context, brightness int) error {
	return c.SetDeviceStatus(ctx, map[string]any{"settings": map[string]any{"ledBrightness": brightness}})
}

// StartPrime starts priming the pod.
func (c *Client) StartPrime(ctx context.Context) error {
	return c.SetDeviceStatus(ctx, map[string]any{"isPriming": true})
}

// SetGain sets the heating/cooling power multiplier for a side. Gain lives in
// the device status settings under a side-prefixed key (gainLeft / gainRight).
func (c *Client) SetGain(ctx context.Context, side string, gain int) error {
	key := "gain" + titleSide(side)
	return c.SetDeviceStatus(ctx, map[string]any{"settings": map[string]any{key: gain}})
}

// SetAwayMode enables or disables away mode for a side.
func (c *Client) SetAwayMode(ctx context.Context, side string, enabled bool) error {
	return c.SetSettings(ctx, map[string]any{side: map[string]any{"awayMode": enabled}})
}

// SetPrimeDaily enables or disables daily priming.
func (c *Client) SetPrimeDaily(ctx context.Context, enabled bool) error {
	return c.SetSettings(ctx, map[string]any{"primePodDaily": map[string]any{"enabled": enabled}})
}

// SetPrimeDailyTime sets the daily prime time ("HH:MM").
func (c *Client) SetPrimeDailyTime(ctx context.Context, timeStr string) error {
	return c.SetSettings(ctx, map[string]any{"primePodDaily": map[string]any{"time": timeStr}})
}

// SetRebootDaily enables or disables the daily automatic reboot.
func (c *Client) SetRebootDaily(ctx context.Context, enabled bool) error {
	return c.SetSettings(ctx, map[string]any{"rebootDaily": enabled})
}

// SetBiometricsEnabled enables or disables biometrics collection.
func (c *Client) SetBiometricsEnabled(ctx context.Context, enabled bool) error {
	return c.SetServices(ctx, map[string]any{"biometrics": map[string]any{"enabled": enabled}})
}

// SetTapConfig binds a tap gesture on a side to an action.
func (c *Client) SetTapConfig(ctx context.Context, side, gesture string, cfg models.TapConfig) error {
	return c.SetSettings(ctx, map[string]any{side: map[string]any{"taps": map[string]any{gesture: cfg}}})
}

// SetAlarm writes the full alarm record for (side, day). Callers must pass a
// complete record: the server replaces the whole alarm object, so submitting a
// partial one would erase the sibling fields. Use derive.MergeAlarm to overlay
// a patch onto the current record first.
func (c *Client) SetAlarm(ctx context.Context, side, day string, alarm models.Alarm) error {
	return c.SetSchedules(ctx, map[string]any{side: map[string]any{day: map[string]any{"alarm": alarm}}})
}

// SetAlarmOverride writes the alarm schedule override for a side.
func (c *Client) SetAlarmOverride(ctx context.Context, side string, o models.Override) error {
	return c.SetSettings(ctx, map[string]any{side: map[string]any{"scheduleOverrides": map[string]any{"alarm": o}}})
}

// SetTempScheduleOverride writes the temperature schedule override for a side.
func (c *Client) SetTempScheduleOverride(ctx context.Context, side string, o models.Override) error {
	return c.SetSettings(ctx, map[string]any{side: map[string]any{"scheduleOverrides": map[string]any{"temperatureSchedules": o}}})
}

func titleSide(side string) string {
	if side == "" {
		return side
	}
	return fmt.Sprintf("%c%s", side[0]-'a'+'A', side[1:])
}
