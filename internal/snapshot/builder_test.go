package snapshot_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freesleep-bridge/internal/models"
	"freesleep-bridge/internal/snapshot"
)

// fakeAPI implements snapshot.API with configurable per-endpoint failures.
type fakeAPI struct {
	deviceStatus models.DeviceStatus
	settings     models.Settings
	presence     models.Presence
	schedules    models.Schedules
	services     models.Services
	serverStatus models.ServerStatus
	vitals       map[string]models.VitalsSummary
	sleep        map[string][]models.SleepRecord

	failDeviceStatus bool
	failSettings     bool
	failServerStatus bool
	failVitals       map[string]bool
	failSleep        map[string]bool

	mu            sync.Mutex
	vitalsWindows map[string][2]time.Time
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		vitals:        map[string]models.VitalsSummary{},
		sleep:         map[string][]models.SleepRecord{},
		failVitals:    map[string]bool{},
		failSleep:     map[string]bool{},
		vitalsWindows: map[string][2]time.Time{},
	}
}

var errUpstream = errors.New("upstream says no")

func (f *fakeAPI) DeviceStatus(ctx context.Context) (models.DeviceStatus, error) {
	if f.failDeviceStatus {
		return models.DeviceStatus{}, errUpstream
	}
	return f.deviceStatus, nil
}

func (f *fakeAPI) Settings(ctx context.Context) (models.Settings, error) {
	if f.failSettings {
		return models.Settings{}, errUpstream
	}
	return f.settings, nil
}

func (f *fakeAPI) Presence(ctx context.Context) (models.Presence, error) {
	return f.presence, nil
}

func (f *fakeAPI) Schedules(ctx context.Context) (models.Schedules, error) {
	return f.schedules, nil
}

func (f *fakeAPI) Services(ctx context.Context) (models.Services, error) {
	return f.services, nil
}

func (f *fakeAPI) ServerStatus(ctx context.Context) (models.ServerStatus, error) {
	if f.failServerStatus {
		return nil, errUpstream
	}
	return f.serverStatus, nil
}

func (f *fakeAPI) VitalsSummary(ctx context.Context, side string, start, end time.Time) (models.VitalsSummary, error) {
	f.mu.Lock()
	f.vitalsWindows[side] = [2]time.Time{start, end}
	f.mu.Unlock()
	if f.failVitals[side] {
		return models.VitalsSummary{}, errUpstream
	}
	return f.vitals[side], nil
}

func (f *fakeAPI) SleepRecords(ctx context.Context, side string, start, end time.Time) ([]models.SleepRecord, error) {
	if f.failSleep[side] {
		return nil, errUpstream
	}
	return f.sleep[side], nil
}

func TestRefresh_Success(t *testing.T) {
	api := newFakeAPI()
	api.deviceStatus = models.DeviceStatus{
		WaterLevel: "true",
		Left:       models.SideStatus{IsOn: true, TargetTemperatureF: 82},
	}
	api.presence = models.Presence{Left: models.SidePresence{Present: true}}
	api.services = models.Services{"biometrics": {Enabled: true}}
	api.serverStatus = models.ServerStatus{"franken": {Status: "running"}}
	api.vitals["left"] = models.VitalsSummary{AvgHeartRate: 58}
	api.sleep["left"] = []models.SleepRecord{
		{EnteredBedAt: "2026-01-04T22:10:00Z", SleepPeriodSeconds: 100},
		{EnteredBedAt: "2026-01-05T01:30:00Z", SleepPeriodSeconds: 200},
	}

	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	builder := snapshot.NewBuilder(api, zap.NewNop())
	snap, err := builder.Refresh(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, now, snap.Taken)
	assert.True(t, snap.SideStatus("left").IsOn)
	assert.True(t, snap.IsPresent("left"))
	assert.False(t, snap.IsPresent("right"))
	assert.True(t, snap.BiometricsEnabled())
	assert.Equal(t, "running", snap.ServerService("franken").Status)

	// vitals fetched for both sides over the 12h trailing window
	left := snap.SideVitals("left")
	assert.True(t, left.Fetched)
	assert.Equal(t, 58.0, left.Summary.AvgHeartRate)
	assert.Equal(t, [2]time.Time{now.Add(-12 * time.Hour), now}, api.vitalsWindows["left"])

	// the chronologically last record wins
	sleep := snap.SideLastSleep("left")
	assert.True(t, sleep.Fetched)
	require.NotNil(t, sleep.Record)
	assert.Equal(t, 200, sleep.Record.SleepPeriodSeconds)

	// empty window: fetched, but no record
	right := snap.SideLastSleep("right")
	assert.True(t, right.Fetched)
	assert.Nil(t, right.Record)
}

func TestRefresh_RequiredFailureFailsCycle(t *testing.T) {
	for name, setup := range map[string]func(*fakeAPI){
		"device status": func(f *fakeAPI) { f.failDeviceStatus = true },
		"settings":      func(f *fakeAPI) { f.failSettings = true },
	} {
		t.Run(name, func(t *testing.T) {
			api := newFakeAPI()
			setup(api)

			builder := snapshot.NewBuilder(api, zap.NewNop())
			snap, err := builder.Refresh(context.Background(), time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, errUpstream)
			assert.Nil(t, snap, "no partial snapshot on a failed cycle")
		})
	}
}

func TestRefresh_OptionalFailuresAreAbsorbed(t *testing.T) {
	api := newFakeAPI()
	api.failVitals["left"] = true
	api.failSleep["left"] = true
	api.vitals["right"] = models.VitalsSummary{AvgBreathingRate: 14}

	builder := snapshot.NewBuilder(api, zap.NewNop())
	snap, err := builder.Refresh(context.Background(), time.Now())
	require.NoError(t, err)

	// failed side reads as not fetched, the other side is unaffected
	assert.False(t, snap.SideVitals("left").Fetched)
	assert.False(t, snap.SideLastSleep("left").Fetched)
	assert.True(t, snap.SideVitals("right").Fetched)
	assert.Equal(t, 14.0, snap.SideVitals("right").Summary.AvgBreathingRate)
}

func TestRefresh_ServerStatusFailureDegradesToEmpty(t *testing.T) {
	api := newFakeAPI()
	api.failServerStatus = true

	builder := snapshot.NewBuilder(api, zap.NewNop())
	snap, err := builder.Refresh(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Empty(t, snap.ServerStatus)
	assert.Equal(t, "unknown", snap.ServerService("franken").Status)
}

func TestSnapshot_SideName(t *testing.T) {
	snap := &snapshot.Snapshot{}
	assert.Equal(t, "Left", snap.SideName("left"))
	assert.Equal(t, "Right", snap.SideName("right"))

	snap.Settings.Left.Name = "Alex"
	assert.Equal(t, "Alex", snap.SideName("left"))
}
