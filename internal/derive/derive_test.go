package derive_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freesleep-bridge/internal/derive"
	"freesleep-bridge/internal/models"
	"freesleep-bridge/internal/snapshot"
)

// 2026-01-05 is a Monday.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

var weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

func TestActiveScheduleDay_NoonCrossover(t *testing.T) {
	for i, day := range weekdays {
		date := monday.AddDate(0, 0, i)

		// before noon the entry is today's
		at := time.Date(date.Year(), date.Month(), date.Day(), 11, 59, 0, 0, time.UTC)
		assert.Equal(t, day, derive.ActiveScheduleDay(at, time.UTC), "11:59 on %s", day)

		// from noon on it is tomorrow's
		at = time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.UTC)
		next := weekdays[(i+1)%7]
		assert.Equal(t, next, derive.ActiveScheduleDay(at, time.UTC), "12:00 on %s", day)
	}
}

func TestActiveScheduleDay_UsesConfiguredLocation(t *testing.T) {
	// 23:30 UTC Monday is 01:30 Tuesday at UTC+2: before local noon, so
	// tonight's entry is Tuesday's.
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2026, 1, 5, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "tuesday", derive.ActiveScheduleDay(at, loc))

	// the same instant at UTC-13 is still Monday morning
	loc = time.FixedZone("UTC-13", -13*60*60)
	assert.Equal(t, "monday", derive.ActiveScheduleDay(at, loc))
}

func TestOverrideActive(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		override models.Override
		want     bool
	}{
		{"disabled with future expiry", models.Override{Disabled: true, ExpiresAt: "2099-01-01T00:00:00+00:00"}, true},
		{"disabled without expiry", models.Override{Disabled: true, ExpiresAt: ""}, false},
		{"not disabled", models.Override{Disabled: false, ExpiresAt: "2099-01-01T00:00:00+00:00"}, false},
		{"expiry in the past", models.Override{Disabled: true, ExpiresAt: "2020-01-01T00:00:00+00:00"}, false},
		{"unparsable expiry", models.Override{Disabled: true, ExpiresAt: "tomorrow-ish"}, false},
		{"expiry exactly now", models.Override{Disabled: true, ExpiresAt: now.Format(time.RFC3339)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, derive.OverrideActive(tt.override, now))
		})
	}
}

func snapWithAlarm(side, day string, alarm models.Alarm) *snapshot.Snapshot {
	s := &snapshot.Snapshot{
		Schedules: models.Schedules{
			Left:  models.SideSchedule{},
			Right: models.SideSchedule{},
		},
	}
	s.Schedules.Side(side)[day] = models.DaySchedule{Alarm: alarm}
	return s
}

func TestNextAlarm(t *testing.T) {
	// Monday 13:00: past noon, so tonight's entry is Tuesday's.
	now := time.Date(2026, 1, 5, 13, 0, 0, 0, time.UTC)

	s := snapWithAlarm("left", "tuesday", models.Alarm{Enabled: true, Time: "06:30"})
	at, ok := derive.NextAlarm(s, "left", now, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 6, 6, 30, 0, 0, time.UTC), at)

	// Monday 09:00: before noon, tonight's entry is Monday's own.
	morning := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	s = snapWithAlarm("left", "monday", models.Alarm{Enabled: true, Time: "10:45"})
	at, ok = derive.NextAlarm(s, "left", morning, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 5, 10, 45, 0, 0, time.UTC), at)
}

func TestNextAlarm_Absent(t *testing.T) {
	now := time.Date(2026, 1, 5, 13, 0, 0, 0, time.UTC)

	t.Run("alarm not enabled", func(t *testing.T) {
		s := snapWithAlarm("left", "tuesday", models.Alarm{Enabled: false, Time: "06:30"})
		_, ok := derive.NextAlarm(s, "left", now, time.UTC)
		assert.False(t, ok)
	})

	t.Run("empty time", func(t *testing.T) {
		s := snapWithAlarm("left", "tuesday", models.Alarm{Enabled: true, Time: ""})
		_, ok := derive.NextAlarm(s, "left", now, time.UTC)
		assert.False(t, ok)
	})

	t.Run("unparsable time", func(t *testing.T) {
		s := snapWithAlarm("left", "tuesday", models.Alarm{Enabled: true, Time: "6.30am"})
		_, ok := derive.NextAlarm(s, "left", now, time.UTC)
		assert.False(t, ok)
	})

	t.Run("no entry for the day", func(t *testing.T) {
		s := snapWithAlarm("left", "friday", models.Alarm{Enabled: true, Time: "06:30"})
		_, ok := derive.NextAlarm(s, "left", now, time.UTC)
		assert.False(t, ok)
	})

	t.Run("suppressed by active override", func(t *testing.T) {
		s := snapWithAlarm("left", "tuesday", models.Alarm{Enabled: true, Time: "06:30"})
		s.Settings.Left.ScheduleOverrides.Alarm = models.Override{
			Disabled:  true,
			ExpiresAt: "2099-01-01T00:00:00+00:00",
		}
		_, ok := derive.NextAlarm(s, "left", now, time.UTC)
		assert.False(t, ok)

		// expired override no longer suppresses
		s.Settings.Left.ScheduleOverrides.Alarm.ExpiresAt = "2020-01-01T00:00:00+00:00"
		_, ok = derive.NextAlarm(s, "left", now, time.UTC)
		assert.True(t, ok)
	})
}

func TestAlarmAndTempSuppression_AreIndependent(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	s := &snapshot.Snapshot{}
	s.Settings.Right.ScheduleOverrides.TemperatureSchedules = models.Override{
		Disabled:  true,
		ExpiresAt: "2099-01-01T00:00:00+00:00",
	}

	assert.True(t, derive.TempScheduleSuppressed(s, "right", now))
	assert.False(t, derive.AlarmSuppressed(s, "right", now))
	assert.False(t, derive.TempScheduleSuppressed(s, "left", now))
}

func TestMergeAlarm_PreservesUnpatchedFields(t *testing.T) {
	current := models.Alarm{
		Enabled:            true,
		Time:               "06:30",
		VibrationIntensity: 80,
		VibrationPattern:   "rise",
		AlarmTemperature:   82,
		Duration:           10,
	}

	duration := 15
	merged := derive.MergeAlarm(current, models.AlarmPatch{Duration: &duration})

	want := current
	want.Duration = 15
	assert.Equal(t, want, merged)

	// empty patch is a no-op
	assert.Equal(t, current, derive.MergeAlarm(current, models.AlarmPatch{}))

	// current record is untouched
	assert.Equal(t, 10, current.Duration)
}

func TestMergeAlarm_AllFields(t *testing.T) {
	enabled := false
	timeStr := "07:15"
	intensity := 55
	pattern := "double"
	temp := 78
	duration := 20

	merged := derive.MergeAlarm(models.Alarm{Enabled: true, Time: "06:30"}, models.AlarmPatch{
		Enabled:            &enabled,
		Time:               &timeStr,
		VibrationIntensity: &intensity,
		VibrationPattern:   &pattern,
		AlarmTemperature:   &temp,
		Duration:           &duration,
	})

	assert.Equal(t, models.Alarm{
		Enabled:            false,
		Time:               "07:15",
		VibrationIntensity: 55,
		VibrationPattern:   "double",
		AlarmTemperature:   78,
		Duration:           20,
	}, merged)
}

func TestHealthy(t *testing.T) {
	running := models.SubsystemStatus{Status: "running"}

	t.Run("all critical subsystems running", func(t *testing.T) {
		s := &snapshot.Snapshot{ServerStatus: models.ServerStatus{
			"franken":          running,
			"database":         running,
			"biometricsStream": running,
		}}
		assert.True(t, derive.Healthy(s))
	})

	t.Run("failed subsystem", func(t *testing.T) {
		s := &snapshot.Snapshot{ServerStatus: models.ServerStatus{
			"franken":  models.SubsystemStatus{Status: "failed", Message: "boot loop"},
			"database": running,
		}}
		assert.False(t, derive.Healthy(s))
	})

	t.Run("not started subsystem", func(t *testing.T) {
		s := &snapshot.Snapshot{ServerStatus: models.ServerStatus{
			"biometricsStream": models.SubsystemStatus{Status: "not_started"},
		}}
		assert.False(t, derive.Healthy(s))
	})

	t.Run("missing entries count as healthy", func(t *testing.T) {
		s := &snapshot.Snapshot{ServerStatus: models.ServerStatus{}}
		assert.True(t, derive.Healthy(s))
	})

	t.Run("non-critical failures are ignored", func(t *testing.T) {
		s := &snapshot.Snapshot{ServerStatus: models.ServerStatus{
			"franken": running,
			"sentry":  models.SubsystemStatus{Status: "failed"},
		}}
		assert.True(t, derive.Healthy(s))
	})
}

func TestGain(t *testing.T) {
	s := &snapshot.Snapshot{}
	assert.Equal(t, 100, derive.Gain(s, "left"))
	assert.Equal(t, 100, derive.Gain(s, "right"))

	gain := 130
	s.DeviceStatus.Settings.GainLeft = &gain
	assert.Equal(t, 130, derive.Gain(s, "left"))
	assert.Equal(t, 100, derive.Gain(s, "right"))
}

func TestParseClock(t *testing.T) {
	hour, minute, err := derive.ParseClock("06:30")
	require.NoError(t, err)
	assert.Equal(t, 6, hour)
	assert.Equal(t, 30, minute)

	hour, minute, err = derive.ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23, hour)
	assert.Equal(t, 59, minute)

	for _, bad := range []string{"", "630", "24:00", "12:60", "ab:cd", "-1:30"} {
		_, _, err := derive.ParseClock(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestAlarmSkipExpiry(t *testing.T) {
	now := time.Date(2026, 1, 5, 13, 0, 0, 0, time.UTC)
	s := snapWithAlarm("left", "tuesday", models.Alarm{Enabled: true, Time: "06:30"})

	expires, ok := derive.AlarmSkipExpiry(s, "left", now, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 6, 6, 32, 0, 0, time.UTC), expires)

	// nothing to skip without an alarm time
	s = snapWithAlarm("left", "tuesday", models.Alarm{Enabled: true})
	_, ok = derive.AlarmSkipExpiry(s, "left", now, time.UTC)
	assert.False(t, ok)
}

func TestTempScheduleSkipExpiry(t *testing.T) {
	afternoon := time.Date(2026, 1, 5, 13, 0, 0, 0, time.UTC)
	assert.Equal(t,
		time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC),
		derive.TempScheduleSkipExpiry(afternoon, time.UTC))

	morning := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	assert.Equal(t,
		time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
		derive.TempScheduleSkipExpiry(morning, time.UTC))
}
