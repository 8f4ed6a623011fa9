package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"freesleep-bridge/internal/models"
)

// Lookback window for the per-side vitals/sleep fetches ("last night").
const biometricsLookback = 12 * time.Hour

// API is the read surface of the pod client consumed by the Builder.
type API interface {
	DeviceStatus(ctx context.Context) (models.DeviceStatus, error)
	Settings(ctx context.Context) (models.Settings, error)
	Presence(ctx context.Context) (models.Presence, error)
	Schedules(ctx context.Context) (models.Schedules, error)
	Services(ctx context.Context) (models.Services, error)
	ServerStatus(ctx context.Context) (models.ServerStatus, error)
	VitalsSummary(ctx context.Context, side string, start, end time.Time) (models.VitalsSummary, error)
	SleepRecords(ctx context.Context, side string, start, end time.Time) ([]models.SleepRecord, error)
}

// Builder runs one refresh cycle against the pod API.
type Builder struct {
	api    API
	logger *zap.Logger
}

// NewBuilder creates a snapshot builder.
func NewBuilder(api API, logger *zap.Logger) *Builder {
	return &Builder{api: api, logger: logger}
}

// Refresh performs one cycle: the five required fetches run concurrently and
// any failure among them fails the whole cycle (the caller keeps its previous
// snapshot). Vitals, sleep and server status are optional: their failures are
// absorbed and leave the corresponding field empty with Fetched=false, since
// those endpoints legitimately 404 when biometrics is disabled.
func (b *Builder) Refresh(ctx context.Context, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		Taken:     now,
		Vitals:    make(map[string]VitalsResult, len(models.Sides)),
		LastSleep: make(map[string]SleepResult, len(models.Sides)),
	}

	var mu sync.Mutex // guards the per-side maps below

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ds, err := b.api.DeviceStatus(gctx)
		if err != nil {
			return fmt.Errorf("device status: %w", err)
		}
		snap.DeviceStatus = ds
		return nil
	})
	g.Go(func() error {
		st, err := b.api.Settings(gctx)
		if err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		snap.Settings = st
		return nil
	})
	g.Go(func() error {
		pr, err := b.api.Presence(gctx)
		if err != nil {
			return fmt.Errorf("presence: %w", err)
		}
		snap.Presence = pr
		return nil
	})
	g.Go(func() error {
		sc, err := b.api.Schedules(gctx)
		if err != nil {
			return fmt.Errorf("schedules: %w", err)
		}
		snap.Schedules = sc
		return nil
	})
	g.Go(func() error {
		sv, err := b.api.Services(gctx)
		if err != nil {
			return fmt.Errorf("services: %w", err)
		}
		snap.Services = sv
		return nil
	})

	// Server status degrades to an empty map on failure; the health rollup
	// then reads every subsystem as "unknown".
	g.Go(func() error {
		ss, err := b.api.ServerStatus(gctx)
		if err != nil {
			b.logger.Debug("server status fetch failed", zap.Error(err))
			ss = models.ServerStatus{}
		}
		snap.ServerStatus = ss
		return nil
	})

	start, end := now.Add(-biometricsLookback), now
	for _, side := range models.Sides {
		side := side
		g.Go(func() error {
			res := VitalsResult{}
			summary, err := b.api.VitalsSummary(gctx, side, start, end)
			if err != nil {
				b.logger.Debug("vitals summary fetch failed",
					zap.String("side", side), zap.Error(err))
			} else {
				res = VitalsResult{Summary: summary, Fetched: true}
			}
			mu.Lock()
			snap.Vitals[side] = res
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			res := SleepResult{}
			records, err := b.api.SleepRecords(gctx, side, start, end)
			if err != nil {
				b.logger.Debug("sleep records fetch failed",
					zap.String("side", side), zap.Error(err))
			} else {
				res.Fetched = true
				if len(records) > 0 {
					last := records[len(records)-1]
					res.Record = &last
				}
			}
			mu.Lock()
			snap.LastSleep[side] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
