package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"freesleep-bridge/internal/client"
	"freesleep-bridge/internal/config"
	httpapi "freesleep-bridge/internal/http"
	"freesleep-bridge/internal/logger"
	"freesleep-bridge/internal/mqttpub"
	"freesleep-bridge/internal/poller"
	"freesleep-bridge/internal/snapshot"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "freesleep-bridge")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid timezone", zap.Error(err))
	}

	log.Info("Starting freesleep-bridge",
		zap.String("pod", cfg.PodBaseURL()),
		zap.Duration("scan_interval", cfg.ScanInterval),
		zap.String("timezone", cfg.Timezone),
	)

	podClient := client.NewClient(cfg.PodBaseURL(), log)
	builder := snapshot.NewBuilder(podClient, log)
	p := poller.New(builder, cfg.ScanInterval, log)

	// Optional MQTT publisher
	var publisher *mqttpub.Publisher
	if cfg.MQTT.Enabled {
		publisher, err = mqttpub.New(&cfg.MQTT, log)
		if err != nil {
			log.Fatal("Failed to connect MQTT publisher", zap.Error(err))
		}
		p.OnPublish(func(s *snapshot.Snapshot) {
			doc := httpapi.StateDocument(s, time.Now(), loc, nil)
			if err := publisher.PublishState(doc); err != nil {
				log.Warn("MQTT state publish failed", zap.Error(err))
			}
		})
	}

	handler := httpapi.NewHandler(p, podClient, loc, log)
	router := httpapi.NewRouter(log)
	router.RegisterRoutes(handler)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go p.Run(ctx)

	errChan := make(chan error, 1)
	go func() {
		log.Info("HTTP API listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		log.Error("HTTP server error", zap.Error(err))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", zap.Error(err))
	}

	if publisher != nil {
		publisher.Close()
	}

	log.Info("Service stopped")
}
