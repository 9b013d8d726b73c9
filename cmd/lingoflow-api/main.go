package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingoflow/internal/asr"
	"lingoflow/internal/config"
	"lingoflow/internal/httpapi"
	"lingoflow/internal/langdetect"
	"lingoflow/internal/observability"
	"lingoflow/internal/pipeline"
	"lingoflow/internal/transcription"
	"lingoflow/internal/translate"
	"lingoflow/internal/upstream/googletrans"
	"lingoflow/internal/upstream/mymemory"
	"lingoflow/internal/upstream/whisperapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	metrics := observability.NewMetrics()

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	translateHTTPClient := &http.Client{Timeout: cfg.RequestTimeout, Transport: transport}
	// Transcriptions of long clips outlive the general request timeout; the
	// transcription service applies its own bound.
	asrHTTPClient := &http.Client{Transport: transport}

	asrClient := whisperapi.New(cfg.ASRBaseURL, cfg.ASRAPIKey, asrHTTPClient, whisperapi.WithObserver(metrics.ObserveASR))
	registry := asr.NewRegistry(asrClient, asr.WithLoadObserver(metrics.ObserveModelLoad))
	transcriptionService := transcription.New(registry, cfg.TranscriptionTimeout)

	googleProvider := googletrans.New(cfg.GoogleTranslateBaseURL, translateHTTPClient, googletrans.WithObserver(metrics.ObserveTranslation))
	mymemoryProvider := mymemory.New(cfg.MyMemoryBaseURL, translateHTTPClient,
		mymemory.WithObserver(metrics.ObserveTranslation),
		mymemory.WithEmail(cfg.MyMemoryEmail),
	)
	gateway := translate.NewGateway(
		[]translate.Provider{googleProvider, mymemoryProvider},
		translate.WithAttemptTimeout(cfg.TranslationTimeout),
		translate.WithFallbackObserver(metrics.IncTranslationFallback),
	)

	pipelineService := pipeline.New(transcriptionService, gateway)

	handler := httpapi.NewServer(cfg, logger, httpapi.Dependencies{
		Transcription:  transcriptionService,
		Translation:    gateway,
		Pipeline:       pipelineService,
		Upstream:       asrClient,
		Detect:         langdetect.Detect,
		Metrics:        metrics,
		MetricsHandler: metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       35 * time.Second,
		WriteTimeout:      cfg.TranscriptionTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server exited", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
}
