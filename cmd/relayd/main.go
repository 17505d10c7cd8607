package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhsiao/chatrelay/internal/relay"
)

func main() {
	addr := flag.String("addr", relay.DefaultAddr, "relay listen address")
	metricsAddr := flag.String("metrics-addr", ":9090", "metrics listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			logger.Error("metrics endpoint failed", "error", err)
		}
	}()

	srv := relay.NewServer(*addr, os.Stdin, logger)
	if err := srv.Start(); err != nil {
		logger.Error("failed to start relay", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-srv.Done():
	}

	srv.Stop()
}
