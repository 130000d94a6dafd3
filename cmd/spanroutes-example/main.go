// Command spanroutes-example serves a small negotiated API built from a YAML config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/illuscio-dev/spanroutes-go/config"
	"github.com/illuscio-dev/spanroutes-go/encoding"
	"github.com/illuscio-dev/spanroutes-go/routes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	gin.SetMode(gin.ReleaseMode)

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "spanroutes-example:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := cfg.Logging.Build()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	handler, err := newHandler(cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("serving", zap.String("address", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Builds the gin engine serving the demo routes and /metrics.
func newHandler(
	cfg *config.Config, logger *zap.Logger, registerer prometheus.Registerer,
) (http.Handler, error) {
	negotiators, err := cfg.BuildNegotiators()
	if err != nil {
		return nil, err
	}

	engine, err := encoding.NewEngine(
		negotiators,
		encoding.WithLogger(logger.Named("encoding")),
		encoding.WithMetrics(encoding.NewMetrics(registerer)),
	)
	if err != nil {
		return nil, err
	}

	table, err := routes.Build(
		engine, newDemoAPI().define, routes.WithLogger(logger.Named("routes")),
	)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	if gatherer, ok := registerer.(prometheus.Gatherer); ok {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	table.Mount(router)

	for _, route := range table.Routes() {
		logger.Debug(
			"route mounted", zap.String("method", route.Method), zap.String("path", route.Path),
		)
	}
	return router, nil
}
