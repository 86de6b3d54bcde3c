package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/HerbHall/snmpautoload/internal/autoload"
	"github.com/HerbHall/snmpautoload/internal/config"
	"github.com/HerbHall/snmpautoload/internal/snmp"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	target := flag.String("target", "", "device address (overrides snmp.target)")
	community := flag.String("community", "", "SNMPv1/v2c community (overrides snmp.community)")
	replay := flag.String("replay", "", "snmprec capture to discover instead of a live device (overrides snmp.replay_file)")
	format := flag.String("format", "", "output format, json or yaml (overrides output.format)")
	permissive := flag.Bool("permissive", false, "skip ports that cannot be placed instead of failing (overrides autoload.permissive)")
	metricsFile := flag.String("metrics-file", "", "write prometheus metrics to this textfile (overrides output.metrics_file)")
	flag.Parse()

	// Load configuration (before logger, so log level/format can be configured).
	v, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	overrides := map[string]any{
		"target":       *target,
		"community":    *community,
		"replay":       *replay,
		"format":       *format,
		"permissive":   *permissive,
		"metrics-file": *metricsFile,
	}
	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, overrides[f.Name])
		}
	})

	cfg, err := config.Decode(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("autoload failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// flagKeys maps command-line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"target":       "snmp.target",
	"community":    "snmp.community",
	"replay":       "snmp.replay_file",
	"format":       "output.format",
	"permissive":   "autoload.permissive",
	"metrics-file": "output.metrics_file",
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	walker, closeFn, err := openWalker(cfg.SNMP, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	reg := prometheus.NewRegistry()
	metrics := autoload.NewMetrics(reg)
	client := snmp.NewClient(walker, cfg.SNMP, logger.Named("snmp"))

	discovery, err := autoload.NewDiscovery(client, cfg.Autoload, metrics, logger.Named("autoload"))
	if err != nil {
		return err
	}
	details, runErr := discovery.Run(ctx)

	if cfg.Output.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.Output.MetricsFile, reg); err != nil {
			logger.Warn("failed to write metrics", zap.String("path", cfg.Output.MetricsFile), zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}
	return render(os.Stdout, cfg.Output.Format, details)
}

// openWalker returns the replay walker when a capture is configured, else
// a live session.
func openWalker(cfg snmp.Config, logger *zap.Logger) (snmp.Walker, func(), error) {
	if cfg.ReplayFile != "" {
		w, err := snmp.LoadSnmprec(cfg.ReplayFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("replaying capture",
			zap.String("path", cfg.ReplayFile),
			zap.Int("records", w.Len()),
		)
		return w, func() {}, nil
	}

	session, err := snmp.Dial(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("snmp session open",
		zap.String("target", cfg.Target),
		zap.String("version", cfg.Version),
	)
	return session, func() { _ = session.Close() }, nil
}
