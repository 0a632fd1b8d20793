package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/magefree/effect-engine/internal/config"
	"github.com/magefree/effect-engine/internal/game/replay"
	"github.com/magefree/effect-engine/internal/telemetry"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	scenario   = flag.String("scenario", "all", "scenario to run: all, "+scenarioNames())
	auto       = flag.Bool("auto", false, "answer target prompts with the first offered target")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// A local .env feeds the EFFECTS_* overrides.
	envErr := godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Logging.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Debug("no .env file loaded", zap.Error(envErr))
	}
	logger.Info("starting effect simulator",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("scenario", *scenario),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	var choose chooser = firstChoice
	if !*auto {
		choose = promptChoice(bufio.NewReader(os.Stdin), os.Stdout)
	}

	sim := &simulator{cfg: cfg, logger: logger, out: os.Stdout, choose: choose}
	if cfg.Replay.Dir != "" {
		sim.recorder = replay.NewRecorder(logger, cfg.Replay.Dir)
	}
	if err := sim.run(ctx, *scenario); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}
