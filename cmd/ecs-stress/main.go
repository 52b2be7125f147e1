package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/hotbean/ecs"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities per world.")
	worlds := flag.Int("worlds", 1, "The number of independent worlds to run in parallel.")
	seed := flag.Uint64("seed", 1, "Seed for the random entity layout.")
	profileMode := flag.String("profile", "", "Write a profile to the working directory: cpu, mem or trace.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error.")
	flag.Parse()

	logger, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if *entityCount <= 0 || *entityCount > ecs.MaxEntities {
		logger.Fatal("entity count out of range", zap.Int("entities", *entityCount), zap.Int("max", ecs.MaxEntities))
	}

	if stop := startProfile(*profileMode); stop != nil {
		defer stop()
	}

	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Components:     componentCount,
		Worlds:         make([]WorldResult, *worlds),
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("starting ECS stress test",
		zap.Duration("duration", *duration),
		zap.Int("entities", *entityCount),
		zap.Int("worlds", *worlds))

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for i := range report.Worlds {
		g.Go(func() error {
			result, err := runWorld(ctx, logger.With(zap.Int("world", i)), *entityCount, rand.New(rand.NewPCG(*seed, uint64(i))))
			report.Worlds[i] = result
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("stress test failed", zap.Error(err))
	}
	report.TotalTime = time.Since(startTime)
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info("simulation finished", zap.Duration("elapsed", report.TotalTime))

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("failed to generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}

// runWorld populates a world and runs frames until ctx is done.
func runWorld(ctx context.Context, logger *zap.Logger, entities int, rng *rand.Rand) (WorldResult, error) {
	w := ecs.NewWorld(ecs.WithLogger(logger))
	scheduler := ecs.NewScheduler(w)
	result := WorldResult{}

	if err := registerSystems(scheduler, entities, rng); err != nil {
		return result, err
	}

	logger.Debug("populating world", zap.Int("entities", entities))
	for i := 0; i < entities; i++ {
		if err := spawnRandomEntity(w, rng.IntN(5)+1, rng); err != nil {
			return result, err
		}
	}

	lastFrameTime := time.Now()
	for ctx.Err() == nil {
		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		err := scheduler.Once(deltaTime.Seconds())
		result.UpdateTime.Samples = append(result.UpdateTime.Samples, time.Since(updateStart))
		if err != nil {
			return result, err
		}
	}

	result.UpdateTime.Finalize()
	result.Scheduler = scheduler.GetStats()
	result.LiveEntities = w.EntityCount()
	result.Registered = w.Components().Len()
	return result, nil
}

func newLogger(level string) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	if err := config.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return config.Build()
}

func startProfile(mode string) func() {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfileAllocs
	case "trace":
		opt = profile.TraceProfile
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", mode)
		os.Exit(2)
	}
	return profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook).Stop
}
