// Command bounce is a small windowed demo: balls bounce around the window, space adds more, S and
// L save and load them as a YAML scene. Run with -imgui for the debug windows.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"go.uber.org/zap"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/engine"
)

func main() {
	configPath := flag.String("config", "", "Path to the engine YAML config.")
	scenePath := flag.String("scene", "bounce.scene.yaml", "Scene file written by S and read by L.")
	balls := flag.Int("balls", 20, "Number of balls at startup.")
	imgui := flag.Bool("imgui", false, "Show the debug windows.")
	flag.Parse()

	cfg, err := engine.LoadConfigFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *imgui {
		cfg.Debug.Imgui = true
	}

	logger, err := engine.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger, *scenePath, *balls); err != nil {
		logger.Fatal("bounce failed", zap.Error(err))
	}
}

func run(cfg engine.Config, logger *zap.Logger, scenePath string, balls int) error {
	w := ecs.NewWorld(ecs.WithLogger(logger))
	if err := declareComponents(w); err != nil {
		return err
	}

	app, err := engine.NewApp(cfg, w)
	if err != nil {
		return err
	}

	arena := ecs.NewSingleton(w, Arena{Width: float64(cfg.Window.Width), Height: float64(cfg.Window.Height)})
	rng := rand.New(rand.NewPCG(uint64(balls), 7))
	if err := registerSystems(app.Scheduler(), logger, scenePath, rng); err != nil {
		return err
	}

	for i := 0; i < balls; i++ {
		if _, err := w.Spawn(randomBall(rng, arena.Get())...); err != nil {
			return err
		}
	}
	return app.Run()
}

// declareComponents makes the ball components loadable by name before any ball exists.
func declareComponents(w *ecs.World) error {
	for _, declare := range []func(*ecs.ComponentRegistry) error{
		ecs.DeclareComponent[Position],
		ecs.DeclareComponent[Velocity],
		ecs.DeclareComponent[Ball],
	} {
		if err := declare(w.Components()); err != nil {
			return err
		}
	}
	return nil
}

func registerSystems(s *ecs.Scheduler, logger *zap.Logger, scenePath string, rng *rand.Rand) error {
	for _, sys := range []ecs.System{
		&ControlSystem{ScenePath: scenePath, Log: logger.Named("bounce"), rng: rng},
		&BounceSystem{},
		&RenderSystem{},
	} {
		if _, err := s.Register(sys); err != nil {
			return err
		}
	}
	return nil
}
