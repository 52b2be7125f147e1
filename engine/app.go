package engine

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/debugui"
	debugui_ebiten "github.com/plus3/hotbean/ecs/debugui/ebiten"
)

var mouseButtons = []ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

// QuitRequest is a singleton systems set to end the game after the current frame.
type QuitRequest struct {
	Requested bool
}

// App implements ebiten.Game around a Scheduler. Update runs the update stages once per tick
// with a delta of 1/TPS, Draw runs the render stages with the screen as the frame surface.
type App struct {
	cfg       Config
	log       *zap.Logger
	world     *ecs.World
	scheduler *ecs.Scheduler

	imgui      *debugui_ebiten.ImguiBackend
	imguiInput *ecs.Singleton[debugui.ImguiInputState]
	quit       *ecs.Singleton[QuitRequest]

	width, height int
	keys          []ebiten.Key
}

// NewApp creates an App for w. The InputSystem is registered on w, and when cfg.Debug.Imgui is
// set the ImGui overlay is created with the debug windows.
func NewApp(cfg Config, w *ecs.World) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		log:       w.Logger().Named("engine"),
		world:     w,
		scheduler: ecs.NewScheduler(w, cfg.SchedulerOptions()...),
		quit:      ecs.NewSingleton[QuitRequest](w),
	}

	if _, err := RegisterInput(w); err != nil {
		return nil, err
	}

	if cfg.Debug.Imgui {
		a.imgui = debugui_ebiten.NewImguiBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		if _, err := debugui.Register(w); err != nil {
			return nil, err
		}
		if _, err := debugui.SpawnDebugUI(w, a.scheduler); err != nil {
			return nil, err
		}
		a.imguiInput = ecs.NewSingleton[debugui.ImguiInputState](w)
	}
	return a, nil
}

func (a *App) World() *ecs.World { return a.world }

func (a *App) Scheduler() *ecs.Scheduler { return a.scheduler }

// Run opens the window and blocks until the game ends.
func (a *App) Run() error {
	ebiten.SetWindowTitle(a.cfg.Window.Title)
	ebiten.SetWindowSize(a.cfg.Window.Width, a.cfg.Window.Height)
	if a.cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetTPS(a.cfg.Loop.TPS)

	a.log.Info("starting",
		zap.String("title", a.cfg.Window.Title),
		zap.Int("tps", a.cfg.Loop.TPS),
		zap.Bool("imgui", a.imgui != nil))

	err := ebiten.RunGame(a)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (a *App) Update() error {
	if q := a.quit.Get(); q != nil && q.Requested {
		return ebiten.Termination
	}

	a.pushInput()

	if a.imgui != nil {
		a.imgui.BeginFrame()
	}
	err := a.scheduler.Update(1 / float64(a.cfg.Loop.TPS))
	if a.imgui != nil {
		a.imgui.EndFrame()
	}
	if err != nil {
		a.log.Error("frame update failed", zap.Uint64("frame", a.scheduler.Frames()), zap.Error(err))
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if err := a.scheduler.Render(screen); err != nil {
		a.log.Error("frame render failed", zap.Uint64("frame", a.scheduler.Frames()), zap.Error(err))
	}
	if a.imgui != nil {
		a.imgui.Draw(screen)
	}
}

// Layout uses the outside size as the screen size and pushes a WindowResizeEvent when it changes.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.width || outsideHeight != a.height {
		a.width, a.height = outsideWidth, outsideHeight
		a.scheduler.PushEvent(ecs.WindowResizeEvent{Width: outsideWidth, Height: outsideHeight})
	}
	if a.imgui != nil {
		a.imgui.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// pushInput queues key and mouse button transitions, unless the ImGui overlay has captured them.
func (a *App) pushInput() {
	var keyboardCaptured, mouseCaptured bool
	if a.imguiInput != nil {
		if state := a.imguiInput.Get(); state != nil {
			keyboardCaptured = state.WantCaptureKeyboard
			mouseCaptured = state.WantCaptureMouse
		}
	}

	if !keyboardCaptured {
		a.keys = inpututil.AppendJustPressedKeys(a.keys[:0])
		for _, key := range a.keys {
			a.scheduler.PushEvent(KeyEvent{Key: key, Down: true})
		}
	}
	// Releases are always delivered so held keys cannot get stuck behind the overlay.
	a.keys = inpututil.AppendJustReleasedKeys(a.keys[:0])
	for _, key := range a.keys {
		a.scheduler.PushEvent(KeyEvent{Key: key, Down: false})
	}

	if mouseCaptured {
		return
	}
	x, y := ebiten.CursorPosition()
	for _, button := range mouseButtons {
		switch {
		case inpututil.IsMouseButtonJustPressed(button):
			a.scheduler.PushEvent(MouseButtonEvent{Button: button, Down: true, X: x, Y: y})
		case inpututil.IsMouseButtonJustReleased(button):
			a.scheduler.PushEvent(MouseButtonEvent{Button: button, Down: false, X: x, Y: y})
		}
	}
}
