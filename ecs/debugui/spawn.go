package debugui

import (
	"github.com/rotisserie/eris"

	"github.com/plus3/hotbean/ecs"
)

// SpawnDebugUI creates an entity carrying the debug windows and an ImguiItem that renders them
// each frame. The windows read system statistics from scheduler.
func SpawnDebugUI(w *ecs.World, scheduler *ecs.Scheduler) (ecs.Entity, error) {
	e, err := w.CreateEntity()
	if err != nil {
		return 0, err
	}

	timer := NewFrameTimer()
	render := func() {
		dt := timer.GetDeltaTime()

		browser, err := ecs.GetComponent[EntityBrowserComponent](w, e)
		if err != nil {
			return
		}
		browser.Render(w)

		if inspector, err := ecs.GetComponent[ComponentInspectorComponent](w, e); err == nil {
			selected, ok := browser.GetSelectedEntity()
			inspector.Render(w, selected, ok)
		}
		if viewer, err := ecs.GetComponent[SystemViewerComponent](w, e); err == nil {
			viewer.Render(scheduler.GetStats())
		}
		if stats, err := ecs.GetComponent[PerformanceStatsComponent](w, e); err == nil {
			stats.Render(w, scheduler.GetStats(), dt)
		}
		if debugger, err := ecs.GetComponent[SignatureDebuggerComponent](w, e); err == nil {
			debugger.Render(w)
		}
	}

	if _, err := ecs.AddComponent(w, e, NewEntityBrowserComponent(100)); err != nil {
		return 0, eris.Wrap(err, "adding entity browser")
	}
	if _, err := ecs.AddComponent(w, e, NewComponentInspectorComponent()); err != nil {
		return 0, eris.Wrap(err, "adding component inspector")
	}
	if _, err := ecs.AddComponent(w, e, NewSystemViewerComponent()); err != nil {
		return 0, eris.Wrap(err, "adding system viewer")
	}
	if _, err := ecs.AddComponent(w, e, NewPerformanceStatsComponent(120)); err != nil {
		return 0, eris.Wrap(err, "adding performance stats")
	}
	if _, err := ecs.AddComponent(w, e, NewSignatureDebuggerComponent()); err != nil {
		return 0, eris.Wrap(err, "adding signature debugger")
	}
	if _, err := ecs.AddComponent(w, e, ImguiItem{Render: render}); err != nil {
		return 0, eris.Wrap(err, "adding imgui item")
	}
	return e, nil
}

// RegisterDebugUIComponents adds the debug window components to the catalog of w so they can be
// created by name.
func RegisterDebugUIComponents(w *ecs.World) error {
	registry := w.Components()
	for _, declare := range []func(*ecs.ComponentRegistry) error{
		ecs.DeclareComponent[EntityBrowserComponent],
		ecs.DeclareComponent[ComponentInspectorComponent],
		ecs.DeclareComponent[SystemViewerComponent],
		ecs.DeclareComponent[PerformanceStatsComponent],
		ecs.DeclareComponent[SignatureDebuggerComponent],
		ecs.DeclareComponent[ImguiItem],
	} {
		if err := declare(registry); err != nil {
			return err
		}
	}
	return nil
}
