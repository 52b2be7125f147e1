package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/hotbean/ecs"
)

func NewSignatureDebuggerComponent() SignatureDebuggerComponent {
	return SignatureDebuggerComponent{
		selectedComponents: make(map[string]bool),
	}
}

// Render lets the user compose a signature from the registered components and shows which
// entities and systems it matches.
func (sd *SignatureDebuggerComponent) Render(w *ecs.World) {
	if !imgui.BeginV("Signature Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		sd.selectedComponents = make(map[string]bool)
	}

	names := w.Components().Names()
	for _, name := range names {
		selected := sd.selectedComponents[name]
		if imgui.Checkbox(name, &selected) {
			if selected {
				sd.selectedComponents[name] = true
			} else {
				delete(sd.selectedComponents, name)
			}
		}
	}

	imgui.Separator()

	sig, ok := sd.Signature(w)
	if !ok {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Signature: %s", sig))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", CountMatching(w, sig)))

	if imgui.TreeNodeStr("Matching Systems") {
		for _, st := range w.SystemStats() {
			var required ecs.Signature
			satisfied := true
			for _, name := range st.Requires {
				id, ok := w.Components().TryComponentID(name)
				if !ok {
					satisfied = false
					break
				}
				required.Set(id)
			}
			if satisfied && sig.Contains(required) {
				imgui.BulletText(st.Name)
			}
		}
		imgui.TreePop()
	}

	imgui.End()
}

// Signature builds the signature of the selected components that are still registered.
func (sd *SignatureDebuggerComponent) Signature(w *ecs.World) (ecs.Signature, bool) {
	var sig ecs.Signature
	for name := range sd.selectedComponents {
		if id, ok := w.Components().TryComponentID(name); ok {
			sig.Set(id)
		}
	}
	return sig, !sig.IsEmpty()
}

// CountMatching returns how many living entities have every component of sig.
func CountMatching(w *ecs.World, sig ecs.Signature) int {
	count := 0
	for e := range w.Entities() {
		entitySig, err := w.Signature(e)
		if err == nil && entitySig.Contains(sig) {
			count++
		}
	}
	return count
}
