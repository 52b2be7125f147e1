package debugui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/hotbean/ecs"
)

type SystemInfo struct {
	Name       string
	Components []string
	Stats      ecs.SystemStats
}

type SystemViewerCache struct {
	systems       []SystemInfo
	sortColumn    int
	sortAscending bool
}

func NewSystemViewerComponent() SystemViewerComponent {
	return SystemViewerComponent{
		cache: &SystemViewerCache{
			sortColumn:    0,
			sortAscending: true,
		},
		sortColumn:    0,
		sortAscending: true,
	}
}

// Render lists the registered systems with their required components, interest set size and
// timings.
func (sv *SystemViewerComponent) Render(stats *ecs.SchedulerStats) {
	if !imgui.BeginV("System Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	sv.rebuildCache(stats)

	imgui.Text(fmt.Sprintf("Systems: %d  Frames: %d  Fixed steps: %d", stats.SystemCount, stats.Frames, stats.FixedSteps))

	maxEntityCount := 0
	for _, sys := range sv.cache.systems {
		maxEntityCount = max(maxEntityCount, sys.Stats.Entities)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("SystemTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("System")
		imgui.TableSetupColumn("Requires")
		imgui.TableSetupColumn("Entities")
		imgui.TableSetupColumn("Avg")
		imgui.TableSetupColumn("Last")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			sv.cache.sortColumn = int(spec.ColumnIndex())
			sv.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sv.sortColumn = sv.cache.sortColumn
			sv.sortAscending = sv.cache.sortAscending
			sv.sortSystems()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, sys := range sv.cache.systems {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			imgui.Text(sys.Name)

			imgui.TableNextColumn()
			imgui.Text(strings.Join(sys.Components, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", sys.Stats.Entities))

			if maxEntityCount > 0 {
				barWidth := float32(sys.Stats.Entities) / float32(maxEntityCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}

			imgui.TableNextColumn()
			imgui.Text(formatDuration(sys.Stats.AvgDuration))

			imgui.TableNextColumn()
			imgui.Text(formatDuration(sys.Stats.LastDuration))
		}

		imgui.EndTable()
	}

	imgui.End()
}

func (sv *SystemViewerComponent) rebuildCache(stats *ecs.SchedulerStats) {
	sv.cache.systems = sv.cache.systems[:0]
	for _, st := range stats.Systems {
		sv.cache.systems = append(sv.cache.systems, SystemInfo{
			Name:       st.Name,
			Components: st.Requires,
			Stats:      st,
		})
	}

	sv.sortSystems()
}

func (sv *SystemViewerComponent) sortSystems() {
	sort.SliceStable(sv.cache.systems, func(i, j int) bool {
		a, b := sv.cache.systems[i], sv.cache.systems[j]
		var less bool

		switch sv.cache.sortColumn {
		case 0:
			less = a.Name < b.Name
		case 1:
			less = strings.Join(a.Components, ",") < strings.Join(b.Components, ",")
		case 2:
			less = a.Stats.Entities < b.Stats.Entities
		case 3:
			less = a.Stats.AvgDuration < b.Stats.AvgDuration
		case 4:
			less = a.Stats.LastDuration < b.Stats.LastDuration
		default:
			less = a.Name < b.Name
		}

		if !sv.cache.sortAscending {
			return !less
		}
		return less
	})
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d.Microseconds())/1000.0)
}
