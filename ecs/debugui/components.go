package debugui

import (
	"github.com/plus3/hotbean/ecs"
)

type EntityBrowserComponent struct {
	cache              *EntityBrowserCache
	selectedEntity     ecs.Entity
	hasSelection       bool
	filterText         string
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspectorComponent struct {
	selectedEntity ecs.Entity
	fields         fieldCache
}

type SystemViewerComponent struct {
	cache         *SystemViewerCache
	sortColumn    int
	sortAscending bool
}

type PerformanceStatsComponent struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

type SignatureDebuggerComponent struct {
	selectedComponents map[string]bool
}
