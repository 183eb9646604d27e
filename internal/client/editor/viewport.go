package editor

import (
	"math"
	"time"
)

const (
	DefaultPixelsPerUnit = 15

	maxZoom          = 16
	minZoom          = 0.125
	maxPixelsPerUnit = 100
	minPixelsPerUnit = 2
	zoomStep         = 2
	pixelStep        = 1.5
)

// SetViewport replaces the viewport, holding zoom and scale to the same
// ranges ZoomIn and ZoomOut use.
func (e *Editor) SetViewport(v Viewport) {
	v.ZoomLevel = clamp(v.ZoomLevel, minZoom, maxZoom)
	v.PixelsPerUnit = clamp(v.PixelsPerUnit, minPixelsPerUnit, maxPixelsPerUnit)
	e.viewport = v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func (e *Editor) ZoomIn() {
	e.viewport.ZoomLevel = math.Min(e.viewport.ZoomLevel*zoomStep, maxZoom)
	e.viewport.PixelsPerUnit = math.Min(e.viewport.PixelsPerUnit*pixelStep, maxPixelsPerUnit)
}

func (e *Editor) ZoomOut() {
	e.viewport.ZoomLevel = math.Max(e.viewport.ZoomLevel/zoomStep, minZoom)
	e.viewport.PixelsPerUnit = math.Max(e.viewport.PixelsPerUnit/pixelStep, minPixelsPerUnit)
}

func (e *Editor) ResetZoom() {
	e.viewport.ZoomLevel = 1
	e.viewport.PixelsPerUnit = DefaultPixelsPerUnit
}

func (e *Editor) CenterOnDate(d time.Time) {
	e.viewport.CenterDate = d
}

// CenterOnEvent centres the viewport on an event's start. It reports false
// for an unknown id.
func (e *Editor) CenterOnEvent(id string) bool {
	i := e.eventIndex(id)
	if i < 0 {
		return false
	}
	e.CenterOnDate(e.events[i].StartDate)
	return true
}
