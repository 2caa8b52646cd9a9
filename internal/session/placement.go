package session

import "github.com/hmercer/tapread/internal/model"

const tooltipMargin = 8.0

// PlaceTooltip picks a top-left anchor for a tooltip near the tap point.
// It prefers placing the tooltip above the tap; when there is not enough
// room above it flips below, and the result is always clamped so the whole
// box stays inside the viewport.
func PlaceTooltip(tap model.Point, viewport, tooltip Size) model.Point {
	y := tap.Y - tooltip.Height - tooltipMargin
	if y < 0 {
		y = tap.Y + tooltipMargin
	}
	if y+tooltip.Height > viewport.Height {
		y = viewport.Height - tooltip.Height
	}
	if y < 0 {
		y = 0
	}

	x := tap.X - tooltip.Width/2
	if x+tooltip.Width > viewport.Width {
		x = viewport.Width - tooltip.Width
	}
	if x < 0 {
		x = 0
	}
	return model.Point{X: x, Y: y}
}
