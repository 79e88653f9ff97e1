package generator

import (
	"fmt"

	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// Fixed zone size of the automatic layout
const (
	zoneWidth  = 400
	zoneHeight = 300
)

// AutomaticGrid tiles count zones left to right, top to bottom, two per row
// when there are more than two worksheets
func AutomaticGrid(count int) []models.ZonePosition {
	positions := make([]models.ZonePosition, count)
	if count == 0 {
		return positions
	}

	cols := count
	if count > 2 {
		cols = 2
	}
	for i := range positions {
		col, row := i%cols, i/cols
		positions[i] = models.ZonePosition{
			X: col * zoneWidth,
			Y: row * zoneHeight,
			W: zoneWidth,
			H: zoneHeight,
		}
	}
	return positions
}

// ZonePositions places every worksheet of a dashboard according to its layout.
// Worksheets a layout cannot place are reported as warnings.
func ZonePositions(dashboard models.DashboardSpec) ([]models.ZonePosition, []string) {
	count := len(dashboard.Worksheets)
	layout := dashboard.Layout

	switch layout.LayoutType {
	case models.LayoutGrid:
		return gridPositions(dashboard, count)
	case models.LayoutFreeForm:
		return freeFormPositions(dashboard, count)
	default:
		return AutomaticGrid(count), nil
	}
}

// gridPositions divides the dashboard canvas into rows x columns equal cells
func gridPositions(dashboard models.DashboardSpec, count int) ([]models.ZonePosition, []string) {
	var warnings []string
	cols, rows := dashboard.Layout.Columns, dashboard.Layout.Rows
	if cols < 1 || rows < 1 {
		warnings = append(warnings, fmt.Sprintf("Dashboard '%s' has an empty grid, using automatic layout", dashboard.Name))
		return AutomaticGrid(count), warnings
	}
	cellW := dashboard.Dimensions.Width / cols
	cellH := dashboard.Dimensions.Height / rows
	if cellW < 1 || cellH < 1 {
		warnings = append(warnings, fmt.Sprintf("Dashboard '%s' is too small for a %dx%d grid, using automatic layout",
			dashboard.Name, rows, cols))
		return AutomaticGrid(count), warnings
	}
	if count > cols*rows {
		warnings = append(warnings, fmt.Sprintf("Dashboard '%s' places %d worksheets on a %dx%d grid, extra worksheets continue below the canvas",
			dashboard.Name, count, rows, cols))
	}

	positions := make([]models.ZonePosition, count)
	for i := range positions {
		col, row := i%cols, i/cols
		positions[i] = models.ZonePosition{X: col * cellW, Y: row * cellH, W: cellW, H: cellH}
	}
	return positions, warnings
}

// freeFormPositions uses the explicit position of each worksheet, falling back
// to its automatic grid cell when none is given
func freeFormPositions(dashboard models.DashboardSpec, count int) ([]models.ZonePosition, []string) {
	var warnings []string
	automatic := AutomaticGrid(count)

	positions := make([]models.ZonePosition, count)
	for i, ws := range dashboard.Worksheets {
		if pos, ok := dashboard.Layout.WorksheetPositions[ws.Name]; ok {
			positions[i] = pos
			continue
		}
		warnings = append(warnings, fmt.Sprintf("Worksheet '%s' has no free-form position on dashboard '%s', using automatic placement",
			ws.Name, dashboard.Name))
		positions[i] = automatic[i]
	}
	return positions, warnings
}
