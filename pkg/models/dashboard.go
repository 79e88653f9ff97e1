package models

import (
	"encoding/json"
	"time"
)

// ZonePosition places a worksheet on a free-form dashboard
type ZonePosition struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DashboardLayout configures worksheet placement on a dashboard
type DashboardLayout struct {
	LayoutType         LayoutType              `json:"layout_type"`
	Rows               int                     `json:"rows"`
	Columns            int                     `json:"columns"`
	WorksheetPositions map[string]ZonePosition `json:"worksheet_positions"`
}

// DefaultDashboardLayout returns an automatic 2x2 layout
func DefaultDashboardLayout() DashboardLayout {
	return DashboardLayout{
		LayoutType:         LayoutAutomatic,
		Rows:               2,
		Columns:            2,
		WorksheetPositions: map[string]ZonePosition{},
	}
}

// UnmarshalJSON applies defaults for omitted fields
func (l *DashboardLayout) UnmarshalJSON(data []byte) error {
	type alias DashboardLayout
	aux := alias(DefaultDashboardLayout())
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*l = DashboardLayout(aux)
	return nil
}

// Validate checks the layout invariants
func (l DashboardLayout) Validate() error {
	switch l.LayoutType {
	case LayoutAutomatic, LayoutGrid, LayoutFreeForm:
	default:
		return newValidationError("DashboardLayout", "layout_type", "unknown layout %q", l.LayoutType)
	}
	if l.Rows < 1 {
		return newValidationError("DashboardLayout", "rows", "must be at least 1, got %d", l.Rows)
	}
	if l.Columns < 1 {
		return newValidationError("DashboardLayout", "columns", "must be at least 1, got %d", l.Columns)
	}
	for name, pos := range l.WorksheetPositions {
		if pos.W <= 0 || pos.H <= 0 {
			return newValidationError("DashboardLayout", "worksheet_positions", "zone for %s needs a positive size", name)
		}
	}
	return nil
}

// DashboardSpec groups worksheets on one canvas
type DashboardSpec struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Worksheets    []WorksheetSpec `json:"worksheets"`
	Layout        DashboardLayout `json:"layout"`
	GlobalFilters []Filter        `json:"global_filters"`
	ColorScheme   ColorScheme     `json:"color_scheme"`
	Dimensions    Size            `json:"dimensions"`
}

// DefaultDashboardSize is the dashboard canvas when none is given
var DefaultDashboardSize = Size{Width: 1200, Height: 800}

// NewDashboardSpec creates a dashboard with the default layout, palette and size
func NewDashboardSpec(name, description string, worksheets []WorksheetSpec) (DashboardSpec, error) {
	d := DashboardSpec{
		Name:          name,
		Description:   description,
		Worksheets:    worksheets,
		Layout:        DefaultDashboardLayout(),
		GlobalFilters: []Filter{},
		ColorScheme:   DefaultColorScheme,
		Dimensions:    DefaultDashboardSize,
	}
	return d, d.Validate()
}

// Validate checks the dashboard invariants, including unique worksheet names
func (d DashboardSpec) Validate() error {
	if d.Name == "" {
		return newValidationError("DashboardSpec", "name", "is required")
	}
	seen := make(map[string]bool)
	for _, ws := range d.Worksheets {
		if err := ws.Validate(); err != nil {
			return err
		}
		if seen[ws.Name] {
			return newValidationError("DashboardSpec", "worksheets", "duplicate worksheet name %q", ws.Name)
		}
		seen[ws.Name] = true
	}
	if err := d.Layout.Validate(); err != nil {
		return err
	}
	if !d.ColorScheme.IsValid() {
		return newValidationError("DashboardSpec", "color_scheme", "unknown color scheme %q", d.ColorScheme)
	}
	return d.Dimensions.validate("DashboardSpec")
}

// Default workbook metadata
const (
	DefaultTableauVersion = "2023.3"
	DefaultCreatedBy      = "AI Dashboard Generator"
)

// TableauWorkbookSpec is the complete description of a workbook to serialize
type TableauWorkbookSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Dashboards  []DashboardSpec `json:"dashboards"`
	DataSource  string          `json:"data_source"`
	Version     string          `json:"version"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewTableauWorkbookSpec creates a workbook spec stamped with the default version and author
func NewTableauWorkbookSpec(name, description string, dashboards []DashboardSpec, dataSource string) (*TableauWorkbookSpec, error) {
	wb := &TableauWorkbookSpec{
		Name:        name,
		Description: description,
		Dashboards:  dashboards,
		DataSource:  dataSource,
		Version:     DefaultTableauVersion,
		CreatedBy:   DefaultCreatedBy,
		CreatedAt:   time.Now(),
	}
	if err := wb.Validate(); err != nil {
		return nil, err
	}
	return wb, nil
}

// Validate checks the workbook invariants
func (w *TableauWorkbookSpec) Validate() error {
	if w.Name == "" {
		return newValidationError("TableauWorkbookSpec", "name", "is required")
	}
	for _, d := range w.Dashboards {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// WorksheetCount returns the number of worksheets across all dashboards
func (w *TableauWorkbookSpec) WorksheetCount() int {
	count := 0
	for _, d := range w.Dashboards {
		count += len(d.Worksheets)
	}
	return count
}
