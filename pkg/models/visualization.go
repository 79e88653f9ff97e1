package models

import (
	"encoding/json"
)

// Size is a width/height pair in pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) validate(entity string) error {
	if s.Width <= 0 || s.Height <= 0 {
		return newValidationError(entity, "dimensions", "width and height must be positive, got %dx%d", s.Width, s.Height)
	}
	return nil
}

// KPISpecification is a key performance indicator recommended for a dataset
type KPISpecification struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Calculation  string   `json:"calculation"`
	TargetValue  *float64 `json:"target_value,omitempty"`
	FormatString string   `json:"format_string"`
	Priority     int      `json:"priority"`
}

// NewKPISpecification creates a KPI with the default format string
func NewKPISpecification(name, description, calculation string, priority int) (KPISpecification, error) {
	kpi := KPISpecification{
		Name:         name,
		Description:  description,
		Calculation:  calculation,
		FormatString: "#,##0",
		Priority:     priority,
	}
	return kpi, kpi.Validate()
}

// UnmarshalJSON applies defaults for omitted fields
func (k *KPISpecification) UnmarshalJSON(data []byte) error {
	type alias KPISpecification
	aux := alias{FormatString: "#,##0", Priority: 1}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*k = KPISpecification(aux)
	return nil
}

// Validate checks the KPI invariants
func (k KPISpecification) Validate() error {
	if k.Name == "" {
		return newValidationError("KPISpecification", "name", "is required")
	}
	if k.Calculation == "" {
		return newValidationError("KPISpecification", "calculation", "is required for %s", k.Name)
	}
	if k.Priority < 1 || k.Priority > 5 {
		return newValidationError("KPISpecification", "priority", "must be within [1,5], got %d", k.Priority)
	}
	return nil
}

// Filter restricts the rows a visualization shows
type Filter struct {
	Field    string        `json:"field"`
	Operator string        `json:"operator"`
	Values   []interface{} `json:"values"`
}

// VisualizationSpec describes one chart
type VisualizationSpec struct {
	ChartType       VisualizationType `json:"chart_type"`
	Title           string            `json:"title"`
	XAxis           []string          `json:"x_axis"`
	YAxis           []string          `json:"y_axis"`
	ColorField      string            `json:"color_field,omitempty"`
	SizeField       string            `json:"size_field,omitempty"`
	Filters         []Filter          `json:"filters"`
	ColorScheme     ColorScheme       `json:"color_scheme"`
	ShowLabels      bool              `json:"show_labels"`
	ShowLegend      bool              `json:"show_legend"`
	AggregationType AggregationType   `json:"aggregation_type"`
}

// NewVisualizationSpec creates a chart spec with default styling and sum aggregation
func NewVisualizationSpec(chartType VisualizationType, title string, xAxis, yAxis []string) (VisualizationSpec, error) {
	viz := defaultVisualizationSpec()
	viz.ChartType = chartType
	viz.Title = title
	viz.XAxis = xAxis
	viz.YAxis = yAxis
	return viz, viz.Validate()
}

func defaultVisualizationSpec() VisualizationSpec {
	return VisualizationSpec{
		XAxis:           []string{},
		YAxis:           []string{},
		Filters:         []Filter{},
		ColorScheme:     DefaultColorScheme,
		ShowLabels:      true,
		ShowLegend:      true,
		AggregationType: AggregationSum,
	}
}

// UnmarshalJSON applies defaults for omitted fields
func (v *VisualizationSpec) UnmarshalJSON(data []byte) error {
	type alias VisualizationSpec
	aux := alias(defaultVisualizationSpec())
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*v = VisualizationSpec(aux)
	return nil
}

// Validate checks the chart spec invariants
func (v VisualizationSpec) Validate() error {
	if !v.ChartType.IsValid() {
		return newValidationError("VisualizationSpec", "chart_type", "unknown chart type %q", v.ChartType)
	}
	if v.Title == "" {
		return newValidationError("VisualizationSpec", "title", "is required")
	}
	if !v.ColorScheme.IsValid() {
		return newValidationError("VisualizationSpec", "color_scheme", "unknown color scheme %q", v.ColorScheme)
	}
	if !v.AggregationType.IsValid() {
		return newValidationError("VisualizationSpec", "aggregation_type", "unknown aggregation %q", v.AggregationType)
	}
	for _, f := range v.Filters {
		if f.Field == "" {
			return newValidationError("VisualizationSpec", "filters", "filter without field in %q", v.Title)
		}
	}
	return nil
}

// ReferencedFields returns every field name the chart places on a shelf or filters by
func (v VisualizationSpec) ReferencedFields() []string {
	var fields []string
	fields = append(fields, v.YAxis...)
	fields = append(fields, v.XAxis...)
	if v.ColorField != "" {
		fields = append(fields, v.ColorField)
	}
	if v.SizeField != "" {
		fields = append(fields, v.SizeField)
	}
	for _, f := range v.Filters {
		fields = append(fields, f.Field)
	}
	return fields
}

// WorksheetSpec wraps one visualization and its KPIs
type WorksheetSpec struct {
	Name          string             `json:"name"`
	Visualization VisualizationSpec  `json:"visualization"`
	KPIs          []KPISpecification `json:"kpis"`
	Description   string             `json:"description,omitempty"`
	Dimensions    Size               `json:"dimensions"`
}

// DefaultWorksheetSize is the worksheet canvas when none is given
var DefaultWorksheetSize = Size{Width: 800, Height: 600}

// NewWorksheetSpec creates a worksheet with the default canvas size
func NewWorksheetSpec(name string, viz VisualizationSpec, description string) (WorksheetSpec, error) {
	ws := WorksheetSpec{
		Name:          name,
		Visualization: viz,
		KPIs:          []KPISpecification{},
		Description:   description,
		Dimensions:    DefaultWorksheetSize,
	}
	return ws, ws.Validate()
}

// Validate checks the worksheet invariants
func (w WorksheetSpec) Validate() error {
	if w.Name == "" {
		return newValidationError("WorksheetSpec", "name", "is required")
	}
	if err := w.Visualization.Validate(); err != nil {
		return err
	}
	for _, kpi := range w.KPIs {
		if err := kpi.Validate(); err != nil {
			return err
		}
	}
	return w.Dimensions.validate("WorksheetSpec")
}
