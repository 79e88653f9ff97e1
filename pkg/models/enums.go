package models

// DataType is the semantic type of a dataset column
type DataType string

const (
	DataTypeInteger     DataType = "integer"
	DataTypeFloat       DataType = "float"
	DataTypeString      DataType = "string"
	DataTypeDate        DataType = "date"
	DataTypeDatetime    DataType = "datetime"
	DataTypeBoolean     DataType = "boolean"
	DataTypeCategorical DataType = "categorical"
)

// IsValid reports whether the data type is one of the known values
func (d DataType) IsValid() bool {
	switch d {
	case DataTypeInteger, DataTypeFloat, DataTypeString, DataTypeDate,
		DataTypeDatetime, DataTypeBoolean, DataTypeCategorical:
		return true
	}
	return false
}

// IsNumeric reports whether the data type carries numeric statistics
func (d DataType) IsNumeric() bool {
	return d == DataTypeInteger || d == DataTypeFloat
}

// VisualizationType is the chart type recommended for a worksheet
type VisualizationType string

const (
	ChartBar           VisualizationType = "bar"
	ChartLine          VisualizationType = "line"
	ChartArea          VisualizationType = "area"
	ChartScatter       VisualizationType = "scatter"
	ChartPie           VisualizationType = "pie"
	ChartHistogram     VisualizationType = "histogram"
	ChartHeatmap       VisualizationType = "heatmap"
	ChartTreemap       VisualizationType = "treemap"
	ChartMap           VisualizationType = "map"
	ChartFilledMap     VisualizationType = "filled_map"
	ChartGantt         VisualizationType = "gantt"
	ChartPackedBubbles VisualizationType = "packed_bubbles"
	ChartBoxPlot       VisualizationType = "box_plot"
	ChartBulletGraph   VisualizationType = "bullet_graph"
)

// VisualizationTypes lists every supported chart type
var VisualizationTypes = []VisualizationType{
	ChartBar, ChartLine, ChartArea, ChartScatter, ChartPie, ChartHistogram, ChartHeatmap,
	ChartTreemap, ChartMap, ChartFilledMap, ChartGantt, ChartPackedBubbles, ChartBoxPlot,
	ChartBulletGraph,
}

// IsValid reports whether the chart type is one of the known values
func (v VisualizationType) IsValid() bool {
	for _, t := range VisualizationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ColorScheme is a Tableau palette name
type ColorScheme string

const (
	ColorTableau10   ColorScheme = "tableau10"
	ColorTableau20   ColorScheme = "tableau20"
	ColorCategory10  ColorScheme = "category10"
	ColorBlues       ColorScheme = "blues"
	ColorOranges     ColorScheme = "oranges"
	ColorGreens      ColorScheme = "greens"
	ColorRedBlue     ColorScheme = "red_blue"
	ColorOrangeBlue  ColorScheme = "orange_blue"
	ColorGreenOrange ColorScheme = "green_orange"
)

// DefaultColorScheme is used when nothing else is requested
const DefaultColorScheme = ColorTableau10

// ColorSchemes lists every supported palette
var ColorSchemes = []ColorScheme{
	ColorTableau10, ColorTableau20, ColorCategory10, ColorBlues, ColorOranges,
	ColorGreens, ColorRedBlue, ColorOrangeBlue, ColorGreenOrange,
}

// IsValid reports whether the palette is one of the known values
func (c ColorScheme) IsValid() bool {
	for _, s := range ColorSchemes {
		if s == c {
			return true
		}
	}
	return false
}

// Role is the Tableau role of a field
type Role string

const (
	RoleDimension Role = "dimension"
	RoleMeasure   Role = "measure"
	RoleAttribute Role = "attribute"
)

// AggregationType is how a measure is aggregated on a shelf
type AggregationType string

const (
	AggregationSum   AggregationType = "sum"
	AggregationAvg   AggregationType = "avg"
	AggregationCount AggregationType = "count"
	AggregationMin   AggregationType = "min"
	AggregationMax   AggregationType = "max"
	AggregationNone  AggregationType = "none"
)

// IsValid reports whether the aggregation is one of the known values
func (a AggregationType) IsValid() bool {
	switch a {
	case AggregationSum, AggregationAvg, AggregationCount, AggregationMin, AggregationMax, AggregationNone:
		return true
	}
	return false
}

// LayoutType selects how worksheets are placed on a dashboard
type LayoutType string

const (
	LayoutAutomatic LayoutType = "automatic"
	LayoutGrid      LayoutType = "grid"
	LayoutFreeForm  LayoutType = "free_form"
)

// OutputFormat is the workbook file format
type OutputFormat string

const (
	FormatTWB  OutputFormat = "twb"
	FormatTWBX OutputFormat = "twbx"
)

// IsValid reports whether the format is twb or twbx
func (f OutputFormat) IsValid() bool {
	return f == FormatTWB || f == FormatTWBX
}
