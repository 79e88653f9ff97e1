package generator

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// tableauTypes maps semantic column types to Tableau remote/local types
var tableauTypes = map[models.DataType]string{
	models.DataTypeInteger:     "integer",
	models.DataTypeFloat:       "real",
	models.DataTypeString:      "string",
	models.DataTypeDatetime:    "datetime",
	models.DataTypeBoolean:     "boolean",
	models.DataTypeCategorical: "string",
}

// markClasses maps chart types to Tableau mark classes
var markClasses = map[models.VisualizationType]string{
	models.ChartBar:     "Bar",
	models.ChartLine:    "Line",
	models.ChartArea:    "Area",
	models.ChartScatter: "Circle",
	models.ChartPie:     "Pie",
	models.ChartHeatmap: "Square",
	models.ChartTreemap: "Square",
	models.ChartMap:     "Map",
}

// TableauType returns the Tableau type for a column type, "string" when unmapped
func TableauType(dataType models.DataType) string {
	if t, ok := tableauTypes[dataType]; ok {
		return t
	}
	return "string"
}

// MarkClass returns the Tableau mark class for a chart type, "Automatic" when unmapped
func MarkClass(chartType models.VisualizationType) string {
	if m, ok := markClasses[chartType]; ok {
		return m
	}
	return "Automatic"
}

// aggregationName renders an aggregation the way Tableau spells it on a shelf.
// The second result is false when the field is not aggregated.
func aggregationName(agg models.AggregationType) (string, bool) {
	if agg == "" || agg == models.AggregationNone {
		return "", false
	}
	return cases.Title(language.Und).String(string(agg)), true
}
