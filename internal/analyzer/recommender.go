package analyzer

import (
	"fmt"
	"time"

	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// DefaultAnalysis produces a rule-based recommendation for a schema, used when
// no recommender output is supplied. It proposes a bar chart of the first
// numeric column by the first categorical column and a scatter plot of the
// first two numeric columns.
func DefaultAnalysis(schema *models.DatasetSchema) *models.AIAnalysisResponse {
	return &models.AIAnalysisResponse{
		DatasetInsights: map[string]interface{}{
			"data_characteristics": map[string]interface{}{
				"total_rows":    schema.TotalRows,
				"total_columns": schema.TotalColumns,
			},
			"business_potential":        []string{"Analyze key metrics and trends"},
			"data_quality_issues":       []string{"No specific issues identified"},
			"recommended_preprocessing": []string{"Standard data cleaning"},
		},
		RecommendedKPIs:           defaultKPIs(schema),
		RecommendedVisualizations: DefaultVisualizations(schema),
		DashboardRecommendations: models.AIRecommendation{
			ConfidenceScore: 0.5,
			Reasoning:       "Default recommendation",
			Alternatives:    []string{},
		},
		LayoutSuggestions: models.AIRecommendation{
			ConfidenceScore: 0.5,
			Reasoning:       "Default grid layout recommended",
			Alternatives:    []string{string(models.LayoutAutomatic), string(models.LayoutFreeForm)},
		},
		ColorSchemeRecommendation: models.AIRecommendation{
			ConfidenceScore: 0.7,
			Reasoning:       "Tableau10 provides good color differentiation",
			Alternatives:    []string{string(models.ColorTableau20), string(models.ColorCategory10)},
		},
		PerformanceConsiderations: []string{"Use appropriate aggregation", "Limit data points"},
		GeneratedAt:               time.Now(),
	}
}

// DefaultVisualizations derives charts from the column types alone
func DefaultVisualizations(schema *models.DatasetSchema) []models.VisualizationSpec {
	var numeric, categorical []models.DataColumn
	for _, col := range schema.Columns {
		switch {
		case col.DataType.IsNumeric():
			numeric = append(numeric, col)
		case col.DataType == models.DataTypeCategorical:
			categorical = append(categorical, col)
		}
	}

	visualizations := []models.VisualizationSpec{}

	if len(numeric) > 0 && len(categorical) > 0 {
		viz, err := models.NewVisualizationSpec(models.ChartBar,
			fmt.Sprintf("%s by %s", numeric[0].Name, categorical[0].Name),
			[]string{categorical[0].Name}, []string{numeric[0].Name})
		if err == nil {
			visualizations = append(visualizations, viz)
		}
	}

	if len(numeric) >= 2 {
		viz, err := models.NewVisualizationSpec(models.ChartScatter,
			fmt.Sprintf("%s vs %s", numeric[0].Name, numeric[1].Name),
			[]string{numeric[0].Name}, []string{numeric[1].Name})
		if err == nil {
			viz.AggregationType = models.AggregationAvg
			visualizations = append(visualizations, viz)
		}
	}

	return visualizations
}

func defaultKPIs(schema *models.DatasetSchema) []models.KPISpecification {
	if len(schema.Columns) == 0 {
		return []models.KPISpecification{}
	}
	kpi, err := models.NewKPISpecification("Record Count", "Total number of records",
		fmt.Sprintf("COUNT([%s])", schema.Columns[0].Name), 1)
	if err != nil {
		return []models.KPISpecification{}
	}
	return []models.KPISpecification{kpi}
}
