package generator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// Names given to generated dashboards
const (
	DashboardName        = "AI Generated Dashboard"
	DashboardDescription = "Automatically generated dashboard based on AI analysis"
)

// BuildWorkbookSpec turns a request into a workbook with a single dashboard
// holding one worksheet per recommended visualization, in order.
// The request is trusted to be valid, so building never fails.
func BuildWorkbookSpec(req *models.GenerationRequest) *models.TableauWorkbookSpec {
	var visualizations []models.VisualizationSpec
	if req.AIAnalysis != nil {
		visualizations = req.AIAnalysis.RecommendedVisualizations
	}

	worksheets := make([]models.WorksheetSpec, 0, len(visualizations))
	for i, viz := range visualizations {
		worksheets = append(worksheets, models.WorksheetSpec{
			Name:          fmt.Sprintf("Sheet %d", i+1),
			Visualization: viz,
			KPIs:          []models.KPISpecification{},
			Description:   fmt.Sprintf("Generated visualization: %s", viz.Title),
			Dimensions:    models.DefaultWorksheetSize,
		})
	}

	dashboard := models.DashboardSpec{
		Name:          DashboardName,
		Description:   DashboardDescription,
		Worksheets:    worksheets,
		Layout:        preferredLayout(req.UserPreferences),
		GlobalFilters: []models.Filter{},
		ColorScheme:   preferredColorScheme(req.UserPreferences),
		Dimensions:    models.DefaultDashboardSize,
	}

	name := req.DatasetSchema.Name
	return &models.TableauWorkbookSpec{
		Name:        name + "_Dashboard",
		Description: fmt.Sprintf("AI-generated dashboard for %s", name),
		Dashboards:  []models.DashboardSpec{dashboard},
		DataSource:  name,
		Version:     models.DefaultTableauVersion,
		CreatedBy:   models.DefaultCreatedBy,
		CreatedAt:   time.Now(),
	}
}

// preferredColorScheme reads user_preferences["color_scheme"], defaulting to tableau10
func preferredColorScheme(prefs map[string]interface{}) models.ColorScheme {
	if raw, ok := prefs["color_scheme"].(string); ok {
		if scheme := models.ColorScheme(raw); scheme.IsValid() {
			return scheme
		}
	}
	return models.DefaultColorScheme
}

// preferredLayout reads user_preferences["layout"], which may hold a layout type
// name, a layout, or its decoded JSON object. Anything invalid falls back to the automatic layout.
func preferredLayout(prefs map[string]interface{}) models.DashboardLayout {
	raw, ok := prefs["layout"]
	if !ok || raw == nil {
		return models.DefaultDashboardLayout()
	}

	if name, ok := raw.(string); ok {
		layout := models.DefaultDashboardLayout()
		layout.LayoutType = models.LayoutType(name)
		if layout.Validate() == nil {
			return layout
		}
		return models.DefaultDashboardLayout()
	}

	if layout, ok := raw.(models.DashboardLayout); ok {
		if layout.Validate() == nil {
			return layout
		}
		return models.DefaultDashboardLayout()
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return models.DefaultDashboardLayout()
	}
	var layout models.DashboardLayout
	if err := json.Unmarshal(data, &layout); err != nil || layout.Validate() != nil {
		return models.DefaultDashboardLayout()
	}
	return layout
}
