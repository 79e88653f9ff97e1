package generator

import (
	"archive/zip"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func salesSchema(t *testing.T, totalRows int) *models.DatasetSchema {
	t.Helper()
	schema, err := models.NewDatasetSchema("Sales", totalRows, []models.DataColumn{
		{Name: "Region", DataType: models.DataTypeCategorical, UniqueValues: 3, SampleValues: []interface{}{"North", "South", "East"}, RecommendedRole: models.RoleDimension},
		{Name: "Sales", DataType: models.DataTypeFloat, UniqueValues: 200, NullCount: 2, SampleValues: []interface{}{10.5, 20.25}, Statistics: &models.ColumnStatistics{Mean: 15, Min: 10.5, Max: 20.25}, RecommendedRole: models.RoleMeasure},
		{Name: "Quantity", DataType: models.DataTypeInteger, UniqueValues: 40, RecommendedRole: models.RoleMeasure},
		{Name: "OrderDate", DataType: models.DataTypeDatetime, UniqueValues: 250, RecommendedRole: models.RoleDimension},
	}, 0.98)
	if err != nil {
		t.Fatalf("NewDatasetSchema() error = %v", err)
	}
	return schema
}

func visualization(t *testing.T, chartType models.VisualizationType, title string, x, y []string) models.VisualizationSpec {
	t.Helper()
	viz, err := models.NewVisualizationSpec(chartType, title, x, y)
	if err != nil {
		t.Fatalf("NewVisualizationSpec() error = %v", err)
	}
	return viz
}

func salesRequest(t *testing.T, vizs ...models.VisualizationSpec) *models.GenerationRequest {
	t.Helper()
	req, err := models.NewGenerationRequest(salesSchema(t, 250), &models.AIAnalysisResponse{RecommendedVisualizations: vizs})
	if err != nil {
		t.Fatalf("NewGenerationRequest() error = %v", err)
	}
	return req
}

func threeVisualizations(t *testing.T) []models.VisualizationSpec {
	return []models.VisualizationSpec{
		visualization(t, models.ChartBar, "Sales by Region", []string{"Region"}, []string{"Sales"}),
		visualization(t, models.ChartLine, "Sales over Time", []string{"OrderDate"}, []string{"Sales"}),
		visualization(t, models.ChartGantt, "Quantity Timeline", []string{"OrderDate"}, []string{"Quantity"}),
	}
}

func parseXML(t *testing.T, content string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(content); err != nil {
		t.Fatalf("failed to parse XML: %v", err)
	}
	if doc.Root() == nil {
		t.Fatal("XML document has no root element")
	}
	return doc.Root()
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("zip.OpenReader() error = %v", err)
	}
	defer r.Close()

	entries := make(map[string]string)
	for _, f := range r.File {
		if f.Method != zip.Deflate {
			t.Errorf("Entry %s is not deflate-compressed", f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open(%s) error = %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("ReadAll(%s) error = %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

func TestGenerateID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateID()
		if !pattern.MatchString(id) {
			t.Errorf("GenerateID() = %q, want 8 uppercase hex characters", id)
		}
		seen[id] = true
	}
	if len(seen) < 2 {
		t.Error("Expected GenerateID() to vary between calls")
	}
}

func TestTableauType(t *testing.T) {
	tests := map[models.DataType]string{
		models.DataTypeInteger:     "integer",
		models.DataTypeFloat:       "real",
		models.DataTypeString:      "string",
		models.DataTypeDatetime:    "datetime",
		models.DataTypeBoolean:     "boolean",
		models.DataTypeCategorical: "string",
		models.DataTypeDate:        "string",
		models.DataType("unknown"): "string",
	}
	for dataType, want := range tests {
		if got := TableauType(dataType); got != want {
			t.Errorf("TableauType(%s) = %s, want %s", dataType, got, want)
		}
	}
}

func TestMarkClass(t *testing.T) {
	tests := map[models.VisualizationType]string{
		models.ChartBar:           "Bar",
		models.ChartLine:          "Line",
		models.ChartArea:          "Area",
		models.ChartScatter:       "Circle",
		models.ChartPie:           "Pie",
		models.ChartHeatmap:       "Square",
		models.ChartTreemap:       "Square",
		models.ChartMap:           "Map",
		models.ChartGantt:         "Automatic",
		models.ChartBulletGraph:   "Automatic",
		models.ChartFilledMap:     "Automatic",
		models.ChartHistogram:     "Automatic",
		models.ChartBoxPlot:       "Automatic",
		models.ChartPackedBubbles: "Automatic",
	}
	for chartType, want := range tests {
		if got := MarkClass(chartType); got != want {
			t.Errorf("MarkClass(%s) = %s, want %s", chartType, got, want)
		}
	}
}

func TestAutomaticGrid(t *testing.T) {
	for n := 0; n <= 7; n++ {
		positions := AutomaticGrid(n)
		if len(positions) != n {
			t.Fatalf("AutomaticGrid(%d) returned %d positions", n, len(positions))
		}
		cols := n
		if n > 2 {
			cols = 2
		}
		for i, pos := range positions {
			wantX := (i % cols) * 400
			wantY := (i / cols) * 300
			if pos.X != wantX || pos.Y != wantY || pos.W != 400 || pos.H != 300 {
				t.Errorf("AutomaticGrid(%d)[%d] = %+v, want x=%d y=%d w=400 h=300", n, i, pos, wantX, wantY)
			}
		}
	}

	// Two worksheets sit side by side
	positions := AutomaticGrid(2)
	if positions[1].X != 400 || positions[1].Y != 0 {
		t.Errorf("Expected second of two zones at (400,0), got %+v", positions[1])
	}
}

func TestZonePositionsLayouts(t *testing.T) {
	worksheets := []models.WorksheetSpec{{Name: "Sheet 1"}, {Name: "Sheet 2"}, {Name: "Sheet 3"}}

	t.Run("grid", func(t *testing.T) {
		dashboard := models.DashboardSpec{
			Name:       "Grid",
			Worksheets: worksheets,
			Layout:     models.DashboardLayout{LayoutType: models.LayoutGrid, Rows: 1, Columns: 3},
			Dimensions: models.Size{Width: 1200, Height: 800},
		}
		positions, warnings := ZonePositions(dashboard)
		if len(warnings) != 0 {
			t.Errorf("Expected no warnings, got %v", warnings)
		}
		for i, pos := range positions {
			want := models.ZonePosition{X: i * 400, Y: 0, W: 400, H: 800}
			if pos != want {
				t.Errorf("grid zone %d = %+v, want %+v", i, pos, want)
			}
		}
	})

	t.Run("grid overflow", func(t *testing.T) {
		dashboard := models.DashboardSpec{
			Name:       "Small",
			Worksheets: worksheets,
			Layout:     models.DashboardLayout{LayoutType: models.LayoutGrid, Rows: 1, Columns: 2},
			Dimensions: models.Size{Width: 1200, Height: 800},
		}
		positions, warnings := ZonePositions(dashboard)
		if len(warnings) != 1 {
			t.Errorf("Expected an overflow warning, got %v", warnings)
		}
		if positions[2].Y != 800 {
			t.Errorf("Expected third zone below the canvas, got %+v", positions[2])
		}
	})

	t.Run("grid finer than canvas", func(t *testing.T) {
		dashboard := models.DashboardSpec{
			Name:       "Dense",
			Worksheets: worksheets,
			Layout:     models.DashboardLayout{LayoutType: models.LayoutGrid, Rows: 1, Columns: 5000},
			Dimensions: models.Size{Width: 1200, Height: 800},
		}
		positions, warnings := ZonePositions(dashboard)
		if len(warnings) != 1 || !strings.Contains(warnings[0], "too small") {
			t.Errorf("Expected a too-small warning, got %v", warnings)
		}
		want := AutomaticGrid(3)
		for i, pos := range positions {
			if pos.W < 1 || pos.H < 1 {
				t.Errorf("zone %d has empty size %+v", i, pos)
			}
			if pos != want[i] {
				t.Errorf("zone %d = %+v, want automatic %+v", i, pos, want[i])
			}
		}
	})

	t.Run("free form", func(t *testing.T) {
		dashboard := models.DashboardSpec{
			Name:       "Free",
			Worksheets: worksheets,
			Layout: models.DashboardLayout{
				LayoutType: models.LayoutFreeForm,
				Rows:       1,
				Columns:    1,
				WorksheetPositions: map[string]models.ZonePosition{
					"Sheet 1": {X: 10, Y: 20, W: 300, H: 200},
					"Sheet 3": {X: 500, Y: 20, W: 600, H: 700},
				},
			},
			Dimensions: models.DefaultDashboardSize,
		}
		positions, warnings := ZonePositions(dashboard)
		if positions[0] != (models.ZonePosition{X: 10, Y: 20, W: 300, H: 200}) {
			t.Errorf("Unexpected first zone %+v", positions[0])
		}
		if positions[1] != AutomaticGrid(3)[1] {
			t.Errorf("Expected unplaced worksheet to use its automatic cell, got %+v", positions[1])
		}
		if len(warnings) != 1 || !strings.Contains(warnings[0], "Sheet 2") {
			t.Errorf("Expected a warning for Sheet 2, got %v", warnings)
		}
	})
}

func TestBuildWorkbookSpec(t *testing.T) {
	req := salesRequest(t, threeVisualizations(t)...)

	spec := BuildWorkbookSpec(req)
	if spec.Name != "Sales_Dashboard" {
		t.Errorf("Expected workbook name Sales_Dashboard, got %s", spec.Name)
	}
	if spec.DataSource != "Sales" || spec.Version != "2023.3" {
		t.Errorf("Unexpected data source %q or version %q", spec.DataSource, spec.Version)
	}
	if len(spec.Dashboards) != 1 || spec.Dashboards[0].Name != DashboardName {
		t.Fatalf("Expected one dashboard named %s", DashboardName)
	}
	if spec.WorksheetCount() != 3 {
		t.Fatalf("Expected 3 worksheets, got %d", spec.WorksheetCount())
	}
	for i, ws := range spec.Dashboards[0].Worksheets {
		if want := "Sheet " + string(rune('1'+i)); ws.Name != want {
			t.Errorf("Worksheet %d named %s, want %s", i, ws.Name, want)
		}
		if ws.Visualization.Title != req.AIAnalysis.RecommendedVisualizations[i].Title {
			t.Errorf("Worksheet %d does not keep visualization order", i)
		}
	}
	if spec.Dashboards[0].ColorScheme != models.ColorTableau10 {
		t.Errorf("Expected default color scheme, got %s", spec.Dashboards[0].ColorScheme)
	}
	if err := spec.Validate(); err != nil {
		t.Errorf("Expected built spec to validate, got %v", err)
	}
}

func TestBuildWorkbookSpecPreferences(t *testing.T) {
	req := salesRequest(t, threeVisualizations(t)...)
	req.UserPreferences["color_scheme"] = "blues"
	req.UserPreferences["layout"] = map[string]interface{}{"layout_type": "grid", "rows": 3, "columns": 1}

	dashboard := BuildWorkbookSpec(req).Dashboards[0]
	if dashboard.ColorScheme != models.ColorBlues {
		t.Errorf("Expected blues color scheme, got %s", dashboard.ColorScheme)
	}
	if dashboard.Layout.LayoutType != models.LayoutGrid || dashboard.Layout.Rows != 3 || dashboard.Layout.Columns != 1 {
		t.Errorf("Unexpected layout %+v", dashboard.Layout)
	}

	req.UserPreferences["color_scheme"] = "neon"
	req.UserPreferences["layout"] = map[string]interface{}{"layout_type": "spiral"}
	dashboard = BuildWorkbookSpec(req).Dashboards[0]
	if dashboard.ColorScheme != models.ColorTableau10 {
		t.Errorf("Expected invalid color scheme to fall back, got %s", dashboard.ColorScheme)
	}
	if dashboard.Layout.LayoutType != models.LayoutAutomatic {
		t.Errorf("Expected invalid layout to fall back, got %s", dashboard.Layout.LayoutType)
	}
}

func TestGenerateWorkbookSalesScenario(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "nested", "output")
	wg := NewWorkbookGenerator(outDir, createTestLogger())

	result := wg.GenerateWorkbook(salesRequest(t, threeVisualizations(t)...))
	if !result.Success {
		t.Fatalf("Expected success, got error %s", result.Message())
	}
	if result.ErrorMessage != nil {
		t.Error("Expected no error message on success")
	}
	if result.FilePath != filepath.Join(outDir, "Sales_Dashboard.twbx") {
		t.Errorf("Unexpected file path %s", result.FilePath)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}

	entries := readArchive(t, result.FilePath)
	var names []string
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{"Data/Datasources/datasource.tds", "Data/Sales.csv", "workbook.twb"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("Archive entries = %v, want %v", names, want)
	}

	root := parseXML(t, entries[WorkbookEntry])
	if root.Tag != "workbook" || root.SelectAttrValue("version", "") != "2023.3" {
		t.Errorf("Unexpected root <%s version=%q>", root.Tag, root.SelectAttrValue("version", ""))
	}
	var order []string
	for _, child := range root.ChildElements() {
		order = append(order, child.Tag)
	}
	if got := strings.Join(order, ","); got != "preferences,repository-location,datasources,worksheets,dashboards,windows" {
		t.Errorf("Unexpected root child order %s", got)
	}

	if n := len(root.FindElements("./worksheets/worksheet")); n != 3 {
		t.Errorf("Expected 3 worksheets, got %d", n)
	}
	dashboards := root.FindElements("./dashboards/dashboard")
	if len(dashboards) != 1 {
		t.Fatalf("Expected 1 dashboard, got %d", len(dashboards))
	}

	zones := dashboards[0].FindElements("./view/zones/zone")
	expected := [][4]string{{"0", "0", "400", "300"}, {"400", "0", "400", "300"}, {"0", "300", "400", "300"}}
	if len(zones) != 3 {
		t.Fatalf("Expected 3 zones, got %d", len(zones))
	}
	for i, zone := range zones {
		got := [4]string{zone.SelectAttrValue("x", ""), zone.SelectAttrValue("y", ""), zone.SelectAttrValue("w", ""), zone.SelectAttrValue("h", "")}
		if got != expected[i] {
			t.Errorf("Zone %d = %v, want %v", i, got, expected[i])
		}
	}

	if phone := dashboards[0].FindElement("./view/devicelayouts/devicelayout[@name='Phone']"); phone == nil {
		t.Error("Expected a Phone device layout")
	}
	if window := root.FindElement("./windows/window"); window == nil || window.SelectAttrValue("name", "") != "Sheet 1" {
		t.Error("Expected window for Sheet 1")
	}

	marks := root.FindElements("./worksheets/worksheet/table/view/panes/pane/mark")
	if len(marks) != 3 || marks[2].SelectAttrValue("class", "") != "Automatic" {
		t.Errorf("Expected the gantt chart to fall back to an Automatic mark")
	}

	tds := parseXML(t, entries[DatasourceEntry])
	if tds.Tag != "datasource" || tds.SelectAttrValue("formatted-name", "") != "Sales" {
		t.Errorf("Unexpected datasource document root <%s>", tds.Tag)
	}
	if n := len(tds.FindElements("./metadata-records/metadata-record")); n != 4 {
		t.Errorf("Expected 4 metadata records in the datasource document, got %d", n)
	}
}

func TestGenerateWorkbookEmptyVisualizations(t *testing.T) {
	wg := NewWorkbookGenerator(t.TempDir(), createTestLogger())

	result := wg.GenerateWorkbook(salesRequest(t))
	if !result.Success {
		t.Fatalf("Expected success, got error %s", result.Message())
	}
	if len(result.WorkbookSpec.Dashboards) != 1 || len(result.WorkbookSpec.Dashboards[0].Worksheets) != 0 {
		t.Fatal("Expected one dashboard with no worksheets")
	}

	entries := readArchive(t, result.FilePath)
	root := parseXML(t, entries[WorkbookEntry])

	zones := root.FindElement("./dashboards/dashboard/view/zones")
	if zones == nil {
		t.Fatal("Expected zones element to be present")
	}
	if len(zones.ChildElements()) != 0 {
		t.Errorf("Expected no zones, got %d", len(zones.ChildElements()))
	}
	if window := root.FindElement("./windows/window"); window == nil || window.SelectAttrValue("name", "") != "Sheet1" {
		t.Error("Expected window to fall back to Sheet1")
	}
}

func TestGenerateWorkbookTWB(t *testing.T) {
	outDir := t.TempDir()
	req := salesRequest(t, threeVisualizations(t)...)
	req.OutputFormat = models.FormatTWB

	result := NewWorkbookGenerator(outDir, createTestLogger()).GenerateWorkbook(req)
	if !result.Success {
		t.Fatalf("Expected success, got error %s", result.Message())
	}
	if result.FilePath != filepath.Join(outDir, "Sales_Dashboard.twb") {
		t.Errorf("Unexpected file path %s", result.FilePath)
	}

	data, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Error("Expected an XML declaration")
	}
	if !strings.Contains(string(data), "\n  <preferences/>") {
		t.Error("Expected two-space indentation")
	}
	if _, err := os.Stat(filepath.Join(outDir, "Sales.csv")); !os.IsNotExist(err) {
		t.Error("Expected no sample CSV next to a .twb file")
	}
}

func TestGenerateWorkbookWithoutSampleData(t *testing.T) {
	req := salesRequest(t, threeVisualizations(t)...)
	req.IncludeSampleData = false

	result := NewWorkbookGenerator(t.TempDir(), createTestLogger()).GenerateWorkbook(req)
	if !result.Success {
		t.Fatalf("Expected success, got error %s", result.Message())
	}

	entries := readArchive(t, result.FilePath)
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[WorkbookEntry]; !ok {
		t.Error("Expected workbook.twb entry")
	}
	if _, ok := entries[DatasourceEntry]; !ok {
		t.Error("Expected datasource.tds entry")
	}
}

func TestGenerateWorkbookFailure(t *testing.T) {
	// A regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	result := NewWorkbookGenerator(blocker, createTestLogger()).GenerateWorkbook(salesRequest(t, threeVisualizations(t)...))
	if result.Success {
		t.Fatal("Expected generation to fail")
	}
	if result.ErrorMessage == nil || *result.ErrorMessage == "" {
		t.Error("Expected an error message on failure")
	}
	if result.WorkbookSpec == nil || result.WorkbookSpec.Name != "Failed Generation" {
		t.Error("Expected a placeholder workbook spec")
	}
	if result.WorkbookSpec.DataSource != "" || len(result.WorkbookSpec.Dashboards) != 0 {
		t.Error("Expected the placeholder spec to be empty")
	}
}

func TestGenerateWorkbookNilRequest(t *testing.T) {
	result := NewWorkbookGenerator(t.TempDir(), createTestLogger()).GenerateWorkbook(nil)
	if result.Success || result.ErrorMessage == nil {
		t.Error("Expected a failed result for a nil request")
	}
}

func TestWorksheetEncodings(t *testing.T) {
	viz := visualization(t, models.ChartScatter, "Sales vs Quantity", []string{"Quantity"}, []string{"Sales"})
	viz.ColorField = "Region"
	viz.SizeField = "Sales"
	viz.AggregationType = models.AggregationAvg

	req := salesRequest(t, viz)
	spec := BuildWorkbookSpec(req)
	content, _, err := BuildWorkbookXML(spec, req.DatasetSchema, "out")
	if err != nil {
		t.Fatalf("BuildWorkbookXML() error = %v", err)
	}
	root := parseXML(t, content)

	dsName := root.FindElement("./datasources/datasource").SelectAttrValue("name", "")
	if !regexp.MustCompile(`^federated\.[0-9A-F]{8}$`).MatchString(dsName) {
		t.Errorf("Unexpected datasource name %q", dsName)
	}

	encodings := root.FindElement("./worksheets/worksheet/table/view/panes/pane/encodings")
	if encodings == nil {
		t.Fatal("Expected encodings element")
	}
	shelves := encodings.ChildElements()
	wantShelves := []string{"rows", "columns", "color", "size"}
	wantAgg := []string{"Avg", "", "", "Avg"}
	wantField := []string{"Sales", "Quantity", "Region", "Sales"}
	if len(shelves) != len(wantShelves) {
		t.Fatalf("Expected %d encodings, got %d", len(wantShelves), len(shelves))
	}
	for i, shelf := range shelves {
		if shelf.Tag != wantShelves[i] {
			t.Errorf("Encoding %d is %s, want %s", i, shelf.Tag, wantShelves[i])
		}
		column := shelf.SelectElement("column")
		if got := column.SelectAttrValue("aggregation", ""); got != wantAgg[i] {
			t.Errorf("Encoding %s aggregation = %q, want %q", shelf.Tag, got, wantAgg[i])
		}
		if want := "[" + dsName + "].[" + wantField[i] + "]"; column.Text() != want {
			t.Errorf("Encoding %s field = %s, want %s", shelf.Tag, column.Text(), want)
		}
	}

	if run := root.FindElement("./worksheets/worksheet/layout-options/title/formatted-text/run"); run == nil || run.Text() != "Sales vs Quantity" {
		t.Error("Expected the worksheet title run")
	}
	if mark := root.FindElement("./worksheets/worksheet/table/view/panes/pane/mark"); mark.SelectAttrValue("class", "") != "Circle" {
		t.Errorf("Expected Circle mark for scatter")
	}
}

func TestDatasourceMetadata(t *testing.T) {
	schema := salesSchema(t, 250)
	if err := schema.AddCalculatedField(models.CalculatedFieldSpec{Name: "Avg Price", Formula: "SUM([Sales]) / SUM([Quantity])", DataType: models.DataTypeFloat}); err != nil {
		t.Fatalf("AddCalculatedField() error = %v", err)
	}
	req, err := models.NewGenerationRequest(schema, &models.AIAnalysisResponse{})
	if err != nil {
		t.Fatalf("NewGenerationRequest() error = %v", err)
	}

	content, _, err := BuildWorkbookXML(BuildWorkbookSpec(req), schema, "/data/out")
	if err != nil {
		t.Fatalf("BuildWorkbookXML() error = %v", err)
	}
	root := parseXML(t, content)

	conn := root.FindElement("./datasources/datasource/connection/named-connections/named-connection/connection")
	if conn == nil || conn.SelectAttrValue("directory", "") != "/data/out" || conn.SelectAttrValue("filename", "") != "Sales.csv" {
		t.Error("Expected textscan connection to Sales.csv in the output directory")
	}

	records := root.FindElements("./datasources/datasource/metadata-records/metadata-record")
	if len(records) != 5 {
		t.Fatalf("Expected 5 metadata records, got %d", len(records))
	}

	sales := records[1]
	if sales.SelectElement("remote-type").Text() != "real" || sales.SelectElement("aggregation").Text() != "Sum" {
		t.Error("Expected Sales to be a real measure")
	}
	if sales.SelectElement("contains-null").Text() != "true" {
		t.Error("Expected Sales to contain nulls")
	}
	if records[0].SelectElement("aggregation").Text() != "Count" || records[0].SelectElement("local-name").Text() != "[Region]" {
		t.Error("Expected Region to be a counted dimension")
	}

	calc := records[4]
	if calc.SelectElement("ordinal").Text() != "4" {
		t.Errorf("Expected calculated field ordinal 4, got %s", calc.SelectElement("ordinal").Text())
	}
	if calc.SelectElement("contains-null").Text() != "false" {
		t.Error("Expected calculated field contains-null false")
	}
	calculation := calc.SelectElement("calculation")
	if calculation == nil || calculation.SelectAttrValue("formula", "") != "SUM([Sales]) / SUM([Quantity])" || calculation.SelectAttrValue("type", "") != "tableau" {
		t.Error("Expected calculation element with the formula")
	}

	instances := root.FindElements("./datasources/datasource/column-instances/column-instance")
	if len(instances) != 5 {
		t.Fatalf("Expected 5 column instances, got %d", len(instances))
	}
	if instances[0].SelectAttrValue("type", "") != "nominal" || instances[1].SelectAttrValue("type", "") != "quantitative" {
		t.Error("Expected nominal dimensions and quantitative measures")
	}
	if instances[4].SelectAttrValue("derivation", "") != "Calculation" {
		t.Error("Expected calculated field derivation Calculation")
	}
}

func TestGenerateCSV(t *testing.T) {
	sg := NewSampleDataGenerator(createTestLogger())

	tests := []struct {
		totalRows int
		wantRows  int
	}{
		{250, 100},
		{7, 7},
		{0, 0},
	}
	for _, tt := range tests {
		content, err := sg.GenerateCSV(salesSchema(t, tt.totalRows))
		if err != nil {
			t.Fatalf("GenerateCSV() error = %v", err)
		}
		records, err := csv.NewReader(strings.NewReader(content)).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse generated CSV: %v", err)
		}
		if got := len(records) - 1; got != tt.wantRows {
			t.Errorf("total rows %d: got %d data rows, want %d", tt.totalRows, got, tt.wantRows)
		}
		if strings.Join(records[0], ",") != "Region,Sales,Quantity,OrderDate" {
			t.Errorf("Unexpected header %v", records[0])
		}
	}

	content, err := sg.GenerateCSV(salesSchema(t, 5))
	if err != nil {
		t.Fatalf("GenerateCSV() error = %v", err)
	}
	records, _ := csv.NewReader(strings.NewReader(content)).ReadAll()

	// Sample values cycle
	regions := []string{records[1][0], records[2][0], records[3][0], records[4][0]}
	if strings.Join(regions, ",") != "North,South,East,North" {
		t.Errorf("Expected cycled regions, got %v", regions)
	}
	if records[2][1] != "20.25" {
		t.Errorf("Expected second sales sample 20.25, got %s", records[2][1])
	}

	// Synthetic values by type
	if records[1][3] != "2023-01-01" || records[3][3] != "2023-01-03" {
		t.Errorf("Expected sequential dates, got %s and %s", records[1][3], records[3][3])
	}
	intPattern := regexp.MustCompile(`^[0-9]+$`)
	for _, r := range records[1:] {
		if !intPattern.MatchString(r[2]) {
			t.Errorf("Expected synthetic integer quantity, got %q", r[2])
		}
	}
}

func TestSyntheticValues(t *testing.T) {
	sg := NewSampleDataGenerator(createTestLogger())

	if got := sg.syntheticValue(models.DataColumn{Name: "Notes", DataType: models.DataTypeString}, 3); got != "Notes_3" {
		t.Errorf("Expected Notes_3, got %s", got)
	}
	if got := sg.syntheticValue(models.DataColumn{Name: "X", DataType: models.DataType("other")}, 4); got != "Value_4" {
		t.Errorf("Expected Value_4, got %s", got)
	}

	category := sg.syntheticValue(models.DataColumn{Name: "Segment", DataType: models.DataTypeCategorical}, 0)
	if !strings.HasPrefix(category, "Category ") {
		t.Errorf("Expected a category label, got %s", category)
	}

	floatPattern := regexp.MustCompile(`^[0-9]+\.[0-9]{2}$`)
	for i := 0; i < 20; i++ {
		v := sg.syntheticValue(models.DataColumn{Name: "Price", DataType: models.DataTypeFloat}, i)
		if !floatPattern.MatchString(v) {
			t.Errorf("Expected a two-decimal float, got %s", v)
		}
		b := sg.syntheticValue(models.DataColumn{Name: "Flag", DataType: models.DataTypeBoolean}, i)
		if b != "true" && b != "false" {
			t.Errorf("Expected a boolean, got %s", b)
		}
	}
}
