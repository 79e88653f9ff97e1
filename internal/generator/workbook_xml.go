package generator

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// Fixed workbook format values
const (
	BuildVersion      = "20233.23.0322.1437"
	DatasourceVersion = "18.1"
	fallbackSheetName = "Sheet1"
	xmlHeader         = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"
)

// xmlBuilder serializes one workbook. It carries the datasource identity so
// worksheets can reference it, and collects layout warnings along the way.
type xmlBuilder struct {
	spec           *models.TableauWorkbookSpec
	schema         *models.DatasetSchema
	outputDir      string
	datasourceName string
	warnings       []string
}

func newXMLBuilder(spec *models.TableauWorkbookSpec, schema *models.DatasetSchema, outputDir string) *xmlBuilder {
	return &xmlBuilder{
		spec:           spec,
		schema:         schema,
		outputDir:      outputDir,
		datasourceName: "federated." + GenerateID(),
	}
}

// BuildWorkbookXML renders the complete workbook document
func BuildWorkbookXML(spec *models.TableauWorkbookSpec, schema *models.DatasetSchema, outputDir string) (string, []string, error) {
	b := newXMLBuilder(spec, schema, outputDir)
	xml, err := b.workbookXML()
	return xml, b.warnings, err
}

func (b *xmlBuilder) workbookXML() (string, error) {
	if b.spec == nil || b.schema == nil {
		return "", fmt.Errorf("workbook and dataset schema are required")
	}

	doc := etree.NewDocument()
	workbook := doc.CreateElement("workbook")
	workbook.CreateAttr("version", b.spec.Version)
	workbook.CreateAttr("build-version", BuildVersion)
	workbook.CreateAttr("source-build", BuildVersion)

	workbook.CreateElement("preferences")

	repository := workbook.CreateElement("repository-location")
	repository.CreateAttr("id", "TWB Repository")
	repository.CreateAttr("path", b.spec.Name+".twb")

	datasources := workbook.CreateElement("datasources")
	b.addDatasource(datasources)

	worksheets := workbook.CreateElement("worksheets")
	for _, dashboard := range b.spec.Dashboards {
		for _, ws := range dashboard.Worksheets {
			b.addWorksheet(worksheets, ws)
		}
	}

	dashboards := workbook.CreateElement("dashboards")
	for _, dashboard := range b.spec.Dashboards {
		b.addDashboard(dashboards, dashboard)
	}

	windows := workbook.CreateElement("windows")
	b.addWindow(windows)

	return prettify(doc)
}

// addDatasource writes the embedded datasource: connection, one metadata record
// per column then per calculated field, and the matching column instances
func (b *xmlBuilder) addDatasource(parent *etree.Element) {
	datasource := parent.CreateElement("datasource")
	datasource.CreateAttr("caption", b.schema.Name)
	datasource.CreateAttr("name", b.datasourceName)
	datasource.CreateAttr("version", DatasourceVersion)

	connection := datasource.CreateElement("connection")
	connection.CreateAttr("class", "federated")

	namedConnections := connection.CreateElement("named-connections")
	named := namedConnections.CreateElement("named-connection")
	named.CreateAttr("caption", b.schema.Name)
	named.CreateAttr("name", "textscan")
	b.addTextscanConnection(named)

	relation := connection.CreateElement("relation")
	relation.CreateAttr("connection", "textscan")
	relation.CreateAttr("name", b.schema.Name+".csv")
	relation.CreateAttr("table", "["+b.schema.Name+".csv]")
	relation.CreateAttr("type", "table")

	addFieldMetadata(datasource, b.schema)
}

// addTextscanConnection points at the dataset CSV inside the output directory
func (b *xmlBuilder) addTextscanConnection(parent *etree.Element) {
	conn := parent.CreateElement("connection")
	conn.CreateAttr("class", "textscan")
	conn.CreateAttr("directory", b.outputDir)
	conn.CreateAttr("filename", b.schema.Name+".csv")
	conn.CreateAttr("password", "")
	conn.CreateAttr("server", "")
}

// addFieldMetadata writes metadata-records and column-instances for every field
func addFieldMetadata(datasource *etree.Element, schema *models.DatasetSchema) {
	records := datasource.CreateElement("metadata-records")
	for i, col := range schema.Columns {
		record := addMetadataRecord(records, col.Name, col.DataType, i, col.RecommendedRole == models.RoleMeasure)
		record.CreateElement("contains-null").SetText(strconv.FormatBool(col.NullCount > 0))
	}
	for i, cf := range schema.CalculatedFields {
		record := addMetadataRecord(records, cf.Name, cf.DataType, len(schema.Columns)+i, cf.EffectiveRole() == models.RoleMeasure)
		record.CreateElement("contains-null").SetText("false")
		calculation := record.CreateElement("calculation")
		calculation.CreateAttr("formula", cf.Formula)
		calculation.CreateAttr("type", "tableau")
	}

	instances := datasource.CreateElement("column-instances")
	for _, col := range schema.Columns {
		addColumnInstance(instances, col.Name, "None", col.RecommendedRole)
	}
	for _, cf := range schema.CalculatedFields {
		addColumnInstance(instances, cf.Name, "Calculation", cf.EffectiveRole())
	}
}

func addMetadataRecord(parent *etree.Element, name string, dataType models.DataType, ordinal int, measure bool) *etree.Element {
	tableauType := TableauType(dataType)
	aggregation := "Count"
	if measure {
		aggregation = "Sum"
	}

	record := parent.CreateElement("metadata-record")
	record.CreateAttr("class", "column")
	record.CreateElement("remote-name").SetText(name)
	record.CreateElement("remote-type").SetText(tableauType)
	record.CreateElement("local-name").SetText("[" + name + "]")
	record.CreateElement("parent-name").SetText("[" + name + "]")
	record.CreateElement("remote-alias").SetText(name)
	record.CreateElement("ordinal").SetText(strconv.Itoa(ordinal))
	record.CreateElement("local-type").SetText(tableauType)
	record.CreateElement("aggregation").SetText(aggregation)
	return record
}

func addColumnInstance(parent *etree.Element, name, derivation string, role models.Role) {
	instanceType := "quantitative"
	if role == models.RoleDimension {
		instanceType = "nominal"
	}

	instance := parent.CreateElement("column-instance")
	instance.CreateAttr("column", "["+name+"]")
	instance.CreateAttr("derivation", derivation)
	instance.CreateAttr("name", "["+name+"]")
	instance.CreateAttr("pivot", "key")
	instance.CreateAttr("type", instanceType)
}

// addWorksheet writes one worksheet with its view, mark, encodings and title
func (b *xmlBuilder) addWorksheet(parent *etree.Element, ws models.WorksheetSpec) {
	viz := ws.Visualization

	worksheet := parent.CreateElement("worksheet")
	worksheet.CreateAttr("name", ws.Name)

	table := worksheet.CreateElement("table")
	table.CreateAttr("name", ws.Name)
	table.CreateAttr("show-empty", "true")

	view := table.CreateElement("view")
	datasources := view.CreateElement("datasources")
	ref := datasources.CreateElement("datasource")
	ref.CreateAttr("caption", b.schema.Name)
	ref.CreateAttr("name", b.datasourceName)

	view.CreateElement("aggregation").CreateAttr("value", "true")

	pane := view.CreateElement("panes").CreateElement("pane")
	pane.CreateAttr("selection-relaxation-option", "selection-relaxation-allow")
	pane.CreateElement("view").CreateAttr("name", viz.Title)
	pane.CreateElement("mark").CreateAttr("class", MarkClass(viz.ChartType))

	encodings := pane.CreateElement("encodings")
	for _, field := range viz.YAxis {
		b.addEncoding(encodings, "rows", field, viz.AggregationType)
	}
	for _, field := range viz.XAxis {
		b.addEncoding(encodings, "columns", field, models.AggregationNone)
	}
	if viz.ColorField != "" {
		b.addEncoding(encodings, "color", viz.ColorField, models.AggregationNone)
	}
	if viz.SizeField != "" {
		b.addEncoding(encodings, "size", viz.SizeField, viz.AggregationType)
	}

	title := worksheet.CreateElement("layout-options").CreateElement("title")
	title.CreateElement("formatted-text").CreateElement("run").SetText(viz.Title)
}

func (b *xmlBuilder) addEncoding(parent *etree.Element, shelf, field string, agg models.AggregationType) {
	column := parent.CreateElement(shelf).CreateElement("column")
	column.SetText(fmt.Sprintf("[%s].[%s]", b.datasourceName, field))
	if name, ok := aggregationName(agg); ok {
		column.CreateAttr("aggregation", name)
	}
}

// addDashboard writes the canvas size, one zone per worksheet and the phone layout
func (b *xmlBuilder) addDashboard(parent *etree.Element, dashboard models.DashboardSpec) {
	el := parent.CreateElement("dashboard")
	el.CreateAttr("name", dashboard.Name)

	size := el.CreateElement("size")
	size.CreateAttr("maxheight", strconv.Itoa(dashboard.Dimensions.Height))
	size.CreateAttr("maxwidth", strconv.Itoa(dashboard.Dimensions.Width))

	view := el.CreateElement("view")
	zones := view.CreateElement("zones")

	positions, warnings := ZonePositions(dashboard)
	b.warnings = append(b.warnings, warnings...)

	for i, ws := range dashboard.Worksheets {
		pos := positions[i]
		zone := zones.CreateElement("zone")
		zone.CreateAttr("id", strconv.Itoa(i))
		zone.CreateAttr("type", "layout-basic")
		zone.CreateAttr("x", strconv.Itoa(pos.X))
		zone.CreateAttr("y", strconv.Itoa(pos.Y))
		zone.CreateAttr("w", strconv.Itoa(pos.W))
		zone.CreateAttr("h", strconv.Itoa(pos.H))
		zone.CreateElement("worksheet").CreateAttr("name", ws.Name)
	}

	layout := view.CreateElement("devicelayouts").CreateElement("devicelayout")
	layout.CreateAttr("auto-generated", "true")
	layout.CreateAttr("name", "Phone")
}

// addWindow opens the first worksheet of the first dashboard
func (b *xmlBuilder) addWindow(parent *etree.Element) {
	name := fallbackSheetName
	if len(b.spec.Dashboards) > 0 && len(b.spec.Dashboards[0].Worksheets) > 0 {
		name = b.spec.Dashboards[0].Worksheets[0].Name
	}

	window := parent.CreateElement("window")
	window.CreateAttr("class", "worksheet")
	window.CreateAttr("maximized", "true")
	window.CreateAttr("name", name)

	edge := window.CreateElement("cards").CreateElement("edge")
	edge.CreateAttr("name", "left")
	strip := edge.CreateElement("strip")
	strip.CreateAttr("size", "160")
	strip.CreateElement("card").CreateAttr("type", "data")
}

// BuildDatasourceXML renders the standalone datasource document packaged in .twbx
// files. It carries the same field metadata as the embedded datasource.
func BuildDatasourceXML(schema *models.DatasetSchema, outputDir string) (string, error) {
	if schema == nil {
		return "", fmt.Errorf("dataset schema is required")
	}

	doc := etree.NewDocument()
	datasource := doc.CreateElement("datasource")
	datasource.CreateAttr("formatted-name", schema.Name)
	datasource.CreateAttr("inline", "true")
	datasource.CreateAttr("source-platform", "win")
	datasource.CreateAttr("version", DatasourceVersion)

	connection := datasource.CreateElement("connection")
	connection.CreateAttr("class", "textscan")
	connection.CreateAttr("directory", outputDir)
	connection.CreateAttr("filename", schema.Name+".csv")

	addFieldMetadata(datasource, schema)

	return prettify(doc)
}

// prettify serializes the document, parses it back and re-emits it with
// two-space indentation under an XML declaration
func prettify(doc *etree.Document) (string, error) {
	raw, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to serialize XML: %w", err)
	}

	pretty := etree.NewDocument()
	if err := pretty.ReadFromString(raw); err != nil {
		return "", fmt.Errorf("failed to reparse XML: %w", err)
	}
	pretty.Indent(2)

	body, err := pretty.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to serialize XML: %w", err)
	}
	return xmlHeader + body, nil
}
