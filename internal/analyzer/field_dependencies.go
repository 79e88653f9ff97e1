package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
	"github.com/yourbasic/graph"
)

// fieldRefPattern matches [Field Name] references inside Tableau formulas
var fieldRefPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// FieldReferences returns the distinct field names a formula references, in order of appearance
func FieldReferences(formula string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, match := range fieldRefPattern.FindAllStringSubmatch(formula, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
	}
	return refs
}

// FieldDependencyAnalyzer builds the dependency graph between calculated fields
// and the columns they are computed from
type FieldDependencyAnalyzer struct {
	Fields          []string
	FieldIndexMap   map[string]int
	IndexFieldMap   map[int]string
	Calculated      map[string]bool
	DependencyGraph *graph.Mutable
	Unresolved      map[string][]string
	Logger          *logrus.Logger
}

// NewFieldDependencyAnalyzer creates a new field dependency analyzer
func NewFieldDependencyAnalyzer(logger *logrus.Logger) *FieldDependencyAnalyzer {
	return &FieldDependencyAnalyzer{
		FieldIndexMap: make(map[string]int),
		IndexFieldMap: make(map[int]string),
		Calculated:    make(map[string]bool),
		Unresolved:    make(map[string][]string),
		Logger:        logger,
	}
}

// Analyze indexes every field of the schema and adds an edge from each
// calculated field to every field its formula references
func (fa *FieldDependencyAnalyzer) Analyze(schema *models.DatasetSchema) {
	fa.Fields = schema.FieldNames()
	for i, name := range fa.Fields {
		fa.FieldIndexMap[name] = i
		fa.IndexFieldMap[i] = name
	}
	for _, cf := range schema.CalculatedFields {
		fa.Calculated[cf.Name] = true
	}

	fa.DependencyGraph = graph.New(len(fa.Fields))

	for _, cf := range schema.CalculatedFields {
		src := fa.FieldIndexMap[cf.Name]
		for _, ref := range FieldReferences(cf.Formula) {
			dest, ok := fa.FieldIndexMap[ref]
			if !ok {
				fa.Unresolved[cf.Name] = append(fa.Unresolved[cf.Name], ref)
				continue
			}
			fa.DependencyGraph.Add(src, dest)
		}
	}

	fa.Logger.Debugf("Field dependency graph: %d fields, %d calculated", len(fa.Fields), len(schema.CalculatedFields))
}

// CircularFields returns the groups of calculated fields that depend on each other.
// A field referencing itself forms a group of one.
func (fa *FieldDependencyAnalyzer) CircularFields() [][]string {
	if fa.DependencyGraph == nil {
		return nil
	}

	var cycles [][]string
	for _, component := range graph.StrongComponents(fa.DependencyGraph) {
		if len(component) == 1 && !fa.DependencyGraph.Edge(component[0], component[0]) {
			continue
		}
		names := make([]string, len(component))
		for i, v := range component {
			names[i] = fa.IndexFieldMap[v]
		}
		sort.Strings(names)
		cycles = append(cycles, names)
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}

// EvaluationOrder returns the calculated fields ordered so that every field comes
// after the calculated fields it references. The second result is false when the
// fields contain a cycle.
func (fa *FieldDependencyAnalyzer) EvaluationOrder() ([]string, bool) {
	if fa.DependencyGraph == nil {
		return nil, true
	}

	order, ok := graph.TopSort(fa.DependencyGraph)
	if !ok {
		return nil, false
	}

	// Edges point from a field to its dependencies, so walk the order backwards
	var fields []string
	for i := len(order) - 1; i >= 0; i-- {
		name := fa.IndexFieldMap[order[i]]
		if fa.Calculated[name] {
			fields = append(fields, name)
		}
	}
	return fields, true
}

// ReferenceWarnings reports field references that do not resolve to a column or
// calculated field of the schema, and calculated fields that depend on each other
func ReferenceWarnings(schema *models.DatasetSchema, analysis *models.AIAnalysisResponse, logger *logrus.Logger) []string {
	warnings := []string{}
	if schema == nil {
		return warnings
	}

	known := make(map[string]bool)
	for _, name := range schema.FieldNames() {
		known[name] = true
	}

	if analysis != nil {
		for _, viz := range analysis.RecommendedVisualizations {
			for _, field := range viz.ReferencedFields() {
				if !known[field] {
					warnings = append(warnings, fmt.Sprintf("Visualization '%s' references unknown field '%s'", viz.Title, field))
				}
			}
		}
		for _, kpi := range analysis.RecommendedKPIs {
			for _, field := range FieldReferences(kpi.Calculation) {
				if !known[field] {
					warnings = append(warnings, fmt.Sprintf("KPI '%s' references unknown field '%s'", kpi.Name, field))
				}
			}
		}
	}

	fa := NewFieldDependencyAnalyzer(logger)
	fa.Analyze(schema)

	for _, cf := range schema.CalculatedFields {
		for _, ref := range fa.Unresolved[cf.Name] {
			warnings = append(warnings, fmt.Sprintf("Calculated field '%s' references unknown field '%s'", cf.Name, ref))
		}
	}
	for _, cycle := range fa.CircularFields() {
		warnings = append(warnings, fmt.Sprintf("Calculated fields form a dependency cycle: %s", strings.Join(cycle, ", ")))
	}

	for _, w := range warnings {
		logger.Warning(w)
	}
	return warnings
}
