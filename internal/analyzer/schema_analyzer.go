package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/tableau-dashboard-generator/internal/connector"
	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

const (
	// DefaultNullThreshold is the share of missing cells above which validation warns
	DefaultNullThreshold = 0.3

	categoricalLimit     = 50
	highCardinalityLimit = 100
	keyFieldRatio        = 0.8
	largeDatasetRows     = 1000000
	manyColumnsLimit     = 50
)

// nullMarkers are cell values treated as missing, compared case-insensitively
var nullMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"#n/a": true,
	"nan":  true,
	"null": true,
	"none": true,
	"<na>": true,
}

// dateLayouts are tried in order when detecting datetime columns
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// SchemaAnalyzer profiles tables into dataset schemas and checks their suitability
type SchemaAnalyzer struct {
	NullThreshold float64
	Logger        *logrus.Logger
}

// NewSchemaAnalyzer creates a new schema analyzer
func NewSchemaAnalyzer(logger *logrus.Logger) *SchemaAnalyzer {
	return &SchemaAnalyzer{
		NullThreshold: DefaultNullThreshold,
		Logger:        logger,
	}
}

// columnProfile is the intermediate result of scanning one column
type columnProfile struct {
	name     string
	dataType models.DataType
	values   []string
	nulls    int
	unique   int
}

// InferSchema builds a dataset schema from a table.
// Column types are inferred from the cell text; numeric columns get statistics
// and the measure role, everything else is a dimension.
func (sa *SchemaAnalyzer) InferSchema(table *connector.Table) (*models.DatasetSchema, error) {
	if table == nil {
		return nil, fmt.Errorf("no table to analyze")
	}

	rows := table.NumRows()
	columns := make([]models.DataColumn, 0, len(table.Headers))
	totalNulls := 0

	for i, header := range table.Headers {
		profile := profileColumn(header, table.Column(i))
		totalNulls += profile.nulls

		col := models.DataColumn{
			Name:            profile.name,
			DataType:        profile.dataType,
			UniqueValues:    profile.unique,
			NullCount:       profile.nulls,
			SampleValues:    sampleValues(profile),
			IsKeyField:      rows > 0 && float64(profile.unique) > keyFieldRatio*float64(rows),
			RecommendedRole: models.RoleDimension,
		}
		if profile.dataType.IsNumeric() {
			col.Statistics = computeStatistics(profile.values)
			col.RecommendedRole = models.RoleMeasure
		}

		sa.Logger.Debugf("Column %s: type=%s unique=%d nulls=%d key=%v",
			col.Name, col.DataType, col.UniqueValues, col.NullCount, col.IsKeyField)
		columns = append(columns, col)
	}

	quality := 0.0
	if cells := rows * len(table.Headers); cells > 0 {
		quality = 1 - float64(totalNulls)/float64(cells)
	}

	schema, err := models.NewDatasetSchema(table.Name, rows, columns, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema for %s: %w", table.Name, err)
	}

	sa.Logger.Infof("Inferred schema for %s: %d rows, %d columns, quality %.1f%%",
		schema.Name, schema.TotalRows, schema.TotalColumns, schema.DataQualityScore*100)
	return schema, nil
}

// ValidateTable checks whether a table is suitable for dashboard generation
func (sa *SchemaAnalyzer) ValidateTable(table *connector.Table) *models.ValidationResult {
	result := models.NewValidationResult()

	if table == nil || table.NumRows() == 0 || len(table.Headers) == 0 {
		result.AddError("Dataset is empty")
		return result
	}

	rows := table.NumRows()
	if rows < 2 {
		result.AddWarning("Dataset has very few rows (less than 2)")
	}

	profiles := make([]columnProfile, len(table.Headers))
	totalNulls := 0
	for i, header := range table.Headers {
		profiles[i] = profileColumn(header, table.Column(i))
		totalNulls += profiles[i].nulls
	}

	nullShare := float64(totalNulls) / float64(rows*len(table.Headers))
	if nullShare > sa.NullThreshold {
		result.AddWarning(fmt.Sprintf("High percentage of missing values: %.1f%%", nullShare*100))
		result.AddSuggestion("Consider data cleaning or imputation")
	}

	hasNumericOrDate := false
	for _, p := range profiles {
		if p.dataType.IsNumeric() || p.dataType == models.DataTypeDatetime {
			hasNumericOrDate = true
			break
		}
	}
	if !hasNumericOrDate {
		result.AddWarning("No numeric or datetime columns found - limited visualization options")
	}

	for _, p := range profiles {
		textual := p.dataType == models.DataTypeString || p.dataType == models.DataTypeCategorical
		if textual && p.unique > highCardinalityLimit {
			result.AddWarning(fmt.Sprintf("Column '%s' has high cardinality (%d unique values)", p.name, p.unique))
			result.AddSuggestion(fmt.Sprintf("Consider grouping or filtering values in '%s'", p.name))
		}
		if p.unique == 1 {
			result.AddWarning(fmt.Sprintf("Column '%s' has only one unique value", p.name))
			result.AddSuggestion(fmt.Sprintf("Consider removing constant column '%s'", p.name))
		}
		if p.unique == rows && rows > 1 {
			result.AddSuggestion(fmt.Sprintf("Column '%s' appears to be an identifier - may not be useful for visualization", p.name))
		}
		if strings.TrimSpace(p.name) != p.name || strings.Contains(p.name, " ") {
			result.AddSuggestion(fmt.Sprintf("Column '%s' has spaces or leading/trailing whitespace", p.name))
		}
	}

	if rows > largeDatasetRows {
		result.AddWarning(fmt.Sprintf("Large dataset (%d rows) may impact performance", rows))
		result.AddSuggestion("Consider data sampling or aggregation for better performance")
	}
	if len(table.Headers) > manyColumnsLimit {
		result.AddWarning(fmt.Sprintf("Many columns (%d) may make dashboard complex", len(table.Headers)))
		result.AddSuggestion("Consider focusing on key columns for better dashboard clarity")
	}

	sa.Logger.Infof("Validation of %s: %d errors, %d warnings, %d suggestions",
		table.Name, len(result.Errors), len(result.Warnings), len(result.Suggestions))
	return result
}

// profileColumn collects non-null values, distinct count and the inferred type
func profileColumn(name string, cells []string) columnProfile {
	p := columnProfile{name: name}
	distinct := make(map[string]bool)
	for _, cell := range cells {
		value := strings.TrimSpace(cell)
		if isNull(value) {
			p.nulls++
			continue
		}
		p.values = append(p.values, value)
		distinct[value] = true
	}
	p.unique = len(distinct)
	p.dataType = inferType(p.values, p.unique)
	return p
}

func isNull(value string) bool {
	return nullMarkers[strings.ToLower(value)]
}

// inferType picks the narrowest type every value parses as
func inferType(values []string, unique int) models.DataType {
	if len(values) == 0 {
		return models.DataTypeString
	}
	switch {
	case allMatch(values, isInteger):
		return models.DataTypeInteger
	case allMatch(values, isFloat):
		return models.DataTypeFloat
	case allMatch(values, isBoolean):
		return models.DataTypeBoolean
	case allMatch(values, isDatetime):
		return models.DataTypeDatetime
	case unique < categoricalLimit:
		return models.DataTypeCategorical
	default:
		return models.DataTypeString
	}
}

func allMatch(values []string, match func(string) bool) bool {
	for _, v := range values {
		if !match(v) {
			return false
		}
	}
	return true
}

func isInteger(v string) bool {
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}

func isFloat(v string) bool {
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func isBoolean(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false":
		return true
	}
	return false
}

func isDatetime(v string) bool {
	_, ok := parseDatetime(v)
	return ok
}

func parseDatetime(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sampleValues returns the first non-null values converted to the column type
func sampleValues(p columnProfile) []interface{} {
	n := len(p.values)
	if n > models.MaxSampleValues {
		n = models.MaxSampleValues
	}
	samples := make([]interface{}, 0, n)
	for _, v := range p.values[:n] {
		samples = append(samples, typedValue(p.dataType, v))
	}
	return samples
}

func typedValue(dataType models.DataType, v string) interface{} {
	switch dataType {
	case models.DataTypeInteger:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	case models.DataTypeFloat:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case models.DataTypeBoolean:
		return strings.EqualFold(v, "true")
	case models.DataTypeDatetime:
		if t, ok := parseDatetime(v); ok {
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
				return t.Format("2006-01-02")
			}
			return t.Format("2006-01-02 15:04:05")
		}
	}
	return v
}

// computeStatistics returns mean, sample standard deviation, min and max
func computeStatistics(values []string) *models.ColumnStatistics {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return &models.ColumnStatistics{}
	}

	stats := &models.ColumnStatistics{Min: nums[0], Max: nums[0]}
	sum := 0.0
	for _, f := range nums {
		sum += f
		stats.Min = math.Min(stats.Min, f)
		stats.Max = math.Max(stats.Max, f)
	}
	stats.Mean = sum / float64(len(nums))

	if len(nums) > 1 {
		variance := 0.0
		for _, f := range nums {
			variance += (f - stats.Mean) * (f - stats.Mean)
		}
		stats.Std = math.Sqrt(variance / float64(len(nums)-1))
	}
	return stats
}
