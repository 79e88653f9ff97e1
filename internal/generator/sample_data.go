package generator

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"

	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// MaxSampleRows caps the number of rows written to the sample CSV
const MaxSampleRows = 100

var (
	sampleCategories = []string{"Category A", "Category B", "Category C", "Category D"}
	sampleStartDate  = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// SampleDataGenerator produces the CSV embedded in packaged workbooks
type SampleDataGenerator struct {
	Faker  faker.Faker
	Logger *logrus.Logger
}

// NewSampleDataGenerator creates a new sample data generator
func NewSampleDataGenerator(logger *logrus.Logger) *SampleDataGenerator {
	return &SampleDataGenerator{
		Faker:  faker.New(),
		Logger: logger,
	}
}

// GenerateCSV writes a header of column names in schema order followed by
// min(100, total rows) data rows. Recorded sample values are cycled; columns
// without samples get synthetic values for their type.
func (sg *SampleDataGenerator) GenerateCSV(schema *models.DatasetSchema) (string, error) {
	rows := schema.TotalRows
	if rows > MaxSampleRows {
		rows = MaxSampleRows
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write sample header: %w", err)
	}

	record := make([]string, len(schema.Columns))
	for i := 0; i < rows; i++ {
		for j, col := range schema.Columns {
			record[j] = sg.cellValue(col, i)
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write sample row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush sample data: %w", err)
	}

	sg.Logger.Debugf("Generated %d sample rows for %s", rows, schema.Name)
	return buf.String(), nil
}

// cellValue returns the value of column col in row i
func (sg *SampleDataGenerator) cellValue(col models.DataColumn, i int) string {
	if len(col.SampleValues) > 0 {
		return formatSampleValue(col.SampleValues[i%len(col.SampleValues)])
	}
	return sg.syntheticValue(col, i)
}

// syntheticValue generates a value by column type
func (sg *SampleDataGenerator) syntheticValue(col models.DataColumn, i int) string {
	switch col.DataType {
	case models.DataTypeInteger:
		return strconv.Itoa(sg.Faker.IntBetween(1, 1000))
	case models.DataTypeFloat:
		return strconv.FormatFloat(sg.Faker.Float64(2, 0, 1000), 'f', 2, 64)
	case models.DataTypeString:
		return fmt.Sprintf("%s_%d", col.Name, i)
	case models.DataTypeCategorical:
		return sg.Faker.RandomStringElement(sampleCategories)
	case models.DataTypeDatetime, models.DataTypeDate:
		return sampleStartDate.AddDate(0, 0, i).Format("2006-01-02")
	case models.DataTypeBoolean:
		return strconv.FormatBool(sg.Faker.Boolean().Bool())
	default:
		return fmt.Sprintf("Value_%d", i)
	}
}

func formatSampleValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
