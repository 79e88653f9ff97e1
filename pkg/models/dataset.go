package models

import (
	"time"
)

// MaxSampleValues bounds the number of sample values kept per column
const MaxSampleValues = 5

// ColumnStatistics holds the numeric summary of a column
type ColumnStatistics struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// DataColumn represents a single dataset column with its profile
type DataColumn struct {
	Name            string            `json:"name"`
	DataType        DataType          `json:"data_type"`
	UniqueValues    int               `json:"unique_values"`
	NullCount       int               `json:"null_count"`
	SampleValues    []interface{}     `json:"sample_values"`
	Statistics      *ColumnStatistics `json:"statistics,omitempty"`
	IsKeyField      bool              `json:"is_key_field"`
	RecommendedRole Role              `json:"recommended_role,omitempty"`
}

// Validate checks the column invariants
func (c DataColumn) Validate() error {
	if c.Name == "" {
		return newValidationError("DataColumn", "name", "is required")
	}
	if !c.DataType.IsValid() {
		return newValidationError("DataColumn", "data_type", "unknown data type %q for column %s", c.DataType, c.Name)
	}
	if c.UniqueValues < 0 {
		return newValidationError("DataColumn", "unique_values", "must be non-negative, got %d", c.UniqueValues)
	}
	if c.NullCount < 0 {
		return newValidationError("DataColumn", "null_count", "must be non-negative, got %d", c.NullCount)
	}
	if c.Statistics != nil && !c.DataType.IsNumeric() {
		return newValidationError("DataColumn", "statistics", "only numeric columns carry statistics (column %s is %s)", c.Name, c.DataType)
	}
	switch c.RecommendedRole {
	case "", RoleDimension, RoleMeasure, RoleAttribute:
	default:
		return newValidationError("DataColumn", "recommended_role", "unknown role %q", c.RecommendedRole)
	}
	return nil
}

// CalculatedFieldSpec is a derived field defined by a Tableau formula.
// The formula is carried as-is and never validated here.
type CalculatedFieldSpec struct {
	Name     string   `json:"name"`
	Formula  string   `json:"formula"`
	DataType DataType `json:"data_type"`
	Role     Role     `json:"role,omitempty"`
}

// NewCalculatedField creates a calculated field, defaulting the role to measure
func NewCalculatedField(name, formula string, dataType DataType, role Role) (CalculatedFieldSpec, error) {
	cf := CalculatedFieldSpec{Name: name, Formula: formula, DataType: dataType, Role: role}
	if cf.Role == "" {
		cf.Role = RoleMeasure
	}
	return cf, cf.Validate()
}

// Validate checks the calculated field invariants
func (cf CalculatedFieldSpec) Validate() error {
	if cf.Name == "" {
		return newValidationError("CalculatedFieldSpec", "name", "is required")
	}
	if cf.Formula == "" {
		return newValidationError("CalculatedFieldSpec", "formula", "is required for %s", cf.Name)
	}
	if !cf.DataType.IsValid() {
		return newValidationError("CalculatedFieldSpec", "data_type", "unknown data type %q", cf.DataType)
	}
	switch cf.Role {
	case "", RoleDimension, RoleMeasure:
	default:
		return newValidationError("CalculatedFieldSpec", "role", "must be dimension or measure, got %q", cf.Role)
	}
	return nil
}

// EffectiveRole returns the role, treating an unset role as measure
func (cf CalculatedFieldSpec) EffectiveRole() Role {
	if cf.Role == "" {
		return RoleMeasure
	}
	return cf.Role
}

// DatasetSchema describes the shape and quality of a tabular dataset.
//
// The schema is created once per source and threaded through analysis and
// generation by pointer. Only CalculatedFields changes after creation, and only
// by appending through AddCalculatedField.
type DatasetSchema struct {
	Name             string                `json:"name"`
	TotalRows        int                   `json:"total_rows"`
	TotalColumns     int                   `json:"total_columns"`
	Columns          []DataColumn          `json:"columns"`
	DataQualityScore float64               `json:"data_quality_score"`
	BusinessContext  string                `json:"business_context,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	CalculatedFields []CalculatedFieldSpec `json:"calculated_fields"`
}

// NewDatasetSchema creates a validated schema for the given columns
func NewDatasetSchema(name string, totalRows int, columns []DataColumn, qualityScore float64) (*DatasetSchema, error) {
	schema := &DatasetSchema{
		Name:             name,
		TotalRows:        totalRows,
		TotalColumns:     len(columns),
		Columns:          columns,
		DataQualityScore: qualityScore,
		CreatedAt:        time.Now(),
		CalculatedFields: []CalculatedFieldSpec{},
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

// Validate checks the schema invariants and those of every column and calculated field
func (s *DatasetSchema) Validate() error {
	if s.Name == "" {
		return newValidationError("DatasetSchema", "name", "is required")
	}
	if s.TotalRows < 0 {
		return newValidationError("DatasetSchema", "total_rows", "must be non-negative, got %d", s.TotalRows)
	}
	if s.TotalColumns < 0 {
		return newValidationError("DatasetSchema", "total_columns", "must be non-negative, got %d", s.TotalColumns)
	}
	if s.DataQualityScore < 0 || s.DataQualityScore > 1 {
		return newValidationError("DatasetSchema", "data_quality_score", "must be within [0,1], got %v", s.DataQualityScore)
	}
	seen := make(map[string]bool, len(s.Columns)+len(s.CalculatedFields))
	for _, col := range s.Columns {
		if err := col.Validate(); err != nil {
			return err
		}
		if seen[col.Name] {
			return newValidationError("DatasetSchema", "columns", "duplicate field name %q", col.Name)
		}
		seen[col.Name] = true
	}
	for _, cf := range s.CalculatedFields {
		if err := cf.Validate(); err != nil {
			return err
		}
		if seen[cf.Name] {
			return newValidationError("DatasetSchema", "calculated_fields", "duplicate field name %q", cf.Name)
		}
		seen[cf.Name] = true
	}
	return nil
}

// AddCalculatedField validates and appends a calculated field
func (s *DatasetSchema) AddCalculatedField(cf CalculatedFieldSpec) error {
	if cf.Role == "" {
		cf.Role = RoleMeasure
	}
	if err := cf.Validate(); err != nil {
		return err
	}
	for _, name := range s.FieldNames() {
		if name == cf.Name {
			return newValidationError("DatasetSchema", "calculated_fields", "duplicate field name %q", cf.Name)
		}
	}
	s.CalculatedFields = append(s.CalculatedFields, cf)
	return nil
}

// Column returns the column with the given name
func (s *DatasetSchema) Column(name string) (DataColumn, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return DataColumn{}, false
}

// FieldNames returns the names of all columns followed by all calculated fields
func (s *DatasetSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Columns)+len(s.CalculatedFields))
	for _, col := range s.Columns {
		names = append(names, col.Name)
	}
	for _, cf := range s.CalculatedFields {
		names = append(names, cf.Name)
	}
	return names
}
