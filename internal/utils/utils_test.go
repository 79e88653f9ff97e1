package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitebski/tableau-dashboard-generator/internal/analyzer"
	"github.com/vitebski/tableau-dashboard-generator/internal/store"
	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

func TestSetupLogging(t *testing.T) {
	// Test with default log level
	logger := SetupLogging("")
	if logger == nil {
		t.Error("Expected logger to be created, got nil")
	}

	// Test with specific log level
	logger = SetupLogging("debug")
	if logger.Level != logrus.DebugLevel {
		t.Errorf("Expected log level to be debug, got %s", logger.Level)
	}

	logger = SetupLogging("warn")
	if logger.Level != logrus.WarnLevel {
		t.Errorf("Expected log level to be warn, got %s", logger.Level)
	}

	// Test with environment variable
	t.Setenv("TDG_LOG_LEVEL", "error")
	logger = SetupLogging("")
	if logger.Level != logrus.ErrorLevel {
		t.Errorf("Expected log level to be error, got %s", logger.Level)
	}

	// Test with invalid log level
	logger = SetupLogging("invalid")
	if logger.Level != logrus.InfoLevel {
		t.Errorf("Expected log level to be info for invalid input, got %s", logger.Level)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if value := GetEnvInt("TEST_INT", 0); value != 42 {
		t.Errorf("Expected 42, got %d", value)
	}

	if value := GetEnvInt("NON_EXISTENT_VAR", 10); value != 10 {
		t.Errorf("Expected default value 10, got %d", value)
	}

	t.Setenv("TEST_INVALID_INT", "not_an_int")
	if value := GetEnvInt("TEST_INVALID_INT", 20); value != 20 {
		t.Errorf("Expected default value 20 for invalid int, got %d", value)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	if value := GetEnvFloat("TEST_FLOAT", 0); value != 0.25 {
		t.Errorf("Expected 0.25, got %f", value)
	}

	t.Setenv("TEST_INVALID_FLOAT", "abc")
	if value := GetEnvFloat("TEST_INVALID_FLOAT", 0.5); value != 0.5 {
		t.Errorf("Expected default value 0.5 for invalid float, got %f", value)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TDG_OUTPUT_FOLDER", "")
	t.Setenv("TDG_HISTORY_DB", "")
	t.Setenv("TDG_MAX_SOURCE_ROWS", "")
	t.Setenv("TDG_NULL_THRESHOLD", "")
	t.Setenv("TDG_MAX_FILE_SIZE_MB", "")

	cfg := LoadConfig()
	if cfg.OutputFolder != "output" {
		t.Errorf("Expected default output folder, got %s", cfg.OutputFolder)
	}
	if cfg.HistoryDB != "data/history.db" {
		t.Errorf("Expected default history db, got %s", cfg.HistoryDB)
	}
	if cfg.MaxSourceRows != 100000 {
		t.Errorf("Expected default max rows 100000, got %d", cfg.MaxSourceRows)
	}
	if cfg.MaxFileSizeMB != 100 {
		t.Errorf("Expected default max file size 100MB, got %d", cfg.MaxFileSizeMB)
	}
	if cfg.NullThreshold != analyzer.DefaultNullThreshold {
		t.Errorf("Expected default null threshold, got %f", cfg.NullThreshold)
	}

	t.Setenv("TDG_OUTPUT_FOLDER", "/tmp/dashboards")
	t.Setenv("TDG_MAX_SOURCE_ROWS", "500")
	t.Setenv("TDG_MAX_FILE_SIZE_MB", "5")
	cfg = LoadConfig()
	if cfg.MaxFileSizeMB != 5 {
		t.Errorf("Expected 5, got %d", cfg.MaxFileSizeMB)
	}
	if cfg.OutputFolder != "/tmp/dashboards" {
		t.Errorf("Expected /tmp/dashboards, got %s", cfg.OutputFolder)
	}
	if cfg.MaxSourceRows != 500 {
		t.Errorf("Expected 500, got %d", cfg.MaxSourceRows)
	}
}

func TestLoadEnvironmentVariables(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")

	if LoadEnvironmentVariables(envFile, logger) {
		t.Error("Expected false for a missing env file")
	}

	if err := os.WriteFile(envFile, []byte("TDG_TEST_OUTPUT=loaded\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv("TDG_TEST_OUTPUT", "")
	os.Unsetenv("TDG_TEST_OUTPUT")

	if !LoadEnvironmentVariables(envFile, logger) {
		t.Error("Expected true for an existing env file")
	}
	if value := os.Getenv("TDG_TEST_OUTPUT"); value != "loaded" {
		t.Errorf("Expected TDG_TEST_OUTPUT=loaded, got %q", value)
	}
}

func TestValidateConnectionParams(t *testing.T) {
	if err := ValidateConnectionParams("localhost", "user", "db", "3306"); err != nil {
		t.Errorf("Expected valid params, got %v", err)
	}

	err := ValidateConnectionParams("", "user", "", "3306")
	if err == nil {
		t.Fatal("Expected an error for missing params")
	}
	if !strings.Contains(err.Error(), "host, database") {
		t.Errorf("Expected missing host and database, got %v", err)
	}

	if err := ValidateConnectionParams("localhost", "user", "db", "invalid"); err == nil {
		t.Error("Expected an error for invalid port")
	}
}

func TestPrintReports(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	schema, err := models.NewDatasetSchema("sales", 10, []models.DataColumn{
		{Name: "Region", DataType: models.DataTypeCategorical, UniqueValues: 3, RecommendedRole: models.RoleDimension},
		{Name: "Sales", DataType: models.DataTypeFloat, UniqueValues: 10, RecommendedRole: models.RoleMeasure,
			Statistics: &models.ColumnStatistics{Mean: 5, Std: 1, Min: 1, Max: 9}},
	}, 1.0)
	if err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := schema.AddCalculatedField(models.CalculatedFieldSpec{Name: "Double", Formula: "[Sales] * 2", DataType: models.DataTypeFloat}); err != nil {
		t.Fatalf("Failed to add calculated field: %v", err)
	}

	deps := analyzer.NewFieldDependencyAnalyzer(logger)
	deps.Analyze(schema)

	var buf bytes.Buffer
	PrintSchemaAnalysis(&buf, schema, deps)
	out := buf.String()
	for _, want := range []string{"DATASET SCHEMA ANALYSIS REPORT", "Total rows: 10", "Measures: 1", "Double", "Evaluation order: Double"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected schema report to contain %q", want)
		}
	}

	buf.Reset()
	validation := models.NewValidationResult()
	validation.AddError("Dataset is empty")
	PrintValidationResult(&buf, validation)
	if !strings.Contains(buf.String(), "Dataset is empty") {
		t.Error("Expected validation report to list the error")
	}

	buf.Reset()
	PrintRunHistory(&buf, []store.Run{{ID: "run-1", Dataset: "sales", Status: store.StatusCompleted, CreatedAt: time.Now()}})
	if !strings.Contains(buf.String(), "run-1") {
		t.Error("Expected history report to list the run")
	}

	buf.Reset()
	PrintRunHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No runs recorded") {
		t.Error("Expected empty history message")
	}
}
