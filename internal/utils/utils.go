package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/vitebski/tableau-dashboard-generator/internal/analyzer"
	"github.com/vitebski/tableau-dashboard-generator/internal/connector"
	"github.com/vitebski/tableau-dashboard-generator/internal/store"
	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// Config holds the settings read from the environment
type Config struct {
	OutputFolder  string
	HistoryDB     string
	LogLevel      string
	MaxSourceRows int
	MaxFileSizeMB int
	NullThreshold float64
}

// LoadConfig reads the TDG_* environment variables, applying defaults
func LoadConfig() Config {
	output := os.Getenv("TDG_OUTPUT_FOLDER")
	if output == "" {
		output = "output"
	}

	history := os.Getenv("TDG_HISTORY_DB")
	if history == "" {
		history = "data/history.db"
	}

	return Config{
		OutputFolder:  output,
		HistoryDB:     history,
		LogLevel:      os.Getenv("TDG_LOG_LEVEL"),
		MaxSourceRows: GetEnvInt("TDG_MAX_SOURCE_ROWS", 100000),
		MaxFileSizeMB: GetEnvInt("TDG_MAX_FILE_SIZE_MB", connector.DefaultMaxFileSizeMB),
		NullThreshold: GetEnvFloat("TDG_NULL_THRESHOLD", analyzer.DefaultNullThreshold),
	}
}

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	// Get log level from environment variable or parameter
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("TDG_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from a .env file if one exists.
// It returns true when a file was loaded.
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		} else {
			logger.Debugf("No %s file found, using existing environment variables", envFile)
		}
		return false
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
		return false
	}
	logger.Infof("Loaded environment variables from %s", envFile)

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, env := range os.Environ() {
			if !strings.HasPrefix(env, "TDG_") && !strings.HasPrefix(env, "MYSQL_") {
				continue
			}
			parts := strings.SplitN(env, "=", 2)
			if len(parts) != 2 {
				continue
			}
			if parts[0] == "MYSQL_PASSWORD" {
				logger.Debugf("%s=********", parts[0])
			} else {
				logger.Debugf("%s=%s", parts[0], parts[1])
			}
		}
	}

	return true
}

// GetEnvInt gets an integer value from environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// GetEnvFloat gets a float value from environment variable
func GetEnvFloat(varName string, defaultValue float64) float64 {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatValue
}

// ValidateConnectionParams checks the MySQL parameters needed to read a source table
func ValidateConnectionParams(host, user, database, port string) error {
	var missing []string
	if host == "" {
		missing = append(missing, "host")
	}
	if user == "" {
		missing = append(missing, "user")
	}
	if database == "" {
		missing = append(missing, "database")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing MySQL connection parameters: %s", strings.Join(missing, ", "))
	}

	if _, err := strconv.Atoi(port); err != nil {
		return fmt.Errorf("invalid port number: %s", port)
	}
	return nil
}

// PrintSchemaAnalysis prints the inferred schema, its calculated fields and their dependencies
func PrintSchemaAnalysis(w io.Writer, schema *models.DatasetSchema, deps *analyzer.FieldDependencyAnalyzer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "DATASET SCHEMA ANALYSIS REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	measures, dimensions, keys := 0, 0, 0
	for _, col := range schema.Columns {
		if col.RecommendedRole == models.RoleMeasure {
			measures++
		} else {
			dimensions++
		}
		if col.IsKeyField {
			keys++
		}
	}

	fmt.Fprintln(w, "\n1. BASIC STATISTICS")
	fmt.Fprintf(w, "   Dataset: %s\n", schema.Name)
	fmt.Fprintf(w, "   Total rows: %d\n", schema.TotalRows)
	fmt.Fprintf(w, "   Total columns: %d\n", schema.TotalColumns)
	fmt.Fprintf(w, "   Measures: %d\n", measures)
	fmt.Fprintf(w, "   Dimensions: %d\n", dimensions)
	fmt.Fprintf(w, "   Potential key fields: %d\n", keys)
	fmt.Fprintf(w, "   Data quality score: %.1f%%\n", schema.DataQualityScore*100)

	fmt.Fprintln(w, "\n2. COLUMNS")
	for i, col := range schema.Columns {
		line := fmt.Sprintf("   %3d. %s (%s, %s) unique=%d nulls=%d", i+1, col.Name, col.DataType, col.RecommendedRole, col.UniqueValues, col.NullCount)
		if col.IsKeyField {
			line += " [key]"
		}
		if col.Statistics != nil {
			line += fmt.Sprintf(" mean=%.2f std=%.2f min=%.2f max=%.2f", col.Statistics.Mean, col.Statistics.Std, col.Statistics.Min, col.Statistics.Max)
		}
		fmt.Fprintln(w, line)
	}

	if len(schema.CalculatedFields) > 0 {
		fmt.Fprintln(w, "\n3. CALCULATED FIELDS")
		for _, cf := range schema.CalculatedFields {
			fmt.Fprintf(w, "   %s (%s) = %s\n", cf.Name, cf.EffectiveRole(), cf.Formula)
		}

		if deps != nil {
			if order, ok := deps.EvaluationOrder(); ok {
				fmt.Fprintf(w, "\n   Evaluation order: %s\n", strings.Join(order, ", "))
			}
			cycles := deps.CircularFields()
			if len(cycles) > 0 {
				fmt.Fprintln(w, "\n   Circular dependencies:")
				for _, cycle := range cycles {
					fmt.Fprintf(w, "     %s\n", strings.Join(cycle, " <-> "))
				}
			}
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
}

// PrintValidationResult prints the errors, warnings and suggestions of a validation pass
func PrintValidationResult(w io.Writer, result *models.ValidationResult) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "DATA VALIDATION RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if result.IsValid {
		fmt.Fprintln(w, "✅ Dataset is suitable for dashboard generation")
	} else {
		fmt.Fprintf(w, "❌ %d errors:\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "\n⚠️  %d warnings:\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}

	if len(result.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, s := range result.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 50))
}

// PrintGenerationSummary prints the outcome of a dashboard run
func PrintGenerationSummary(w io.Writer, runID string, result *models.GenerationResult, warnings, errors []string) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "DASHBOARD GENERATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Run: %s\n", runID)

	if result != nil && result.Success && result.WorkbookSpec != nil {
		spec := result.WorkbookSpec
		fmt.Fprintf(w, "Workbook: %s\n", spec.Name)
		fmt.Fprintf(w, "File: %s\n", result.FilePath)
		fmt.Fprintf(w, "Dashboards: %d\n", len(spec.Dashboards))
		fmt.Fprintf(w, "Worksheets: %d\n", spec.WorksheetCount())
		fmt.Fprintf(w, "Generation time: %.3fs\n", result.GenerationTime)
	} else {
		fmt.Fprintln(w, "Status: FAILED")
	}

	if len(errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, e := range errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 50))
}

// PrintRunHistory prints recorded runs, most recent first
func PrintRunHistory(w io.Writer, runs []store.Run) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "GENERATION HISTORY")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s  %-10s  %-20s  %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"), run.Status, run.Dataset, run.ID)
		if run.FilePath != "" {
			fmt.Fprintf(w, "    file: %s\n", run.FilePath)
		}
		if run.ErrorMessage != "" {
			fmt.Fprintf(w, "    error: %s\n", run.ErrorMessage)
		}
		if len(run.Warnings) > 0 {
			fmt.Fprintf(w, "    warnings: %d\n", len(run.Warnings))
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 80))
}
