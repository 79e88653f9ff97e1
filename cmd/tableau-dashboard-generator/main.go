package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vitebski/tableau-dashboard-generator/internal/analyzer"
	"github.com/vitebski/tableau-dashboard-generator/internal/connector"
	"github.com/vitebski/tableau-dashboard-generator/internal/generator"
	"github.com/vitebski/tableau-dashboard-generator/internal/store"
	"github.com/vitebski/tableau-dashboard-generator/internal/utils"
	"github.com/vitebski/tableau-dashboard-generator/internal/workflow"
	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// sourceFlags selects where the dataset is read from
type sourceFlags struct {
	input    string
	table    string
	host     string
	user     string
	password string
	database string
	port     string
}

func main() {
	var (
		envFile  string
		logLevel string
		source   sourceFlags
	)

	rootCmd := &cobra.Command{
		Use:   "tableau-dashboard-generator",
		Short: "Generate Tableau workbooks from tabular data",
		Long: `Tableau Dashboard Generator

A Go tool that analyzes a CSV, Excel, JSON or MySQL dataset and packages
recommended visualizations into a Tableau workbook (.twb or .twbx).`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	addSourceFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&source.input, "input", "i", "", "Path to a CSV, Excel or JSON data file")
		cmd.Flags().StringVarP(&source.table, "mysql-table", "t", "", "MySQL table to read instead of a file")
		cmd.Flags().StringVarP(&source.host, "host", "H", "", "MySQL host (default: localhost)")
		cmd.Flags().StringVarP(&source.user, "user", "u", "", "MySQL user (default: root)")
		cmd.Flags().StringVarP(&source.password, "password", "p", "", "MySQL password")
		cmd.Flags().StringVarP(&source.database, "database", "d", "", "MySQL database name")
		cmd.Flags().StringVarP(&source.port, "port", "P", "", "MySQL port (default: 3306)")
	}

	setup := func() (*logrus.Logger, utils.Config) {
		logger := utils.SetupLogging(logLevel)
		if utils.LoadEnvironmentVariables(envFile, logger) && logLevel == "" {
			// the .env file may carry TDG_LOG_LEVEL
			logger = utils.SetupLogging("")
		}
		return logger, utils.LoadConfig()
	}

	rootCmd.AddCommand(
		newGenerateCommand(setup, addSourceFlags, &source),
		newAnalyzeCommand(setup, addSourceFlags, &source),
		newHistoryCommand(setup),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newGenerateCommand(
	setup func() (*logrus.Logger, utils.Config),
	addSourceFlags func(*cobra.Command),
	source *sourceFlags,
) *cobra.Command {
	var (
		analysisFile    string
		format          string
		noSampleData    bool
		outputDir       string
		historyDB       string
		businessContext string
		preferences     string
		calculated      []string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Tableau workbook from a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg := setup()
			if outputDir == "" {
				outputDir = cfg.OutputFolder
			}
			if historyDB == "" {
				historyDB = cfg.HistoryDB
			}

			outputFormat := models.OutputFormat(strings.ToLower(format))
			if !outputFormat.IsValid() {
				return fmt.Errorf("unsupported output format: %s", format)
			}

			table, sourceName, err := loadSource(source, cfg, logger)
			if err != nil {
				return err
			}

			var analysis *models.AIAnalysisResponse
			if analysisFile != "" {
				f, err := os.Open(analysisFile)
				if err != nil {
					return fmt.Errorf("failed to open analysis file: %w", err)
				}
				analysis, err = models.DecodeAnalysisResponse(f)
				f.Close()
				if err != nil {
					return err
				}
			}

			var prefs map[string]interface{}
			if preferences != "" {
				if err := json.Unmarshal([]byte(preferences), &prefs); err != nil {
					return fmt.Errorf("invalid preferences JSON: %w", err)
				}
			}

			fields, err := parseCalculatedFields(calculated)
			if err != nil {
				return err
			}

			var history *store.HistoryStore
			if historyDB != "none" {
				history, err = store.OpenHistoryStore(historyDB, logger)
				if err != nil {
					logger.Warningf("Run history disabled: %v", err)
					history = nil
				} else {
					defer history.Close()
				}
			}

			schemaAnalyzer := analyzer.NewSchemaAnalyzer(logger)
			schemaAnalyzer.NullThreshold = cfg.NullThreshold

			dw := workflow.NewDashboardWorkflow(
				schemaAnalyzer,
				generator.NewWorkbookGenerator(outputDir, logger),
				history,
				logger,
			)

			state := dw.Run(workflow.Input{
				Table:             table,
				Source:            sourceName,
				Analysis:          analysis,
				CalculatedFields:  fields,
				BusinessContext:   businessContext,
				UserPreferences:   prefs,
				OutputFormat:      outputFormat,
				IncludeSampleData: !noSampleData,
			})

			if state.Validation != nil {
				utils.PrintValidationResult(os.Stdout, state.Validation)
			}
			utils.PrintGenerationSummary(os.Stdout, state.ID, state.Result, state.Warnings, state.Errors)

			if !state.Success() {
				return fmt.Errorf("dashboard generation failed at %s", state.CurrentStep)
			}
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringVarP(&analysisFile, "analysis", "a", "", "Recommender output JSON (default: rule-based recommendations)")
	cmd.Flags().StringVarP(&format, "format", "f", string(models.FormatTWBX), "Output format (twb, twbx)")
	cmd.Flags().BoolVar(&noSampleData, "no-sample-data", false, "Do not embed a sample CSV in .twbx packages")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default: TDG_OUTPUT_FOLDER or output)")
	cmd.Flags().StringVar(&historyDB, "history-db", "", "Run history database, or none to disable")
	cmd.Flags().StringVarP(&businessContext, "context", "c", "", "Business context for the dataset")
	cmd.Flags().StringVar(&preferences, "preferences", "", `User preferences JSON, e.g. {"color_scheme":"tableau20"}`)
	cmd.Flags().StringArrayVar(&calculated, "calculated-field", nil, "Calculated field as Name=Formula (repeatable)")

	return cmd
}

func newAnalyzeCommand(
	setup func() (*logrus.Logger, utils.Config),
	addSourceFlags func(*cobra.Command),
	source *sourceFlags,
) *cobra.Command {
	var calculated []string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Infer and validate the schema of a dataset without generating a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg := setup()

			table, _, err := loadSource(source, cfg, logger)
			if err != nil {
				return err
			}

			schemaAnalyzer := analyzer.NewSchemaAnalyzer(logger)
			schemaAnalyzer.NullThreshold = cfg.NullThreshold

			validation := schemaAnalyzer.ValidateTable(table)
			utils.PrintValidationResult(os.Stdout, validation)
			if !validation.IsValid {
				return fmt.Errorf("dataset %s is not suitable for dashboard generation", table.Name)
			}

			schema, err := schemaAnalyzer.InferSchema(table)
			if err != nil {
				return err
			}

			fields, err := parseCalculatedFields(calculated)
			if err != nil {
				return err
			}
			for _, cf := range fields {
				if err := schema.AddCalculatedField(cf); err != nil {
					return err
				}
			}

			deps := analyzer.NewFieldDependencyAnalyzer(logger)
			deps.Analyze(schema)
			utils.PrintSchemaAnalysis(os.Stdout, schema, deps)

			logger.Info("Analyze-only mode, exiting without generating a workbook")
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringArrayVar(&calculated, "calculated-field", nil, "Calculated field as Name=Formula (repeatable)")

	return cmd
}

func newHistoryCommand(setup func() (*logrus.Logger, utils.Config)) *cobra.Command {
	var (
		historyDB string
		limit     int
		runID     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded dashboard generation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg := setup()
			if historyDB == "" {
				historyDB = cfg.HistoryDB
			}

			history, err := store.OpenHistoryStore(historyDB, logger)
			if err != nil {
				return err
			}
			defer history.Close()

			if runID != "" {
				run, err := history.GetRun(runID)
				if err != nil {
					return err
				}
				utils.PrintRunHistory(os.Stdout, []store.Run{*run})

				runErrors, err := history.RunErrors(runID)
				if err != nil {
					return err
				}
				for _, e := range runErrors {
					fmt.Printf("  - %s\n", e)
				}
				return nil
			}

			runs, err := history.ListRuns(limit)
			if err != nil {
				return err
			}
			utils.PrintRunHistory(os.Stdout, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&historyDB, "history-db", "", "Run history database (default: TDG_HISTORY_DB or data/history.db)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show a single run and its errors")

	return cmd
}

// loadSource reads the dataset from a file or a MySQL table
func loadSource(source *sourceFlags, cfg utils.Config, logger *logrus.Logger) (*connector.Table, string, error) {
	switch {
	case source.input != "" && source.table != "":
		return nil, "", fmt.Errorf("use either --input or --mysql-table, not both")
	case source.input != "":
		loader := connector.NewFileLoader(logger)
		loader.MaxFileSizeMB = cfg.MaxFileSizeMB
		table, err := loader.Load(source.input)
		if err != nil {
			return nil, "", err
		}
		return table, source.input, nil
	case source.table != "":
		db := connector.NewDatabaseConnector(source.host, source.user, source.password, source.database, source.port, logger)
		if err := utils.ValidateConnectionParams(db.Host, db.User, db.Database, db.Port); err != nil {
			return nil, "", err
		}
		if err := db.Connect(); err != nil {
			return nil, "", fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Disconnect()

		table, err := db.LoadTable(source.table, cfg.MaxSourceRows)
		if err != nil {
			return nil, "", err
		}
		return table, fmt.Sprintf("mysql://%s/%s", db.Database, source.table), nil
	default:
		return nil, "", fmt.Errorf("a data source is required: pass --input or --mysql-table")
	}
}

// parseCalculatedFields turns Name=Formula pairs into calculated fields
func parseCalculatedFields(values []string) ([]models.CalculatedFieldSpec, error) {
	var fields []models.CalculatedFieldSpec
	for _, value := range values {
		parts := strings.SplitN(value, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid calculated field %q, expected Name=Formula", value)
		}
		cf, err := models.NewCalculatedField(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), models.DataTypeFloat, models.RoleMeasure)
		if err != nil {
			return nil, err
		}
		fields = append(fields, cf)
	}
	return fields, nil
}
