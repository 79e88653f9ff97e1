package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vitebski/tableau-dashboard-generator/internal/analyzer"
	"github.com/vitebski/tableau-dashboard-generator/internal/connector"
	"github.com/vitebski/tableau-dashboard-generator/internal/generator"
	"github.com/vitebski/tableau-dashboard-generator/internal/store"
	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// Step names the stage a run is in
type Step string

const (
	StepValidateInput    Step = "validate_input"
	StepAnalyzeData      Step = "analyze_data"
	StepGenerateWorkbook Step = "generate_workbook"
	StepFinalizeResult   Step = "finalize_result"
	StepHandleError      Step = "handle_error"
)

// lowQualityThreshold is the data quality score below which a run warns
const lowQualityThreshold = 0.5

// Input is everything a run needs besides its collaborators
type Input struct {
	Table             *connector.Table
	Source            string
	Analysis          *models.AIAnalysisResponse
	CalculatedFields  []models.CalculatedFieldSpec
	BusinessContext   string
	UserPreferences   map[string]interface{}
	OutputFormat      models.OutputFormat
	IncludeSampleData bool
}

// State tracks one run from validation to its final result
type State struct {
	ID          string
	CurrentStep Step
	StartTime   time.Time
	Validation  *models.ValidationResult
	Schema      *models.DatasetSchema
	Analysis    *models.AIAnalysisResponse
	Result      *models.GenerationResult
	Errors      []string
	Warnings    []string
}

// Success reports whether the run produced a workbook without errors
func (s *State) Success() bool {
	return len(s.Errors) == 0 && s.Result != nil && s.Result.Success
}

// DashboardWorkflow runs validation, analysis and generation for a table
type DashboardWorkflow struct {
	SchemaAnalyzer *analyzer.SchemaAnalyzer
	Generator      *generator.WorkbookGenerator
	History        *store.HistoryStore
	Logger         *logrus.Logger
}

// NewDashboardWorkflow creates a new workflow. history may be nil to skip recording runs.
func NewDashboardWorkflow(
	schemaAnalyzer *analyzer.SchemaAnalyzer,
	workbookGenerator *generator.WorkbookGenerator,
	history *store.HistoryStore,
	logger *logrus.Logger,
) *DashboardWorkflow {
	return &DashboardWorkflow{
		SchemaAnalyzer: schemaAnalyzer,
		Generator:      workbookGenerator,
		History:        history,
		Logger:         logger,
	}
}

// Run executes every stage in order, stopping at the first stage that fails
func (dw *DashboardWorkflow) Run(in Input) *State {
	state := &State{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
		Errors:    []string{},
		Warnings:  []string{},
	}

	if in.OutputFormat == "" {
		in.OutputFormat = models.FormatTWBX
	}

	dataset := ""
	if in.Table != nil {
		dataset = in.Table.Name
	}
	if dw.History != nil {
		if err := dw.History.SaveRun(state.ID, dataset, in.Source, in.OutputFormat); err != nil {
			dw.Logger.Warningf("[%s] Could not record run: %v", state.ID, err)
		}
	}

	stages := []func(*State, Input) bool{
		dw.validateInput,
		dw.analyzeData,
		dw.generateWorkbook,
	}
	for _, stage := range stages {
		if !stage(state, in) {
			dw.handleError(state)
			return state
		}
	}

	dw.finalizeResult(state)
	return state
}

// validateInput checks the source table before any schema is built
func (dw *DashboardWorkflow) validateInput(state *State, in Input) bool {
	dw.enterStep(state, StepValidateInput, store.StatusValidating)
	dw.Logger.Infof("[%s] Validating input data", state.ID)

	if in.Table == nil {
		state.Errors = append(state.Errors, "Dataset is required")
		return false
	}

	state.Validation = dw.SchemaAnalyzer.ValidateTable(in.Table)
	state.Warnings = append(state.Warnings, state.Validation.Warnings...)
	if !state.Validation.IsValid {
		state.Errors = append(state.Errors, state.Validation.Errors...)
		return false
	}

	dw.Logger.Infof("[%s] Input validation completed successfully", state.ID)
	return true
}

// analyzeData infers the schema and settles on the recommendations to render
func (dw *DashboardWorkflow) analyzeData(state *State, in Input) bool {
	dw.enterStep(state, StepAnalyzeData, store.StatusAnalyzing)
	dw.Logger.Infof("[%s] Starting data analysis", state.ID)

	schema, err := dw.SchemaAnalyzer.InferSchema(in.Table)
	if err != nil {
		state.Errors = append(state.Errors, fmt.Sprintf("Data analysis failed: %v", err))
		return false
	}
	schema.BusinessContext = in.BusinessContext
	for _, cf := range in.CalculatedFields {
		if err := schema.AddCalculatedField(cf); err != nil {
			state.Errors = append(state.Errors, fmt.Sprintf("Invalid calculated field: %v", err))
			return false
		}
	}
	state.Schema = schema

	if schema.DataQualityScore < lowQualityThreshold {
		state.Warnings = append(state.Warnings, fmt.Sprintf("Low data quality score: %.1f%%", schema.DataQualityScore*100))
	}

	if in.Analysis != nil {
		state.Analysis = in.Analysis
	} else {
		dw.Logger.Infof("[%s] No recommender output supplied, using rule-based recommendations", state.ID)
		state.Analysis = analyzer.DefaultAnalysis(schema)
	}

	dw.Logger.Debugf("[%s] Using %d KPIs and %d visualizations", state.ID,
		len(state.Analysis.RecommendedKPIs), len(state.Analysis.RecommendedVisualizations))
	return true
}

// generateWorkbook builds the request and hands it to the generator
func (dw *DashboardWorkflow) generateWorkbook(state *State, in Input) bool {
	dw.enterStep(state, StepGenerateWorkbook, store.StatusGenerating)
	dw.Logger.Infof("[%s] Starting workbook generation", state.ID)

	req, err := models.NewGenerationRequest(state.Schema, state.Analysis)
	if err != nil {
		state.Errors = append(state.Errors, fmt.Sprintf("Invalid generation request: %v", err))
		return false
	}
	req.OutputFormat = in.OutputFormat
	req.IncludeSampleData = in.IncludeSampleData
	if in.UserPreferences != nil {
		req.UserPreferences = in.UserPreferences
	}
	if err := req.Validate(); err != nil {
		state.Errors = append(state.Errors, fmt.Sprintf("Invalid generation request: %v", err))
		return false
	}

	result := dw.Generator.GenerateWorkbook(req)
	state.Result = &result
	state.Warnings = append(state.Warnings, result.Warnings...)

	if dw.History != nil {
		if err := dw.History.CompleteRun(state.ID, result); err != nil {
			dw.Logger.Warningf("[%s] Could not record result: %v", state.ID, err)
		}
	}

	if !result.Success {
		state.Errors = append(state.Errors, fmt.Sprintf("Workbook generation failed: %s", result.Message()))
		return false
	}

	dw.Logger.Infof("[%s] Workbook generated successfully: %s", state.ID, result.FilePath)
	return true
}

// finalizeResult logs the outcome of a successful run
func (dw *DashboardWorkflow) finalizeResult(state *State) {
	state.CurrentStep = StepFinalizeResult
	elapsed := time.Since(state.StartTime).Seconds()

	spec := state.Result.WorkbookSpec
	dw.Logger.Infof("[%s] Workflow completed successfully in %.1fs", state.ID, elapsed)
	dw.Logger.Infof("[%s] Generated workbook with %d dashboard(s) and %d worksheet(s)",
		state.ID, len(spec.Dashboards), spec.WorksheetCount())
	if len(state.Warnings) > 0 {
		dw.Logger.Warningf("[%s] Generated with %d warnings", state.ID, len(state.Warnings))
	}
}

// handleError logs every error and warning and records the failure
func (dw *DashboardWorkflow) handleError(state *State) {
	failedStep := state.CurrentStep
	state.CurrentStep = StepHandleError

	for _, e := range state.Errors {
		dw.Logger.Errorf("[%s] Error: %s", state.ID, e)
	}
	for _, w := range state.Warnings {
		dw.Logger.Warningf("[%s] Warning: %s", state.ID, w)
	}

	if dw.History != nil && len(state.Errors) > 0 {
		if err := dw.History.FailRun(state.ID, fmt.Errorf("%s: %s", failedStep, state.Errors[0])); err != nil {
			dw.Logger.Warningf("[%s] Could not record failure: %v", state.ID, err)
		}
	}

	dw.Logger.Errorf("[%s] Workflow failed after %.1fs", state.ID, time.Since(state.StartTime).Seconds())
}

func (dw *DashboardWorkflow) enterStep(state *State, step Step, status store.RunStatus) {
	state.CurrentStep = step
	if dw.History != nil {
		if err := dw.History.UpdateRunStatus(state.ID, status); err != nil {
			dw.Logger.Warningf("[%s] Could not update run status: %v", state.ID, err)
		}
	}
}
