package models

// GenerationRequest is the input of a single workbook generation
type GenerationRequest struct {
	DatasetSchema     *DatasetSchema         `json:"dataset_schema"`
	AIAnalysis        *AIAnalysisResponse    `json:"ai_analysis"`
	UserPreferences   map[string]interface{} `json:"user_preferences"`
	OutputFormat      OutputFormat           `json:"output_format"`
	IncludeSampleData bool                   `json:"include_sample_data"`
}

// NewGenerationRequest creates a request for a packaged workbook with sample data
func NewGenerationRequest(schema *DatasetSchema, analysis *AIAnalysisResponse) (*GenerationRequest, error) {
	req := &GenerationRequest{
		DatasetSchema:     schema,
		AIAnalysis:        analysis,
		UserPreferences:   map[string]interface{}{},
		OutputFormat:      FormatTWBX,
		IncludeSampleData: true,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks the request and the schema and analysis it carries
func (r *GenerationRequest) Validate() error {
	if r.DatasetSchema == nil {
		return newValidationError("GenerationRequest", "dataset_schema", "is required")
	}
	if r.AIAnalysis == nil {
		return newValidationError("GenerationRequest", "ai_analysis", "is required")
	}
	if !r.OutputFormat.IsValid() {
		return newValidationError("GenerationRequest", "output_format", "must be twb or twbx, got %q", r.OutputFormat)
	}
	if err := r.DatasetSchema.Validate(); err != nil {
		return err
	}
	return r.AIAnalysis.Validate()
}

// GenerationResult is the terminal outcome of a generation.
// ErrorMessage is set if and only if Success is false.
type GenerationResult struct {
	WorkbookSpec   *TableauWorkbookSpec `json:"workbook_spec"`
	FilePath       string               `json:"file_path"`
	GenerationTime float64              `json:"generation_time"`
	Warnings       []string             `json:"warnings"`
	Success        bool                 `json:"success"`
	ErrorMessage   *string              `json:"error_message"`
}

// Message returns the failure message, or an empty string on success
func (r GenerationResult) Message() string {
	if r.ErrorMessage == nil {
		return ""
	}
	return *r.ErrorMessage
}

// ValidationResult collects the outcome of a data validation pass.
// IsValid is false exactly when Errors is non-empty.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// NewValidationResult returns an empty, valid result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:     true,
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}
}

// AddError records an error and marks the result invalid
func (v *ValidationResult) AddError(msg string) {
	v.Errors = append(v.Errors, msg)
	v.IsValid = false
}

// AddWarning records a warning
func (v *ValidationResult) AddWarning(msg string) {
	v.Warnings = append(v.Warnings, msg)
}

// AddSuggestion records a suggestion
func (v *ValidationResult) AddSuggestion(msg string) {
	v.Suggestions = append(v.Suggestions, msg)
}
