package models

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// AIAnalysisRequest is the input handed to a dashboard recommender
type AIAnalysisRequest struct {
	DatasetSchema  *DatasetSchema         `json:"dataset_schema"`
	BusinessGoals  []string               `json:"business_goals"`
	TargetAudience string                 `json:"target_audience"`
	Preferences    map[string]interface{} `json:"preferences"`
	Constraints    map[string]interface{} `json:"constraints"`
}

// Validate checks the request invariants
func (r AIAnalysisRequest) Validate() error {
	if r.DatasetSchema == nil {
		return newValidationError("AIAnalysisRequest", "dataset_schema", "is required")
	}
	if r.TargetAudience == "" {
		return newValidationError("AIAnalysisRequest", "target_audience", "is required")
	}
	return r.DatasetSchema.Validate()
}

// AIRecommendation is a single recommender decision with its confidence
type AIRecommendation struct {
	ConfidenceScore float64  `json:"confidence_score"`
	Reasoning       string   `json:"reasoning"`
	Alternatives    []string `json:"alternatives"`
}

// Validate checks the recommendation invariants
func (r AIRecommendation) Validate() error {
	if r.ConfidenceScore < 0 || r.ConfidenceScore > 1 {
		return newValidationError("AIRecommendation", "confidence_score", "must be within [0,1], got %v", r.ConfidenceScore)
	}
	return nil
}

// AIAnalysisResponse is the recommender output consumed by the generator
type AIAnalysisResponse struct {
	DatasetInsights           map[string]interface{} `json:"dataset_insights"`
	RecommendedKPIs           []KPISpecification     `json:"recommended_kpis"`
	RecommendedVisualizations []VisualizationSpec    `json:"recommended_visualizations"`
	DashboardRecommendations  AIRecommendation       `json:"dashboard_recommendations"`
	LayoutSuggestions         AIRecommendation       `json:"layout_suggestions"`
	ColorSchemeRecommendation AIRecommendation       `json:"color_scheme_recommendation"`
	PerformanceConsiderations []string               `json:"performance_considerations"`
	GeneratedAt               time.Time              `json:"generated_at"`
}

// Validate checks the response and every nested recommendation
func (r *AIAnalysisResponse) Validate() error {
	for _, kpi := range r.RecommendedKPIs {
		if err := kpi.Validate(); err != nil {
			return err
		}
	}
	for _, viz := range r.RecommendedVisualizations {
		if err := viz.Validate(); err != nil {
			return err
		}
	}
	for _, rec := range []AIRecommendation{r.DashboardRecommendations, r.LayoutSuggestions, r.ColorSchemeRecommendation} {
		if err := rec.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DecodeAnalysisResponse reads recommender JSON and validates it
func DecodeAnalysisResponse(r io.Reader) (*AIAnalysisResponse, error) {
	var resp AIAnalysisResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	if resp.DatasetInsights == nil {
		resp.DatasetInsights = map[string]interface{}{}
	}
	if resp.GeneratedAt.IsZero() {
		resp.GeneratedAt = time.Now()
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}
