package generator

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitebski/tableau-dashboard-generator/internal/analyzer"
	"github.com/vitebski/tableau-dashboard-generator/pkg/models"
)

// WorkbookGenerator turns generation requests into workbook files
type WorkbookGenerator struct {
	OutputDirectory string
	Packager        *Packager
	SampleData      *SampleDataGenerator
	Logger          *logrus.Logger
}

// NewWorkbookGenerator creates a new workbook generator writing into outputDirectory
func NewWorkbookGenerator(outputDirectory string, logger *logrus.Logger) *WorkbookGenerator {
	return &WorkbookGenerator{
		OutputDirectory: outputDirectory,
		Packager:        NewPackager(outputDirectory, logger),
		SampleData:      NewSampleDataGenerator(logger),
		Logger:          logger,
	}
}

// GenerateWorkbook builds, serializes and packages a workbook. It never returns
// an error: any failure, including a panic, becomes an unsuccessful result with
// a placeholder workbook spec.
func (wg *WorkbookGenerator) GenerateWorkbook(req *models.GenerationRequest) (result models.GenerationResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			wg.Logger.Errorf("Workbook generation panicked: %v", r)
			result = failedResult(fmt.Errorf("%v", r), start)
		}
	}()

	if req == nil || req.DatasetSchema == nil {
		return failedResult(fmt.Errorf("generation request has no dataset schema"), start)
	}

	wg.Logger.Infof("Generating %s workbook for dataset %s", req.OutputFormat, req.DatasetSchema.Name)

	spec := BuildWorkbookSpec(req)
	warnings := analyzer.ReferenceWarnings(req.DatasetSchema, req.AIAnalysis, wg.Logger)

	workbookXML, layoutWarnings, err := BuildWorkbookXML(spec, req.DatasetSchema, wg.OutputDirectory)
	if err != nil {
		wg.Logger.Errorf("Failed to build workbook XML: %v", err)
		return failedResult(err, start)
	}
	warnings = append(warnings, layoutWarnings...)

	datasourceXML, err := BuildDatasourceXML(req.DatasetSchema, wg.OutputDirectory)
	if err != nil {
		wg.Logger.Errorf("Failed to build datasource XML: %v", err)
		return failedResult(err, start)
	}

	path, err := wg.packageWorkbook(req, spec, workbookXML, datasourceXML)
	if err != nil {
		wg.Logger.Errorf("Failed to package workbook: %v", err)
		return failedResult(err, start)
	}

	elapsed := time.Since(start).Seconds()
	wg.Logger.Infof("Generated %s in %.3fs with %d warnings", path, elapsed, len(warnings))

	return models.GenerationResult{
		WorkbookSpec:   spec,
		FilePath:       path,
		GenerationTime: elapsed,
		Warnings:       warnings,
		Success:        true,
	}
}

func (wg *WorkbookGenerator) packageWorkbook(req *models.GenerationRequest, spec *models.TableauWorkbookSpec, workbookXML, datasourceXML string) (string, error) {
	if req.OutputFormat == models.FormatTWB {
		return wg.Packager.WriteTWB(spec.Name, workbookXML)
	}

	pkg := Package{
		WorkbookXML:   workbookXML,
		DatasourceXML: datasourceXML,
		DatasetName:   req.DatasetSchema.Name,
		IncludeSample: req.IncludeSampleData,
	}
	if req.IncludeSampleData {
		csv, err := wg.SampleData.GenerateCSV(req.DatasetSchema)
		if err != nil {
			return "", err
		}
		pkg.SampleCSV = csv
	}
	return wg.Packager.WriteTWBX(spec.Name, pkg)
}

// failedResult reports a generation failure with a placeholder workbook spec
func failedResult(err error, start time.Time) models.GenerationResult {
	msg := err.Error()
	return models.GenerationResult{
		WorkbookSpec: &models.TableauWorkbookSpec{
			Name:        "Failed Generation",
			Description: "Generation failed",
			Dashboards:  []models.DashboardSpec{},
			DataSource:  "",
			Version:     models.DefaultTableauVersion,
			CreatedBy:   models.DefaultCreatedBy,
			CreatedAt:   time.Now(),
		},
		GenerationTime: time.Since(start).Seconds(),
		Warnings:       []string{},
		Success:        false,
		ErrorMessage:   &msg,
	}
}
