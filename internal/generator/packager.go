package generator

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Fixed entry names inside a packaged workbook
const (
	WorkbookEntry   = "workbook.twb"
	DatasourceEntry = "Data/Datasources/datasource.tds"
)

// SampleDataEntry returns the archive entry of a dataset's sample CSV
func SampleDataEntry(datasetName string) string {
	return "Data/" + datasetName + ".csv"
}

// Package is the content of a packaged workbook
type Package struct {
	WorkbookXML   string
	DatasourceXML string
	DatasetName   string
	SampleCSV     string
	IncludeSample bool
}

type archiveEntry struct {
	name    string
	content string
}

// Packager writes workbook files into an output directory
type Packager struct {
	OutputDirectory string
	Logger          *logrus.Logger
}

// NewPackager creates a new packager
func NewPackager(outputDirectory string, logger *logrus.Logger) *Packager {
	return &Packager{OutputDirectory: outputDirectory, Logger: logger}
}

// WriteTWB writes the workbook XML verbatim to {out}/{name}.twb
func (p *Packager) WriteTWB(name, workbookXML string) (string, error) {
	if err := os.MkdirAll(p.OutputDirectory, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", p.OutputDirectory, err)
	}

	path := filepath.Join(p.OutputDirectory, name+".twb")
	if err := os.WriteFile(path, []byte(workbookXML), 0644); err != nil {
		return "", fmt.Errorf("failed to write workbook %s: %w", path, err)
	}

	p.Logger.Infof("Wrote workbook %s", path)
	return path, nil
}

// WriteTWBX writes a deflate-compressed archive to {out}/{name}.twbx holding the
// workbook, the standalone datasource and optionally the sample CSV
func (p *Packager) WriteTWBX(name string, pkg Package) (path string, err error) {
	if err := os.MkdirAll(p.OutputDirectory, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", p.OutputDirectory, err)
	}

	path = filepath.Join(p.OutputDirectory, name+".twbx")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create archive %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive %s: %w", path, cerr)
		}
	}()

	zw := zip.NewWriter(f)
	defer func() {
		if cerr := zw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to finalize archive %s: %w", path, cerr)
		}
	}()

	entries := []archiveEntry{
		{WorkbookEntry, pkg.WorkbookXML},
		{DatasourceEntry, pkg.DatasourceXML},
	}
	if pkg.IncludeSample {
		entries = append(entries, archiveEntry{SampleDataEntry(pkg.DatasetName), pkg.SampleCSV})
	}

	for _, entry := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: entry.name, Method: zip.Deflate})
		if err != nil {
			return "", fmt.Errorf("failed to add %s to archive: %w", entry.name, err)
		}
		if _, err := w.Write([]byte(entry.content)); err != nil {
			return "", fmt.Errorf("failed to write %s to archive: %w", entry.name, err)
		}
	}

	p.Logger.Infof("Wrote packaged workbook %s with %d entries", path, len(entries))
	return path, nil
}
