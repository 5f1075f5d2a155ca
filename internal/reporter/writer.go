package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Artifact file names written for every run.
const (
	summaryFile        = "summary.md"
	rawFile            = "report.json"
	detailsFile        = "details.md"
	failuresFile       = "failures.md"
	dataAssertionsFile = "data_assertions.md"
)

// Writer persists reports as five artifacts under a timestamp-named
// directory. A prior run's directory is never overwritten.
type Writer struct {
	baseDir string
}

// NewWriter creates a writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Write persists all artifacts and returns the run directory.
func (w *Writer) Write(report *TestReport) (string, error) {
	dir := filepath.Join(w.baseDir, report.GeneratedAt.Format("20060102_150405"))
	if _, err := os.Stat(dir); err == nil {
		// Same-second collision with a previous run.
		dir = dir + "_" + uuid.NewString()[:8]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %v", err)
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %v", err)
	}

	artifacts := map[string][]byte{
		summaryFile:        []byte(renderSummary(report)),
		rawFile:            raw,
		detailsFile:        []byte(renderDetails(report)),
		failuresFile:       []byte(renderFailures(report)),
		dataAssertionsFile: []byte(renderDataAssertions(report)),
	}
	for name, data := range artifacts {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %v", name, err)
		}
	}
	return dir, nil
}

// Read loads a previously persisted raw report.
func Read(path string) (*TestReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %v", err)
	}
	var report TestReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %v", err)
	}
	return &report, nil
}
