// Package results reads the artifacts the evaluation engine leaves on disk:
// the JSON results file and the directory of timestamp-named HTML reports.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Parkside-Labs/evalgate/internal/engine"
)

// Summary is the reduced view of a completed run. Derived once from the
// engine's results file and never mutated afterward.
type Summary struct {
	Success        bool    `json:"success"`
	PassRate       float64 `json:"pass_rate"`
	TotalTests     int     `json:"total_tests"`
	PassedTests    int     `json:"passed_tests"`
	FailedTests    int     `json:"failed_tests"`
	HTMLReportPath string  `json:"html_report_path,omitempty"`
}

// resultsFile mirrors the engine's JSON output: a results array of per-test
// outcome objects with a success indicator.
type resultsFile struct {
	Results []testOutcome `json:"results"`
}

type testOutcome struct {
	Success bool `json:"success"`
}

// Parser locates and reduces the engine's on-disk artifacts.
type Parser struct {
	// ResultsFile is the path the engine writes its JSON results to.
	ResultsFile string

	// ReportsDir holds one timestamp-named HTML file per completed run.
	ReportsDir string
}

// Parse reads the results file and reduces it to a Summary.
//
// Returns (nil, nil) when the file does not exist, meaning no run has
// completed yet. A file that exists but cannot be decoded, or that lacks the
// expected shape, yields an engine.ErrParse-classified error rather than a
// panic.
func (p *Parser) Parse() (*Summary, error) {
	data, err := os.ReadFile(p.ResultsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", engine.ErrParse, p.ResultsFile, err)
	}

	var rf resultsFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("%w: %s is not valid JSON: %v", engine.ErrParse, p.ResultsFile, err)
	}
	if rf.Results == nil {
		return nil, fmt.Errorf("%w: %s has no results array", engine.ErrParse, p.ResultsFile)
	}

	total := len(rf.Results)
	passed := 0
	for _, outcome := range rf.Results {
		if outcome.Success {
			passed++
		}
	}

	summary := &Summary{
		Success:     total > 0 && passed == total,
		TotalTests:  total,
		PassedTests: passed,
		FailedTests: total - passed,
	}
	// Defined as 0 when no tests ran, never NaN.
	if total > 0 {
		summary.PassRate = float64(passed) / float64(total) * 100
	}

	if latest, err := p.LatestReport(); err == nil && latest != "" {
		summary.HTMLReportPath = latest
	}

	return summary, nil
}

// LatestReport returns the path of the most recently generated HTML report.
// Filenames embed a sortable timestamp, so "most recent" is the
// lexicographically greatest filename; ties resolve the same way. Returns ""
// when the reports directory is absent or holds no HTML files.
func (p *Parser) LatestReport() (string, error) {
	names, err := p.reportNames()
	if err != nil || len(names) == 0 {
		return "", err
	}
	return filepath.Join(p.ReportsDir, names[0]), nil
}

// ListReports returns up to limit report paths, newest first. A limit of 0
// or less means no limit.
func (p *Parser) ListReports(limit int) ([]string, error) {
	names, err := p.reportNames()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(p.ReportsDir, name))
	}
	return paths, nil
}

// reportNames returns HTML report filenames sorted descending.
func (p *Parser) reportNames() ([]string, error) {
	entries, err := os.ReadDir(p.ReportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading reports directory %s: %w", p.ReportsDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".html") {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}
