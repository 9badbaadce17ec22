package results

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parkside-Labs/evalgate/internal/engine"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	dir := t.TempDir()
	return &Parser{
		ResultsFile: filepath.Join(dir, "latest.json"),
		ReportsDir:  filepath.Join(dir, "reports"),
	}
}

func writeResults(t *testing.T, p *Parser, passed, failed int) {
	t.Helper()
	entries := ""
	for i := 0; i < passed; i++ {
		entries += `{"success":true},`
	}
	for i := 0; i < failed; i++ {
		entries += `{"success":false},`
	}
	if len(entries) > 0 {
		entries = entries[:len(entries)-1]
	}
	data := fmt.Sprintf(`{"results":[%s]}`, entries)
	require.NoError(t, os.WriteFile(p.ResultsFile, []byte(data), 0o644))
}

func writeReport(t *testing.T, p *Parser, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(p.ReportsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p.ReportsDir, name), []byte("<html></html>"), 0o644))
}

func TestParse_MissingFileReturnsNil(t *testing.T) {
	p := newTestParser(t)

	summary, err := p.Parse()
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestParse_EmptyResultsHasZeroPassRate(t *testing.T) {
	p := newTestParser(t)
	writeResults(t, p, 0, 0)

	summary, err := p.Parse()
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Zero(t, summary.PassRate, "pass rate must be 0, never NaN")
	assert.Zero(t, summary.TotalTests)
	assert.False(t, summary.Success)
}

func TestParse_AllPassing(t *testing.T) {
	p := newTestParser(t)
	writeResults(t, p, 4, 0)

	summary, err := p.Parse()
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 100.0, summary.PassRate)
	assert.Equal(t, 4, summary.PassedTests)
	assert.Zero(t, summary.FailedTests)
}

func TestParse_MixedOutcomes(t *testing.T) {
	p := newTestParser(t)
	writeResults(t, p, 17, 3)
	writeReport(t, p, "report-2026-02-11T10-00-00.html")

	summary, err := p.Parse()
	require.NoError(t, err)
	assert.False(t, summary.Success)
	assert.Equal(t, 85.0, summary.PassRate)
	assert.Equal(t, 20, summary.TotalTests)
	assert.Equal(t, 17, summary.PassedTests)
	assert.Equal(t, 3, summary.FailedTests)
	assert.Equal(t, filepath.Join(p.ReportsDir, "report-2026-02-11T10-00-00.html"), summary.HTMLReportPath)
}

func TestParse_MalformedJSON(t *testing.T) {
	p := newTestParser(t)
	require.NoError(t, os.WriteFile(p.ResultsFile, []byte("{not json"), 0o644))

	_, err := p.Parse()
	assert.ErrorIs(t, err, engine.ErrParse)
}

func TestParse_MissingResultsArray(t *testing.T) {
	p := newTestParser(t)
	require.NoError(t, os.WriteFile(p.ResultsFile, []byte(`{"outcomes":[]}`), 0o644))

	_, err := p.Parse()
	assert.ErrorIs(t, err, engine.ErrParse)
}

func TestLatestReport_LexicographicOrder(t *testing.T) {
	p := newTestParser(t)
	writeReport(t, p, "report-2026-02-10T09-00-00.html")
	writeReport(t, p, "report-2026-02-11T10-30-00.html")
	writeReport(t, p, "report-2026-02-11T10-00-00.html")
	// Non-HTML files are ignored.
	writeReport(t, p, "notes.txt")

	latest, err := p.LatestReport()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.ReportsDir, "report-2026-02-11T10-30-00.html"), latest)
}

func TestLatestReport_NoReportsDir(t *testing.T) {
	p := newTestParser(t)

	latest, err := p.LatestReport()
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestListReports_Limit(t *testing.T) {
	p := newTestParser(t)
	writeReport(t, p, "report-2026-02-09.html")
	writeReport(t, p, "report-2026-02-10.html")
	writeReport(t, p, "report-2026-02-11.html")

	reports, err := p.ListReports(2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, filepath.Join(p.ReportsDir, "report-2026-02-11.html"), reports[0])
	assert.Equal(t, filepath.Join(p.ReportsDir, "report-2026-02-10.html"), reports[1])

	all, err := p.ListReports(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
