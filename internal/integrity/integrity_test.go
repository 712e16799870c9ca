package integrity

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

func validBundle() *awrmodel.Bundle {
	return &awrmodel.Bundle{
		Tables: []*awrmodel.Table{
			{Name: awrmodel.TableSQLStats},
			{Name: awrmodel.TableWaitEvents},
			{Name: awrmodel.TableInstanceStats},
		},
	}
}

func TestValidateSucceedsForCleanWorkspace(t *testing.T) {
	dir := t.TempDir()
	ws := Workspace{
		Path:              dir,
		HTMLIngestedAt:    time.Now().Add(-time.Hour),
		CSVGeneratedAt:    time.Now(),
		HasCSVGeneratedAt: true,
		ReportedCSVCount:  3,
		ActualCSVCount:    3,
	}
	report := Validate(ws, validBundle())
	assert.True(t, report.Valid)
	assert.Empty(t, report.Violations)
}

func TestValidateFlagsMissingDirectory(t *testing.T) {
	ws := Workspace{Path: "/nonexistent/workspace/path"}
	report := Validate(ws, validBundle())
	require.False(t, report.Valid)
	assert.Contains(t, report.Violations[0], "does not exist")
}

func TestValidateFlagsStaleCSVCache(t *testing.T) {
	dir := t.TempDir()
	ws := Workspace{
		Path:              dir,
		HTMLIngestedAt:    time.Now(),
		CSVGeneratedAt:    time.Now().Add(-time.Hour),
		HasCSVGeneratedAt: true,
	}
	report := Validate(ws, validBundle())
	require.False(t, report.Valid)
	found := false
	for _, v := range report.Violations {
		if strings.Contains(v, "predate") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateFlagsMissingRequiredTable(t *testing.T) {
	dir := t.TempDir()
	bundle := &awrmodel.Bundle{Tables: []*awrmodel.Table{{Name: awrmodel.TableSQLStats}}}
	report := Validate(Workspace{Path: dir}, bundle)
	require.False(t, report.Valid)
	assert.Contains(t, report.Violations[0], "required tables missing")
}

func TestValidateFlagsCSVCountMismatch(t *testing.T) {
	dir := t.TempDir()
	ws := Workspace{Path: dir, ReportedCSVCount: 5, ActualCSVCount: 3}
	report := Validate(ws, validBundle())
	require.False(t, report.Valid)
	found := false
	for _, v := range report.Violations {
		if strings.Contains(v, "does not match") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateFlagsOwnershipMismatch(t *testing.T) {
	dir := t.TempDir()
	ws := Workspace{Path: dir, RequestingUID: os.Getuid() + 99999, HasRequestingUID: true}
	report := Validate(ws, validBundle())
	require.False(t, report.Valid)
	assert.Contains(t, report.Violations[0], "not owned by")
}
