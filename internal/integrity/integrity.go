// Package integrity runs the fail-closed preconditions a workspace must
// satisfy before the orchestrator is allowed to analyze it (spec.md §4.9).
// A violation here always produces an INVALID envelope upstream; this
// package never degrades a check into a warning.
package integrity

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

// Workspace is the minimal view of a workspace this package needs: its
// path, the identity that owns the request, and the ingestion timestamps
// required to detect a stale (pre-upload) bundle.
type Workspace struct {
	Path              string
	RequestingUID     int
	HasRequestingUID  bool
	HTMLIngestedAt    time.Time
	CSVGeneratedAt    time.Time
	HasCSVGeneratedAt bool
	ReportedCSVCount  int
	ActualCSVCount    int
}

// Report is the outcome of validating a workspace: either clean, or a
// non-empty list of violations, each naming the rule it failed.
type Report struct {
	Valid      bool
	Violations []string
}

// Validate runs every precondition against ws and bundle, returning all
// violations found rather than stopping at the first one, so the INVALID
// envelope can list every problem at once.
func Validate(ws Workspace, bundle *awrmodel.Bundle) Report {
	var violations []string

	if v := checkWorkspaceOwnership(ws); v != "" {
		violations = append(violations, v)
	}
	if v := checkFreshUpload(ws); v != "" {
		violations = append(violations, v)
	}
	if v := checkRequiredTables(bundle); v != "" {
		violations = append(violations, v)
	}
	if v := checkCSVCountConsistency(ws); v != "" {
		violations = append(violations, v)
	}

	return Report{Valid: len(violations) == 0, Violations: violations}
}

// checkWorkspaceOwnership confirms the workspace directory exists and, on
// platforms that expose a Unix UID, that it belongs to the requesting
// identity.
func checkWorkspaceOwnership(ws Workspace) string {
	info, err := os.Stat(ws.Path)
	if err != nil {
		return fmt.Sprintf("workspace directory %q does not exist: %v", ws.Path, err)
	}
	if !ws.HasRequestingUID {
		return ""
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ""
	}
	if int(stat.Uid) != ws.RequestingUID {
		return fmt.Sprintf("workspace %q is not owned by the requesting identity", ws.Path)
	}
	return ""
}

// checkFreshUpload enforces fresh-upload semantics: a CSV cache generated
// before the most recent HTML ingestion is a prior bundle that should have
// been discarded, not reused against a new upload.
func checkFreshUpload(ws Workspace) string {
	if !ws.HasCSVGeneratedAt {
		return ""
	}
	if ws.CSVGeneratedAt.Before(ws.HTMLIngestedAt) {
		return fmt.Sprintf("cached CSVs (generated %s) predate the most recent HTML ingestion (%s); a prior bundle was not discarded",
			ws.CSVGeneratedAt.Format(time.RFC3339), ws.HTMLIngestedAt.Format(time.RFC3339))
	}
	return ""
}

// checkRequiredTables enforces the same required-table rule C1 enforces at
// parse time, as a second fail-closed gate immediately before analysis.
func checkRequiredTables(bundle *awrmodel.Bundle) string {
	if bundle == nil {
		return "no bundle available for this workspace"
	}
	required := []awrmodel.TableName{awrmodel.TableSQLStats, awrmodel.TableWaitEvents, awrmodel.TableInstanceStats}
	var missing []string
	for _, name := range required {
		if bundle.FindTable(string(name)) == nil {
			missing = append(missing, string(name))
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf("required tables missing: %v", missing)
}

// checkCSVCountConsistency enforces the UI-consistency guarantee: the
// count reported to any collaborator (UI, API) must equal the count on
// disk, never an optimistic or stale figure.
func checkCSVCountConsistency(ws Workspace) string {
	if ws.ReportedCSVCount != ws.ActualCSVCount {
		return fmt.Sprintf("reported CSV count (%d) does not match the count on disk (%d)", ws.ReportedCSVCount, ws.ActualCSVCount)
	}
	return ""
}
