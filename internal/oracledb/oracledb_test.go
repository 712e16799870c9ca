package oracledb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbaworks/awr-advisor/internal/signals"
)

// TestCaptureRowProjectionMatchesNormalizer exercises the same row shape
// Capture hands to signals.Normalize, without requiring a live database.
func TestCaptureRowProjectionMatchesNormalizer(t *testing.T) {
	r := signals.Row{
		SQLID:        "abc123xyz0",
		Executions:   100,
		HasExec:      true,
		Elapsed:      500,
		HasElapsed:   true,
		CPU:          450,
		HasCPU:       true,
		PctCPU:       90,
		HasPctCPU:    true,
		SQLText:      "SELECT * FROM orders",
		HasSQLText:   true,
		SQLModule:    "APP",
		HasSQLModule: true,
	}
	sig := signals.Normalize(r, nil)
	assert.Equal(t, "abc123xyz0", sig.SQLID)
	assert.InDelta(t, 90, sig.CPUPct, 0.01)
	assert.InDelta(t, 5.0, sig.AvgExecTime, 0.01)
}
