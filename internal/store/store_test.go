package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

// TestEnvelopeRoundTripsThroughJSON guards the shape SaveEnvelope/GetEnvelope
// rely on: the envelope must survive a marshal/unmarshal cycle unchanged,
// since that's exactly what the JSONB column does.
func TestEnvelopeRoundTripsThroughJSON(t *testing.T) {
	env := awrmodel.Envelope{
		Status:           awrmodel.StatusOK,
		WorkloadSummary:  "3 of 40 SQL statements need attention",
		ProblematicCount: 3,
		TotalAnalyzed:    40,
		ProblematicSQLFindings: []awrmodel.Finding{
			{SQLID: "abc123xyz0", Severity: "HIGH", PriorityScore: 87.5},
		},
		DBAFinalConclusion: "Focus on the top statement first.",
	}

	payload, err := json.Marshal(env)
	assert.NoError(t, err)

	var round awrmodel.Envelope
	assert.NoError(t, json.Unmarshal(payload, &round))
	assert.Equal(t, env, round)
}
