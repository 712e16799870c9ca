package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbaworks/awr-advisor/internal/integrity"
	"github.com/dbaworks/awr-advisor/internal/unifiedmetrics"
)

const sampleAWR = `
<html><body>
<table>
<tr><td>Begin Snap:</td><td>15-Jul-26 08:00:00</td></tr>
<tr><td>End Snap:</td><td>15-Jul-26 09:00:00</td></tr>
</table>
<p>Elapsed: 60.00 (mins)</p>
<p>DB CPU(s): 1200.50</p>
<p>CPUs: 16</p>
<h2>SQL ordered by Elapsed Time</h2>
<table>
<tr><th>SQL Id</th><th>Elapsed Time (s)</th><th>Executions</th><th>CPU Time (s)</th><th>%Total</th><th>SQL Text</th></tr>
<tr><td>abc123xyz0</td><td>2000</td><td>50</td><td>1800</td><td>40</td><td>SELECT * FROM orders</td></tr>
</table>
<h2>Top Foreground Wait Events</h2>
<table>
<tr><th>Event</th><th>Time(s)</th><th>Pct Dbtime</th></tr>
<tr><td>db file sequential read</td><td>900</td><td>45</td></tr>
</table>
<h2>Instance Activity Stats</h2>
<table>
<tr><th>Statistic</th><th>Total</th></tr>
<tr><td>CPU used by this session</td><td>123456</td></tr>
</table>
</body></html>
`

func TestBuildBundleParsesAWRFile(t *testing.T) {
	bundle, err := BuildBundle("ws-1", []SourceFile{{Name: "awrrpt.html", HTML: []byte(sampleAWR)}})
	require.NoError(t, err)
	require.NotNil(t, bundle.Metadata)
	assert.True(t, bundle.Metadata.ParseSuccess)
	assert.NotEmpty(t, bundle.Tables)
}

func TestAnalyzeProducesEnvelopeForCleanWorkspace(t *testing.T) {
	dir := t.TempDir()
	bundle, err := BuildBundle("ws-2", []SourceFile{{Name: "awrrpt.html", HTML: []byte(sampleAWR)}})
	require.NoError(t, err)

	ws := integrity.Workspace{
		Path:              dir,
		HTMLIngestedAt:    time.Now().Add(-time.Minute),
		CSVGeneratedAt:    time.Now(),
		HasCSVGeneratedAt: true,
	}

	env, err := Analyze(bundle, ws, unifiedmetrics.NewCalculator())
	require.NoError(t, err)
	assert.NotEqual(t, "INVALID", string(env.Status))
	assert.True(t, env.UnifiedMetrics.IsValid)
}

func TestAnalyzeReturnsIntegrityErrorForMissingWorkspace(t *testing.T) {
	bundle, err := BuildBundle("ws-3", []SourceFile{{Name: "awrrpt.html", HTML: []byte(sampleAWR)}})
	require.NoError(t, err)

	ws := integrity.Workspace{Path: "/nonexistent/path/for/test"}
	env, err := Analyze(bundle, ws, unifiedmetrics.NewCalculator())
	require.Error(t, err)
	assert.Equal(t, "INVALID", string(env.Status))
	assert.NotEmpty(t, env.DataIntegrityViolations)
}
