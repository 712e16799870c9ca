package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadataAWR = `
<html><body>
<table>
<tr><td>Begin Snap:</td><td>15-Jul-26 08:00:00</td></tr>
<tr><td>End Snap:</td><td>15-Jul-26 09:00:00</td></tr>
</table>
<p>Elapsed: 60.00 (mins)</p>
<p>DB CPU(s): 1200.50</p>
<p>CPUs: 16</p>
<table>
<tr><th>Instance CPU</th><th>%Busy CPU</th></tr>
<tr><td>Instance</td><td>72.5</td></tr>
</table>
<table>
<tr><th>Host CPU</th><th>%Idle</th></tr>
<tr><td>Host</td><td>18.2</td></tr>
</table>
</body></html>
`

func TestParseSnapshotMetadataExtractsCoreFields(t *testing.T) {
	meta := ParseSnapshotMetadata([]byte(metadataAWR))
	require.True(t, meta.ParseSuccess)
	require.True(t, meta.HasBeginTime)
	require.True(t, meta.HasEndTime)
	assert.True(t, meta.EndTime.After(meta.BeginTime))

	require.True(t, meta.HasElapsedSeconds)
	assert.InDelta(t, 3600.0, meta.ElapsedSeconds, 0.01)

	require.True(t, meta.HasDBCPUSeconds)
	assert.InDelta(t, 1200.50, meta.DBCPUSeconds, 0.01)

	require.True(t, meta.HasCPUCores)
	assert.Equal(t, 16, meta.CPUCores)
}

func TestParseSnapshotMetadataMissingTimestampsFailsParse(t *testing.T) {
	meta := ParseSnapshotMetadata([]byte("<html><body><p>nothing useful here</p></body></html>"))
	assert.False(t, meta.ParseSuccess)
	assert.False(t, meta.HasBeginTime)
	assert.NotEmpty(t, meta.ParseErrors)
}

func TestParseSnapshotMetadataParsesChineseLocaleTimestamps(t *testing.T) {
	cn := `
<html><body>
<table>
<tr><td>Begin Snap:</td><td>09-8月 -20 21:00:54</td></tr>
<tr><td>End Snap:</td><td>10-8月 -20 08:00:13</td></tr>
</table>
</body></html>`
	meta := ParseSnapshotMetadata([]byte(cn))
	require.True(t, meta.HasBeginTime)
	require.True(t, meta.HasEndTime)
	assert.Equal(t, 8, int(meta.BeginTime.Month()))
	assert.Equal(t, 9, meta.BeginTime.Day())
	assert.Equal(t, 2020, meta.BeginTime.Year())
	assert.Equal(t, 10, meta.EndTime.Day())
	assert.True(t, meta.EndTime.After(meta.BeginTime))
}

func TestParseSnapshotMetadataDefaultsCPUCoresWhenAbsent(t *testing.T) {
	minimal := `
<html><body>
<table>
<tr><td>Begin Snap:</td><td>15-Jul-26 08:00:00</td></tr>
<tr><td>End Snap:</td><td>15-Jul-26 09:00:00</td></tr>
</table>
</body></html>`
	meta := ParseSnapshotMetadata([]byte(minimal))
	require.True(t, meta.ParseSuccess)
	assert.False(t, meta.HasCPUCores)
	assert.Equal(t, 8, meta.CPUCores)
}
