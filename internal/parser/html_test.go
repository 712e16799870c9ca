package parser

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/pipeline"
)

func mustParseDoc(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

const minimalAWR = `
<html><body>
<p>SQL ordered by Elapsed Time</p>
<table>
<tr><th>SQL Id</th><th>Elapsed Time (s)</th><th>% CPU</th></tr>
<tr><td>abc123</td><td>120.5</td><td>45.0</td></tr>
</table>
<p>Top Timed Events</p>
<table>
<tr><th>Event</th><th>Wait Class</th><th>% DB Time</th></tr>
<tr><td>db file sequential read</td><td>User I/O</td><td>32.1</td></tr>
</table>
<p>Instance Activity Stats</p>
<table>
<tr><th>Statistic</th><th>Total</th></tr>
<tr><td>CPU used by this session</td><td>999</td></tr>
</table>
</body></html>
`

const awrMissingRequired = `
<html><body>
<p>SQL ordered by Elapsed Time</p>
<table>
<tr><th>SQL Id</th><th>Elapsed Time (s)</th></tr>
<tr><td>abc123</td><td>120.5</td></tr>
</table>
</body></html>
`

func TestParseAWRExtractsRequiredTables(t *testing.T) {
	tables, err := ParseAWR([]byte(minimalAWR), "awr1.html")
	require.NoError(t, err)
	require.Len(t, tables, 3)

	names := make(map[awrmodel.TableName]bool)
	for _, tb := range tables {
		names[tb.Name] = true
		assert.Equal(t, "awr1.html", tb.Prefix)
	}
	assert.True(t, names[awrmodel.TableSQLStats])
	assert.True(t, names[awrmodel.TableWaitEvents])
	assert.True(t, names[awrmodel.TableInstanceStats])
}

func TestParseAWRNormalizesColumnNames(t *testing.T) {
	tables, err := ParseAWR([]byte(minimalAWR), "awr1.html")
	require.NoError(t, err)

	var sqlStats *awrmodel.Table
	for _, tb := range tables {
		if tb.Name == awrmodel.TableSQLStats {
			sqlStats = tb
		}
	}
	require.NotNil(t, sqlStats)
	assert.Equal(t, []string{"sql_id", "elapsed_time_s", "pct_cpu"}, sqlStats.Columns)
}

func TestParseAWRFailsWhenRequiredTableMissing(t *testing.T) {
	_, err := ParseAWR([]byte(awrMissingRequired), "awr2.html")
	require.Error(t, err)

	var pErr *pipeline.Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, pipeline.KindMissingTable, pErr.Kind)
}

const minimalASH = `
<html><body>
<p>Activity Over Time</p>
<table>
<tr><th>Slot Time</th><th>Avg Active Sessions</th></tr>
<tr><td>10:00:00</td><td>3.2</td></tr>
</table>
</body></html>
`

func TestParseASHHasNoRequiredTableRule(t *testing.T) {
	tables, err := ParseASH([]byte(minimalASH), "ash1.html")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, awrmodel.TableASHActivity, tables[0].Name)
}

func TestParseASHEmptyDocumentReturnsNoTablesNoError(t *testing.T) {
	tables, err := ParseASH([]byte("<html><body></body></html>"), "ash2.html")
	require.NoError(t, err)
	assert.Empty(t, tables)
}

const loadProfileHTML = `
<html><body>
<p>Load Profile</p>
<table>
<tr><td>DB Time(s):</td><td>12.3</td><td>4.1</td></tr>
<tr><td>Logical reads:</td><td>5000.0</td><td>200.0</td></tr>
</table>
</body></html>
`

func TestParseLoadProfileFixedShape(t *testing.T) {
	doc := mustParseDoc(t, loadProfileHTML)
	table := parseLoadProfile(doc)
	require.NotNil(t, table)
	assert.Equal(t, []string{"metric", "per_second", "per_transaction"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "DB Time(s):", table.Rows[0][0])
}
