package metricstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

func testBundle() *awrmodel.Bundle {
	return &awrmodel.Bundle{
		Tables: []*awrmodel.Table{
			{
				Name:    awrmodel.TableSQLStats,
				Columns: []string{"sql_id", "elapsed_time_s", "executions"},
				Rows: [][]string{
					{"aaa", "100.5", "10"},
					{"bbb", "50.25", "5"},
				},
			},
		},
	}
}

func TestFindTableAndHasTable(t *testing.T) {
	s := New(testBundle())
	require.NotNil(t, s.FindTable(awrmodel.TableSQLStats))
	assert.True(t, s.HasTable(awrmodel.TableSQLStats))
	assert.False(t, s.HasTable(awrmodel.TableWaitEvents))
	assert.Nil(t, s.FindTable(awrmodel.TableWaitEvents))
}

func TestFindColumnTriesCandidatesInOrder(t *testing.T) {
	tbl := testBundle().Tables[0]
	assert.Equal(t, 1, FindColumn(tbl, "elapsed__time_s", "elapsed_time_s"))
	assert.Equal(t, -1, FindColumn(tbl, "nonexistent"))
	assert.Equal(t, -1, FindColumn(nil, "sql_id"))
}

func TestCoerceFloatHandlesMalformedInput(t *testing.T) {
	assert.Equal(t, 1234.5, CoerceFloat("1,234.5"))
	assert.Equal(t, 0.0, CoerceFloat("n/a"))
	assert.Equal(t, 0.0, CoerceFloat(""))
	assert.Equal(t, 7.0, CoerceFloat("  7.0  "))
}

func TestCoerceIntTruncates(t *testing.T) {
	assert.Equal(t, int64(10), CoerceInt("10.0"))
	assert.Equal(t, int64(0), CoerceInt("bad"))
}

func TestSumColumnCandidates(t *testing.T) {
	tbl := testBundle().Tables[0]
	sum, ok := SumColumnCandidates(tbl, "elapsed__time_s", "elapsed_time_s")
	require.True(t, ok)
	assert.InDelta(t, 150.75, sum, 0.001)

	_, ok = SumColumnCandidates(tbl, "does_not_exist")
	assert.False(t, ok)
}
