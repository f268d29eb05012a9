package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultJSONEmptyRowsStillHaveData(t *testing.T) {
	raw, err := json.Marshal(Result{SQL: "SELECT 1 WHERE 0", Columns: []string{"1"}, Data: []map[string]any{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql":"SELECT 1 WHERE 0","columns":["1"],"data":[]}`, string(raw))
}

func TestResultJSONWriteHasNoData(t *testing.T) {
	raw, err := json.Marshal(Result{SQL: "DELETE FROM t", Message: "2 rows affected.", RowsAffected: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql":"DELETE FROM t","message":"2 rows affected.","rows_affected":2}`, string(raw))
}

func TestResultJSONDecodes(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"sql":"SELECT id FROM t","columns":["id"],"data":[{"id":1}]}`), &r))
	assert.Equal(t, []string{"id"}, r.Columns)
	require.Len(t, r.Data, 1)
	assert.Equal(t, float64(1), r.Data[0]["id"])
}

func TestConnectionIsEmpty(t *testing.T) {
	assert.True(t, Connection{}.IsEmpty())
	assert.True(t, Connection{Driver: "mysql"}.IsEmpty(), "driver alone is not connection detail")
	assert.False(t, Connection{Host: "db"}.IsEmpty())
}
