package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemTables_OrderByDateStrings(t *testing.T) {
	m := newMemTables()
	for _, d := range []string{"2024-03-01", "2024-01-15", "2024-02-10"} {
		_, err := m.insert(InsertCmd{Table: "fuel_entries", Values: Row{
			"id": d, "vehicle_id": "v1", "date": d,
		}})
		require.NoError(t, err)
	}

	rows, err := m.selectRows(SelectCmd{Table: "fuel_entries", OrderBy: "date", Desc: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-03-01", rows[0]["date"])
	assert.Equal(t, "2024-01-15", rows[2]["date"])
}

func TestMemTables_OrderByNumericColumn(t *testing.T) {
	m := newMemTables()
	for i, mi := range []int64{300, 100, 200} {
		_, err := m.insert(InsertCmd{Table: "fuel_entries", Values: Row{
			"id": string(rune('a' + i)), "mileage": mi,
		}})
		require.NoError(t, err)
	}

	rows, err := m.selectRows(SelectCmd{Table: "fuel_entries", OrderBy: "mileage"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), rows[0]["mileage"])
	assert.Equal(t, int64(300), rows[2]["mileage"])
}

func TestMemTables_ReturnedRowsAreCopies(t *testing.T) {
	m := newMemTables()
	_, err := m.insert(InsertCmd{Table: "vehicles", Values: Row{"id": "v1", "name": "a"}})
	require.NoError(t, err)

	rows, err := m.selectRows(SelectCmd{Table: "vehicles"})
	require.NoError(t, err)
	rows[0]["name"] = "mutated"

	again, err := m.selectRows(SelectCmd{Table: "vehicles"})
	require.NoError(t, err)
	assert.Equal(t, "a", again[0]["name"])
}

func TestMemTables_SnapshotRestore(t *testing.T) {
	m := newMemTables()
	_, err := m.insert(InsertCmd{Table: "vehicles", Values: Row{"id": "v1", "name": "a"}})
	require.NoError(t, err)

	snap := m.snapshot()

	_, err = m.insert(InsertCmd{Table: "vehicles", Values: Row{"id": "v2", "name": "b"}})
	require.NoError(t, err)
	_, err = m.update(UpdateCmd{Table: "vehicles", Set: Row{"name": "z"}, Where: Eq{Column: "id", Value: "v1"}})
	require.NoError(t, err)

	m.restore(snap)

	rows, err := m.selectRows(SelectCmd{Table: "vehicles"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0]["name"])
}

func TestValuesEqual_NumericWidths(t *testing.T) {
	assert.True(t, valuesEqual(int64(5), 5))
	assert.True(t, valuesEqual(5.0, int64(5)))
	assert.False(t, valuesEqual(int64(5), int64(6)))
	assert.True(t, valuesEqual("a", "a"))
	assert.True(t, valuesEqual(nil, nil))
	assert.False(t, valuesEqual(nil, "a"))
}

func TestCompareValues(t *testing.T) {
	assert.Negative(t, compareValues(int64(1), 2.0))
	assert.Positive(t, compareValues("b", "a"))
	assert.Zero(t, compareValues("x", "x"))
	assert.Negative(t, compareValues(nil, "x"))
}
