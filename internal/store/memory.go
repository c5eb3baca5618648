package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// memTables is the in-memory fallback backend: one row slice per table, the
// schema implicit in the row maps. It exists so the application keeps working
// when the embedded engine cannot be opened; data does not survive the
// process.
type memTables struct {
	tables map[string][]Row
	// seq holds the next autoincrement id per integer-keyed table.
	seq map[string]int64
}

func newMemTables() *memTables {
	m := &memTables{
		tables: make(map[string][]Row, len(tableNames)),
		seq:    make(map[string]int64),
	}
	for _, name := range tableNames {
		m.tables[name] = nil
	}
	return m
}

func (m *memTables) selectRows(cmd SelectCmd) ([]Row, error) {
	rows, err := m.table(cmd.Table)
	if err != nil {
		return nil, err
	}

	var out []Row
	for _, row := range rows {
		if cmd.Where != nil && !valuesEqual(row[cmd.Where.Column], cmd.Where.Value) {
			continue
		}
		out = append(out, row.Clone())
	}

	if cmd.OrderBy != "" {
		col, desc := cmd.OrderBy, cmd.Desc
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i][col], out[j][col])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	return out, nil
}

func (m *memTables) exec(cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case InsertCmd:
		return m.insert(c)
	case UpdateCmd:
		return m.update(c)
	case DeleteCmd:
		return m.remove(c)
	case SelectCmd:
		return Result{}, fmt.Errorf("select passed to exec")
	default:
		return Result{}, fmt.Errorf("unsupported command %T", cmd)
	}
}

func (m *memTables) insert(cmd InsertCmd) (Result, error) {
	if _, err := m.table(cmd.Table); err != nil {
		return Result{}, err
	}

	row := cmd.Values.Clone()
	if !untimestampedTables[cmd.Table] {
		if _, ok := row["created_at"]; !ok {
			row["created_at"] = time.Now().UTC().Format(time.RFC3339)
		}
		if _, ok := row["updated_at"]; !ok {
			row["updated_at"] = row["created_at"]
		}
	}

	var insertID string
	if autoIncrementTables[cmd.Table] {
		m.seq[cmd.Table]++
		id := m.seq[cmd.Table]
		row["id"] = id
		insertID = strconv.FormatInt(id, 10)
	} else if id, ok := row[primaryKeys[cmd.Table]].(string); ok {
		insertID = id
	}

	m.tables[cmd.Table] = append(m.tables[cmd.Table], row)
	return Result{RowsAffected: 1, InsertID: insertID}, nil
}

func (m *memTables) update(cmd UpdateCmd) (Result, error) {
	rows, err := m.table(cmd.Table)
	if err != nil {
		return Result{}, err
	}

	var affected int64
	for i, row := range rows {
		if !valuesEqual(row[cmd.Where.Column], cmd.Where.Value) {
			continue
		}
		updated := row.Clone()
		for col, val := range cmd.Set {
			updated[col] = val
		}
		rows[i] = updated
		affected++
	}
	return Result{RowsAffected: affected}, nil
}

func (m *memTables) remove(cmd DeleteCmd) (Result, error) {
	rows, err := m.table(cmd.Table)
	if err != nil {
		return Result{}, err
	}

	if cmd.Where == nil {
		n := int64(len(rows))
		m.tables[cmd.Table] = nil
		return Result{RowsAffected: n}, nil
	}

	kept := rows[:0:0]
	var affected int64
	for _, row := range rows {
		if valuesEqual(row[cmd.Where.Column], cmd.Where.Value) {
			affected++
			continue
		}
		kept = append(kept, row)
	}
	m.tables[cmd.Table] = kept
	return Result{RowsAffected: affected}, nil
}

func (m *memTables) table(name string) ([]Row, error) {
	if !knownTable(name) {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return m.tables[name], nil
}

// snapshot deep-copies the table contents for the transaction undo log.
func (m *memTables) snapshot() map[string][]Row {
	snap := make(map[string][]Row, len(m.tables))
	for name, rows := range m.tables {
		copied := make([]Row, len(rows))
		for i, row := range rows {
			copied[i] = row.Clone()
		}
		snap[name] = copied
	}
	return snap
}

func (m *memTables) restore(snap map[string][]Row) {
	m.tables = snap
}

// valuesEqual compares two scalars the way the embedded engine would:
// numerics by value regardless of width, everything else by normalized
// equality.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return af == bf
	}
	return normalize(a) == normalize(b)
}

// compareValues orders nil first, numbers numerically, strings
// lexicographically (ISO dates therefore sort chronologically).
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(normalize(a)), fmt.Sprint(normalize(b)))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func normalize(v any) any {
	switch n := v.(type) {
	case []byte:
		return string(n)
	case bool:
		if n {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}
