package store

// The store accepts a small tagged command set instead of SQL strings: the
// services already know exactly which operation they intend, so there is
// nothing to gain from serializing to a statement and reparsing it. The
// embedded backend renders commands to parameterized SQL; the fallback
// backend executes them directly against in-memory tables.

// Row is one table row keyed by column name. Values are the same scalar set
// both backends produce: string, int64, float64, nil.
type Row map[string]any

// Eq is a single-column equality predicate, the only filter shape the store
// supports. Richer filtering and all aggregation happen above the store, on
// fetched rows.
type Eq struct {
	Column string
	Value  any
}

// Command is one of SelectCmd, InsertCmd, UpdateCmd, DeleteCmd.
type Command interface {
	table() string
}

// SelectCmd reads rows. A nil Where returns the whole table.
type SelectCmd struct {
	Table   string
	Where   *Eq
	OrderBy string
	Desc    bool
}

// InsertCmd appends a row. A missing "id" value is generated by the store,
// and created_at/updated_at are stamped if absent.
type InsertCmd struct {
	Table  string
	Values Row
}

// UpdateCmd applies Set to every row matching Where and restamps updated_at.
type UpdateCmd struct {
	Table string
	Set   Row
	Where Eq
}

// DeleteCmd removes matching rows; a nil Where truncates the table.
type DeleteCmd struct {
	Table string
	Where *Eq
}

func (c SelectCmd) table() string { return c.Table }
func (c InsertCmd) table() string { return c.Table }
func (c UpdateCmd) table() string { return c.Table }
func (c DeleteCmd) table() string { return c.Table }

// Result reports the outcome of a write command.
type Result struct {
	RowsAffected int64
	// InsertID is the generated primary key of an InsertCmd: the uuid for
	// text-keyed tables, the autoincrement value (decimal) for migration_log.
	InsertID string
}

// Clone returns a shallow-independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Tables known to the store, in dependency order. The store owns the schema;
// commands against any other table are rejected.
var tableNames = []string{
	"vehicles",
	"fuel_entries",
	"service_records",
	"app_settings",
	"migration_log",
}

// autoIncrementTables use an INTEGER AUTOINCREMENT primary key instead of a
// generated uuid.
var autoIncrementTables = map[string]bool{
	"migration_log": true,
}

// untimestampedTables lack created_at/updated_at columns and are exempt from
// timestamp stamping.
var untimestampedTables = map[string]bool{
	"migration_log": true,
}

// primaryKeys maps each table to its key column.
var primaryKeys = map[string]string{
	"vehicles":        "id",
	"fuel_entries":    "id",
	"service_records": "id",
	"app_settings":    "key",
	"migration_log":   "id",
}

func knownTable(name string) bool {
	_, ok := primaryKeys[name]
	return ok
}
