package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/dkalnina/garagelog/internal/store/migrations"
)

// dbtx is the subset of database/sql used by the embedded backend. Both
// *sql.DB and *sql.Tx satisfy it.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// render converts a command into a parameterized statement. Insert columns
// are emitted in sorted order so the rendering is deterministic.
func render(cmd Command) (string, []any, error) {
	if !knownTable(cmd.table()) {
		return "", nil, fmt.Errorf("unknown table %q", cmd.table())
	}

	switch c := cmd.(type) {
	case SelectCmd:
		var b strings.Builder
		b.WriteString("SELECT * FROM ")
		b.WriteString(c.Table)
		var args []any
		if c.Where != nil {
			if err := checkIdent(c.Where.Column); err != nil {
				return "", nil, err
			}
			b.WriteString(" WHERE ")
			b.WriteString(c.Where.Column)
			b.WriteString(" = ?")
			args = append(args, c.Where.Value)
		}
		if c.OrderBy != "" {
			if err := checkIdent(c.OrderBy); err != nil {
				return "", nil, err
			}
			b.WriteString(" ORDER BY ")
			b.WriteString(c.OrderBy)
			if c.Desc {
				b.WriteString(" DESC")
			}
		}
		return b.String(), args, nil

	case InsertCmd:
		cols := sortedColumns(c.Values)
		args := make([]any, 0, len(cols))
		marks := make([]string, 0, len(cols))
		for _, col := range cols {
			if err := checkIdent(col); err != nil {
				return "", nil, err
			}
			args = append(args, c.Values[col])
			marks = append(marks, "?")
		}
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			c.Table, strings.Join(cols, ", "), strings.Join(marks, ", "))
		return stmt, args, nil

	case UpdateCmd:
		if err := checkIdent(c.Where.Column); err != nil {
			return "", nil, err
		}
		cols := sortedColumns(c.Set)
		sets := make([]string, 0, len(cols))
		args := make([]any, 0, len(cols)+1)
		for _, col := range cols {
			if err := checkIdent(col); err != nil {
				return "", nil, err
			}
			sets = append(sets, col+" = ?")
			args = append(args, c.Set[col])
		}
		stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			c.Table, strings.Join(sets, ", "), c.Where.Column)
		args = append(args, c.Where.Value)
		return stmt, args, nil

	case DeleteCmd:
		if c.Where == nil {
			return "DELETE FROM " + c.Table, nil, nil
		}
		if err := checkIdent(c.Where.Column); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", c.Table, c.Where.Column),
			[]any{c.Where.Value}, nil

	default:
		return "", nil, fmt.Errorf("unsupported command %T", cmd)
	}
}

func querySQL(ctx context.Context, q dbtx, stmt string, args []any) ([]Row, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func execSQL(ctx context.Context, q dbtx, cmd Command, stmt string, args []any) (Result, error) {
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return Result{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, err
	}
	out := Result{RowsAffected: affected}

	if ins, ok := cmd.(InsertCmd); ok {
		if autoIncrementTables[ins.Table] {
			id, err := res.LastInsertId()
			if err != nil {
				return Result{}, err
			}
			out.InsertID = strconv.FormatInt(id, 10)
		} else if id, ok := ins.Values[primaryKeys[ins.Table]].(string); ok {
			out.InsertID = id
		}
	}
	return out, nil
}

func sortedColumns(r Row) []string {
	cols := make([]string, 0, len(r))
	for col := range r {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// checkIdent rejects anything that is not a plain lowercase column name, so
// commands can never smuggle SQL fragments through identifiers.
func checkIdent(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && r != '_' {
			return fmt.Errorf("invalid identifier %q", name)
		}
	}
	return nil
}
