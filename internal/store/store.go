// Package store implements the record store: one handle over two backends,
// an embedded SQLite engine and an in-memory fallback, both executing the
// same command set against the same table schema. The handle is constructed
// once at application start and injected into the entity services.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/dkalnina/garagelog/internal/common"
	"github.com/dkalnina/garagelog/internal/logging"
)

// Store modes. The mode only changes through explicit fsm events, never
// silently mid-call.
const (
	ModeUninitialized = "uninitialized"
	ModeEmbedded      = "embedded"
	ModeFallback      = "fallback"
)

const (
	eventOpenEmbedded = "open-embedded"
	eventOpenFallback = "open-fallback"
	eventDowngrade    = "downgrade"
)

// DefaultSettings are seeded into app_settings on first open, in both modes.
var DefaultSettings = map[string]string{
	"region": "US",
	"theme":  "system",
}

// Conn is the store surface the services program against. Both *Store and
// the transactional handles satisfy it, so the same service code runs inside
// and outside a transaction.
type Conn interface {
	Query(ctx context.Context, cmd SelectCmd) ([]Row, error)
	Exec(ctx context.Context, cmd Command) (Result, error)
	Transaction(ctx context.Context, fn func(ctx context.Context, c Conn) error) error
}

// Store is the record store handle. Not safe for concurrent writers; the
// application issues one write at a time by construction.
type Store struct {
	path string
	log  logging.Logger
	fsm  *fsm.FSM
	db   *sql.DB
	mem  *memTables
}

var _ Conn = (*Store)(nil)

// New returns an unopened store bound to the given database path.
func New(path string, log logging.Logger) *Store {
	s := &Store{path: path, log: log}
	s.fsm = fsm.NewFSM(
		ModeUninitialized,
		fsm.Events{
			{Name: eventOpenEmbedded, Src: []string{ModeUninitialized}, Dst: ModeEmbedded},
			{Name: eventOpenFallback, Src: []string{ModeUninitialized}, Dst: ModeFallback},
			{Name: eventDowngrade, Src: []string{ModeEmbedded}, Dst: ModeFallback},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				s.log.Info(ctx, "store mode changed", "from", e.Src, "to", e.Dst, "event", e.Event)
			},
		},
	)
	return s
}

// Mode returns the current backend mode.
func (s *Store) Mode() string { return s.fsm.Current() }

// IsEmbeddedEngineActive reports whether calls are served by the embedded
// SQLite engine rather than the in-memory fallback.
func (s *Store) IsEmbeddedEngineActive() bool { return s.Mode() == ModeEmbedded }

// Open attempts to open the embedded engine and run schema migrations. On any
// failure it switches this handle to fallback mode for its lifetime and seeds
// the in-memory default settings. Open is idempotent.
func (s *Store) Open(ctx context.Context) error {
	if s.Mode() != ModeUninitialized {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err == nil {
		err = db.PingContext(ctx)
		if err == nil {
			_, err = db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
		}
		if err == nil {
			err = runMigrations(ctx, db)
		}
	}
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		s.log.Warn(ctx, "embedded engine unavailable, falling back to in-memory store",
			"path", s.path, "error", err)
		if ferr := s.fsm.Event(ctx, eventOpenFallback); ferr != nil {
			return fmt.Errorf("fallback transition: %w", ferr)
		}
		s.openFallback(ctx)
		return nil
	}

	s.db = db
	if ferr := s.fsm.Event(ctx, eventOpenEmbedded); ferr != nil {
		_ = db.Close()
		return fmt.Errorf("embedded transition: %w", ferr)
	}
	return nil
}

// Close releases the embedded engine handle. No-op in fallback mode.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("closing embedded engine: %w", err)
	}
	return nil
}

// Query executes a SelectCmd against the active backend.
func (s *Store) Query(ctx context.Context, cmd SelectCmd) ([]Row, error) {
	switch s.Mode() {
	case ModeUninitialized:
		return nil, common.ErrNotInitialized
	case ModeEmbedded:
		stmt, args, err := render(cmd)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		rows, err := querySQL(ctx, s.db, stmt, args)
		if err != nil {
			return nil, s.engineFailure(ctx, stmt, args, err)
		}
		return rows, nil
	default:
		return s.mem.selectRows(cmd)
	}
}

// Exec executes a write command against the active backend. Inserts receive
// a generated id and created/updated timestamps when absent; updates are
// restamped.
func (s *Store) Exec(ctx context.Context, cmd Command) (Result, error) {
	switch s.Mode() {
	case ModeUninitialized:
		return Result{}, common.ErrNotInitialized
	case ModeEmbedded:
		cmd = prepare(cmd)
		stmt, args, err := render(cmd)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		res, err := execSQL(ctx, s.db, cmd, stmt, args)
		if err != nil {
			return Result{}, s.engineFailure(ctx, stmt, args, err)
		}
		return res, nil
	default:
		return s.mem.exec(prepare(cmd))
	}
}

// Transaction runs fn with a transactional store handle. In embedded mode the
// body is wrapped in BEGIN/COMMIT with rollback on error or panic. In
// fallback mode the tables are snapshotted before the body and restored on
// error, giving the same all-or-nothing behavior.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context, c Conn) error) error {
	switch s.Mode() {
	case ModeUninitialized:
		return common.ErrNotInitialized
	case ModeEmbedded:
		return s.sqlTransaction(ctx, fn)
	default:
		return s.memTransaction(ctx, fn)
	}
}

func (s *Store) sqlTransaction(ctx context.Context, fn func(ctx context.Context, c Conn) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.engineFailure(ctx, "BEGIN", nil, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = s.engineFailure(ctx, "COMMIT", nil, cerr)
		}
	}()

	err = fn(ctx, &sqlTx{store: s, tx: tx})
	return err
}

func (s *Store) memTransaction(ctx context.Context, fn func(ctx context.Context, c Conn) error) (err error) {
	snap := s.mem.snapshot()

	defer func() {
		if p := recover(); p != nil {
			s.mem.restore(snap)
			panic(p)
		}
		if err != nil {
			s.mem.restore(snap)
		}
	}()

	err = fn(ctx, &memTx{mem: s.mem})
	return err
}

// engineFailure wraps an embedded-engine error with the offending statement,
// logs it, and takes the explicit downgrade transition so subsequent calls
// use the fallback backend.
func (s *Store) engineFailure(ctx context.Context, stmt string, args []any, err error) error {
	s.log.Error(ctx, "embedded engine call failed",
		"statement", stmt, "params", fmt.Sprint(args), "error", err)

	if s.Mode() == ModeEmbedded {
		if ferr := s.fsm.Event(ctx, eventDowngrade); ferr == nil {
			s.openFallback(ctx)
		}
	}
	return fmt.Errorf("%w: %s: %v", common.ErrStorage, stmt, err)
}

func (s *Store) openFallback(ctx context.Context) {
	s.mem = newMemTables()
	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range DefaultSettings {
		_, _ = s.mem.exec(InsertCmd{Table: "app_settings", Values: Row{
			"key": key, "value": value, "created_at": now, "updated_at": now,
		}})
	}
	s.log.Info(ctx, "fallback store seeded", "settings", len(DefaultSettings))
}

// prepare stamps generated columns so both backends persist identical rows.
func prepare(cmd Command) Command {
	now := time.Now().UTC().Format(time.RFC3339)
	switch c := cmd.(type) {
	case InsertCmd:
		vals := c.Values.Clone()
		pk := primaryKeys[c.Table]
		if pk == "id" && !autoIncrementTables[c.Table] {
			if v, ok := vals["id"]; !ok || v == "" {
				vals["id"] = uuid.NewString()
			}
		}
		if !untimestampedTables[c.Table] {
			if _, ok := vals["created_at"]; !ok {
				vals["created_at"] = now
			}
			if _, ok := vals["updated_at"]; !ok {
				vals["updated_at"] = now
			}
		}
		return InsertCmd{Table: c.Table, Values: vals}
	case UpdateCmd:
		set := c.Set.Clone()
		if !untimestampedTables[c.Table] {
			set["updated_at"] = now
		}
		return UpdateCmd{Table: c.Table, Set: set, Where: c.Where}
	default:
		return cmd
	}
}

// sqlTx is the embedded-mode transactional handle.
type sqlTx struct {
	store *Store
	tx    *sql.Tx
}

var _ Conn = (*sqlTx)(nil)

func (t *sqlTx) Query(ctx context.Context, cmd SelectCmd) ([]Row, error) {
	stmt, args, err := render(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	rows, err := querySQL(ctx, t.tx, stmt, args)
	if err != nil {
		return nil, t.store.engineFailure(ctx, stmt, args, err)
	}
	return rows, nil
}

func (t *sqlTx) Exec(ctx context.Context, cmd Command) (Result, error) {
	cmd = prepare(cmd)
	stmt, args, err := render(cmd)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	res, err := execSQL(ctx, t.tx, cmd, stmt, args)
	if err != nil {
		return Result{}, t.store.engineFailure(ctx, stmt, args, err)
	}
	return res, nil
}

// Transaction on an open transaction runs the body on the same handle.
func (t *sqlTx) Transaction(ctx context.Context, fn func(ctx context.Context, c Conn) error) error {
	return fn(ctx, t)
}

// memTx is the fallback-mode transactional handle. The snapshot/restore
// bracket lives in Store.memTransaction.
type memTx struct {
	mem *memTables
}

var _ Conn = (*memTx)(nil)

func (t *memTx) Query(ctx context.Context, cmd SelectCmd) ([]Row, error) {
	return t.mem.selectRows(cmd)
}

func (t *memTx) Exec(ctx context.Context, cmd Command) (Result, error) {
	return t.mem.exec(prepare(cmd))
}

func (t *memTx) Transaction(ctx context.Context, fn func(ctx context.Context, c Conn) error) error {
	return fn(ctx, t)
}
