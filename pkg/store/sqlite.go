package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"tableflip.dev/tabby/pkg/entry"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id          TEXT PRIMARY KEY,
	day         TEXT NOT NULL UNIQUE,
	intention   TEXT,
	goal        TEXT,
	reflection  TEXT,
	mood        TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore keeps entries in a single SQLite table with a UNIQUE day column.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	opts options
}

var _ Persistence = (*SQLiteStore)(nil)

// OpenSQLite opens the database at path (":memory:" for a private in-memory
// database), applies pragmas and creates the schema.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, storageErr("open", fmt.Errorf("mkdir: %w", err))
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr("open", err)
	}
	// One connection: every in-memory connection is its own database, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, storageErr("open", fmt.Errorf("%s: %w", p, err))
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, storageErr("open", fmt.Errorf("schema: %w", err))
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storageErr("open", fmt.Errorf("ping: %w", err))
	}
	return &SQLiteStore{db: db, opts: buildOptions(opts)}, nil
}

func (s *SQLiteStore) Location() *time.Location { return s.opts.loc }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) GetOrCreate(ctx context.Context, day time.Time) (*entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entry.DayKey(day, s.opts.loc)
	e, err := s.selectOne(ctx, s.db, "day", key)
	if err != nil {
		return nil, storageErr("get-or-create", err)
	}
	if e != nil {
		return e, nil
	}
	e = entry.New(entry.Normalize(day, s.opts.loc), s.opts.now())
	if err := s.upsert(ctx, s.db, e); err != nil {
		return nil, storageErr("get-or-create", err)
	}
	return e.Clone(), nil
}

func (s *SQLiteStore) Fetch(ctx context.Context, day time.Time) (*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.selectOne(ctx, s.db, "day", entry.DayKey(day, s.opts.loc))
	if err != nil {
		return nil, storageErr("fetch", err)
	}
	return e, nil
}

func (s *SQLiteStore) FetchRange(ctx context.Context, start, end time.Time) ([]*entry.Entry, error) {
	from := entry.DayKey(start, s.opts.loc)
	to := entry.DayKey(end, s.opts.loc)
	if to < from {
		return []*entry.Entry{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	all, err := s.selectMany(ctx, `WHERE day >= ? AND day <= ? ORDER BY day ASC`, from, to)
	return all, storageErr("fetch-range", err)
}

func (s *SQLiteStore) FetchAll(ctx context.Context) ([]*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all, err := s.selectMany(ctx, `ORDER BY day ASC`)
	return all, storageErr("fetch-all", err)
}

func (s *SQLiteStore) Update(ctx context.Context, id string, f entry.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.selectOne(ctx, s.db, "id", id)
	if err != nil {
		return storageErr("update", err)
	}
	if e == nil || !e.Apply(f, s.opts.now()) {
		return nil
	}
	return storageErr("update", s.upsert(ctx, s.db, e))
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	return storageErr("delete", err)
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM entries`)
	return storageErr("delete-all", err)
}

func (s *SQLiteStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin", err)
	}
	if err := fn(&sqliteTx{ctx: ctx, s: s, tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return errors.Join(err, storageErr("rollback", rbErr))
		}
		return err
	}
	return storageErr("commit", sqlTx.Commit())
}

const columns = `id, day, intention, goal, reflection, mood, created_at, updated_at`

func (s *SQLiteStore) selectOne(ctx context.Context, q dbtx, column, value string) (*entry.Entry, error) {
	row := q.QueryRowContext(ctx, `SELECT `+columns+` FROM entries WHERE `+column+` = ?`, value)
	e, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (s *SQLiteStore) selectMany(ctx context.Context, clause string, args ...any) ([]*entry.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM entries `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	all := make([]*entry.Entry, 0)
	for rows.Next() {
		e, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scan(row scanner) (*entry.Entry, error) {
	var (
		e                                 entry.Entry
		day, created, updated             string
		intention, goal, reflection, mood sql.NullString
	)
	if err := row.Scan(&e.ID, &day, &intention, &goal, &reflection, &mood, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if e.Day, err = entry.ParseDay(day, s.opts.loc); err != nil {
		return nil, fmt.Errorf("entry %s: day: %w", e.ID, err)
	}
	if e.CreatedAt.Time, err = entry.ParseTime(created); err != nil {
		return nil, fmt.Errorf("entry %s: created_at: %w", e.ID, err)
	}
	if e.UpdatedAt.Time, err = entry.ParseTime(updated); err != nil {
		return nil, fmt.Errorf("entry %s: updated_at: %w", e.ID, err)
	}
	e.Intention = fromNull(intention)
	e.Goal = fromNull(goal)
	e.Reflection = fromNull(reflection)
	e.Mood = fromNull(mood)
	return &e, nil
}

// upsert writes e keyed by day. A different entry already holding that day is
// replaced, matching the diskv backend's Put.
func (s *SQLiteStore) upsert(ctx context.Context, q dbtx, e *entry.Entry) error {
	key := entry.DayKey(e.Day, s.opts.loc)
	if _, err := q.ExecContext(ctx, `DELETE FROM entries WHERE day = ? AND id <> ?`, key, e.ID); err != nil {
		return fmt.Errorf("failed to clear day: %w", err)
	}
	_, err := q.ExecContext(ctx, `INSERT INTO entries (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			day = excluded.day,
			intention = excluded.intention,
			goal = excluded.goal,
			reflection = excluded.reflection,
			mood = excluded.mood,
			updated_at = excluded.updated_at`,
		e.ID, key,
		toNull(e.Intention), toNull(e.Goal), toNull(e.Reflection), toNull(e.Mood),
		entry.FormatTime(e.CreatedAt.Time), entry.FormatTime(e.UpdatedAt.Time),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

type sqliteTx struct {
	ctx context.Context
	s   *SQLiteStore
	tx  *sql.Tx
}

func (t *sqliteTx) Now() time.Time { return t.s.opts.now() }

func (t *sqliteTx) Fetch(day time.Time) (*entry.Entry, error) {
	e, err := t.s.selectOne(t.ctx, t.tx, "day", entry.DayKey(day, t.s.opts.loc))
	if err != nil {
		return nil, storageErr("tx-fetch", err)
	}
	return e, nil
}

func (t *sqliteTx) Create(day time.Time) (*entry.Entry, error) {
	existing, err := t.Fetch(day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("store: entry for %s already exists", entry.DayKey(day, t.s.opts.loc))
	}
	e := entry.New(entry.Normalize(day, t.s.opts.loc), t.s.opts.now())
	if err := t.Put(e); err != nil {
		return nil, err
	}
	return e.Clone(), nil
}

func (t *sqliteTx) Put(e *entry.Entry) error {
	if e == nil || e.ID == "" {
		return errors.New("store: put requires an entry with an id")
	}
	return storageErr("tx-put", t.s.upsert(t.ctx, t.tx, e))
}

func toNull(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func fromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return entry.String(v.String)
}
