package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/tabby/pkg/entry"
)

// DiskvStore keeps one JSON document per day. Keys are YYYY-MM-DD and land on
// disk as YYYY/MM/DD.
type DiskvStore struct {
	mu       sync.RWMutex
	d        *diskv.Diskv
	basePath string
	opts     options

	// id -> day key, rebuilt from disk at load.
	ids map[string]string
}

var _ Persistence = (*DiskvStore)(nil)

// NewDiskv opens (or creates) a diskv backed store rooted at basePath.
func NewDiskv(basePath string, opts ...Option) (*DiskvStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("store: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, storageErr("open", fmt.Errorf("ensure base path: %w", err))
	}
	o := buildOptions(opts)
	s := &DiskvStore{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           basePath + ".tmp",
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      o.cacheMB * 1024 * 1024,
		}),
		basePath: basePath,
		opts:     o,
	}
	if err := s.reindex(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DiskvStore) Location() *time.Location { return s.opts.loc }

func (s *DiskvStore) Close() error { return nil }

func (s *DiskvStore) GetOrCreate(ctx context.Context, day time.Time) (*entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entry.DayKey(day, s.opts.loc)
	if s.d.Has(key) {
		e, err := s.read(key)
		if err != nil {
			return nil, storageErr("get-or-create", err)
		}
		return e, nil
	}
	e := entry.New(entry.Normalize(day, s.opts.loc), s.opts.now())
	if err := s.write(key, e); err != nil {
		return nil, storageErr("get-or-create", err)
	}
	return e.Clone(), nil
}

func (s *DiskvStore) Fetch(ctx context.Context, day time.Time) (*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := entry.DayKey(day, s.opts.loc)
	if !s.d.Has(key) {
		return nil, nil
	}
	e, err := s.read(key)
	if err != nil {
		return nil, storageErr("fetch", err)
	}
	return e, nil
}

func (s *DiskvStore) FetchRange(ctx context.Context, start, end time.Time) ([]*entry.Entry, error) {
	from := entry.DayKey(start, s.opts.loc)
	to := entry.DayKey(end, s.opts.loc)
	if to < from {
		return []*entry.Entry{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scan(ctx, "fetch-range", func(key string) bool {
		return key >= from && key <= to
	})
}

func (s *DiskvStore) FetchAll(ctx context.Context) ([]*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scan(ctx, "fetch-all", func(string) bool { return true })
}

func (s *DiskvStore) Update(ctx context.Context, id string, f entry.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, e, err := s.lookup(ctx, id)
	if err != nil {
		return storageErr("update", err)
	}
	if e == nil {
		return nil
	}
	if !e.Apply(f, s.opts.now()) {
		return nil
	}
	return storageErr("update", s.write(key, e))
}

func (s *DiskvStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, e, err := s.lookup(ctx, id)
	if err != nil {
		return storageErr("delete", err)
	}
	if e == nil {
		return nil
	}
	delete(s.ids, id)
	return storageErr("delete", s.d.Erase(key))
}

// lookup finds the current document for id. Other processes write the same
// directory, so a miss or a stale index entry triggers one reindex before the
// id is treated as unknown. Must be called with s.mu held.
func (s *DiskvStore) lookup(ctx context.Context, id string) (string, *entry.Entry, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			if err := s.reindex(ctx); err != nil {
				return "", nil, err
			}
		}
		key, ok := s.ids[id]
		if !ok || !s.d.Has(key) {
			continue
		}
		e, err := s.read(key)
		if err != nil {
			return "", nil, err
		}
		if e.ID == id {
			return key, e, nil
		}
	}
	delete(s.ids, id)
	return "", nil, nil
}

func (s *DiskvStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.d.EraseAll(); err != nil {
		return storageErr("delete-all", err)
	}
	s.ids = make(map[string]string)
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return storageErr("delete-all", err)
	}
	return nil
}

func (s *DiskvStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &diskvTx{s: s, journal: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		if rbErr := tx.rollback(); rbErr != nil {
			return errors.Join(err, storageErr("rollback", rbErr))
		}
		return err
	}
	return nil
}

// scan reads every key accepted by match. Undecodable documents are skipped
// so one bad file cannot hide the rest of the journal.
func (s *DiskvStore) scan(ctx context.Context, op string, match func(key string) bool) ([]*entry.Entry, error) {
	keys := make([]string, 0)
	for key := range s.d.Keys(ctx.Done()) {
		if _, err := entry.ParseDay(key, s.opts.loc); err != nil {
			continue
		}
		if match(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	all := make([]*entry.Entry, 0, len(keys))
	for _, key := range keys {
		e, err := s.read(key)
		if err != nil {
			var syntax *json.SyntaxError
			if errors.As(err, &syntax) {
				fmt.Fprintf(os.Stderr, "store: %s: %v\n", key, err)
				continue
			}
			return nil, storageErr(op, err)
		}
		all = append(all, e)
	}
	return all, nil
}

func (s *DiskvStore) read(key string) (*entry.Entry, error) {
	val, err := s.d.Read(key)
	if err != nil {
		return nil, err
	}
	e := &entry.Entry{}
	if err := json.Unmarshal(val, e); err != nil {
		return nil, err
	}
	day, err := entry.ParseDay(key, s.opts.loc)
	if err != nil {
		return nil, err
	}
	e.Day = day
	return e, nil
}

func (s *DiskvStore) write(key string, e *entry.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := s.d.Write(key, data); err != nil {
		return err
	}
	s.ids[e.ID] = key
	return nil
}

func (s *DiskvStore) reindex(ctx context.Context) error {
	ids := make(map[string]string)
	for key := range s.d.Keys(ctx.Done()) {
		if _, err := entry.ParseDay(key, s.opts.loc); err != nil {
			continue
		}
		e, err := s.read(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "store: index %s: %v\n", key, err)
			continue
		}
		ids[e.ID] = key
	}
	s.ids = ids
	return nil
}

type diskvTx struct {
	s *DiskvStore
	// Previous document per touched key; nil means the key did not exist.
	journal map[string][]byte
}

func (t *diskvTx) Now() time.Time { return t.s.opts.now() }

func (t *diskvTx) Fetch(day time.Time) (*entry.Entry, error) {
	key := entry.DayKey(day, t.s.opts.loc)
	if !t.s.d.Has(key) {
		return nil, nil
	}
	e, err := t.s.read(key)
	if err != nil {
		return nil, storageErr("tx-fetch", err)
	}
	return e, nil
}

func (t *diskvTx) Create(day time.Time) (*entry.Entry, error) {
	key := entry.DayKey(day, t.s.opts.loc)
	if t.s.d.Has(key) {
		return nil, fmt.Errorf("store: entry for %s already exists", key)
	}
	e := entry.New(entry.Normalize(day, t.s.opts.loc), t.s.opts.now())
	if err := t.Put(e); err != nil {
		return nil, err
	}
	return e.Clone(), nil
}

func (t *diskvTx) Put(e *entry.Entry) error {
	if e == nil || e.ID == "" {
		return errors.New("store: put requires an entry with an id")
	}
	key := entry.DayKey(e.Day, t.s.opts.loc)
	if _, seen := t.journal[key]; !seen {
		if t.s.d.Has(key) {
			prev, err := t.s.d.Read(key)
			if err != nil {
				return storageErr("tx-put", err)
			}
			t.journal[key] = prev
		} else {
			t.journal[key] = nil
		}
	}
	cp := e.Clone()
	cp.Day = entry.Normalize(e.Day, t.s.opts.loc)
	return storageErr("tx-put", t.s.write(key, cp))
}

func (t *diskvTx) rollback() error {
	var errs []error
	for key, prev := range t.journal {
		if prev == nil {
			if t.s.d.Has(key) {
				if err := t.s.d.Erase(key); err != nil {
					errs = append(errs, err)
				}
			}
			continue
		}
		if err := t.s.d.Write(key, prev); err != nil {
			errs = append(errs, err)
		}
	}
	if err := t.s.reindex(context.Background()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}
