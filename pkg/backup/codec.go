// Package backup exports the whole journal as a JSON array and merges such a
// document back in.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/logging"
	"tableflip.dev/tabby/pkg/store"
)

// FileName is the fixed export name inside the documents directory.
const FileName = "journal_backup.json"

var (
	ErrExport = errors.New("backup: export failed")
	ErrImport = errors.New("backup: import failed")
)

// Record is one entry on the wire. Day is the local midnight in RFC 3339.
type Record struct {
	Day        string  `json:"day"`
	Intention  *string `json:"intention"`
	Goal       *string `json:"goal"`
	Reflection *string `json:"reflection"`
}

// Codec moves entries between a store and backup documents.
type Codec struct {
	Persistence store.Persistence
	// Documents is the directory export writes into.
	Documents string
	Logger    logging.Logger
}

func (c *Codec) log() logging.Logger {
	if c.Logger == nil {
		return logging.Nop()
	}
	return c.Logger
}

// Encode writes records for entries as an indented JSON array.
func Encode(w io.Writer, entries []*entry.Entry) error {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, Record{
			Day:        e.Day.Format(time.RFC3339),
			Intention:  e.Intention,
			Goal:       e.Goal,
			Reflection: e.Reflection,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// ExportAll writes every entry to <Documents>/journal_backup.json and returns
// the path. The previous file is replaced only once the new one is complete.
func (c *Codec) ExportAll(ctx context.Context) (string, error) {
	if c.Persistence == nil {
		return "", fmt.Errorf("%w: no persistence configured", ErrExport)
	}
	all, err := c.Persistence.FetchAll(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, all); err != nil {
		return "", fmt.Errorf("%w: encode: %w", ErrExport, err)
	}
	if buf.Len() == 0 {
		return "", fmt.Errorf("%w: empty document", ErrExport)
	}

	if err := os.MkdirAll(c.Documents, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	path := filepath.Join(c.Documents, FileName)
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: %s is empty after write", ErrExport, path)
	}
	c.log().Info(ctx, "backup: exported", "path", path, "entries", len(all))
	return path, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, path)
}

// Decoded is a parsed record ready to apply.
type Decoded struct {
	Day        time.Time
	Intention  *string
	Goal       *string
	Reflection *string
}

// Decode parses a whole backup document. Any malformed record fails the
// document. Unknown fields are ignored and missing text fields read as nil.
func Decode(r io.Reader, loc *time.Location) ([]Decoded, error) {
	dec := json.NewDecoder(r)
	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: not a JSON array: %w", ErrImport, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not a JSON array: null", ErrImport)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the array", ErrImport)
	}
	out := make([]Decoded, 0, len(raw))
	for i, msg := range raw {
		var rec Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrImport, i+1, err)
		}
		day, err := parseDay(rec.Day, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrImport, i+1, err)
		}
		out = append(out, Decoded{
			Day:        day,
			Intention:  rec.Intention,
			Goal:       rec.Goal,
			Reflection: rec.Reflection,
		})
	}
	return out, nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing day")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		if _, offset := t.Zone(); offset == 0 {
			// UTC instants are read in the local calendar.
			return entry.Normalize(t, loc), nil
		}
		// An explicit offset names the calendar day it was written in.
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, orLocal(loc)), nil
	}
	if t, err := entry.ParseDay(s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("bad day %q", s)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// ImportMerge decodes a document and merges it into the store in one
// transaction. An existing day keeps its id and creation time and has all
// three text fields replaced, nulls included. Within one document a later
// record for the same day wins. Nothing is written unless every record
// parses and applies.
func (c *Codec) ImportMerge(ctx context.Context, r io.Reader) (int, error) {
	if c.Persistence == nil {
		return 0, fmt.Errorf("%w: no persistence configured", ErrImport)
	}
	records, err := Decode(r, c.Persistence.Location())
	if err != nil {
		return 0, err
	}

	err = c.Persistence.Transact(ctx, func(tx store.Tx) error {
		for _, rec := range records {
			e, err := tx.Fetch(rec.Day)
			if err != nil {
				return err
			}
			if e == nil {
				if e, err = tx.Create(rec.Day); err != nil {
					return err
				}
			}
			e.Intention = rec.Intention
			e.Goal = rec.Goal
			e.Reflection = rec.Reflection
			e.UpdatedAt = entry.Timestamp{Time: tx.Now()}
			if err := tx.Put(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrImport, err)
	}
	c.log().Info(ctx, "backup: imported", "records", len(records))
	return len(records), nil
}

// ImportFile merges the document at path. An empty path means the default
// export location.
func (c *Codec) ImportFile(ctx context.Context, path string) (int, error) {
	if path == "" {
		path = filepath.Join(c.Documents, FileName)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrImport, err)
	}
	defer f.Close()
	return c.ImportMerge(ctx, f)
}
