// Package mcp serves the journal over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/entry"
	"tableflip.dev/tabby/pkg/timeutil"
)

// Service adapts app.Service to the shapes the MCP tools return.
type Service struct {
	App *app.Service
}

// ErrEntryNotFound is returned when a day has no entry.
var ErrEntryNotFound = errors.New("entry not found")

// EntryDTO is a transport-friendly projection of an entry.
type EntryDTO struct {
	ID         string  `json:"id"`
	Day        string  `json:"day"`
	Intention  *string `json:"intention"`
	Goal       *string `json:"goal"`
	Reflection *string `json:"reflection"`
	Mood       *string `json:"mood,omitempty"`
	IsToday    bool    `json:"isToday"`
	Created    string  `json:"created"`
	Updated    string  `json:"updated"`
}

// SetFieldsOptions carries a partial update. Nil fields are left alone.
type SetFieldsOptions struct {
	Day        string
	Intention  *string
	Goal       *string
	Reflection *string
	Mood       *string
}

// NewService wraps svc.
func NewService(svc *app.Service) *Service {
	return &Service{App: svc}
}

func (s *Service) check() error {
	if s.App == nil || s.App.Persistence == nil {
		return errors.New("persistence is not configured")
	}
	return nil
}

// Day resolves a day argument. Empty means today.
func (s *Service) Day(input string) (time.Time, error) {
	if err := s.check(); err != nil {
		return time.Time{}, err
	}
	return timeutil.ParseDay(input, s.App.Now(), s.App.Persistence.Location())
}

// EntryByDay returns the entry for day without creating it.
func (s *Service) EntryByDay(ctx context.Context, day string) (*EntryDTO, error) {
	d, err := s.Day(day)
	if err != nil {
		return nil, err
	}
	e, err := s.App.Entry(ctx, d)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, d.Format(entry.LayoutDay))
	}
	dto := s.toDTO(e)
	return &dto, nil
}

// ListEntries returns the entries of the span ending today, oldest first.
func (s *Service) ListEntries(ctx context.Context, last string) ([]EntryDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	span, err := timeutil.ParseSpan(last)
	if err != nil {
		return nil, err
	}
	until := entry.Normalize(s.App.Now(), s.App.Persistence.Location())
	all, err := s.App.Range(ctx, span.Start(until), until)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(all), nil
}

// SetFields writes the given fields, creating the day's entry if needed.
func (s *Service) SetFields(ctx context.Context, opts SetFieldsOptions) (*EntryDTO, error) {
	d, err := s.Day(opts.Day)
	if err != nil {
		return nil, err
	}
	f := entry.Fields{
		Intention:  opts.Intention,
		Goal:       opts.Goal,
		Reflection: opts.Reflection,
		Mood:       opts.Mood,
	}
	if f.Empty() {
		return nil, errors.New("at least one field is required")
	}
	if err := s.App.SaveFields(ctx, d, f); err != nil {
		return nil, err
	}
	return s.EntryByDay(ctx, d.Format(entry.LayoutDay))
}

// DeleteEntry removes the day's entry.
func (s *Service) DeleteEntry(ctx context.Context, day string) error {
	d, err := s.Day(day)
	if err != nil {
		return err
	}
	ok, err := s.App.Delete(ctx, d)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, d.Format(entry.LayoutDay))
	}
	return nil
}

// SearchEntries matches query case-insensitively against every text field,
// newest first.
func (s *Service) SearchEntries(ctx context.Context, query string, limit int) ([]EntryDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, errors.New("query is required")
	}
	if limit <= 0 {
		limit = 20
	}

	all, err := s.App.Persistence.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]EntryDTO, 0)
	for i := len(all) - 1; i >= 0 && len(results) < limit; i-- {
		e := all[i]
		for _, v := range []*string{e.Intention, e.Goal, e.Reflection, e.Mood} {
			if strings.Contains(strings.ToLower(entry.Text(v)), needle) {
				results = append(results, s.toDTO(e))
				break
			}
		}
	}
	return results, nil
}

// Report summarises the span ending today.
func (s *Service) Report(ctx context.Context, last string) (app.ReportResult, error) {
	if err := s.check(); err != nil {
		return app.ReportResult{}, err
	}
	span, err := timeutil.ParseSpan(last)
	if err != nil {
		return app.ReportResult{}, err
	}
	until := entry.Normalize(s.App.Now(), s.App.Persistence.Location())
	return s.App.Report(ctx, span.Start(until), until)
}

func (s *Service) toDTO(e *entry.Entry) EntryDTO {
	return EntryDTO{
		ID:         e.ID,
		Day:        e.Day.Format(entry.LayoutDay),
		Intention:  e.Intention,
		Goal:       e.Goal,
		Reflection: e.Reflection,
		Mood:       e.Mood,
		IsToday:    s.App.IsToday(e.Day),
		Created:    entry.FormatTime(e.CreatedAt.Time),
		Updated:    entry.FormatTime(e.UpdatedAt.Time),
	}
}

func (s *Service) toDTOs(entries []*entry.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.toDTO(e))
	}
	return out
}
