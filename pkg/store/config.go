package store

import (
	"path/filepath"
)

// Config tells Load where entries live and which backend holds them.
type Config interface {
	BasePath() string
	Backend() string
}

// DirConfig is a fixed Config, handy for tests and tools.
type DirConfig struct {
	Path string `json:"path"`
	Kind string `json:"backend"`
}

func (d DirConfig) BasePath() string { return d.Path }

func (d DirConfig) Backend() string { return d.Kind }

func sqlitePath(base string) string {
	if filepath.Ext(base) == ".db" {
		return base
	}
	return filepath.Join(base, sqliteFile)
}
