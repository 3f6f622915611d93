package tables

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/xingming/internal/model"
)

// File names of the YAML dataset
const (
	KanjiFile        = "kanji.yaml"
	LuckFile         = "score_81.yaml"
	SancaiFile       = "sancai.yaml"
	CombinationsFile = "combinations.yaml"
)

//go:embed data/*.yaml
var builtinFS embed.FS

var (
	builtinOnce   sync.Once
	builtinTables *Tables
	builtinErr    error
)

// Builtin returns the dataset compiled into the binary
func Builtin() (*Tables, error) {
	builtinOnce.Do(func() {
		sub, err := fs.Sub(builtinFS, "data")
		if err != nil {
			builtinErr = err
			return
		}
		builtinTables, builtinErr = loadFS(sub, "builtin", true)
	})
	return builtinTables, builtinErr
}

// LoadDir loads a YAML dataset from dir. Missing files leave their table
// empty, in which case lookups fall back to their unknown values.
func LoadDir(dir string) (*Tables, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir %s is not a directory", dir)
	}
	return loadFS(os.DirFS(dir), dir, false)
}

// Load picks the dataset named by cfg: SQLite first, then a YAML
// directory, then the built-in tables
func Load(cfg model.DataConfig) (*Tables, error) {
	switch {
	case cfg.SQLite != "":
		return LoadSQLite(cfg.SQLite)
	case cfg.Dir != "":
		return LoadDir(cfg.Dir)
	default:
		return Builtin()
	}
}

func loadFS(fsys fs.FS, source string, required bool) (*Tables, error) {
	var (
		kanji  []KanjiEntry
		luck   []LuckEntry
		sancai []SancaiEntry
		combos []ComboEntry
	)

	files := []struct {
		name string
		dst  any
	}{
		{KanjiFile, &kanji},
		{LuckFile, &luck},
		{SancaiFile, &sancai},
		{CombinationsFile, &combos},
	}
	for _, f := range files {
		if err := readYAML(fsys, f.name, f.dst); err != nil {
			if !required && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
	}

	return New(source, kanji, luck, sancai, combos)
}

func readYAML(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// SaveDir writes t as a YAML dataset into dir
func SaveDir(t *Tables, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	kanji, luck, sancai, combos := t.Rows()
	files := []struct {
		name string
		rows any
	}{
		{KanjiFile, kanji},
		{LuckFile, luck},
		{SancaiFile, sancai},
		{CombinationsFile, combos},
	}
	for _, f := range files {
		data, err := yaml.Marshal(f.rows)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}
