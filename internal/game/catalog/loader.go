package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Content layout under the catalog directory.
const (
	speciesDir = "species"
	movesDir   = "moves"
	growthFile = "growth.yaml"
)

type speciesFile struct {
	Species []speciesRecord `yaml:"species"`
}

type movesFile struct {
	Moves []moveRecord `yaml:"moves"`
}

type growthDoc struct {
	Rows []GrowthRow `yaml:"experience"`
}

// Load reads dir/species/*.yaml, dir/moves/*.yaml and the optional
// dir/growth.yaml, then builds and validates the Catalog. The species and
// move directories are read concurrently.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns a validated Catalog or an error naming the offending file.
func Load(ctx context.Context, dir string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		species []*Species
		moves   []*Move
		growth  = NewGrowth()
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		species, err = loadSpecies(gctx, filepath.Join(dir, speciesDir))
		return err
	})
	g.Go(func() error {
		var err error
		moves, err = loadMoves(gctx, filepath.Join(dir, movesDir))
		return err
	})
	g.Go(func() error {
		return loadGrowth(filepath.Join(dir, growthFile), growth)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c, err := New(species, moves, growth)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		zap.String("dir", dir),
		zap.Int("species", len(species)),
		zap.Int("moves", len(moves)),
	)
	return c, nil
}

func loadSpecies(ctx context.Context, dir string) ([]*Species, error) {
	var out []*Species
	err := eachYAML(ctx, dir, func(dec *yaml.Decoder) error {
		var f speciesFile
		if err := dec.Decode(&f); err != nil {
			return err
		}
		for _, rec := range f.Species {
			s, err := rec.toSpecies()
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		return nil
	})
	return out, err
}

func loadMoves(ctx context.Context, dir string) ([]*Move, error) {
	var out []*Move
	err := eachYAML(ctx, dir, func(dec *yaml.Decoder) error {
		var f movesFile
		if err := dec.Decode(&f); err != nil {
			return err
		}
		for _, rec := range f.Moves {
			m, err := rec.toMove()
			if err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	return out, err
}

func loadGrowth(path string, g *Growth) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	var doc growthDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parsing %q: %w", path, err)
	}
	if err := g.Override(doc.Rows); err != nil {
		return fmt.Errorf("applying %q: %w", path, err)
	}
	return nil
}

// eachYAML calls fn for every .yaml/.yml file in dir in lexical order, with a
// strict decoder. Errors are wrapped with the file path.
func eachYAML(ctx context.Context, dir string, fn func(dec *yaml.Decoder) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading dir %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := strings.ToLower(filepath.Ext(e.Name())); ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := fn(dec); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
	}
	return nil
}
