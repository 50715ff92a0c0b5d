// Package catalog indexes the data directory holding term libraries,
// background populations and saved gene lists.
package catalog

import (
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/genesetlab/overrep/internal/geneset"
)

// Subdirectories of the data directory.
const (
	LibrariesDir   = "libraries"
	BackgroundsDir = "backgrounds"
	GeneListsDir   = "gene_lists"
)

// Catalog holds loaded libraries and backgrounds keyed by name.
type Catalog struct {
	libraries   map[string]*geneset.Library
	backgrounds map[string]*geneset.Background
}

// New builds a catalog from already loaded entities.
func New(libraries []*geneset.Library, backgrounds []*geneset.Background) *Catalog {
	c := &Catalog{
		libraries:   make(map[string]*geneset.Library, len(libraries)),
		backgrounds: make(map[string]*geneset.Background, len(backgrounds)),
	}
	for _, lib := range libraries {
		c.libraries[lib.Name()] = lib
	}
	for _, bg := range backgrounds {
		c.backgrounds[bg.Name()] = bg
	}
	return c
}

// Load reads every library (libraries/*.gmt, plain or gzipped) and
// background (backgrounds/*.txt, plain or gzipped) under dir. A missing
// subdirectory yields an empty section, not an error.
func Load(dir, organism string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := New(nil, nil)

	libPaths, err := globAll(filepath.Join(dir, LibrariesDir), "*.gmt", "*.gmt.gz")
	if err != nil {
		return nil, err
	}
	for _, p := range libPaths {
		lib, err := geneset.LoadLibrary(p, organism)
		if err != nil {
			return nil, fmt.Errorf("load library %s: %w", p, err)
		}
		c.libraries[lib.Name()] = lib
		logger.Info("loaded library",
			zap.String("name", lib.Name()),
			zap.Int("terms", lib.NumTerms()),
			zap.Int("unique_genes", lib.Size()))
	}

	bgPaths, err := globAll(filepath.Join(dir, BackgroundsDir), "*.txt", "*.txt.gz")
	if err != nil {
		return nil, err
	}
	for _, p := range bgPaths {
		bg, err := geneset.LoadBackground(p, organism)
		if err != nil {
			return nil, fmt.Errorf("load background %s: %w", p, err)
		}
		c.backgrounds[bg.Name()] = bg
		logger.Info("loaded background",
			zap.String("name", bg.Name()),
			zap.Int("genes", bg.Size()))
	}

	return c, nil
}

// globAll collects files matching any of the patterns under dir, sorted by
// path.
func globAll(dir string, patterns ...string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

// Library returns a loaded library by name.
func (c *Catalog) Library(name string) (*geneset.Library, bool) {
	lib, ok := c.libraries[name]
	return lib, ok
}

// Background returns a loaded background by name.
func (c *Catalog) Background(name string) (*geneset.Background, bool) {
	bg, ok := c.backgrounds[name]
	return bg, ok
}

// Libraries returns the loaded libraries sorted by name.
func (c *Catalog) Libraries() []*geneset.Library {
	names := make([]string, 0, len(c.libraries))
	for name := range c.libraries {
		names = append(names, name)
	}
	sort.Strings(names)

	libs := make([]*geneset.Library, len(names))
	for i, name := range names {
		libs[i] = c.libraries[name]
	}
	return libs
}

// Backgrounds returns the loaded backgrounds sorted by name.
func (c *Catalog) Backgrounds() []*geneset.Background {
	names := make([]string, 0, len(c.backgrounds))
	for name := range c.backgrounds {
		names = append(names, name)
	}
	sort.Strings(names)

	bgs := make([]*geneset.Background, len(names))
	for i, name := range names {
		bgs[i] = c.backgrounds[name]
	}
	return bgs
}

// DefaultBackground returns the first background in name order, the same
// pick-the-first-file convention the CLI uses when none is given.
func (c *Catalog) DefaultBackground() (*geneset.Background, bool) {
	bgs := c.Backgrounds()
	if len(bgs) == 0 {
		return nil, false
	}
	return bgs[0], true
}
