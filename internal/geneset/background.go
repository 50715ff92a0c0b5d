package geneset

import (
	"fmt"
	"io"
)

// Background is the reference universe of gene identifiers. It defines the
// finite population for the statistical tests and doubles as the validity
// reference for GeneSet construction. Immutable after construction.
type Background struct {
	name     string
	organism string
	genes    map[string]struct{}
}

// NewBackground builds a Background from identifiers. Duplicates collapse
// silently.
func NewBackground(name, organism string, genes []string) *Background {
	b := &Background{
		name:     name,
		organism: organism,
		genes:    make(map[string]struct{}, len(genes)),
	}
	for _, g := range genes {
		b.genes[g] = struct{}{}
	}
	return b
}

// LoadBackground reads a background from a whitespace/newline-delimited
// file, named after the file stem. Path "-" reads stdin.
func LoadBackground(path, organism string) (*Background, error) {
	r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	name := Stem(path)
	if path == "-" {
		name = "stdin"
	}
	return ParseBackground(r, name, organism)
}

// ParseBackground reads identifiers from r, one or more per line. Blank
// lines are ignored; empty input yields an empty background.
func ParseBackground(r io.Reader, name, organism string) (*Background, error) {
	tokens, err := scanTokens(r)
	if err != nil {
		return nil, fmt.Errorf("background %s: %w", name, err)
	}
	return NewBackground(name, organism, tokens), nil
}

// Name returns the background name.
func (b *Background) Name() string { return b.name }

// Organism returns the free-text organism label.
func (b *Background) Organism() string { return b.organism }

// Size returns the population size.
func (b *Background) Size() int { return len(b.genes) }

// Contains reports whether gene is part of the universe.
func (b *Background) Contains(gene string) bool {
	_, ok := b.genes[gene]
	return ok
}

// Genes returns the universe in sorted order.
func (b *Background) Genes() []string { return sortedKeys(b.genes) }
