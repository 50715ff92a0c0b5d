// Package geneset defines the input entities of an enrichment analysis:
// the user's gene set, the background universe, and term libraries.
package geneset

import (
	"sort"
	"strings"
)

// Reference reports whether an identifier belongs to a validity universe.
// Background implements it; tests may supply any fixed set.
type Reference interface {
	Contains(id string) bool
}

// Options controls token handling during GeneSet construction.
type Options struct {
	// Normalize uppercases every token before any comparison.
	Normalize bool
	// Filter rejects tokens absent from the validity reference.
	Filter bool
}

// DefaultOptions normalizes identifier case and filters against the
// validity reference.
var DefaultOptions = Options{Normalize: true, Filter: true}

// Validation partitions the rejected input tokens by reason. Both slices
// are sorted and hold each token at most once.
type Validation struct {
	Duplicates []string `json:"duplicates"`
	NonValid   []string `json:"non_valid"`
}

// GeneSet is a validated, deduplicated collection of gene identifiers.
// Immutable after construction.
type GeneSet struct {
	name       string
	genes      map[string]struct{}
	validation Validation
}

// New builds a GeneSet from raw tokens, classifying each in input order:
// a token equal to an already accepted one is a duplicate; with filtering
// enabled, a token absent from ref is invalid; anything else is accepted.
// Malformed input is never an error here - every finding lands in the
// validation report. A nil ref behaves as an empty universe.
func New(name string, tokens []string, ref Reference, opts Options) *GeneSet {
	gs := &GeneSet{
		name:  name,
		genes: make(map[string]struct{}, len(tokens)),
	}

	duplicates := make(map[string]struct{})
	nonValid := make(map[string]struct{})
	for _, tok := range tokens {
		if opts.Normalize {
			tok = strings.ToUpper(tok)
		}
		if _, ok := gs.genes[tok]; ok {
			duplicates[tok] = struct{}{}
			continue
		}
		if opts.Filter && (ref == nil || !ref.Contains(tok)) {
			nonValid[tok] = struct{}{}
			continue
		}
		gs.genes[tok] = struct{}{}
	}

	gs.validation = Validation{
		Duplicates: sortedKeys(duplicates),
		NonValid:   sortedKeys(nonValid),
	}
	return gs
}

// Load reads whitespace-separated identifiers from path ("-" for stdin)
// and builds a GeneSet named after the file stem.
func Load(path string, ref Reference, opts Options) (*GeneSet, error) {
	tokens, err := LoadTokens(path)
	if err != nil {
		return nil, err
	}
	name := Stem(path)
	if path == "-" {
		name = "stdin"
	}
	return New(name, tokens, ref, opts), nil
}

// LoadTokens reads whitespace-separated identifiers from path ("-" for
// stdin) without any validation; pass the result to New.
func LoadTokens(path string) ([]string, error) {
	r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return scanTokens(r)
}

// Name returns the gene set name.
func (g *GeneSet) Name() string { return g.name }

// Size returns the number of accepted genes.
func (g *GeneSet) Size() int { return len(g.genes) }

// Contains reports whether gene was accepted into the set.
func (g *GeneSet) Contains(gene string) bool {
	_, ok := g.genes[gene]
	return ok
}

// Genes returns the accepted genes in sorted order.
func (g *GeneSet) Genes() []string { return sortedKeys(g.genes) }

// Validation returns the duplicate and invalid tokens found during
// construction.
func (g *GeneSet) Validation() Validation {
	return Validation{
		Duplicates: append([]string{}, g.validation.Duplicates...),
		NonValid:   append([]string{}, g.validation.NonValid...),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
