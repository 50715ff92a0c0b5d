package geneset

import (
	"fmt"
	"io"
	"strings"
)

// FormatError reports a malformed record in a library file.
type FormatError struct {
	Line    int
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error at line %d: %s", e.Line, e.Message)
}

// Term is one named hypothesis in a library: a described gene list, kept in
// authored order. Gene lists may contain duplicates as authored; statistics
// deduplicate them downstream.
type Term struct {
	Name        string
	Description string
	Genes       []string
}

// Library is an ordered collection of terms parsed from one GMT source.
// Immutable after construction.
type Library struct {
	name     string
	organism string
	terms    []Term
	unique   map[string]struct{}
}

// LoadLibrary parses a GMT file, named after the file stem. Path "-" reads
// stdin.
func LoadLibrary(path, organism string) (*Library, error) {
	r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	name := Stem(path)
	if path == "-" {
		name = "stdin"
	}
	return ParseLibrary(r, name, organism)
}

// ParseLibrary reads GMT records from r: one term per line, tab-separated
// name, description, then zero or more genes. A non-blank line with fewer
// than two fields is a FormatError; fully blank lines are skipped. Empty
// gene fields (from trailing tabs) are dropped.
func ParseLibrary(r io.Reader, name, organism string) (*Library, error) {
	lib := &Library{
		name:     name,
		organism: organism,
		unique:   make(map[string]struct{}),
	}

	sc := newScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			return nil, &FormatError{
				Line:    lineNum,
				Message: fmt.Sprintf("term record needs a name and a description, got %d field(s)", len(parts)),
			}
		}

		term := Term{Name: parts[0], Description: parts[1]}
		for _, g := range parts[2:] {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			term.Genes = append(term.Genes, g)
			lib.unique[g] = struct{}{}
		}
		lib.terms = append(lib.terms, term)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("library %s: %w", name, err)
	}

	return lib, nil
}

// Name returns the library name.
func (l *Library) Name() string { return l.name }

// Organism returns the free-text organism label.
func (l *Library) Organism() string { return l.organism }

// Terms returns the terms in authored order. Callers must not modify the
// returned slice.
func (l *Library) Terms() []Term { return l.terms }

// NumTerms returns the number of terms.
func (l *Library) NumTerms() int { return len(l.terms) }

// Size returns the number of unique genes across all terms.
func (l *Library) Size() int { return len(l.unique) }

// UniqueGenes returns the union of all terms' genes in sorted order.
func (l *Library) UniqueGenes() []string { return sortedKeys(l.unique) }

// Contains reports whether gene occurs in any term.
func (l *Library) Contains(gene string) bool {
	_, ok := l.unique[gene]
	return ok
}
