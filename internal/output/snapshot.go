package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/genesetlab/overrep/internal/enrich"
	"github.com/genesetlab/overrep/internal/geneset"
)

// Snapshot freezes everything needed to audit a run: the accepted input
// identifiers, the validation report, the inputs' names and the full
// ranked result list.
type Snapshot struct {
	Name       string              `json:"name"`
	InputGenes []string            `json:"input_gene_set"`
	Validation geneset.Validation  `json:"validation"`
	Library    string              `json:"library"`
	Background string              `json:"background"`
	Method     enrich.Method       `json:"method"`
	CreatedAt  time.Time           `json:"created_at"`
	Results    []enrich.TermResult `json:"results"`
}

// NewSnapshot combines the analyzed gene set with its run.
func NewSnapshot(gs *geneset.GeneSet, run *enrich.Run) *Snapshot {
	return &Snapshot{
		Name:       run.Name,
		InputGenes: gs.Genes(),
		Validation: gs.Validation(),
		Library:    run.Library,
		Background: run.Background,
		Method:     run.Method,
		CreatedAt:  run.CreatedAt,
		Results:    run.Results,
	}
}

// Save writes the snapshot as indented JSON under dir, creating the
// directory if needed, and returns the file path.
func (s *Snapshot) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(dir, SafeName(s.Name)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

var nameReplacer = strings.NewReplacer(" ", "_", ":", "-", "/", "-", "\\", "-")

// SafeName converts a run name, which carries spaces and colons from its
// timestamp, into a portable file name.
func SafeName(name string) string {
	return nameReplacer.Replace(name)
}
