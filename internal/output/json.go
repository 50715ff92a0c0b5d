package output

import (
	"encoding/json"

	"github.com/genesetlab/overrep/internal/enrich"
)

// JSON serializes the ranked results with indentation. Field names and
// numeric precision match the in-memory result list exactly.
func JSON(run *enrich.Run) ([]byte, error) {
	return json.MarshalIndent(run.Results, "", "    ")
}
