package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesetlab/overrep/internal/enrich"
)

func TestJSON_RoundTrip(t *testing.T) {
	run := sampleRun()

	data, err := JSON(run)
	require.NoError(t, err)

	var parsed []enrich.TermResult
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, run.Results, parsed)
}

func TestJSON_FieldNames(t *testing.T) {
	data, err := JSON(sampleRun())
	require.NoError(t, err)

	s := string(data)
	for _, key := range []string{
		`"rank"`, `"term"`, `"description"`, `"overlap"`,
		`"overlap_count"`, `"term_size"`, `"overlap_size"`,
		`"p-value"`, `"fdr"`,
	} {
		assert.Contains(t, s, key)
	}
}

func TestJSON_EmptyResults(t *testing.T) {
	run := sampleRun()
	run.Results = []enrich.TermResult{}

	data, err := JSON(run)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
