package geneset

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackground(t *testing.T) {
	in := "TP53\nKRAS BRAF\n\nEGFR\n"
	bg, err := ParseBackground(strings.NewReader(in), "panel", "Homo sapiens")
	require.NoError(t, err)

	assert.Equal(t, "panel", bg.Name())
	assert.Equal(t, "Homo sapiens", bg.Organism())
	assert.Equal(t, 4, bg.Size())
	assert.Equal(t, []string{"BRAF", "EGFR", "KRAS", "TP53"}, bg.Genes())
	assert.True(t, bg.Contains("KRAS"))
	assert.False(t, bg.Contains("MYC"))
}

func TestParseBackground_Empty(t *testing.T) {
	bg, err := ParseBackground(strings.NewReader(""), "empty", "")
	require.NoError(t, err)
	assert.Equal(t, 0, bg.Size())
	assert.Empty(t, bg.Genes())
}

func TestNewBackground_CollapsesDuplicates(t *testing.T) {
	bg := NewBackground("dup", "", []string{"TP53", "TP53", "KRAS"})
	assert.Equal(t, 2, bg.Size())
}

func TestLoadBackground(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hgnc_symbols.txt")
	require.NoError(t, os.WriteFile(path, []byte("A1BG\nBGN\nTP53\n"), 0o644))

	bg, err := LoadBackground(path, "Homo sapiens")
	require.NoError(t, err)
	assert.Equal(t, "hgnc_symbols", bg.Name())
	assert.Equal(t, 3, bg.Size())
}

func TestLoadBackground_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hgnc_symbols.txt.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("A1BG\nBGN\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	bg, err := LoadBackground(path, "Homo sapiens")
	require.NoError(t, err)
	assert.Equal(t, "hgnc_symbols", bg.Name())
	assert.Equal(t, 2, bg.Size())
}
