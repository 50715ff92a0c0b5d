package geneset

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxLineBytes bounds a single input line. GMT records from large libraries
// can carry tens of thousands of genes on one line.
const maxLineBytes = 16 * 1024 * 1024

// openReader opens path for reading, transparently decompressing gzip input.
// Compression is detected by magic bytes, not file extension. Path "-"
// reads stdin.
func openReader(path string) (io.ReadCloser, error) {
	var src io.ReadCloser
	if path == "-" {
		src = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		src = f
	}

	br := bufio.NewReader(src)

	// Check for gzip magic number (0x1f, 0x8b)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return &gzipReadCloser{gz: gz, src: src}, nil
	}

	return &bufferedReadCloser{br: br, src: src}, nil
}

type gzipReadCloser struct {
	gz  *gzip.Reader
	src io.Closer
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	g.gz.Close()
	return g.src.Close()
}

type bufferedReadCloser struct {
	br  *bufio.Reader
	src io.Closer
}

func (b *bufferedReadCloser) Read(p []byte) (int, error) { return b.br.Read(p) }

func (b *bufferedReadCloser) Close() error { return b.src.Close() }

// newScanner returns a line scanner sized for large library records.
func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return sc
}

// scanTokens reads whitespace-separated tokens from r.
func scanTokens(r io.Reader) ([]string, error) {
	sc := newScanner(r)
	sc.Split(bufio.ScanWords)
	var tokens []string
	for sc.Scan() {
		tokens = append(tokens, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tokens: %w", err)
	}
	return tokens, nil
}

// Stem returns the file name without directory and extension, unwrapping a
// trailing .gz first: "data/libraries/go_bp.gmt.gz" becomes "go_bp".
func Stem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}
