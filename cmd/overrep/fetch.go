package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/genesetlab/overrep/internal/catalog"
)

const (
	// enrichrLibraryURL serves any Enrichr library in GMT format.
	enrichrLibraryURL = "https://maayanlab.cloud/Enrichr/geneSetLibrary?mode=text&libraryName=%s"
	// hgncCompleteSetURL is the HGNC complete gene set, used to build the
	// default background of approved human gene symbols.
	hgncCompleteSetURL = "https://storage.googleapis.com/public-download-files/hgnc/tsv/tsv/hgnc_complete_set.txt"
)

func newFetchCmd() *cobra.Command {
	var (
		libraries  []string
		background bool
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download term libraries and a background gene set",
		Long: `Fetch downloads Enrichr term libraries in GMT format and builds a
background of approved HGNC gene symbols, placing both under the data
directory where run and serve pick them up automatically.`,
		Example: `  # Default library plus the HGNC background (one-time setup)
  overrep fetch

  # Specific libraries, skip the background
  overrep fetch -l KEGG_2021_Human -l Reactome_2022 --background=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(libraries, background, outputDir)
		},
	}

	cmd.Flags().StringSliceVarP(&libraries, "library", "l", []string{"GO_Biological_Process_2023"}, "Enrichr library names to download")
	cmd.Flags().BoolVar(&background, "background", true, "download the HGNC background gene set")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "destination directory (default: data directory)")

	return cmd
}

func runFetch(libraries []string, background bool, outputDir string) error {
	if outputDir == "" {
		outputDir = cfg.DataDir
	}

	libDir := filepath.Join(outputDir, catalog.LibrariesDir)
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", libDir, err)
	}

	fmt.Printf("Fetching %d libraries into %s\n\n", len(libraries), libDir)
	for _, name := range libraries {
		src := fmt.Sprintf(enrichrLibraryURL, url.QueryEscape(name))
		dest := filepath.Join(libDir, name+".gmt")
		if err := downloadFile(src, dest); err != nil {
			return fmt.Errorf("download library %s: %w", name, err)
		}
	}

	if background {
		bgDir := filepath.Join(outputDir, catalog.BackgroundsDir)
		if err := os.MkdirAll(bgDir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", bgDir, err)
		}

		tsvPath := filepath.Join(outputDir, "hgnc_complete_set.tsv")
		if err := downloadFile(hgncCompleteSetURL, tsvPath); err != nil {
			return fmt.Errorf("download HGNC gene set: %w", err)
		}

		bgPath := filepath.Join(bgDir, "hgnc_symbols.txt")
		n, err := extractHGNCSymbols(tsvPath, bgPath)
		if err != nil {
			return fmt.Errorf("build HGNC background: %w", err)
		}
		fmt.Printf("  Wrote %d symbols to %s\n", n, bgPath)
	}

	fmt.Printf("\nFetch complete!\n")
	fmt.Printf("To run an enrichment:\n")
	fmt.Printf("  overrep run -g my_genes.txt\n")
	return nil
}

// downloadFile downloads url to destPath with progress, skipping files
// that already exist.
func downloadFile(url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Printf("  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Printf("  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{total: resp.ContentLength, lastPrint: time.Now()}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Printf("    Done: %s\n", formatSize(pw.written))
	return nil
}

// progressWriter prints download progress about once per second.
type progressWriter struct {
	total     int64
	written   int64
	lastPrint time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.written += int64(len(p))
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.written) / float64(pw.total) * 100
			fmt.Printf("\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.written), formatSize(pw.total), pct)
		} else {
			fmt.Printf("\r    Progress: %s  ", formatSize(pw.written))
		}
		pw.lastPrint = time.Now()
	}
	return len(p), nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// extractHGNCSymbols pulls the approved symbol column out of the HGNC
// complete set TSV and writes one symbol per line.
func extractHGNCSymbols(tsvPath, destPath string) (int, error) {
	in, err := os.Open(tsvPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%s is empty", tsvPath)
	}
	header := strings.Split(scanner.Text(), "\t")
	symbolCol := -1
	for i, col := range header {
		if col == "symbol" {
			symbolCol = i
			break
		}
	}
	if symbolCol < 0 {
		return 0, fmt.Errorf("no symbol column in %s", tsvPath)
	}

	tmpPath := destPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(out)

	count := 0
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if symbolCol >= len(fields) {
			continue
		}
		symbol := strings.TrimSpace(fields[symbolCol])
		if symbol == "" {
			continue
		}
		fmt.Fprintln(w, symbol)
		count++
	}
	if err := scanner.Err(); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return 0, err
	}
	if err := w.Flush(); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return 0, err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	return count, nil
}
