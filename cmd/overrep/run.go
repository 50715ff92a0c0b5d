package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genesetlab/overrep/internal/catalog"
	"github.com/genesetlab/overrep/internal/duckdb"
	"github.com/genesetlab/overrep/internal/enrich"
	"github.com/genesetlab/overrep/internal/geneset"
	"github.com/genesetlab/overrep/internal/output"
)

type runOptions struct {
	geneFiles   []string
	libFiles    []string
	background  string
	method      string
	outputDir   string
	format      string
	noNormalize bool
	keepInvalid bool
	workers     int
	snapshot    bool
	store       bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run enrichment for gene lists against term libraries",
		Long: `Run scores every gene list against every term library and reports
per-term p-values with Benjamini-Hochberg correction. Inputs default to
the data directory layout: gene_lists/*.txt, libraries/*.gmt and the
first file under backgrounds/.`,
		Example: `  # Everything under the data directory, results to stdout
  overrep run

  # One gene list against one library, written as JSON
  overrep run -g my_genes.txt -l go_bp.gmt -f json -o results/

  # Hypergeometric test with snapshots and run history
  overrep run -m hypergeometric --snapshot --store`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrichment(cmd, opts)
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVarP(&opts.geneFiles, "genes", "g", nil, "gene list files (default: <data_dir>/gene_lists/*.txt)")
	fl.StringSliceVarP(&opts.libFiles, "libraries", "l", nil, "GMT library files (default: <data_dir>/libraries/*.gmt)")
	fl.StringVarP(&opts.background, "background", "b", "", "background gene file (default: first of <data_dir>/backgrounds/*.txt)")
	fl.StringVarP(&opts.method, "method", "m", "", "statistical method: fishers_exact, hypergeometric, chi_squared")
	fl.StringVarP(&opts.outputDir, "output", "o", "", "output file for a single run, directory for several (default: stdout)")
	fl.StringVarP(&opts.format, "format", "f", "tsv", "output format: tsv, json, html")
	fl.BoolVar(&opts.noNormalize, "no-normalize", false, "keep gene symbol case as given")
	fl.BoolVar(&opts.keepInvalid, "keep-invalid", false, "keep genes missing from the background")
	fl.IntVar(&opts.workers, "workers", 0, "parallel term workers (0 = one per CPU)")
	fl.BoolVar(&opts.snapshot, "snapshot", false, "write a JSON snapshot of each run to the snapshot directory")
	fl.BoolVar(&opts.store, "store", false, "record runs in the DuckDB run history")

	return cmd
}

func runEnrichment(cmd *cobra.Command, opts *runOptions) error {
	genePaths, err := resolveInputs(opts.geneFiles, catalog.GeneListsDir, "*.txt", "*.txt.gz")
	if err != nil {
		return err
	}
	if len(genePaths) == 0 {
		return fmt.Errorf("no gene lists found in %s (use --genes)",
			filepath.Join(cfg.DataDir, catalog.GeneListsDir))
	}

	libPaths, err := resolveInputs(opts.libFiles, catalog.LibrariesDir, "*.gmt", "*.gmt.gz")
	if err != nil {
		return err
	}
	if len(libPaths) == 0 {
		return fmt.Errorf("no term libraries found in %s (use --libraries)",
			filepath.Join(cfg.DataDir, catalog.LibrariesDir))
	}

	bgPath := opts.background
	if bgPath == "" {
		bgPaths, err := resolveInputs(nil, catalog.BackgroundsDir, "*.txt", "*.txt.gz")
		if err != nil {
			return err
		}
		if len(bgPaths) == 0 {
			return fmt.Errorf("no background found in %s (use --background)",
				filepath.Join(cfg.DataDir, catalog.BackgroundsDir))
		}
		bgPath = bgPaths[0]
	}
	bg, err := geneset.LoadBackground(bgPath, cfg.Organism)
	if err != nil {
		return err
	}
	logger.Info("background loaded",
		zap.String("background", bg.Name()),
		zap.Int("genes", bg.Size()),
	)

	libs := make([]*geneset.Library, 0, len(libPaths))
	for _, path := range libPaths {
		lib, err := geneset.LoadLibrary(path, cfg.Organism)
		if err != nil {
			return err
		}
		libs = append(libs, lib)
	}

	method := opts.method
	if method == "" {
		method = cfg.Method
	}
	parsed, err := enrich.ParseMethod(method)
	if err != nil {
		return err
	}

	workers := opts.workers
	if workers == 0 {
		workers = cfg.Workers
	}
	engine := enrich.NewEngine()
	engine.SetLogger(logger)
	engine.SetWorkers(workers)

	var store *duckdb.Store
	if opts.store {
		store, err = duckdb.Open(cfg.Server.DBPath)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer store.Close()
	}

	single := len(genePaths)*len(libPaths) == 1

	runs := 0
	for _, genePath := range genePaths {
		gs, err := geneset.Load(genePath, bg, geneset.Options{
			Normalize: !opts.noNormalize,
			Filter:    !opts.keepInvalid,
		})
		if err != nil {
			return err
		}
		if v := gs.Validation(); len(v.Duplicates) > 0 || len(v.NonValid) > 0 {
			logger.Warn("dropped input tokens",
				zap.String("gene_set", gs.Name()),
				zap.Int("accepted", gs.Size()),
				zap.Strings("duplicates", v.Duplicates),
				zap.Strings("non_valid", v.NonValid),
			)
		}

		for _, lib := range libs {
			run, err := engine.Run(cmd.Context(), gs, lib, bg, parsed)
			if err != nil {
				return err
			}
			if err := writeRun(run, opts.outputDir, opts.format, single); err != nil {
				return err
			}
			if opts.snapshot {
				snap := output.NewSnapshot(gs, run)
				path, err := snap.Save(cfg.SnapshotDir)
				if err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
				logger.Info("snapshot written", zap.String("path", path))
			}
			if store != nil {
				if err := store.SaveRun(cmd.Context(), run); err != nil {
					return fmt.Errorf("store run: %w", err)
				}
			}
			runs++
		}
	}

	logger.Info("all runs complete", zap.Int("runs", runs))
	return nil
}

// resolveInputs returns the explicit paths when given, otherwise globs
// the data directory subfolder.
func resolveInputs(explicit []string, subdir string, patterns ...string) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	dir := filepath.Join(cfg.DataDir, subdir)
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

// writeRun renders one run. With no destination it goes to stdout; a
// single run writes the destination as a file, several runs treat it as
// a directory holding one file per run.
func writeRun(run *enrich.Run, dest, format string, single bool) error {
	if dest == "" {
		return renderRun(os.Stdout, run, format)
	}

	path := dest
	if single {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
	} else {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return err
		}
		path = filepath.Join(dest, output.SafeName(run.Name)+"."+format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := renderRun(f, run, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func renderRun(w io.Writer, run *enrich.Run, format string) error {
	switch format {
	case "tsv":
		return output.WriteTSV(w, run)
	case "json":
		data, err := output.JSON(run)
		if err != nil {
			return err
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case "html":
		return output.WriteHTML(w, run)
	default:
		return fmt.Errorf("unknown output format %q (supported: tsv, json, html)", format)
	}
}
