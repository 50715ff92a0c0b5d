package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genesetlab/overrep/internal/catalog"
)

func newLibrariesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "libraries",
		Short: "List term libraries and backgrounds in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(cfg.DataDir, cfg.Organism, logger)
			if err != nil {
				return err
			}

			libs := cat.Libraries()
			if len(libs) == 0 {
				fmt.Printf("No libraries in %s. Run 'overrep fetch' to download some.\n", cfg.DataDir)
				return nil
			}

			fmt.Printf("Libraries (%d):\n", len(libs))
			for _, lib := range libs {
				fmt.Printf("  %-40s %6d terms  %7d genes\n", lib.Name(), lib.NumTerms(), lib.Size())
			}

			bgs := cat.Backgrounds()
			if len(bgs) > 0 {
				fmt.Printf("\nBackgrounds (%d):\n", len(bgs))
				for _, bg := range bgs {
					fmt.Printf("  %-40s %7d genes\n", bg.Name(), bg.Size())
				}
			}
			return nil
		},
	}
}
