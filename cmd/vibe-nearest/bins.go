package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-nearest/internal/binning"
	"github.com/inodb/vibe-nearest/internal/feature"
)

func newBinsCmd() *cobra.Command {
	var assign, query bool

	cmd := &cobra.Command{
		Use:   "bins <region>...",
		Short: "Print the UCSC bins for one or more regions",
		Long: `Print the bins a region touches. With --assign, print the single bin a
feature spanning the region is stored under instead.`,
		Example: `  vibe-nearest bins chr1:100000-200000
  vibe-nearest bins --assign chr7:140753335-140753336
  vibe-nearest bins --query chr1:131071-131072`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memo := binning.NewMemo(0)
			out := cmd.OutOrStdout()

			for _, arg := range args {
				r, err := feature.ParseRegion(arg)
				if err != nil {
					return err
				}

				switch {
				case assign:
					bin, err := binning.Assign(r.Start, r.End)
					if err != nil {
						return fmt.Errorf("assign bin for %s: %w", arg, err)
					}
					fmt.Fprintf(out, "%s\t%d\n", arg, bin)
				case query:
					bins, err := binning.QueryBins(r.Start, r.End)
					if err != nil {
						return fmt.Errorf("bins for %s: %w", arg, err)
					}
					fmt.Fprintf(out, "%s\t%s\n", arg, bins)
				default:
					bins, err := memo.BinsForRange(r.Start, r.End)
					if err != nil {
						return fmt.Errorf("bins for %s: %w", arg, err)
					}
					fmt.Fprintf(out, "%s\t%s\n", arg, bins)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&assign, "assign", false, "Print the storage bin instead of the query bins")
	cmd.Flags().BoolVar(&query, "query", false, "Pad the region by one base on each side, as overlap searches do")
	cmd.MarkFlagsMutuallyExclusive("assign", "query")

	return cmd
}
