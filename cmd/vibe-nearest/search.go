package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-nearest/internal/duckdb"
	"github.com/inodb/vibe-nearest/internal/feature"
	"github.com/inodb/vibe-nearest/internal/output"
	"github.com/inodb/vibe-nearest/internal/proximity"
)

var searchUsage = map[proximity.Op]struct{ short, example string }{
	proximity.OpOverlap: {
		"Find features overlapping each region",
		`  vibe-nearest overlap --db genes.duckdb --table refGene chr12:25245300-25245400`,
	},
	proximity.OpNearest: {
		"Find the k features nearest each region",
		`  vibe-nearest nearest --table refGene -k 3 chr12:25245300-25245400
  vibe-nearest nearest --table refGene --direction up chr12:25245300-25245400`,
	},
	proximity.OpUpstream: {
		"Find the k nearest features upstream of each region, relative to its strand",
		`  vibe-nearest upstream --table refGene chr12:25245300-25245400:-`,
	},
	proximity.OpDownstream: {
		"Find the k nearest features downstream of each region, relative to its strand",
		`  vibe-nearest downstream --table snp151 --table refGene -k 2 chr7:140753335-140753336:+
  cut -f1 regions.txt | vibe-nearest downstream --table refGene -`,
	},
}

type searchOptions struct {
	k          int
	direction  string
	outputFile string
}

func newSearchCmd(op proximity.Op) *cobra.Command {
	var opts searchOptions
	usage := searchUsage[op]

	cmd := &cobra.Command{
		Use:     op.String() + " <region>... | -",
		Short:   usage.short,
		Example: usage.example,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, op, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	if op != proximity.OpOverlap {
		cmd.Flags().IntVarP(&opts.k, "count", "k", 1, "Number of features to return (ties with the k-th are included)")
	}
	if op == proximity.OpNearest {
		cmd.Flags().StringVar(&opts.direction, "direction", "none", "Grow the window only toward: none, up, down")
	}

	return cmd
}

func runSearch(cmd *cobra.Command, op proximity.Op, opts searchOptions, args []string) error {
	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	dir, err := proximity.ParseDirection(opts.direction)
	if err != nil {
		return err
	}

	regions, err := readRegions(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	dbPath := viper.GetString("db")
	if dbPath == "" {
		return fmt.Errorf("no database configured (use --db or: vibe-nearest config set db <path>)")
	}
	tables := viper.GetStringSlice("table")
	if len(tables) == 0 {
		return fmt.Errorf("no feature table given (use --table)")
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	fs, err := openFeatureStore(store, tables)
	if err != nil {
		return err
	}

	searcher := proximity.NewSearcher(fs)
	searcher.SetConfig(proximity.Config{
		MaxIterations: viper.GetInt("search.max_iterations"),
		InitialStep:   viper.GetUint64("search.initial_step"),
	})
	searcher.SetLogger(logger)

	out := cmd.OutOrStdout()
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	writer, err := output.NewWriter(viper.GetString("format"), out)
	if err != nil {
		return err
	}
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	logger.Debug("searching",
		zap.String("op", op.String()),
		zap.Strings("tables", tables),
		zap.Int("regions", len(regions)),
		zap.Int("k", opts.k))

	items := make(chan proximity.WorkItem)
	go func() {
		defer close(items)
		for i, r := range regions {
			items <- proximity.WorkItem{
				Seq: i,
				Request: proximity.Request{
					Op:        op,
					Query:     proximity.QueryFor(r.feature),
					K:         opts.k,
					Direction: dir,
				},
				Extra: r.text,
			}
		}
	}()

	failed := 0
	results := searcher.ParallelSearch(cmd.Context(), items, viper.GetInt("workers"))
	if err := proximity.OrderedCollect(results, func(r proximity.WorkResult) error {
		query := r.Extra.(string)
		if r.Err != nil {
			logger.Warn("search failed", zap.String("region", query), zap.Error(r.Err))
			failed++
			return nil
		}
		for _, h := range r.Hits {
			if err := writer.Write(query, h); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d searches failed", failed, len(regions))
	}
	return nil
}

// openFeatureStore resolves table names. Several tables are searched as one
// store.
func openFeatureStore(store *duckdb.Store, names []string) (proximity.FeatureStore, error) {
	if len(names) == 1 {
		t, err := store.Table(names[0])
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	stores := make([]proximity.FeatureStore, 0, len(names))
	for _, name := range names {
		t, err := store.Table(name)
		if err != nil {
			return nil, err
		}
		stores = append(stores, t)
	}
	return proximity.NewMultiStore(stores...), nil
}

type region struct {
	text    string
	feature *feature.Feature
}

// readRegions parses region arguments. A single "-" reads one region per
// line from stdin, skipping blank lines and # comments.
func readRegions(args []string, stdin io.Reader) ([]region, error) {
	if len(args) == 1 && args[0] == "-" {
		args = nil
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			args = append(args, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read regions: %w", err)
		}
	}

	regions := make([]region, 0, len(args))
	for _, arg := range args {
		f, err := feature.ParseRegion(arg)
		if err != nil {
			return nil, err
		}
		regions = append(regions, region{text: arg, feature: f})
	}
	return regions, nil
}
