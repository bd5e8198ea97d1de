package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/pipeline"
)

// aggregateCommand creates the aggregate command for building datasets from records.
func (c *CLI) aggregateCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "aggregate [records.json|records.csv]",
		Short: "Categorize weighted records into a hierarchy dataset",
		Long: `Categorize weighted records into a hierarchy dataset.

The aggregate command reads records from a JSON array, JSON-lines, or CSV
file, matches each record's text against the keyword rules, and sums the
record weights along the resulting category path. The output is a
dataset.json file ready for 'layout' or 'render'.

Records that fail to match a required level (one without a default
category) are skipped and reported in the summary.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RecordsPath = args[0]
			return c.runAggregate(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.dataset.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.RulesPath, "rules", "r", "", "keyword rules file (TOML, required)")
	cmd.Flags().StringVar(&opts.TextColumn, "text-column", "", `CSV column holding the record text (default: "text")`)
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache")
	_ = cmd.MarkFlagRequired("rules")

	return cmd
}

// runAggregate reads the records, applies the rules, and writes the dataset.
func (c *CLI) runAggregate(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	raw, stats, cacheHit, err := runner.AggregateWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	if cacheHit {
		c.Logger.Debug("dataset served from cache")
	} else {
		prog.done(fmt.Sprintf("Aggregated %d records into %d leaves", stats.Records, stats.Leaves))
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(opts.RecordsPath, filepath.Ext(opts.RecordsPath))
		outputPath = base + ".dataset.json"
	}

	if err := chart.WriteDatasetFile(raw, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Aggregation complete")
	printFile(outputPath)
	if skipped := stats.Records - stats.Matched; skipped > 0 && !cacheHit {
		printDetail("%d records skipped (no matching category)", skipped)
	}
	printNewline()
	printNextStep("Layout", "sunwheel layout "+outputPath)

	return nil
}
