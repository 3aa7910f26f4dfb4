package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lawrenceadams/sam-converter/internal/config"
	"github.com/lawrenceadams/sam-converter/internal/engine"
)

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert T-SQL files to Snowflake dbt models",
		Long: `Translate every .sql file under the input directory into a Snowflake
dbt model, writing one directory per model plus sources.yml and
model_refs.yml to the output directory.`,
		Example: `  # Convert the current directory into ./models
  samconvert convert

  # Convert a specific directory with 8 workers
  samconvert convert --input-dir legacy/sql --output-dir models --jobs 8`,
		RunE: runConvert,
	}

	// Flag names match config keys with dashes for underscores, so the
	// posflag provider picks them up directly.
	cmd.Flags().StringP("input-dir", "i", "", "Input directory containing .sql files")
	cmd.Flags().StringP("output-dir", "o", "", "Output directory for converted models")
	cmd.Flags().IntP("jobs", "j", 0, "Parallel file workers (default: number of CPUs)")

	return cmd
}

func runConvert(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	eng, err := engine.New(cfg, logger)
	if err != nil {
		return err
	}

	result, err := eng.Run(cmd.Context())
	if err != nil {
		return err
	}

	printSummary(cmd, result)

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d files failed to parse",
			len(result.Failed), len(result.Failed)+len(result.Converted))
	}
	return nil
}

func printSummary(cmd *cobra.Command, result *engine.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRow(table.Row{"Models converted", len(result.Converted)})
	t.AppendRow(table.Row{"Files failed", len(result.Failed)})
	t.AppendRow(table.Row{"Model refs", result.ModelRefs})
	t.AppendRow(table.Row{"Source refs", result.SourceRefs})
	t.AppendRow(table.Row{"Distinct tables", len(result.Entries)})
	t.Render()

	if len(result.IncompleteRefs) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Tables never seen fully qualified:")
		for _, w := range result.IncompleteRefs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", w)
		}
	}
	if len(result.Failed) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "Failed files:\n  %s\n", strings.Join(result.Failed, "\n  "))
	}
}
