// Package cli provides the command-line interface for samconvert.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lawrenceadams/sam-converter/internal/cli/commands"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "samconvert",
		Short: "samconvert - T-SQL to Snowflake model converter",
		Long: `samconvert translates T-SQL scripts into Snowflake SQL dbt models.

It parses each input file, rewrites T-SQL constructs into their
Snowflake equivalents, replaces table references with dbt ref() and
source() macros, and emits sources.yml and model_refs.yml manifests.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./samconvert.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))
	rootCmd.AddCommand(commands.NewConvertCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
