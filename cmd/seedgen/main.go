package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tordrt/seedgen"
	"github.com/tordrt/seedgen/internal/config"
	"github.com/tordrt/seedgen/internal/logging"
)

var (
	templatesDir     string
	outputFile       string
	outputDir        string
	mappingFile      string
	tables           string
	excludeTables    string
	quoteIdentifiers bool
	logLevel         string
	logFormat        string
)

var rootCmd = &cobra.Command{
	Use:   "seedgen",
	Short: "Compile CSV seed templates into a transactional SQL script",
	Long: `seedgen reads CSV seed templates in a fixed dependency order and writes one SQL
script that inserts every row inside a single BEGIN/COMMIT transaction.

Run without arguments it reads docs/templates and writes docs/generated_seed.sql.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&templatesDir, "templates-dir", seedgen.DefaultTemplatesDir, "Directory containing the CSV templates")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", seedgen.DefaultOutputPath, "Output file (- for stdout)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Write one script per table into this directory")
	rootCmd.Flags().StringVarP(&mappingFile, "mapping", "m", "", "YAML file overriding the built-in table mapping")
	rootCmd.Flags().StringVarP(&tables, "tables", "t", "", "Only generate these target tables (comma-separated)")
	rootCmd.Flags().StringVarP(&excludeTables, "exclude", "x", "", "Skip these target tables (comma-separated)")
	rootCmd.Flags().BoolVar(&quoteIdentifiers, "quote-identifiers", false, "Quote table and column names")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

func run(cmd *cobra.Command, args []string) error {
	logging.Setup(os.Stderr, logLevel, logFormat)

	if outputDir != "" && cmd.Flags().Changed("output") {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	opts := &seedgen.Options{
		TemplatesDir:     templatesDir,
		Only:             parseTableList(tables),
		ExcludeTables:    parseTableList(excludeTables),
		QuoteIdentifiers: quoteIdentifiers,
	}
	outOpts := &seedgen.OutputOptions{
		Path:      outputFile,
		OutputDir: outputDir,
	}

	if mappingFile != "" {
		cfg, err := config.LoadConfig(mappingFile)
		if err != nil {
			return fmt.Errorf("failed to load mapping: %w", err)
		}
		if err := applyConfig(cmd, cfg, opts, outOpts); err != nil {
			return err
		}
	}

	if err := seedgen.Generate(opts, outOpts); err != nil {
		return fmt.Errorf("failed to generate seed script: %w", err)
	}

	return nil
}

// applyConfig copies mapping file values into the options. Flags set on the
// command line win over the file. An output file in the mapping conflicts
// with --output-dir the same way the --output flag does.
func applyConfig(cmd *cobra.Command, cfg *config.Config, opts *seedgen.Options, outOpts *seedgen.OutputOptions) error {
	if outOpts.OutputDir != "" && cfg.Output != "" {
		return fmt.Errorf("cannot use --output-dir with a mapping file that sets output")
	}

	opts.Tables = cfg.Mappings()
	if cfg.TemplatesDir != "" && !cmd.Flags().Changed("templates-dir") {
		opts.TemplatesDir = cfg.TemplatesDir
	}
	if cfg.Output != "" && !cmd.Flags().Changed("output") {
		outOpts.Path = cfg.Output
	}
	return nil
}

// parseTableList splits a comma-separated flag value
func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	list := strings.Split(s, ",")
	for i, t := range list {
		list[i] = strings.TrimSpace(t)
	}
	return list
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
