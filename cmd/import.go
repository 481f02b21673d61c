package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dealerhub/config"
	"dealerhub/importer"
	"dealerhub/internal/logging"
	"dealerhub/output"
	"dealerhub/record"
)

var (
	importInputs []string
	importKind   string
	importFormat string
	importReport string
	importShowN  int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Validate CSV/Excel files and commit the valid rows atomically",
	Long: `Read each input file, validate every data row against the schema of --kind,
and commit all valid rows of that file in one atomic write.

Each input file is its own import: a failed commit for one file does not touch
the records committed for another. Rejected rows are listed with their 1-based
row index and can be written to a report file with --report.
When --format is omitted, format is inferred from each input file extension.`,
	Example: `
  # Import dealers from a CSV file
  dealerhub import -i ./dealers.csv --kind dealer

  # Import several unit files and keep a report of rejected rows
  dealerhub import -i ./units-north.xlsx -i ./units-south.xlsx --kind unit --report ./unit-errors.csv

  # Import into a specific SQLite file
  dealerhub import -i ./sites.csv --kind site --db ./sites.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := record.ParseKind(importKind)
		if err != nil {
			return err
		}

		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := logging.WithContext(commandContext(cmd), rt.logger)

		store, err := rt.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		service := importer.NewService(store, serviceOptions(rt.cfg, rt.logger)...)

		var failed []string
		for _, input := range importInputs {
			content, err := importer.ReadSource(input, importFormat)
			if err != nil {
				return err
			}

			result, importErr := service.Import(ctx, importer.Request{
				Kind:   kind,
				CSV:    content,
				Source: filepath.Base(input),
			})
			printImportResult(os.Stdout, input, result, importShowN)

			if importReport != "" && result.ErrorCount > 0 {
				path := reportPathFor(importReport, input, len(importInputs) > 1)
				if err := output.WriteErrorReport(path, output.FormatFromPath(path), result); err != nil {
					return err
				}
				fmt.Printf("Error report written: %s\n", path)
			}

			if importErr != nil {
				if errors.Is(importErr, importer.ErrConfig) {
					return importErr
				}
				failed = append(failed, input)
			}
		}

		if len(failed) > 0 {
			return fmt.Errorf("import failed for %d file(s): %s", len(failed), strings.Join(failed, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importKind, "kind", "k", "", "Record kind: dealer|unit|site")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVar(&importReport, "report", "", "Write rejected rows to this CSV/XLSX file")
	importCmd.Flags().IntVar(&importShowN, "show-errors", 20, "Maximum number of rejected rows printed to stdout (0 prints none)")

	_ = importCmd.MarkFlagRequired("input")
	_ = importCmd.MarkFlagRequired("kind")
}

func serviceOptions(cfg *config.Config, logger *zap.Logger) []importer.Option {
	return []importer.Option{
		importer.WithLogger(logger),
		importer.WithWorkers(cfg.Import.Workers),
		importer.WithMaxBatchWrites(cfg.Store.MaxBatchWrites),
		importer.WithListDelimiter(cfg.Import.ListDelimiter),
		importer.WithCommitTimeout(cfg.Import.CommitTimeout),
	}
}

func printImportResult(w io.Writer, source string, result importer.Result, limit int) {
	fmt.Fprintf(w, "%s: %s\n", source, result.Message)
	fmt.Fprintf(w, "Rows read: %d, Rows imported: %d, Rows rejected: %d\n",
		result.TotalRows,
		result.ImportedCount,
		result.ErrorCount,
	)

	shown := result.Errors
	if limit >= 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, rowErr := range shown {
		fmt.Fprintf(w, "  row %d [%s]: %s\n", rowErr.RowIndex, rowErr.Kind, rowErr.Message)
	}
	if hidden := len(result.Errors) - len(shown); hidden > 0 {
		fmt.Fprintf(w, "  ... %d more rejected row(s)\n", hidden)
	}
}

// reportPathFor returns the report path for one input. With several inputs
// the input's base name is inserted before the report extension.
func reportPathFor(report, input string, multiple bool) string {
	if !multiple {
		return report
	}
	ext := filepath.Ext(report)
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return strings.TrimSuffix(report, ext) + "-" + base + ext
}
