package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dealerhub/importer"
	"dealerhub/output"
	"dealerhub/record"
	"dealerhub/storage"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
	exportKind   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export imported records to CSV/Excel",
	Long: `Export imported records from the configured storage backend.

Modes:
- raw: one row per record of --kind, using the import columns plus id/createdAt/updatedAt.
  The file can be imported again after removing the id column.
- summary: record counts per kind and status (all kinds when --kind is omitted)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export all dealers to CSV
  dealerhub export --kind dealer --output ./dealers.csv

  # Export units to Excel
  dealerhub export --kind unit --output ./units.xlsx

  # Export status summary across all kinds
  dealerhub export --mode summary --output ./summary.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = output.FormatFromPath(exportOutput)
		}

		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := commandContext(cmd)
		store, err := rt.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		switch strings.TrimSpace(strings.ToLower(exportMode)) {
		case "", "raw":
			kind, err := record.ParseKind(exportKind)
			if err != nil {
				return err
			}
			schema, err := importer.SchemaFor(kind)
			if err != nil {
				return err
			}
			docs, err := store.ListDocuments(ctx, kind)
			if err != nil {
				return err
			}
			if err := output.WriteDocuments(exportOutput, format, schema, docs, rt.cfg.Import.ListDelimiter); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Kind: %s, Mode: raw, Format: %s, File: %s\n", len(docs), kind, format, exportOutput)
		case "summary":
			kinds, err := exportKinds(exportKind)
			if err != nil {
				return err
			}
			docs, err := listKinds(ctx, store, kinds)
			if err != nil {
				return err
			}
			summaries := output.BuildStatusSummaries(docs)
			if err := output.WriteTable(exportOutput, format, output.StatusSummaryTable(summaries)); err != nil {
				return err
			}
			fmt.Printf("Export completed. Groups: %d, Mode: summary, Format: %s, File: %s\n", len(summaries), format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, summary)", exportMode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|summary")
	exportCmd.Flags().StringVarP(&exportKind, "kind", "k", "", "Record kind: dealer|unit|site (required for raw mode)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")

	_ = exportCmd.MarkFlagRequired("output")
}

// exportKinds resolves --kind for summary mode; empty means every kind.
func exportKinds(value string) ([]record.Kind, error) {
	if strings.TrimSpace(value) == "" {
		return record.AllKinds(), nil
	}
	kind, err := record.ParseKind(value)
	if err != nil {
		return nil, err
	}
	return []record.Kind{kind}, nil
}

func listKinds(ctx context.Context, store storage.Backend, kinds []record.Kind) ([]record.Document, error) {
	var docs []record.Document
	for _, kind := range kinds {
		batch, err := store.ListDocuments(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("list %s records: %w", kind, err)
		}
		docs = append(docs, batch...)
	}
	return docs, nil
}
