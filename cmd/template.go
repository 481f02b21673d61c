package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dealerhub/importer"
	"dealerhub/output"
	"dealerhub/record"
)

var (
	templateKind   string
	templateOutput string
	templateFormat string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an empty import template (header row only) for a record kind",
	Example: `
  # CSV template for dealers
  dealerhub template --kind dealer --output ./dealers.csv

  # Excel template for sites
  dealerhub template --kind site --output ./sites.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := record.ParseKind(templateKind)
		if err != nil {
			return err
		}
		schema, err := importer.SchemaFor(kind)
		if err != nil {
			return err
		}

		format := templateFormat
		if strings.TrimSpace(format) == "" {
			format = output.FormatFromPath(templateOutput)
		}
		if err := output.WriteTemplate(templateOutput, format, schema); err != nil {
			return err
		}
		fmt.Printf("Template written. Kind: %s, Columns: %d, File: %s\n", kind, len(schema.Fields), templateOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().StringVarP(&templateKind, "kind", "k", "", "Record kind: dealer|unit|site")
	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Output file path")
	templateCmd.Flags().StringVarP(&templateFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")

	_ = templateCmd.MarkFlagRequired("kind")
	_ = templateCmd.MarkFlagRequired("output")
}
