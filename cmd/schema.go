package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dealerhub/importer"
	"dealerhub/record"
)

var schemaKind string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the import columns and their rules",
	Example: `
  # Show every schema
  dealerhub schema

  # Show the unit schema only
  dealerhub schema --kind unit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemas := importer.Schemas()
		if strings.TrimSpace(schemaKind) != "" {
			kind, err := record.ParseKind(schemaKind)
			if err != nil {
				return err
			}
			schema, err := importer.SchemaFor(kind)
			if err != nil {
				return err
			}
			schemas = []importer.Schema{schema}
		}

		for i, schema := range schemas {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			if err := printSchema(os.Stdout, schema); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringVarP(&schemaKind, "kind", "k", "", "Record kind: dealer|unit|site (default: all)")
}

func printSchema(w io.Writer, schema importer.Schema) error {
	fmt.Fprintf(w, "%s (version %d)\n", schema.Kind, schema.Version)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tREQUIRED\tALLOWED")
	for _, field := range schema.Fields {
		required := "no"
		if field.Required {
			required = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", field.Name, field.Kind, required, strings.Join(field.EnumValues, ", "))
	}
	return tw.Flush()
}
